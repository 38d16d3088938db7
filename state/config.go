package state

import (
	"slices"
	"time"
)

type MetricMode string

const (
	// MetricHop weighs every link as 1.
	MetricHop MetricMode = "hop"
	// MetricRtt weighs links by the measured round-trip time in milliseconds.
	MetricRtt MetricMode = "rtt"
)

// NodeCfg is the central representation of one node of the topology.
type NodeCfg struct {
	Id      Node
	Address string // host:port the node listens on
}

// LinkCfg is one undirected weighted edge of the configured topology.
type LinkCfg struct {
	A    Node
	B    Node
	Cost float64 `yaml:",omitempty"` // defaults to 1
}

// CentralCfg is the network-global configuration, shared by every node.
type CentralCfg struct {
	Nodes []NodeCfg
	Links []LinkCfg
}

// LocalCfg is node-level configuration.
type LocalCfg struct {
	Id         Node
	Bind       string        `yaml:",omitempty"` // defaults to the central address for Id
	Metric     MetricMode    `yaml:",omitempty"` // defaults to hop
	DefaultTtl int           `yaml:"default_ttl,omitempty"`
	LogPath    string        `yaml:"log_path,omitempty"`
	Hello      time.Duration `yaml:",omitempty"` // hello probe interval override
	Originate  time.Duration `yaml:",omitempty"` // LSP origination interval override
}

func (c *CentralCfg) GetNode(id Node) *NodeCfg {
	idx := slices.IndexFunc(c.Nodes, func(n NodeCfg) bool {
		return n.Id == id
	})
	if idx == -1 {
		return nil
	}
	return &c.Nodes[idx]
}

func (c *CentralCfg) NodeIds() []Node {
	ids := make([]Node, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.Id)
	}
	slices.Sort(ids)
	return ids
}

// NeighboursOf derives the neighbour records for one node from the link list.
// Links are undirected; the configured cost applies to both directions.
func (c *CentralCfg) NeighboursOf(id Node) []*Neighbour {
	neighs := make([]*Neighbour, 0)
	for _, l := range c.Links {
		var peer Node
		switch id {
		case l.A:
			peer = l.B
		case l.B:
			peer = l.A
		default:
			continue
		}
		cost := l.Cost
		if cost <= 0 {
			cost = 1
		}
		n := &Neighbour{
			Id:   peer,
			Cost: cost,
		}
		if cfg := c.GetNode(peer); cfg != nil {
			n.Addr = cfg.Address
		}
		neighs = append(neighs, n)
	}
	slices.SortFunc(neighs, func(a, b *Neighbour) int {
		if a.Id < b.Id {
			return -1
		} else if a.Id > b.Id {
			return 1
		}
		return 0
	})
	return neighs
}

// ExpandLocalConfig fills in defaults that depend on the central config.
func ExpandLocalConfig(lcfg *LocalCfg, ccfg *CentralCfg) {
	if lcfg.Bind == "" {
		if n := ccfg.GetNode(lcfg.Id); n != nil {
			lcfg.Bind = n.Address
		}
	}
	if lcfg.Metric == "" {
		lcfg.Metric = MetricHop
	}
	if lcfg.DefaultTtl <= 0 {
		lcfg.DefaultTtl = DefaultTtl
	}
	if lcfg.Hello <= 0 {
		lcfg.Hello = HelloInterval
	}
	if lcfg.Originate <= 0 {
		lcfg.Originate = LspInterval
	}
}
