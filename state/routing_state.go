package state

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Node string

// Link is a single logical connection to a neighbour. Writes must be safe to
// call from the main loop; a slow peer must not block other links.
type Link interface {
	Id() uuid.UUID
	Peer() Node
	WriteMsg(data []byte) error
	Close()
}

// Neighbour is a directly connected peer from the configured topology.
// Mutated only on the main loop.
type Neighbour struct {
	Id          Node
	Addr        string
	Cost        float64 // configured link cost
	Links       []Link
	LastRttMs   float64 // 0 means not yet measured
	LastHelloAt time.Time
}

func (n *Neighbour) BestLink() Link {
	if len(n.Links) == 0 {
		return nil
	}
	return n.Links[0]
}

// LspLink is one advertised adjacency inside a link-state packet.
type LspLink struct {
	To   Node    `json:"to"`
	Cost float64 `json:"cost"`
}

// Lsp is an origin's self-description of its adjacencies, versioned by Seqno.
// Value object: never mutated after creation.
type Lsp struct {
	Origin Node      `json:"origin"`
	Seqno  uint64    `json:"seq"`
	Links  []LspLink `json:"links"`
}

// Equal compares origin, seqno and the full adjacency list.
func (l Lsp) Equal(o Lsp) bool {
	return l.Origin == o.Origin && l.Seqno == o.Seqno && slices.Equal(l.Links, o.Links)
}

// SortLinks orders adjacencies lexicographically so that payload comparison
// and SPF iteration are stable.
func (l *Lsp) SortLinks() {
	slices.SortFunc(l.Links, func(a, b LspLink) int {
		if a.To < b.To {
			return -1
		} else if a.To > b.To {
			return 1
		}
		return 0
	})
}

type LsdbEntry struct {
	Lsp        Lsp
	ReceivedAt time.Time
}

// Graph is the undirected weighted projection of the LSDB.
type Graph map[Node]map[Node]float64

// NextHop is one entry of the forwarding table.
type NextHop struct {
	Via  Node
	Cost float64
}

func (nh NextHop) String() string {
	return fmt.Sprintf("via %s cost %g", nh.Via, nh.Cost)
}
