package state

import (
	"fmt"
	"net"
	"slices"
)

func CentralConfigValidator(cfg *CentralCfg) error {
	if len(cfg.Nodes) == 0 {
		return fmt.Errorf("central config must declare at least one node")
	}
	seen := make([]Node, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		if n.Id == "" {
			return fmt.Errorf("node id must not be empty")
		}
		if slices.Contains(seen, n.Id) {
			return fmt.Errorf("duplicate node id: %s", n.Id)
		}
		seen = append(seen, n.Id)
		if _, _, err := net.SplitHostPort(n.Address); err != nil {
			return fmt.Errorf("node %s has invalid address %q: %w", n.Id, n.Address, err)
		}
	}
	for _, l := range cfg.Links {
		if l.A == l.B {
			return fmt.Errorf("link %s-%s connects a node to itself", l.A, l.B)
		}
		for _, end := range []Node{l.A, l.B} {
			if !slices.Contains(seen, end) {
				return fmt.Errorf("link %s-%s references unknown node %s", l.A, l.B, end)
			}
		}
		if l.Cost < 0 {
			return fmt.Errorf("link %s-%s has negative cost %g", l.A, l.B, l.Cost)
		}
	}
	return nil
}

func LocalConfigValidator(cfg *LocalCfg, ccfg *CentralCfg) error {
	if cfg.Id == "" {
		return fmt.Errorf("node id must not be empty")
	}
	if ccfg.GetNode(cfg.Id) == nil {
		return fmt.Errorf("node %s is not part of the central config", cfg.Id)
	}
	if cfg.Metric != "" && cfg.Metric != MetricHop && cfg.Metric != MetricRtt {
		return fmt.Errorf("metric must be %q or %q, got %q", MetricHop, MetricRtt, cfg.Metric)
	}
	if cfg.Bind != "" {
		if _, _, err := net.SplitHostPort(cfg.Bind); err != nil {
			return fmt.Errorf("invalid bind address %q: %w", cfg.Bind, err)
		}
	}
	return nil
}
