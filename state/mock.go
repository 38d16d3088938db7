package state

import "fmt"

// MockCfg builds a five-node weighted topology used across tests.
func MockCfg() (CentralCfg, []LocalCfg) {
	basePort := 23000
	names := []string{
		"bob",
		"jeb",
		"kat",
		"eve",
		"ada",
	}
	cfg := CentralCfg{}
	locals := make([]LocalCfg, 0, len(names))
	for i, node := range names {
		cfg.Nodes = append(cfg.Nodes, NodeCfg{
			Id:      Node(node),
			Address: fmt.Sprintf("127.0.0.1:%d", basePort+i),
		})
		locals = append(locals, LocalCfg{Id: Node(node)})
	}
	cfg.Links = []LinkCfg{
		{"bob", "jeb", 7},
		{"bob", "kat", 9},
		{"bob", "eve", 100},
		{"jeb", "kat", 1},
		{"kat", "ada", 10},
		{"kat", "eve", 3},
		{"eve", "ada", 8},
	}
	return cfg, locals
}
