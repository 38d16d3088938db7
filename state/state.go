package state

import (
	"context"
	"log/slog"
	"slices"
)

type LsrModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on the main loop Goroutine
type State struct {
	*Env
	Modules    map[string]LsrModule
	Neighbours []*Neighbour
}

func (s *State) GetNeighbour(node Node) *Neighbour {
	nIdx := slices.IndexFunc(s.Neighbours, func(neighbour *Neighbour) bool {
		return neighbour.Id == node
	})
	if nIdx == -1 {
		return nil
	}
	return s.Neighbours[nIdx]
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	LinkChannel     chan Link
	CentralCfg
	LocalCfg
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger
}
