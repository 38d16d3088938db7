package core

import (
	"context"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/Hayser8/laboratorio3redes/protocol"
	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// mockLink records every packet written to it.
type mockLink struct {
	id   uuid.UUID
	peer state.Node
	sent []*protocol.Packet
}

func newMockLink(peer state.Node) *mockLink {
	return &mockLink{id: uuid.New(), peer: peer}
}

func (m *mockLink) Id() uuid.UUID    { return m.id }
func (m *mockLink) Peer() state.Node { return m.peer }
func (m *mockLink) Close()           {}

func (m *mockLink) WriteMsg(data []byte) error {
	pkt, err := protocol.Decode(data)
	if err != nil {
		return err
	}
	m.sent = append(m.sent, pkt)
	return nil
}

func (m *mockLink) takeSent() []*protocol.Packet {
	out := m.sent
	m.sent = nil
	return out
}

// pipeLink delivers writes synchronously into another node's forwarding
// engine, emulating a zero-latency wire between two test states.
type pipeLink struct {
	id   uuid.UUID
	peer state.Node // who this link leads to
	from state.Node // who the packets appear to come from
	dst  *state.State
}

func (p *pipeLink) Id() uuid.UUID    { return p.id }
func (p *pipeLink) Peer() state.Node { return p.peer }
func (p *pipeLink) Close()           {}

func (p *pipeLink) WriteMsg(data []byte) error {
	pkt, err := protocol.Decode(data)
	if err != nil {
		return err
	}
	return handlePacket(p.dst, pkt, p.from)
}

// newTestState builds a state with a registered Router whose timers are not
// running; tests drive origination and SPF explicitly.
func newTestState(t *testing.T, cfg state.CentralCfg, id state.Node) (*state.State, *Router) {
	t.Helper()
	ctx, cancel := context.WithCancelCause(context.Background())
	t.Cleanup(func() { cancel(context.Canceled) })

	dispatch := make(chan func(*state.State) error, 256)
	s := &state.State{
		Modules: make(map[string]state.LsrModule),
		Env: &state.Env{
			Context:         ctx,
			Cancel:          cancel,
			DispatchChannel: dispatch,
			CentralCfg:      cfg,
			LocalCfg: state.LocalCfg{
				Id:         id,
				Metric:     state.MetricHop,
				DefaultTtl: state.DefaultTtl,
			},
			Log: slog.New(slog.DiscardHandler),
		},
	}
	s.Neighbours = cfg.NeighboursOf(id)

	r := &Router{
		Lsdb:       NewLsdb(),
		NextHops:   make(map[state.Node]state.NextHop),
		Prev:       make(map[state.Node]state.Node),
		DefaultTtl: state.DefaultTtl,
		Seen: ttlcache.New[string, struct{}](
			ttlcache.WithTTL[string, struct{}](state.DedupWindow),
		),
		Probes: ttlcache.New[string, time.Time](
			ttlcache.WithTTL[string, time.Time](state.ProbeExpiry),
		),
	}
	s.Modules[reflect.TypeOf(r).String()] = r
	t.Cleanup(func() {
		r.Seen.Stop()
		r.Probes.Stop()
	})
	return s, r
}

// attachMockLinks gives every neighbour a recording link.
func attachMockLinks(s *state.State) map[state.Node]*mockLink {
	links := make(map[state.Node]*mockLink)
	for _, nb := range s.Neighbours {
		l := newMockLink(nb.Id)
		nb.Links = append(nb.Links, l)
		links[nb.Id] = l
	}
	return links
}

// lineCfg is the three node topology A - B - C with unit costs.
func lineCfg() state.CentralCfg {
	return state.CentralCfg{
		Nodes: []state.NodeCfg{
			{Id: "A", Address: "127.0.0.1:9001"},
			{Id: "B", Address: "127.0.0.1:9002"},
			{Id: "C", Address: "127.0.0.1:9003"},
		},
		Links: []state.LinkCfg{
			{A: "A", B: "B", Cost: 1},
			{A: "B", B: "C", Cost: 1},
		},
	}
}

// connectPipes wires the given states together along the configured links.
func connectPipes(states map[state.Node]*state.State) {
	for id, s := range states {
		for _, nb := range s.Neighbours {
			dst, ok := states[nb.Id]
			if !ok {
				continue
			}
			nb.Links = append(nb.Links, &pipeLink{
				id:   uuid.New(),
				peer: nb.Id,
				from: id,
				dst:  dst,
			})
		}
	}
}
