package core

import (
	"sort"
	"strings"
	"time"

	"github.com/Hayser8/laboratorio3redes/protocol"
	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/jellydator/ttlcache/v3"
)

// Router is the link-state core: it owns the LSDB, originates this node's
// LSP, and keeps the next-hop table in sync with the learned topology.
type Router struct {
	Lsdb     *Lsdb
	NextHops map[state.Node]state.NextHop
	Prev     map[state.Node]state.Node // predecessors from the last SPF run

	// Seqno is the sequence number of the last self-originated LSP.
	Seqno uint64

	// Seen suppresses duplicate data/hello/echo/info by message id. LSP
	// freshness is decided by the LSDB alone; the two domains stay separate.
	Seen *ttlcache.Cache[string, struct{}]
	// Probes holds outstanding HELLOs by correlation id.
	Probes *ttlcache.Cache[string, time.Time]

	// DefaultTtl for locally originated data, adjustable from the console.
	DefaultTtl int

	// Deliver receives data packets addressed to this node. Tests override it.
	Deliver func(pkt *protocol.Packet)

	spfPending bool
}

func (r *Router) Init(s *state.State) error {
	s.Log.Debug("init router")
	r.Lsdb = NewLsdb()
	r.NextHops = make(map[state.Node]state.NextHop)
	r.Prev = make(map[state.Node]state.Node)
	r.DefaultTtl = s.LocalCfg.DefaultTtl
	r.Seen = ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](state.DedupWindow),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	r.Probes = ttlcache.New[string, time.Time](
		ttlcache.WithTTL[string, time.Time](state.ProbeExpiry),
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)
	go r.Seen.Start()
	go r.Probes.Start()

	s.Env.RepeatTask(originateLsp, s.LocalCfg.Originate)
	s.Env.RepeatTask(sendHellos, s.LocalCfg.Hello)
	return nil
}

func (r *Router) Cleanup(s *state.State) error {
	r.Seen.Stop()
	r.Probes.Stop()
	return nil
}

// originateLsp builds a fresh LSP from the current neighbour set, bumps the
// sequence number, and feeds it through the same admit/flood/recompute path
// as any received LSP.
func originateLsp(s *state.State) error {
	r := Get[*Router](s)
	r.Seqno++

	links := make([]state.LspLink, 0, len(s.Neighbours))
	for _, nb := range s.Neighbours {
		cost := nb.Cost
		if s.LocalCfg.Metric == state.MetricRtt && nb.LastRttMs > 0 {
			cost = nb.LastRttMs
		}
		links = append(links, state.LspLink{To: nb.Id, Cost: cost})
	}
	lsp := state.Lsp{Origin: s.Id, Seqno: r.Seqno, Links: links}
	lsp.SortLinks()

	if state.DBG_log_router {
		s.Log.Debug("originating lsp", "seqno", r.Seqno, "links", len(links))
	}

	changed, err := r.Lsdb.Admit(lsp, time.Now())
	if err != nil {
		return err
	}
	if changed {
		scheduleRecompute(s)
	}
	flood(s, protocol.NewLsp(lsp, state.LspTtl), "")
	return nil
}

// handleLsp runs the admit -> flood -> recompute pipeline for a received LSP.
func handleLsp(s *state.State, pkt *protocol.Packet, from state.Node) error {
	r := Get[*Router](s)
	lsp, err := pkt.Lsp()
	if err != nil {
		s.Log.Debug("dropping malformed lsp", "from", from, "err", err)
		return nil
	}
	// guard against a stale echo of our own advertisement
	if lsp.Origin == s.Id && lsp.Seqno <= r.Seqno {
		if state.DBG_log_router {
			s.Log.Debug("dropping self-originated lsp echo", "seqno", lsp.Seqno)
		}
		return nil
	}
	changed, err := r.Lsdb.Admit(lsp, time.Now())
	if err != nil || !changed {
		// stale or already seen, never reflooded
		if state.DBG_log_router {
			s.Log.Debug("lsp not admitted", "origin", lsp.Origin, "seqno", lsp.Seqno, "changed", changed)
		}
		return nil
	}
	if state.DBG_log_router {
		s.Log.Debug("lsp admitted", "origin", lsp.Origin, "seqno", lsp.Seqno)
	}
	flood(s, pkt, from)
	scheduleRecompute(s)
	return nil
}

// scheduleRecompute debounces SPF so that a burst of admissions triggers a
// single full recomputation.
func scheduleRecompute(s *state.State) {
	r := Get[*Router](s)
	if r.spfPending {
		return
	}
	r.spfPending = true
	s.Env.ScheduleTask(runSpf, state.SpfDebounce)
}

// runSpf recomputes the forwarding table off a snapshot and replaces it
// wholesale, so readers see either the old table or the new one.
func runSpf(s *state.State) error {
	r := Get[*Router](s)
	r.spfPending = false

	g := r.Lsdb.Snapshot()
	if _, ok := g[s.Id]; !ok {
		g[s.Id] = make(map[state.Node]float64)
	}
	table, prev := nextHopTable(g, s.Id)
	r.NextHops = table
	r.Prev = prev

	if state.DBG_log_table {
		s.Log.Debug("route table\n" + r.StringTable(s.Id))
	}
	return nil
}

// StringTable renders the next-hop table, one destination per line.
func (r *Router) StringTable(self state.Node) string {
	lines := make([]string, 0, len(r.NextHops))
	for dst, nh := range r.NextHops {
		lines = append(lines, string(self)+" -> "+string(dst)+" "+nh.String())
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// sendHellos probes every connected neighbour with a fresh correlation id.
// Unanswered probes simply expire; the previous RTT stays in place.
func sendHellos(s *state.State) error {
	r := Get[*Router](s)
	for _, nb := range s.Neighbours {
		if nb.BestLink() == nil {
			continue
		}
		pkt := protocol.NewHello(s.Id, nb.Id, state.HelloTtl)
		r.Probes.Set(pkt.Id, time.Now(), ttlcache.DefaultTTL)
		sendToNeighbour(s, nb, pkt)
		if state.DBG_log_probe {
			s.Log.Debug("hello", "to", nb.Id, "id", pkt.Id)
		}
	}
	return nil
}

// handleHello replies immediately with an ECHO carrying the same id.
func handleHello(s *state.State, pkt *protocol.Packet, from state.Node) error {
	nb := s.GetNeighbour(from)
	if nb == nil {
		return nil
	}
	sendToNeighbour(s, nb, protocol.NewEcho(s.Id, pkt))
	return nil
}

// handleEcho matches the reply to its outstanding probe and refreshes the
// neighbour's measured round-trip time.
func handleEcho(s *state.State, pkt *protocol.Packet, from state.Node) error {
	r := Get[*Router](s)
	sent, ok := r.Probes.GetAndDelete(pkt.Id)
	if !ok {
		return nil
	}
	nb := s.GetNeighbour(from)
	if nb == nil {
		return nil
	}
	rtt := time.Since(sent.Value())
	nb.LastRttMs = float64(rtt.Microseconds()) / 1000.0
	nb.LastHelloAt = time.Now()
	if state.DBG_log_probe {
		s.Log.Debug("echo", "from", from, "rtt", rtt)
	}
	return nil
}
