package core

import (
	"github.com/Hayser8/laboratorio3redes/protocol"
	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/jellydator/ttlcache/v3"
)

// packetHandler classifies one inbound packet and dispatches its handling
// onto the main loop. Link readers call this from their own goroutines.
func packetHandler(e *state.Env, pkt *protocol.Packet, from state.Node) {
	e.Dispatch(func(s *state.State) error {
		return handlePacket(s, pkt, from)
	})
}

func handlePacket(s *state.State, pkt *protocol.Packet, from state.Node) error {
	r := Get[*Router](s)

	// LSP duplicates are decided by the LSDB; everything else by message id.
	if pkt.Type != protocol.TypeLsp {
		if r.Seen.Has(pkt.Id) {
			return nil
		}
		r.Seen.Set(pkt.Id, struct{}{}, ttlcache.DefaultTTL)
	}

	// hop limit spent: expected steady-state outcome, dropped silently
	if pkt.Ttl-1 <= 0 {
		return nil
	}

	switch pkt.Type {
	case protocol.TypeLsp:
		return handleLsp(s, pkt, from)
	case protocol.TypeData:
		return handleData(s, pkt, from)
	case protocol.TypeHello:
		return handleHello(s, pkt, from)
	case protocol.TypeEcho:
		return handleEcho(s, pkt, from)
	case protocol.TypeInfo:
		s.Log.Info("info", "from", pkt.From, "text", pkt.Text())
	}
	return nil
}

// handleData delivers locally or forwards along the next-hop table.
func handleData(s *state.State, pkt *protocol.Packet, from state.Node) error {
	r := Get[*Router](s)
	if pkt.To == s.Id {
		s.Log.Info("delivered", "from", pkt.From, "last_hop", pkt.Headers.LastHop, "payload", pkt.Text())
		if r.Deliver != nil {
			r.Deliver(pkt)
		}
		return nil
	}
	nh, ok := r.NextHops[pkt.To]
	if !ok {
		s.Log.Debug("no route", "to", pkt.To, "from", pkt.From)
		return nil
	}
	nb := s.GetNeighbour(nh.Via)
	if nb == nil {
		s.Log.Debug("next hop is not a neighbour", "via", nh.Via)
		return nil
	}
	sendToNeighbour(s, nb, pkt.Forwarded(s.Id))
	return nil
}

// flood sends the packet to every neighbour except the one it arrived from.
// Callers guarantee the packet was freshly admitted; flood never re-checks
// suppression itself.
func flood(s *state.State, pkt *protocol.Packet, exclude state.Node) {
	fwd := pkt.Forwarded(s.Id)
	if fwd.Ttl <= 0 {
		return
	}
	for _, nb := range s.Neighbours {
		if nb.Id == exclude {
			continue
		}
		sendToNeighbour(s, nb, fwd)
	}
}

// sendToNeighbour writes the packet on the neighbour's best link. A failed
// send is logged and never aborts the caller's loop over other neighbours.
func sendToNeighbour(s *state.State, nb *state.Neighbour, pkt *protocol.Packet) {
	link := nb.BestLink()
	if link == nil {
		s.Log.Debug("no link to neighbour", "neighbour", nb.Id)
		return
	}
	data, err := pkt.Encode()
	if err != nil {
		s.Log.Warn("failed to encode packet", "type", pkt.Type, "err", err)
		return
	}
	if err := link.WriteMsg(data); err != nil {
		s.Log.Warn("failed to send to neighbour", "neighbour", nb.Id, "type", pkt.Type, "err", err)
	}
}
