package core

import (
	"net"
	"slices"

	"github.com/Hayser8/laboratorio3redes/protocol"
	"github.com/Hayser8/laboratorio3redes/state"
)

// LinkMgr owns the point-to-point connections: it listens for inbound
// neighbours, dials missing ones, and runs one reader goroutine per link.
type LinkMgr struct {
	activeLinks []state.Link
}

func (n *LinkMgr) Init(s *state.State) error {
	s.Log.Debug("init link manager")

	links := make(chan state.Link)
	s.Env.LinkChannel = links
	n.activeLinks = make([]state.Link, 0)

	go linkHandler(s.Env, links)
	go ListenTCP(s.Env, s.LocalCfg.Bind)

	s.Env.RepeatTask(connectNeighbours, state.ReconnectDelay)
	return nil
}

func (n *LinkMgr) Cleanup(s *state.State) error {
	for _, link := range n.activeLinks {
		link.Close()
	}
	return nil
}

// ListenTCP accepts inbound connections for the node's lifetime. A failure
// to bind is fatal; per-connection failures are not.
func ListenTCP(e *state.Env, addr string) {
	config := net.ListenConfig{}
	listener, err := config.Listen(e.Context, "tcp", addr)
	if err != nil {
		e.Log.Error("failed to listen", "addr", addr, "err", err)
		e.Dispatch(func(s *state.State) error {
			e.Cancel(err)
			return nil
		})
		return
	}

	e.Log.Info("listening on", "addr", addr)
	for e.Context.Err() == nil {
		conn, err := listener.Accept()
		if err != nil {
			if e.Context.Err() != nil {
				return
			}
			e.Log.Warn("failed to accept connection", "err", err)
			continue
		}
		deliverLink(e, conn, true)
	}
}

// deliverLink hands a fresh connection to the link processor. At shutdown
// the channel may already be closed; the connection is then discarded.
func deliverLink(e *state.Env, conn net.Conn, remote bool) {
	defer func() {
		if recover() != nil {
			conn.Close()
		}
	}()
	select {
	case e.LinkChannel <- NewTcpLink(conn, remote):
	case <-e.Context.Done():
		conn.Close()
	}
}

// connectNeighbours dials every configured neighbour we have no live link
// to. Dialing happens off the main loop; failures are retried next tick.
func connectNeighbours(s *state.State) error {
	for _, nb := range s.Neighbours {
		if len(nb.Links) != 0 {
			continue
		}
		addr := nb.Addr
		e := s.Env
		go func() {
			conn, err := net.DialTimeout("tcp", addr, state.LinkWriteTimeout)
			if err != nil {
				e.Log.Debug("failed to dial neighbour", "addr", addr, "err", err)
				return
			}
			deliverLink(e, conn, false)
		}()
	}
	return nil
}

func linkHandler(e *state.Env, links <-chan state.Link) {
	e.Log.Debug("link processor start")
	for link := range links {
		go serveLink(e, link.(*TcpLink))
	}
}

// serveLink performs the identity handshake, registers the link, and pumps
// inbound frames into the forwarding engine until the connection dies.
func serveLink(e *state.Env, link *TcpLink) {
	peer, err := handshake(e, link)
	if err != nil {
		e.Log.Debug("handshake failed", "err", err)
		link.Close()
		return
	}
	link.peer = peer

	e.Dispatch(func(s *state.State) error {
		return attachLink(s, link)
	})

	for e.Context.Err() == nil {
		data, err := link.ReadMsg()
		if err != nil {
			break
		}
		pkt, err := protocol.Decode(data)
		if err != nil {
			// malformed frame: drop it, keep the connection
			e.Log.Debug("dropping malformed packet", "peer", peer, "err", err)
			continue
		}
		packetHandler(e, pkt, peer)
	}
	link.Close()
	e.Dispatch(func(s *state.State) error {
		detachLink(s, link)
		return nil
	})
}

// handshake announces our identity and verifies the peer is a configured
// neighbour before any routing traffic flows.
func handshake(e *state.Env, link *TcpLink) (state.Node, error) {
	hello, err := protocol.NewHandshake(e.LocalCfg.Id).Encode()
	if err != nil {
		return "", err
	}
	if err := link.WriteMsg(hello); err != nil {
		return "", err
	}
	data, err := link.ReadMsg()
	if err != nil {
		return "", err
	}
	pkt, err := protocol.Decode(data)
	if err != nil {
		return "", err
	}
	peer, err := protocol.HandshakePeer(pkt)
	if err != nil {
		return "", err
	}
	if !slices.ContainsFunc(e.CentralCfg.NeighboursOf(e.LocalCfg.Id), func(nb *state.Neighbour) bool {
		return nb.Id == peer
	}) {
		return "", errNotNeighbour(peer)
	}
	return peer, nil
}

type errNotNeighbour state.Node

func (e errNotNeighbour) Error() string {
	return string(e) + " is not a configured neighbour"
}

func attachLink(s *state.State, link *TcpLink) error {
	mgr := Get[*LinkMgr](s)
	nb := s.GetNeighbour(link.Peer())
	if nb == nil {
		link.Close()
		return nil
	}
	mgr.activeLinks = append(mgr.activeLinks, link)
	nb.Links = append(nb.Links, link)
	s.Log.Info("neighbour up", "neighbour", nb.Id, "link", link.Id())
	return nil
}

func detachLink(s *state.State, link *TcpLink) {
	mgr := Get[*LinkMgr](s)
	mgr.activeLinks = slices.DeleteFunc(mgr.activeLinks, func(l state.Link) bool {
		return l.Id() == link.Id()
	})
	nb := s.GetNeighbour(link.Peer())
	if nb == nil {
		return
	}
	before := len(nb.Links)
	nb.Links = slices.DeleteFunc(nb.Links, func(l state.Link) bool {
		return l.Id() == link.Id()
	})
	if before != 0 && len(nb.Links) == 0 {
		s.Log.Info("neighbour down", "neighbour", nb.Id)
	}
}
