package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/Hayser8/laboratorio3redes/state"
)

type handshakePayload struct {
	Handshake state.Node `json:"handshake"`
}

// NewHandshake is the first frame sent on a fresh link; it announces the
// sender's identity so the receiver can bind the link to a neighbour.
func NewHandshake(self state.Node) *Packet {
	p := newPacket(TypeInfo, self, Broadcast, 1)
	p.Payload, _ = json.Marshal(handshakePayload{Handshake: self})
	return p
}

// HandshakePeer extracts the announced identity from a handshake frame.
func HandshakePeer(p *Packet) (state.Node, error) {
	if p.Type != TypeInfo {
		return "", fmt.Errorf("expected handshake info packet, got %s", p.Type)
	}
	var hs handshakePayload
	if err := json.Unmarshal(p.Payload, &hs); err != nil {
		return "", err
	}
	if hs.Handshake == "" {
		return "", fmt.Errorf("handshake does not announce a node id")
	}
	if hs.Handshake != p.From {
		return "", fmt.Errorf("handshake id %s does not match sender %s", hs.Handshake, p.From)
	}
	return hs.Handshake, nil
}
