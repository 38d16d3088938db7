// Package protocol defines the routing protocol envelope exchanged between
// directly connected nodes, and the payloads of its variants.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/google/uuid"
)

const Proto = "lsr"

// Broadcast is the destination of packets not addressed to a single node.
const Broadcast state.Node = "*"

type PacketType string

const (
	TypeData  PacketType = "data"
	TypeLsp   PacketType = "lsp"
	TypeHello PacketType = "hello"
	TypeEcho  PacketType = "echo"
	TypeInfo  PacketType = "info"
)

type Headers struct {
	LastHop state.Node `json:"last_hop,omitempty"`
	Ts      *time.Time `json:"ts,omitempty"`
}

// Packet is the wire envelope. Once decoded it is treated as a value object;
// forwarding produces a copy via Forwarded.
type Packet struct {
	Proto   string          `json:"proto"`
	Type    PacketType      `json:"type"`
	From    state.Node      `json:"from"`
	To      state.Node      `json:"to"`
	Ttl     int             `json:"ttl"`
	Headers Headers         `json:"headers"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Id      string          `json:"id"`
}

func newPacket(ptype PacketType, from, to state.Node, ttl int) *Packet {
	return &Packet{
		Proto: Proto,
		Type:  ptype,
		From:  from,
		To:    to,
		Ttl:   ttl,
		Id:    uuid.NewString(),
	}
}

func NewData(from, to state.Node, text string, ttl int) *Packet {
	p := newPacket(TypeData, from, to, ttl)
	p.Payload, _ = json.Marshal(text)
	return p
}

func NewLsp(lsp state.Lsp, ttl int) *Packet {
	p := newPacket(TypeLsp, lsp.Origin, Broadcast, ttl)
	p.Payload, _ = json.Marshal(lsp)
	return p
}

func NewHello(from, to state.Node, ttl int) *Packet {
	p := newPacket(TypeHello, from, to, ttl)
	now := time.Now()
	p.Headers.Ts = &now
	return p
}

// NewEcho builds the reply to a HELLO, carrying the same correlation id and
// timestamp so the prober can match it to the outstanding probe.
func NewEcho(from state.Node, hello *Packet) *Packet {
	p := newPacket(TypeEcho, from, hello.From, state.HelloTtl)
	p.Id = hello.Id
	p.Headers.Ts = hello.Headers.Ts
	return p
}

func NewInfo(from, to state.Node, text string, ttl int) *Packet {
	p := newPacket(TypeInfo, from, to, ttl)
	p.Payload, _ = json.Marshal(text)
	return p
}

// Forwarded returns a copy with the hop limit decremented and the trace
// header refreshed. The original packet is left untouched.
func (p *Packet) Forwarded(self state.Node) *Packet {
	fwd := *p
	fwd.Ttl = p.Ttl - 1
	fwd.Headers.LastHop = self
	return &fwd
}

// Lsp decodes the link-state payload of a TypeLsp packet.
func (p *Packet) Lsp() (state.Lsp, error) {
	var lsp state.Lsp
	if p.Type != TypeLsp {
		return lsp, fmt.Errorf("packet type %s carries no lsp", p.Type)
	}
	if err := json.Unmarshal(p.Payload, &lsp); err != nil {
		return lsp, err
	}
	if lsp.Origin == "" {
		return lsp, fmt.Errorf("lsp has no origin")
	}
	lsp.SortLinks()
	return lsp, nil
}

// Text decodes a free-text payload (data/info). Returns the raw payload when
// it is not a JSON string.
func (p *Packet) Text() string {
	var s string
	if err := json.Unmarshal(p.Payload, &s); err != nil {
		return string(p.Payload)
	}
	return s
}

func (p *Packet) Encode() ([]byte, error) {
	return json.Marshal(p)
}

func Decode(data []byte) (*Packet, error) {
	var p Packet
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	switch p.Type {
	case TypeData, TypeLsp, TypeHello, TypeEcho, TypeInfo:
	default:
		return nil, fmt.Errorf("unknown packet type %q", p.Type)
	}
	if p.From == "" {
		return nil, fmt.Errorf("packet has no sender")
	}
	if p.Id == "" {
		return nil, fmt.Errorf("packet has no id")
	}
	return &p, nil
}
