package core

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/google/uuid"
)

// TcpLink is one point-to-point connection to a neighbour. Frames are
// length-prefixed (uint32, big endian) JSON envelopes.
type TcpLink struct {
	id     uuid.UUID
	peer   state.Node // set once the handshake completes
	conn   net.Conn
	remote bool
	mutex  sync.Mutex
}

func NewTcpLink(conn net.Conn, remote bool) *TcpLink {
	return &TcpLink{
		id:     uuid.New(),
		conn:   conn,
		remote: remote,
	}
}

func (t *TcpLink) Id() uuid.UUID {
	return t.id
}

func (t *TcpLink) Peer() state.Node {
	return t.peer
}

func (t *TcpLink) IsRemote() bool {
	return t.remote
}

func (t *TcpLink) Close() {
	t.conn.Close()
}

// WriteMsg is time-bounded so a stalled neighbour cannot hold up sends for
// the rest of the topology.
func (t *TcpLink) WriteMsg(data []byte) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	err := t.conn.SetWriteDeadline(time.Now().Add(state.LinkWriteTimeout))
	if err != nil {
		return err
	}
	return writeFrame(t.conn, data)
}

func (t *TcpLink) ReadMsg() ([]byte, error) {
	return readFrame(t.conn)
}

func readFrame(c io.Reader) ([]byte, error) {
	var length uint32

	err := binary.Read(c, binary.BigEndian, &length)
	if err != nil {
		return nil, err
	}

	if length == 0 || length > uint32(state.MaxPacketSize) {
		return nil, errors.New("packet size is invalid")
	}

	data := make([]byte, length)

	_, err = io.ReadFull(c, data)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func writeFrame(c io.Writer, data []byte) error {
	if len(data) == 0 || len(data) > state.MaxPacketSize {
		return errors.New("packet size is invalid")
	}

	err := binary.Write(c, binary.BigEndian, uint32(len(data)))
	if err != nil {
		return err
	}

	_, err = c.Write(data)
	return err
}
