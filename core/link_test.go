package core

import (
	"bytes"
	"net"
	"testing"

	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"proto":"lsr"}`)

	require.NoError(t, writeFrame(&buf, payload))
	got, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFrameRejectsBadSizes(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeFrame(&buf, nil))
	assert.Error(t, writeFrame(&buf, make([]byte, state.MaxPacketSize+1)))

	// zero-length prefix on the wire
	buf.Reset()
	buf.Write([]byte{0, 0, 0, 0})
	_, err := readFrame(&buf)
	assert.Error(t, err)

	// oversized length prefix
	buf.Reset()
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	_, err = readFrame(&buf)
	assert.Error(t, err)
}

func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	dialed, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	server := <-accepted
	t.Cleanup(func() {
		dialed.Close()
		server.Close()
	})
	return dialed, server
}

func testEnv(id state.Node) *state.Env {
	return &state.Env{
		CentralCfg: lineCfg(),
		LocalCfg:   state.LocalCfg{Id: id},
	}
}

func TestHandshakeBindsPeers(t *testing.T) {
	connA, connB := tcpPair(t)
	linkA := NewTcpLink(connA, false)
	linkB := NewTcpLink(connB, true)

	type result struct {
		peer state.Node
		err  error
	}
	resA := make(chan result, 1)
	go func() {
		peer, err := handshake(testEnv("A"), linkA)
		resA <- result{peer, err}
	}()
	peerAtB, err := handshake(testEnv("B"), linkB)
	require.NoError(t, err)
	assert.Equal(t, state.Node("A"), peerAtB)

	got := <-resA
	require.NoError(t, got.err)
	assert.Equal(t, state.Node("B"), got.peer)
}

func TestHandshakeRejectsNonNeighbour(t *testing.T) {
	connA, connC := tcpPair(t)
	linkA := NewTcpLink(connA, false)
	linkC := NewTcpLink(connC, true)

	done := make(chan error, 1)
	go func() {
		// C announces itself, which is not adjacent to A in the topology
		_, err := handshake(testEnv("C"), linkC)
		done <- err
	}()
	_, err := handshake(testEnv("A"), linkA)
	assert.Error(t, err)
	assert.Error(t, <-done)
}
