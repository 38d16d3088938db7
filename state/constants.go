package state

import "time"

var (
	// HelloInterval is how often each neighbour is probed for round-trip time.
	HelloInterval = time.Second * 5
	// LspInterval is how often the node re-originates its own link-state packet.
	LspInterval = time.Second * 10
	// SpfDebounce coalesces bursts of LSDB changes into a single recomputation.
	SpfDebounce = time.Millisecond * 200

	// DedupWindow is how long a message id is remembered for duplicate suppression.
	DedupWindow = time.Second * 120
	// ProbeExpiry bounds how long an unanswered HELLO is kept waiting for its ECHO.
	ProbeExpiry = time.Second * 15

	ReconnectDelay   = time.Second * 5
	LinkWriteTimeout = time.Second * 2

	DefaultTtl = 8
	HelloTtl   = 2
	LspTtl     = 16

	MaxPacketSize = 65536

	DefaultPort = uint16(47110)
)

// debug toggles, wired to flags on the run command
var (
	DBG_log_router = false
	DBG_log_probe  = false
	DBG_log_table  = false
)
