package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Hayser8/laboratorio3redes/state"
)

// ErrStaleLsp marks an LSP whose sequence number is not strictly newer than
// the stored one. Dropped, not reported as a failure.
var ErrStaleLsp = errors.New("stale lsp")

// Lsdb stores the most recent LSP from every known origin. Only ever touched
// on the main loop.
type Lsdb struct {
	entries map[state.Node]state.LsdbEntry
}

func NewLsdb() *Lsdb {
	return &Lsdb{
		entries: make(map[state.Node]state.LsdbEntry),
	}
}

// Admit applies an incoming LSP. Returns changed=true when the entry was
// created or replaced, changed=false for an idempotent re-receipt of the
// current version, and ErrStaleLsp otherwise. A changed=true admit is the
// sole trigger for flooding and SPF recomputation.
func (db *Lsdb) Admit(lsp state.Lsp, at time.Time) (bool, error) {
	cur, ok := db.entries[lsp.Origin]
	if !ok || lsp.Seqno > cur.Lsp.Seqno {
		db.entries[lsp.Origin] = state.LsdbEntry{Lsp: lsp, ReceivedAt: at}
		return true, nil
	}
	if lsp.Seqno == cur.Lsp.Seqno && lsp.Equal(cur.Lsp) {
		return false, nil
	}
	return false, ErrStaleLsp
}

func (db *Lsdb) Get(origin state.Node) (state.LsdbEntry, bool) {
	e, ok := db.entries[origin]
	return e, ok
}

func (db *Lsdb) Len() int {
	return len(db.entries)
}

// Snapshot projects the database into an undirected weighted graph. The edge
// u-v takes u's advertised cost in the u->v direction; the reverse direction
// prefers v's own advertisement when present. Pure function of the current
// contents: two snapshots of an unchanged database are identical.
func (db *Lsdb) Snapshot() state.Graph {
	g := make(state.Graph, len(db.entries))
	vertex := func(n state.Node) map[state.Node]float64 {
		m, ok := g[n]
		if !ok {
			m = make(map[state.Node]float64)
			g[n] = m
		}
		return m
	}
	for origin, e := range db.entries {
		m := vertex(origin)
		for _, l := range e.Lsp.Links {
			m[l.To] = l.Cost
		}
	}
	// mirror edges whose reverse direction was not advertised
	for u, m := range g {
		for v, w := range m {
			rev := vertex(v)
			if _, ok := rev[u]; !ok {
				rev[u] = w
			}
		}
	}
	return g
}

// Dump renders the database for the console, one origin per line.
func (db *Lsdb) Dump(now time.Time) string {
	lines := make([]string, 0, len(db.entries))
	for origin, e := range db.entries {
		links := make([]string, 0, len(e.Lsp.Links))
		for _, l := range e.Lsp.Links {
			links = append(links, fmt.Sprintf("%s:%g", l.To, l.Cost))
		}
		lines = append(lines, fmt.Sprintf(" - %s seq=%d age=%.1fs links=[%s]",
			origin, e.Lsp.Seqno, now.Sub(e.ReceivedAt).Seconds(), strings.Join(links, " ")))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
