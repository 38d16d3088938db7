package core

import (
	"testing"
	"time"

	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkLsp(origin state.Node, seq uint64, links ...state.LspLink) state.Lsp {
	lsp := state.Lsp{Origin: origin, Seqno: seq, Links: links}
	lsp.SortLinks()
	return lsp
}

func TestAdmitNewOrigin(t *testing.T) {
	db := NewLsdb()
	changed, err := db.Admit(mkLsp("a", 1, state.LspLink{To: "b", Cost: 1}), time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, db.Len())
}

func TestAdmitSequenceFreshness(t *testing.T) {
	db := NewLsdb()
	now := time.Now()

	_, err := db.Admit(mkLsp("a", 5, state.LspLink{To: "b", Cost: 1}), now)
	require.NoError(t, err)

	// strictly newer replaces
	changed, err := db.Admit(mkLsp("a", 6, state.LspLink{To: "b", Cost: 2}), now)
	require.NoError(t, err)
	assert.True(t, changed)
	e, ok := db.Get("a")
	require.True(t, ok)
	assert.Equal(t, uint64(6), e.Lsp.Seqno)

	// older is rejected, entry untouched
	changed, err = db.Admit(mkLsp("a", 5, state.LspLink{To: "b", Cost: 1}), now)
	assert.ErrorIs(t, err, ErrStaleLsp)
	assert.False(t, changed)
	e, _ = db.Get("a")
	assert.Equal(t, uint64(6), e.Lsp.Seqno)

	// equal seqno with matching payload is an idempotent re-receipt
	changed, err = db.Admit(mkLsp("a", 6, state.LspLink{To: "b", Cost: 2}), now)
	require.NoError(t, err)
	assert.False(t, changed)

	// equal seqno with a different payload is stale, not a silent overwrite
	changed, err = db.Admit(mkLsp("a", 6, state.LspLink{To: "c", Cost: 2}), now)
	assert.ErrorIs(t, err, ErrStaleLsp)
	assert.False(t, changed)
}

func TestSnapshotUndirectedMerge(t *testing.T) {
	db := NewLsdb()
	now := time.Now()

	// a advertises b at cost 3; b advertises a at cost 5: each direction
	// keeps its own advertised cost
	_, err := db.Admit(mkLsp("a", 1, state.LspLink{To: "b", Cost: 3}), now)
	require.NoError(t, err)
	_, err = db.Admit(mkLsp("b", 1, state.LspLink{To: "a", Cost: 5}, state.LspLink{To: "c", Cost: 2}), now)
	require.NoError(t, err)

	g := db.Snapshot()
	assert.Equal(t, 3.0, g["a"]["b"])
	assert.Equal(t, 5.0, g["b"]["a"])
	// c never advertised anything: the reverse edge mirrors b's cost
	assert.Equal(t, 2.0, g["b"]["c"])
	assert.Equal(t, 2.0, g["c"]["b"])
}

func TestSnapshotIsPure(t *testing.T) {
	db := NewLsdb()
	now := time.Now()
	_, err := db.Admit(mkLsp("a", 1, state.LspLink{To: "b", Cost: 1}), now)
	require.NoError(t, err)
	_, err = db.Admit(mkLsp("b", 2, state.LspLink{To: "a", Cost: 1}, state.LspLink{To: "c", Cost: 4}), now)
	require.NoError(t, err)

	first := db.Snapshot()
	second := db.Snapshot()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("snapshots of an unchanged database differ (-first +second):\n%s", diff)
	}
}
