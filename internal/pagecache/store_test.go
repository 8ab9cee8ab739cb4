package pagecache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxEntries int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "pagecache.db"), maxEntries)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func testPage(start, end, total int) *tablewindow.Page {
	rows := make([]tablewindow.Row, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, tablewindow.Row{"a": float64(i), "b": "x"})
	}
	return &tablewindow.Page{TotalRows: total, StartRow: start, EndRow: end, Columns: []string{"a", "b"}, Rows: rows}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ", 10)
	require.Error(t, err)
}

func TestOpenDefaultsMaxEntries(t *testing.T) {
	s := newTestStore(t, 0)
	assert.Equal(t, DefaultMaxEntries, s.maxEntries)
}

func TestGetMiss(t *testing.T) {
	s := newTestStore(t, 10)
	page, ok, err := s.Get(context.Background(), Key{Source: "render/1", Revision: 1, EndRow: 120})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, page)
}

func TestPutThenGet(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()
	key := Key{Source: "render/1", Revision: 3, StartRow: 0, EndRow: 120}
	require.NoError(t, s.Put(ctx, key, testPage(0, 5, 5)))

	page, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testPage(0, 5, 5), page)

	_, ok, err = s.Get(ctx, Key{Source: "render/1", Revision: 4, StartRow: 0, EndRow: 120})
	require.NoError(t, err)
	assert.False(t, ok, "other revision must miss")
}

func TestPutReplacesSameKey(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()
	key := Key{Source: "render/1", Revision: 1, EndRow: 10}
	require.NoError(t, s.Put(ctx, key, testPage(0, 2, 2)))
	require.NoError(t, s.Put(ctx, key, testPage(0, 3, 3)))

	page, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, page.TotalRows)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Entries)
}

func TestPutNilPage(t *testing.T) {
	s := newTestStore(t, 10)
	require.Error(t, s.Put(context.Background(), Key{Source: "x"}, nil))
}

func TestPutEvictsOldest(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()
	clock := time.Unix(1000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	k1 := Key{Source: "render/1", Revision: 1, StartRow: 0, EndRow: 10}
	k2 := Key{Source: "render/1", Revision: 1, StartRow: 10, EndRow: 20}
	k3 := Key{Source: "render/2", Revision: 1, StartRow: 0, EndRow: 10}
	require.NoError(t, s.Put(ctx, k1, testPage(0, 1, 30)))
	require.NoError(t, s.Put(ctx, k2, testPage(10, 11, 30)))
	require.NoError(t, s.Put(ctx, k3, testPage(0, 1, 1)))

	_, ok, err := s.Get(ctx, k1)
	require.NoError(t, err)
	assert.False(t, ok, "oldest page is evicted")
	for _, k := range []Key{k2, k3} {
		_, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestStatsAndClear(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Entries)
	assert.True(t, st.Oldest.IsZero())
	assert.Equal(t, 10, st.MaxEntries)

	require.NoError(t, s.Put(ctx, Key{Source: "render/1", Revision: 1, EndRow: 10}, testPage(0, 1, 1)))
	require.NoError(t, s.Put(ctx, Key{Source: "input/1", Revision: 1, EndRow: 10}, testPage(0, 1, 1)))

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, 2, st.Sources)
	assert.Positive(t, st.Bytes)
	assert.False(t, st.Newest.Before(st.Oldest))

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Entries)
}

func TestDropSource(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Key{Source: "render/1", Revision: 1, EndRow: 10}, testPage(0, 1, 1)))
	require.NoError(t, s.Put(ctx, Key{Source: "render/1", Revision: 2, EndRow: 10}, testPage(0, 1, 1)))
	require.NoError(t, s.Put(ctx, Key{Source: "render/2", Revision: 1, EndRow: 10}, testPage(0, 1, 1)))

	n, err := s.DropSource(ctx, "render/1", 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Entries)
}

func TestKeyFor(t *testing.T) {
	req := tablewindow.Request{SourceID: "input/4", Revision: 9, StartRow: 120, EndRow: 220}
	assert.Equal(t, Key{Source: "input/4", Revision: 9, StartRow: 120, EndRow: 220}, KeyFor(req))
}
