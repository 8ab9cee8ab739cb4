package pagecache

import (
	"context"
	"sync/atomic"

	"github.com/cristianoliveira/workbench/internal/logging"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
)

// CachingFetcher serves pages from a Store and fills it from Next on a miss.
// Cache failures are logged and fall through to Next.
type CachingFetcher struct {
	Next  tablewindow.Fetcher
	Store *Store
	Log   logging.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

var _ tablewindow.Fetcher = (*CachingFetcher)(nil)

func (f *CachingFetcher) logger() logging.Logger {
	if f.Log != nil {
		return f.Log
	}
	return logging.GetGlobal()
}

func (f *CachingFetcher) Fetch(ctx context.Context, req tablewindow.Request) (*tablewindow.Page, error) {
	key := KeyFor(req)
	page, ok, err := f.Store.Get(ctx, key)
	if err != nil {
		f.logger().Warn("page cache read failed", "source", req.SourceID, "error", err)
	}
	if ok {
		f.hits.Add(1)
		return page, nil
	}
	f.misses.Add(1)

	page, err = f.Next.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := f.Store.Put(ctx, key, page); err != nil {
		f.logger().Warn("page cache write failed", "source", req.SourceID, "error", err)
	}
	// A first page means the loader moved to this revision; older ones are dead.
	if req.StartRow == 0 {
		if n, err := f.Store.DropSource(ctx, req.SourceID, req.Revision); err != nil {
			f.logger().Warn("page cache cleanup failed", "source", req.SourceID, "error", err)
		} else if n > 0 {
			f.logger().Debug("dropped stale pages", "source", req.SourceID, "revision", req.Revision, "pages", n)
		}
	}
	return page, nil
}

// Counts returns the hits and misses served so far.
func (f *CachingFetcher) Counts() (hits, misses int64) {
	return f.hits.Load(), f.misses.Load()
}
