package tablewindow

import (
	"context"
	"fmt"
)

// ReadAll loads every row of sourceID at revision through a Loader, one
// DeltaRows page at a time, and returns them as a single page.
func ReadAll(ctx context.Context, fetcher Fetcher, sourceID string, revision int, cfg Config) (*Page, error) {
	cfg = cfg.withDefaults()
	// A lookup at the end of the buffer must fetch the next page.
	cfg.PreloadThreshold = max(cfg.PreloadThreshold, 1)
	cfg.RetryBackoff = 0

	bound := FetcherFunc(func(_ context.Context, req Request) (*Page, error) {
		fctx := ctx
		if cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
			defer cancel()
		}
		return fetcher.Fetch(fctx, req)
	})
	l := New(bound, WithConfig(cfg), WithLauncher(func(f func()) { f() }))
	defer l.Close()

	l.OnIdentityChange(sourceID, revision)
	var rows []Row
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		snap := l.Snapshot()
		if i >= snap.TotalRows {
			if snap.Err != nil && i == 0 {
				return nil, snap.Err
			}
			rows = rows[:min(len(rows), snap.TotalRows)]
			return &Page{Columns: snap.Columns, Rows: rows, StartRow: 0, EndRow: len(rows), TotalRows: snap.TotalRows}, nil
		}
		if i >= snap.LoadedThrough && snap.Err == nil {
			// Past the buffer: the lookup fetches the next page inline.
			l.Row(i)
			snap = l.Snapshot()
		}
		if i >= snap.LoadedThrough {
			if snap.Err != nil {
				return nil, snap.Err
			}
			return nil, fmt.Errorf("%w: stopped at row %d of %d", ErrInconsistentPage, i, snap.TotalRows)
		}
		rows = append(rows, l.Row(i))
	}
}
