package tablewindow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cristianoliveira/workbench/internal/logging"
)

// Logger is the subset of logging.Logger the loader writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfig sets the window sizes.
func WithConfig(cfg Config) Option {
	return func(l *Loader) { l.cfg = cfg.withDefaults() }
}

// WithOnChange registers the callback run after every reset, load and failure.
// It runs without the loader's lock held and may call back into the Loader.
func WithOnChange(fn func(Event)) Option {
	return func(l *Loader) { l.onChange = fn }
}

// WithLauncher replaces the goroutine used to run fetches.
func WithLauncher(launch func(func())) Option {
	return func(l *Loader) { l.launch = launch }
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(l *Loader) { l.log = logger }
}

func withClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// Loader buffers the rows of one source identity, a (sourceID, revision) pair.
//
// Every fetch is tagged with the generation it was issued for. Attach and
// identity changes bump the generation, so a response for a superseded
// identity is dropped without touching the buffer. At most one fetch per
// generation is outstanding.
type Loader struct {
	fetcher  Fetcher
	cfg      Config
	onChange func(Event)
	launch   func(func())
	log      Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	sourceID      string
	revision      int
	initialSize   int
	generation    uint64
	columns       []string
	rows          []Row
	loadedThrough int
	totalRows     int
	inFlight      bool
	lastErr       error
	retryAfter    time.Time
	closed        bool
}

// New returns a detached Loader. Call Attach to start loading.
func New(fetcher Fetcher, opts ...Option) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		fetcher: fetcher,
		cfg:     DefaultConfig(),
		launch:  func(f func()) { go f() },
		log:     logging.With("component", "tablewindow"),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Attach discards the buffer and loads rows [0, initialWindowSize) of sourceID
// at revision 0. An empty sourceID leaves the window empty without fetching.
// A non-positive initialWindowSize uses the configured size.
func (l *Loader) Attach(sourceID string, initialWindowSize int) {
	if initialWindowSize <= 0 {
		initialWindowSize = l.cfg.InitialWindowSize
	}
	l.mu.Lock()
	l.initialSize = initialWindowSize
	p, ok := l.resetLocked(sourceID, 0)
	l.mu.Unlock()

	l.notify(Event{Kind: EventReset, Request: p.req})
	if ok {
		l.start(p)
	}
}

// OnIdentityChange resets the window when sourceID or revision differs from
// the current identity. The same identity again is a no-op.
func (l *Loader) OnIdentityChange(sourceID string, revision int) {
	l.mu.Lock()
	if sourceID == l.sourceID && revision == l.revision {
		l.mu.Unlock()
		return
	}
	if l.initialSize == 0 {
		l.initialSize = l.cfg.InitialWindowSize
	}
	p, ok := l.resetLocked(sourceID, revision)
	l.mu.Unlock()

	l.notify(Event{Kind: EventReset, Request: p.req})
	if ok {
		l.start(p)
	}
}

// Reload discards the buffer and loads the current identity again, ignoring
// any retry backoff.
func (l *Loader) Reload() {
	l.mu.Lock()
	p, ok := l.resetLocked(l.sourceID, l.revision)
	l.mu.Unlock()

	l.notify(Event{Kind: EventReset, Request: p.req})
	if ok {
		l.start(p)
	}
}

// resetLocked empties the window for a new identity and, when there is a
// source to load, marks the initial fetch in flight.
func (l *Loader) resetLocked(sourceID string, revision int) (pending, bool) {
	l.generation++
	l.sourceID = sourceID
	l.revision = revision
	l.rows = nil
	l.loadedThrough = 0
	l.totalRows = 0
	l.columns = nil
	l.inFlight = false
	l.lastErr = nil
	l.retryAfter = time.Time{}

	p := pending{gen: l.generation, req: newRequest(sourceID, revision, 0, l.initialSize)}
	if sourceID == "" || l.closed {
		return p, false
	}
	l.inFlight = true
	return p, true
}

// Row returns the buffered row at index, or a blank row with every known
// column set to nil. It never blocks: when index is within PreloadThreshold
// of the end of the buffer and nothing is in flight it only starts a
// background fetch of the next DeltaRows rows.
//
// Buffered rows are shared with the loader and must not be modified.
func (l *Loader) Row(index int) Row {
	l.mu.Lock()
	if index < 0 {
		row := blankRow(l.columns)
		l.mu.Unlock()
		return row
	}
	var row Row
	if index < l.loadedThrough {
		row = l.rows[index]
	} else {
		row = blankRow(l.columns)
	}
	p, ok := l.nextLocked(index)
	l.mu.Unlock()

	if ok {
		l.start(p)
	}
	return row
}

// nextLocked decides whether a lookup at index should fetch more rows and, if
// so, marks the fetch in flight before it is launched.
func (l *Loader) nextLocked(index int) (pending, bool) {
	if l.inFlight || l.closed || l.sourceID == "" {
		return pending{}, false
	}
	if l.loadedThrough >= l.totalRows {
		return pending{}, false
	}
	if min(index+l.cfg.PreloadThreshold, l.totalRows) <= l.loadedThrough {
		return pending{}, false
	}
	if !l.retryAfter.IsZero() && l.now().Before(l.retryAfter) {
		return pending{}, false
	}
	l.inFlight = true
	req := newRequest(l.sourceID, l.revision, l.loadedThrough, l.loadedThrough+l.cfg.DeltaRows)
	return pending{gen: l.generation, req: req}, true
}

// pending is a fetch marked in flight under the lock, tagged with the
// generation it was issued for.
type pending struct {
	gen uint64
	req Request
}

func (l *Loader) start(p pending) {
	req := p.req
	l.log.Debug("fetching rows", "request_id", req.ID, "source", req.SourceID,
		"revision", req.Revision, "start_row", req.StartRow, "end_row", req.EndRow)
	l.launch(func() {
		ctx := l.ctx
		if l.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.cfg.FetchTimeout)
			defer cancel()
		}
		page, err := l.fetcher.Fetch(ctx, req)
		l.complete(p.gen, req, page, err)
	})
}

// complete applies a fetch result if it still belongs to the current generation.
func (l *Loader) complete(gen uint64, req Request, page *Page, err error) {
	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		l.log.Debug("dropping stale page", "request_id", req.ID, "source", req.SourceID)
		return
	}
	l.inFlight = false
	if err == nil {
		err = l.applyLocked(page)
	}
	if err != nil {
		l.lastErr = err
		if l.cfg.RetryBackoff > 0 {
			l.retryAfter = l.now().Add(l.cfg.RetryBackoff)
		}
		l.mu.Unlock()
		l.log.Warn("fetching rows failed", "request_id", req.ID, "source", req.SourceID, "error", err)
		l.notify(Event{Kind: EventFailed, Request: req, Err: err})
		return
	}
	l.lastErr = nil
	l.retryAfter = time.Time{}
	l.mu.Unlock()
	l.notify(Event{Kind: EventLoaded, Request: req})
}

func (l *Loader) applyLocked(page *Page) error {
	if page == nil {
		return fmt.Errorf("%w: empty response", ErrInconsistentPage)
	}
	if page.TotalRows < 0 {
		return fmt.Errorf("%w: negative total_rows %d", ErrInconsistentPage, page.TotalRows)
	}
	// The table shrank below what is buffered; keep only the rows that still exist.
	if page.TotalRows < l.loadedThrough {
		l.rows = l.rows[:page.TotalRows]
		l.loadedThrough = page.TotalRows
		l.totalRows = page.TotalRows
		l.columns = page.Columns
		return nil
	}
	switch {
	case page.StartRow != l.loadedThrough:
		return fmt.Errorf("%w: start_row %d, buffered through %d", ErrInconsistentPage, page.StartRow, l.loadedThrough)
	case page.EndRow < page.StartRow || page.EndRow > page.TotalRows:
		return fmt.Errorf("%w: rows [%d, %d) of %d", ErrInconsistentPage, page.StartRow, page.EndRow, page.TotalRows)
	case len(page.Rows) != page.EndRow-page.StartRow:
		return fmt.Errorf("%w: %d rows for range [%d, %d)", ErrInconsistentPage, len(page.Rows), page.StartRow, page.EndRow)
	case page.EndRow == page.StartRow && page.TotalRows > page.StartRow:
		return fmt.Errorf("%w: no rows returned at %d of %d", ErrInconsistentPage, page.StartRow, page.TotalRows)
	}
	l.rows = append(l.rows, page.Rows...)
	l.loadedThrough = page.EndRow
	l.totalRows = page.TotalRows
	l.columns = page.Columns
	return nil
}

func (l *Loader) notify(ev Event) {
	if l.onChange != nil {
		l.onChange(ev)
	}
}

// Close stops outstanding fetches and disables further loading.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.generation++
	l.inFlight = false
	l.mu.Unlock()
	l.cancel()
}

func blankRow(columns []string) Row {
	row := make(Row, len(columns))
	for _, c := range columns {
		row[c] = nil
	}
	return row
}

// State is a point-in-time copy of the window.
type State struct {
	SourceID      string
	Revision      int
	Columns       []string
	TotalRows     int
	LoadedThrough int
	Loading       bool
	Err           error
}

// Snapshot returns the current window state.
func (l *Loader) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{
		SourceID:      l.sourceID,
		Revision:      l.revision,
		Columns:       append([]string(nil), l.columns...),
		TotalRows:     l.totalRows,
		LoadedThrough: l.loadedThrough,
		Loading:       l.inFlight,
		Err:           l.lastErr,
	}
}

// TotalRows is the row count last reported by the server.
func (l *Loader) TotalRows() int { return l.Snapshot().TotalRows }

// Columns is the column order of the last applied page.
func (l *Loader) Columns() []string { return l.Snapshot().Columns }

// LoadedThrough is the exclusive end of the buffered rows.
func (l *Loader) LoadedThrough() int { return l.Snapshot().LoadedThrough }

// Loading reports whether a fetch is outstanding.
func (l *Loader) Loading() bool { return l.Snapshot().Loading }

// LastError is the error of the last fetch, cleared by a successful one.
func (l *Loader) LastError() error { return l.Snapshot().Err }
