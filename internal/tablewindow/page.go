// Package tablewindow serves random row lookups over a paged table endpoint,
// buffering a growing prefix of rows and fetching the next page just before a
// reader runs out.
package tablewindow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInconsistentPage is returned when a page does not line up with the buffer.
var ErrInconsistentPage = errors.New("inconsistent table page")

// Row maps a column name to a scalar value or nil.
type Row map[string]any

// Page is one response of the table endpoint.
type Page struct {
	Columns   []string `json:"columns"`
	Rows      []Row    `json:"rows"`
	StartRow  int      `json:"start_row"`
	EndRow    int      `json:"end_row"`
	TotalRows int      `json:"total_rows"`
}

// Request asks for rows [StartRow, EndRow) of a source at a revision.
type Request struct {
	ID       string
	SourceID string
	Revision int
	StartRow int
	EndRow   int
}

func newRequest(sourceID string, revision, start, end int) Request {
	return Request{
		ID:       uuid.NewString(),
		SourceID: sourceID,
		Revision: revision,
		StartRow: start,
		EndRow:   end,
	}
}

// Fetcher loads one page.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) (*Page, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) (*Page, error) {
	return f(ctx, req)
}

// Config sizes the window.
type Config struct {
	// InitialWindowSize is the number of rows requested on attach.
	InitialWindowSize int
	// PreloadThreshold is how close to the end of the buffer a lookup must be
	// to start fetching the next page.
	PreloadThreshold int
	// DeltaRows is the page size of every fetch after the first.
	DeltaRows int
	// FetchTimeout bounds a single fetch. Zero means no timeout.
	FetchTimeout time.Duration
	// RetryBackoff suppresses lookup-triggered fetches for this long after a
	// failure. Zero lets the next lookup try again at once. Reload ignores it.
	RetryBackoff time.Duration
}

// DefaultConfig returns the stock window sizes.
func DefaultConfig() Config {
	return Config{
		InitialWindowSize: 120,
		PreloadThreshold:  20,
		DeltaRows:         100,
		FetchTimeout:      30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitialWindowSize <= 0 {
		c.InitialWindowSize = d.InitialWindowSize
	}
	if c.PreloadThreshold < 0 {
		c.PreloadThreshold = d.PreloadThreshold
	}
	if c.DeltaRows <= 0 {
		c.DeltaRows = d.DeltaRows
	}
	if c.FetchTimeout < 0 {
		c.FetchTimeout = 0
	}
	if c.RetryBackoff < 0 {
		c.RetryBackoff = 0
	}
	return c
}

// EventKind says what changed in the window.
type EventKind int

const (
	// EventReset means the buffer was discarded for a new identity.
	EventReset EventKind = iota
	// EventLoaded means a page was applied.
	EventLoaded
	// EventFailed means a fetch failed and the buffer is unchanged.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventReset:
		return "reset"
	case EventLoaded:
		return "loaded"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is passed to the change callback.
type Event struct {
	Kind    EventKind
	Request Request
	Err     error
}
