// Package dedup suppresses repeated module status events.
package dedup

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/workbench/internal/config"
)

// Criteria defines which fields make two events duplicates.
type Criteria string

const (
	// CriteriaStatus compares module and status.
	CriteriaStatus Criteria = "status"
	// CriteriaExact also compares the error message.
	CriteriaExact Criteria = "exact"
)

// Options configure deduplication.
type Options struct {
	Criteria Criteria
	// Window is how long a repeat stays suppressed after the event that was
	// shown. Zero disables deduplication.
	Window time.Duration
}

// Record captures the fields needed to compare events.
type Record struct {
	ModuleID int
	Status   string
	ErrorMsg string
}

// ParseCriteria converts user-provided strings into a Criteria value.
func ParseCriteria(value string) Criteria {
	if strings.EqualFold(value, string(CriteriaExact)) {
		return CriteriaExact
	}
	return CriteriaStatus
}

// String returns the string value for Criteria.
func (c Criteria) String() string {
	return string(c)
}

// Load returns deduplication options from the current configuration.
func Load() Options {
	return Options{
		Criteria: ParseCriteria(config.Get("watch_dedup_criteria", string(CriteriaStatus))),
		Window:   config.GetDuration("watch_dedup_window", 0),
	}
}

// Key returns the comparison key of r.
func Key(r Record, criteria Criteria) string {
	parts := []string{strconv.Itoa(r.ModuleID), r.Status}
	if criteria == CriteriaExact {
		parts = append(parts, r.ErrorMsg)
	}
	return strings.Join(parts, "\x00")
}

type shown struct {
	key string
	at  time.Time
}

// Filter remembers the last event shown per module.
type Filter struct {
	opts Options
	mu   sync.Mutex
	last map[int]shown
}

// NewFilter creates a Filter.
func NewFilter(opts Options) *Filter {
	if opts.Criteria == "" {
		opts.Criteria = CriteriaStatus
	}
	return &Filter{opts: opts, last: make(map[int]shown)}
}

// Duplicate reports whether r repeats the module's last shown event within
// the window. Events that are not duplicates become the module's last shown.
func (f *Filter) Duplicate(r Record, at time.Time) bool {
	if f == nil || f.opts.Window <= 0 {
		return false
	}
	key := Key(r, f.opts.Criteria)
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.last[r.ModuleID]; ok && prev.key == key && at.Sub(prev.at) <= f.opts.Window {
		return true
	}
	f.last[r.ModuleID] = shown{key: key, at: at}
	return false
}

// Reset forgets every shown event.
func (f *Filter) Reset() {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = make(map[int]shown)
}
