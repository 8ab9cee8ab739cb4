// Package search filters table rows by a query. Substring, regex and token
// strategies share the Provider interface so the CLI can pick one by name.
package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cristianoliveira/workbench/internal/format"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
)

// Provider defines the interface for search providers.
type Provider interface {
	// Match returns true if the row matches the search query.
	Match(row tablewindow.Row, query string) bool

	// Name returns the provider name.
	Name() string
}

// Options holds configuration options for creating search providers.
type Options struct {
	CaseInsensitive bool     // If true, searches ignore case sensitivity
	Columns         []string // Columns to search in (default: all columns of the row)
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{}
}

// Option is a function that modifies search options.
type Option func(*Options)

// WithCaseInsensitive sets case-insensitive search.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) {
		o.CaseInsensitive = enabled
	}
}

// WithColumns limits the search to the named columns.
func WithColumns(columns []string) Option {
	return func(o *Options) {
		o.Columns = columns
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Provider names accepted by New.
const (
	ProviderSubstring = "substring"
	ProviderRegex     = "regex"
	ProviderToken     = "token"
)

// Names lists the provider names.
func Names() []string {
	return []string{ProviderSubstring, ProviderRegex, ProviderToken}
}

// New returns the provider called name.
func New(name string, opts ...Option) (Provider, error) {
	switch name {
	case ProviderSubstring, "":
		return NewSubstringProvider(opts...), nil
	case ProviderRegex:
		return NewRegexProvider(opts...), nil
	case ProviderToken:
		return NewTokenProvider(opts...), nil
	default:
		return nil, fmt.Errorf("unknown match mode %q (expected one of %s)", name, strings.Join(Names(), ", "))
	}
}

// Validate reports a query the provider could never match, such as a bad
// regular expression.
func Validate(p Provider, query string) error {
	if p.Name() != ProviderRegex {
		return nil
	}
	if _, err := regexp.Compile(query); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", query, err)
	}
	return nil
}

// Filter returns the rows of page matching query with their table positions.
// Positions count from 0.
func Filter(p Provider, page *tablewindow.Page, query string) ([]tablewindow.Row, []int) {
	var (
		rows      []tablewindow.Row
		positions []int
	)
	for i, row := range page.Rows {
		if p.Match(row, query) {
			rows = append(rows, row)
			positions = append(positions, page.StartRow+i)
		}
	}
	return rows, positions
}

// values returns the rendered cells of the searched columns, skipping empty ones.
func (o Options) values(row tablewindow.Row) []string {
	var out []string
	add := func(v any) {
		s := format.Cell(v)
		if s == "" {
			return
		}
		if o.CaseInsensitive {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	if len(o.Columns) > 0 {
		for _, c := range o.Columns {
			add(row[c])
		}
		return out
	}
	for _, v := range row {
		add(v)
	}
	return out
}
