package search

import (
	"strings"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
)

// TokenProvider splits the query on whitespace. Every token must be found
// in some searched cell. A token of the form column:text only looks at that
// column.
type TokenProvider struct {
	opts Options
}

// NewTokenProvider creates a new token search provider.
func NewTokenProvider(opts ...Option) Provider {
	return &TokenProvider{opts: applyOptions(opts)}
}

func (p *TokenProvider) Match(row tablewindow.Row, query string) bool {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return true
	}
	all := p.opts.values(row)
	for _, token := range tokens {
		values := all
		if col, text, ok := strings.Cut(token, ":"); ok && col != "" {
			if _, exists := row[col]; exists {
				scoped := p.opts
				scoped.Columns = []string{col}
				values = scoped.values(row)
				token = text
			}
		}
		if p.opts.CaseInsensitive {
			token = strings.ToLower(token)
		}
		if !containsAny(values, token) {
			return false
		}
	}
	return true
}

func containsAny(values []string, token string) bool {
	for _, v := range values {
		if strings.Contains(v, token) {
			return true
		}
	}
	return false
}

func (p *TokenProvider) Name() string {
	return ProviderToken
}
