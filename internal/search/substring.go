package search

import (
	"strings"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
)

// SubstringProvider matches if any searched cell contains the query.
type SubstringProvider struct {
	opts Options
}

// NewSubstringProvider creates a new substring search provider.
func NewSubstringProvider(opts ...Option) Provider {
	return &SubstringProvider{opts: applyOptions(opts)}
}

func (p *SubstringProvider) Match(row tablewindow.Row, query string) bool {
	if query == "" {
		return true
	}
	if p.opts.CaseInsensitive {
		query = strings.ToLower(query)
	}
	for _, v := range p.opts.values(row) {
		if strings.Contains(v, query) {
			return true
		}
	}
	return false
}

func (p *SubstringProvider) Name() string {
	return ProviderSubstring
}
