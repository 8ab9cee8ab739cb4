package search

import (
	"regexp"
	"sync"

	"github.com/cristianoliveira/workbench/internal/tablewindow"
)

// RegexProvider matches if any searched cell matches the pattern.
type RegexProvider struct {
	opts    Options
	cache   map[string]*regexp.Regexp
	cacheMu sync.RWMutex
}

// NewRegexProvider creates a new regex search provider.
func NewRegexProvider(opts ...Option) Provider {
	return &RegexProvider{
		opts:  applyOptions(opts),
		cache: make(map[string]*regexp.Regexp),
	}
}

// Match returns false for every row when query is not a valid pattern.
func (p *RegexProvider) Match(row tablewindow.Row, query string) bool {
	if query == "" {
		return true
	}
	re, err := p.getRegex(query)
	if err != nil {
		return false
	}
	// The pattern carries the case flag, so cells are matched as stored.
	opts := p.opts
	opts.CaseInsensitive = false
	for _, v := range opts.values(row) {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

func (p *RegexProvider) getRegex(pattern string) (*regexp.Regexp, error) {
	p.cacheMu.RLock()
	re, ok := p.cache[pattern]
	p.cacheMu.RUnlock()
	if ok {
		return re, nil
	}

	expr := pattern
	if p.opts.CaseInsensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	p.cacheMu.Lock()
	p.cache[pattern] = re
	p.cacheMu.Unlock()
	return re, nil
}

func (p *RegexProvider) Name() string {
	return ProviderRegex
}

