package logging

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var segmentSplitter = regexp.MustCompile(`[^a-z0-9]+`)

// redactor masks values whose key names a credential. Keys are compared
// per segment, so "csrf_token" is masked while "tokenizer" is not.
type redactor struct {
	sensitive map[string]struct{}
}

func newRedactor() *redactor {
	words := []string{
		"secret", "password", "token", "key", "auth", "credential",
		"cookie", "csrf", "session", "csrftoken", "sessionid",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return &redactor{sensitive: m}
}

// redact returns a copy of the flattened key/value pairs with sensitive values masked.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	out := make([]any, len(pairs))
	copy(out, pairs)
	for i := 0; i+1 < len(out); i += 2 {
		if key, ok := out[i].(string); ok && r.isSensitive(key) {
			out[i+1] = redacted
		}
	}
	return out
}

func (r *redactor) isSensitive(key string) bool {
	for _, part := range segmentSplitter.Split(strings.ToLower(key), -1) {
		if _, ok := r.sensitive[part]; ok {
			return true
		}
	}
	return false
}
