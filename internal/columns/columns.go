// Package columns edits the comma separated column lists stored in
// multicolumn parameters.
package columns

import "strings"

// Selection is an ordered set of column names.
type Selection struct {
	names []string
}

// Parse reads a stored selection. Blank input is an empty selection.
func Parse(s string) Selection {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selection{}
	}
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return Selection{names: names}
}

// Contains reports whether name is selected.
func (s Selection) Contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns the selected names in selection order.
func (s Selection) Names() []string {
	return append([]string(nil), s.names...)
}

// Len is the number of selected columns.
func (s Selection) Len() int { return len(s.names) }

// Toggle adds name when checked and absent, or removes it when unchecked and
// present. It reports whether the selection changed.
func (s *Selection) Toggle(name string, checked bool) bool {
	present := s.Contains(name)
	switch {
	case checked && !present:
		s.names = append(s.Names(), name)
		return true
	case !checked && present:
		kept := make([]string, 0, len(s.names)-1)
		for _, n := range s.names {
			if n != name {
				kept = append(kept, n)
			}
		}
		s.names = kept
		return true
	default:
		return false
	}
}

// String is the stored form: names joined by commas without spaces.
func (s Selection) String() string {
	return strings.Join(s.names, ",")
}
