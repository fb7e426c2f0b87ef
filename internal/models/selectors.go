package models

import "strings"

// Selectors is the triple of application, unit and machine selectors the
// operator can pass to scope a collection run. All three empty means "every
// unit in the model".
type Selectors struct {
	Apps     []string
	Units    []string
	Machines []string
}

func (s Selectors) Empty() bool {
	return len(s.Apps) == 0 && len(s.Units) == 0 && len(s.Machines) == 0
}

// ParseList splits a comma separated selector string, trimming whitespace
// and dropping empty elements.
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
