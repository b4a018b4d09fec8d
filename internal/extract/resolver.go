package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Cascade is an ordered list of patterns for one field, most specific first.
// Each pattern must have one capture group holding the value.
type Cascade []*regexp.Regexp

// NewCascade compiles patterns as case-insensitive and allows '.' to cross
// line boundaries.
func NewCascade(patterns ...string) Cascade {
	c := make(Cascade, 0, len(patterns))
	for _, p := range patterns {
		c = append(c, regexp.MustCompile(`(?is)`+p))
	}
	return c
}

// Resolver applies cascades to document text.
type Resolver struct {
	log zerolog.Logger
}

// NewResolver creates a resolver logging through log.
func NewResolver(log zerolog.Logger) Resolver {
	return Resolver{log: log}
}

// Resolve returns the first capture of the first pattern in c that matches
// text. Patterns after the first match are not evaluated. A blank capture
// counts as no match.
func (r Resolver) Resolve(field string, c Cascade, text string) *string {
	for i, re := range c {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		r.log.Debug().
			Str("field", field).
			Int("pattern", i).
			Str("value", value).
			Msg("Field resolved")
		return &value
	}
	r.log.Debug().Str("field", field).Msg("No pattern matched")
	return nil
}

// ResolveAboveMarker finds the first line containing marker (case-insensitive)
// and returns the nearest non-blank line above it. When that line is shorter
// than minLen runes the next non-blank line above is used instead. Later
// marker lines are ignored.
func (r Resolver) ResolveAboveMarker(field, marker string, minLen int, text string) *string {
	if marker == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	needle := strings.ToLower(marker)
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		tries := 0
		for above := i - 1; above >= 0 && tries < 2; above-- {
			candidate := strings.TrimSpace(lines[above])
			if candidate == "" {
				continue
			}
			tries++
			if utf8.RuneCountInString(candidate) >= minLen {
				r.log.Debug().
					Str("field", field).
					Str("marker", marker).
					Int("line", above+1).
					Str("value", candidate).
					Msg("Field resolved above marker")
				return &candidate
			}
		}
		return nil
	}
	return nil
}
