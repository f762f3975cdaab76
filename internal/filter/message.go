// Package filter narrows blackboard message lists for CLI queries.
package filter

import (
	"path/filepath"

	"github.com/dyluth/moot/pkg/blackboard"
)

// Criteria defines filtering criteria for messages.
// All filters are ANDed together - a message must match ALL criteria to pass.
type Criteria struct {
	SinceTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	KindGlob         string // Glob pattern for message kind, empty = no filter
	Author           string // Exact match on author, empty = no filter
	Round            int    // Exact match on round, 0 = no filter
}

// Matches returns true if the message matches all filter criteria.
// Empty/zero criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(m *blackboard.Message) bool {
	if c.SinceTimestampMs > 0 && m.CreatedAtMs < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && m.CreatedAtMs > c.UntilTimestampMs {
		return false
	}

	if c.KindGlob != "" {
		matched, err := filepath.Match(c.KindGlob, string(m.Kind))
		if err != nil || !matched {
			return false
		}
	}

	if c.Author != "" && m.Author != c.Author {
		return false
	}

	if c.Round > 0 && m.Round != c.Round {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.SinceTimestampMs > 0 ||
		c.UntilTimestampMs > 0 ||
		c.KindGlob != "" ||
		c.Author != "" ||
		c.Round > 0
}

// Apply returns the messages matching the criteria, preserving order.
func (c *Criteria) Apply(msgs []*blackboard.Message) []*blackboard.Message {
	if !c.HasFilters() {
		return msgs
	}
	out := make([]*blackboard.Message, 0, len(msgs))
	for _, m := range msgs {
		if c.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}
