package blackboard

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is an immutable view of the whole blackboard at a point in time:
// the public log, every private space, and the round counter. Snapshots are
// taken at round boundaries and handed to agent invocations as context, so
// agents acting in the same round all see identical state.
type Snapshot struct {
	Round   int                   `json:"round"`
	Public  []*Message            `json:"public"`
	Private map[string][]*Message `json:"private"`
}

// EmptySnapshot returns a snapshot with no messages, round 0.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Round:   0,
		Public:  []*Message{},
		Private: map[string][]*Message{},
	}
}

// PublicByKind returns the public messages of one kind, in log order.
func (s *Snapshot) PublicByKind(kind Kind) []*Message {
	var out []*Message
	for _, m := range s.Public {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// PrivateSpaceKeysSorted returns the private space keys in lexical order.
// Deterministic iteration matters for the fallback answer search.
func (s *Snapshot) PrivateSpaceKeysSorted() []string {
	keys := make([]string, 0, len(s.Private))
	for k := range s.Private {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatTranscript renders the public log as the numbered transcript that is
// embedded in every agent prompt.
func (s *Snapshot) FormatTranscript() string {
	if len(s.Public) == 0 {
		return "The blackboard is empty."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Blackboard State (Round %d):\n", s.Round)
	for i, m := range s.Public {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, strings.ToUpper(string(m.Kind)), m.Author, m.Freeform)
	}
	return b.String()
}

// FormatPrivateSummary renders a truncated overview of every private space,
// used in reports and when extracting a fallback answer by hand.
func (s *Snapshot) FormatPrivateSummary() string {
	if len(s.Private) == 0 {
		return "No private spaces."
	}

	var b strings.Builder
	b.WriteString("Private Spaces:\n")
	for _, key := range s.PrivateSpaceKeysSorted() {
		msgs := s.Private[key]
		if len(msgs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", key)
		for _, m := range msgs {
			text := m.Freeform
			if len(text) > 100 {
				text = text[:100] + "..."
			}
			fmt.Fprintf(&b, "  - %s: %s\n", m.Author, text)
		}
	}
	return b.String()
}
