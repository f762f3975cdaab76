package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dyluth/moot/pkg/blackboard"
)

func testMessage(author string, round int, kind blackboard.Kind, at int64) *blackboard.Message {
	return &blackboard.Message{
		ID:          "aaaa1111-0000-4000-8000-000000000001",
		Author:      author,
		Round:       round,
		Scope:       blackboard.ScopePublic,
		Kind:        kind,
		Freeform:    "content",
		CreatedAtMs: at,
	}
}

func TestCriteria_Matches(t *testing.T) {
	msg := testMessage("planner", 2, blackboard.KindPlan, 5000)

	tests := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"no filters matches everything", Criteria{}, true},
		{"since before message", Criteria{SinceTimestampMs: 4000}, true},
		{"since after message", Criteria{SinceTimestampMs: 6000}, false},
		{"until after message", Criteria{UntilTimestampMs: 6000}, true},
		{"until before message", Criteria{UntilTimestampMs: 4000}, false},
		{"kind exact", Criteria{KindGlob: "plan"}, true},
		{"kind glob", Criteria{KindGlob: "pl*"}, true},
		{"kind mismatch", Criteria{KindGlob: "crit*"}, false},
		{"author match", Criteria{Author: "planner"}, true},
		{"author mismatch", Criteria{Author: "critic"}, false},
		{"round match", Criteria{Round: 2}, true},
		{"round mismatch", Criteria{Round: 3}, false},
		{"all criteria together", Criteria{SinceTimestampMs: 4000, KindGlob: "plan", Author: "planner", Round: 2}, true},
		{"one failing criterion fails the whole match", Criteria{KindGlob: "plan", Author: "critic"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(msg))
		})
	}
}

func TestCriteria_HasFilters(t *testing.T) {
	assert.False(t, (&Criteria{}).HasFilters())
	assert.True(t, (&Criteria{Author: "planner"}).HasFilters())
	assert.True(t, (&Criteria{SinceTimestampMs: 1}).HasFilters())
	assert.True(t, (&Criteria{Round: 1}).HasFilters())
}

func TestCriteria_Apply(t *testing.T) {
	msgs := []*blackboard.Message{
		testMessage("planner", 1, blackboard.KindPlan, 1000),
		testMessage("critic", 1, blackboard.KindCritique, 2000),
		testMessage("planner", 2, blackboard.KindPlan, 3000),
	}

	c := &Criteria{Author: "planner"}
	got := c.Apply(msgs)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Round)
	assert.Equal(t, 2, got[1].Round)

	all := (&Criteria{}).Apply(msgs)
	assert.Len(t, all, 3)
}
