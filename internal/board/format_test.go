package board

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/moot/pkg/blackboard"
)

func TestFormatContent(t *testing.T) {
	tests := []struct {
		name     string
		freeform string
		expected string
	}{
		{
			name:     "empty content",
			freeform: "",
			expected: "-",
		},
		{
			name:     "short single line",
			freeform: "The answer is 6.",
			expected: "The answer is 6.",
		},
		{
			name:     "exactly 40 chars",
			freeform: strings.Repeat("a", 40),
			expected: strings.Repeat("a", 40),
		},
		{
			name:     "41 chars - should truncate",
			freeform: strings.Repeat("a", 41),
			expected: strings.Repeat("a", 37) + "...",
		},
		{
			name:     "multi-line content - first line only",
			freeform: "Step 1: count the trinkets\nStep 2: double it",
			expected: "Step 1: count the trinkets",
		},
		{
			name:     "leading blank lines are skipped",
			freeform: "  \n  the real content  \n  ",
			expected: "the real content",
		},
		{
			name:     "only whitespace",
			freeform: "  \n \t \n",
			expected: "-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatContent(tt.freeform))
		})
	}
}

func TestFormatScope(t *testing.T) {
	assert.Equal(t, "public", formatScope("public"))
	assert.Equal(t, "debate_critic_planner", formatScope("debate_critic_planner"))
	assert.Equal(t, "reflection_expert_qu...", formatScope("reflection_expert_quantum_mechanics"))
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "550e8400", formatID("550e8400-e29b-41d4-a716-446655440000"))
	assert.Equal(t, "short", formatID("short"))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "-", formatTimestamp(0))

	now := time.Now()
	assert.Contains(t, formatTimestamp(now.Add(-30*time.Second).UnixMilli()), "s ago")
	assert.Contains(t, formatTimestamp(now.Add(-5*time.Minute).UnixMilli()), "m ago")
	assert.Contains(t, formatTimestamp(now.Add(-3*time.Hour).UnixMilli()), "h ago")
	assert.Equal(t, "2d ago", formatTimestamp(now.Add(-49*time.Hour).UnixMilli()))
}

func TestFormatTable(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		var buf bytes.Buffer
		n := FormatTable(&buf, nil, "gsm8k")
		assert.Zero(t, n)
		assert.Contains(t, buf.String(), "No messages found for session 'gsm8k'")
	})

	t.Run("rows and counts", func(t *testing.T) {
		msgs := []*blackboard.Message{
			{
				ID:          "550e8400-e29b-41d4-a716-446655440000",
				Author:      "planner",
				Round:       1,
				Scope:       blackboard.ScopePublic,
				Kind:        blackboard.KindPlan,
				Freeform:    "Step 1: count the trinkets",
				CreatedAtMs: time.Now().UnixMilli(),
			},
			{
				ID:          "660e8400-e29b-41d4-a716-446655440000",
				Author:      "decider",
				Round:       2,
				Scope:       "reflection_decider",
				Kind:        blackboard.KindDecision,
				Freeform:    "Solution ready: true\nFinal answer: 6",
				CreatedAtMs: time.Now().UnixMilli(),
			},
		}

		var buf bytes.Buffer
		n := FormatTable(&buf, msgs, "gsm8k")
		require.Equal(t, 2, n)

		out := buf.String()
		assert.Contains(t, out, "Messages for session 'gsm8k':")
		assert.Contains(t, out, "550e8400")
		assert.Contains(t, out, "planner")
		assert.Contains(t, out, "Step 1: count the trinkets")
		assert.Contains(t, out, "reflection_decider")
		assert.Contains(t, out, "Solution ready: true")
		assert.NotContains(t, out, "Final answer: 6")
		assert.Contains(t, out, "2 messages found")
	})

	t.Run("singular count", func(t *testing.T) {
		msgs := []*blackboard.Message{{ID: "550e8400-e29b-41d4-a716-446655440000", Kind: blackboard.KindNote}}

		var buf bytes.Buffer
		FormatTable(&buf, msgs, "gsm8k")
		assert.Contains(t, buf.String(), "1 message found")
	})
}
