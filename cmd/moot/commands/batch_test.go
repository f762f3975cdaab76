package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBatchSessionName(t *testing.T) {
	tests := []struct {
		name   string
		taskID string
		index  int
		want   string
	}{
		{
			name:   "plain id",
			taskID: "task_12",
			index:  11,
			want:   "batch-20260829-120000-task-12",
		},
		{
			name:   "uppercase and punctuation sanitized",
			taskID: "GSM8K #7!",
			index:  6,
			want:   "batch-20260829-120000-gsm8k--7",
		},
		{
			name:   "empty id falls back to index",
			taskID: "",
			index:  0,
			want:   "batch-20260829-120000-task-1",
		},
		{
			name:   "all-punctuation id falls back to index",
			taskID: "***",
			index:  2,
			want:   "batch-20260829-120000-task-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batchSessionName("20260829-120000", tt.index, tt.taskID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateProblem(t *testing.T) {
	assert.Equal(t, "-", truncateProblem("", 10))
	assert.Equal(t, "short", truncateProblem("short", 10))
	assert.Equal(t, "a long ...", truncateProblem("a long problem statement", 10))
}

func TestFormatActivity(t *testing.T) {
	assert.Equal(t, "-", formatActivity(0))
	assert.Equal(t, "just now", formatActivity(time.Now().UnixMilli()))
	assert.Equal(t, "30m ago", formatActivity(time.Now().Add(-30*time.Minute).UnixMilli()))
	assert.Equal(t, "5h ago", formatActivity(time.Now().Add(-5*time.Hour).UnixMilli()))
}
