package board

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/moot/internal/filter"
	"github.com/dyluth/moot/pkg/blackboard"
)

func setupBoard(t *testing.T) *blackboard.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := blackboard.NewClient(&redis.Options{Addr: mr.Addr()}, "test-session")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func appendMessage(t *testing.T, client *blackboard.Client, author, scope string, kind blackboard.Kind, content string, at int64) *blackboard.Message {
	t.Helper()
	msg := &blackboard.Message{
		ID:          uuid.New().String(),
		Author:      author,
		Round:       1,
		Scope:       scope,
		Kind:        kind,
		Freeform:    content,
		CreatedAtMs: at,
	}
	require.NoError(t, client.AppendMessage(context.Background(), msg))
	return msg
}

func TestListMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("default format includes all scopes in time order", func(t *testing.T) {
		client := setupBoard(t)

		appendMessage(t, client, "planner", blackboard.ScopePublic, blackboard.KindPlan, "public plan", 1000)
		appendMessage(t, client, "critic", "debate_critic_planner", blackboard.KindCritique, "private critique", 2000)
		appendMessage(t, client, "decider", blackboard.ScopePublic, blackboard.KindDecision, "public decision", 3000)

		var buf bytes.Buffer
		err := ListMessages(ctx, client, "", OutputFormatDefault, nil, &buf)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "public plan")
		assert.Contains(t, out, "private critique")
		assert.Contains(t, out, "public decision")
		assert.Contains(t, out, "3 messages found")

		// Chronological order across scopes.
		assert.Less(t, strings.Index(out, "public plan"), strings.Index(out, "private critique"))
		assert.Less(t, strings.Index(out, "private critique"), strings.Index(out, "public decision"))
	})

	t.Run("named scope reads only that log", func(t *testing.T) {
		client := setupBoard(t)

		appendMessage(t, client, "planner", blackboard.ScopePublic, blackboard.KindPlan, "public plan", 1000)
		appendMessage(t, client, "critic", "debate_critic_planner", blackboard.KindCritique, "private critique", 2000)

		var buf bytes.Buffer
		err := ListMessages(ctx, client, "debate_critic_planner", OutputFormatDefault, nil, &buf)
		require.NoError(t, err)

		out := buf.String()
		assert.NotContains(t, out, "public plan")
		assert.Contains(t, out, "private critique")
		assert.Contains(t, out, "1 message found")
	})

	t.Run("filters are applied", func(t *testing.T) {
		client := setupBoard(t)

		appendMessage(t, client, "planner", blackboard.ScopePublic, blackboard.KindPlan, "the plan", 1000)
		appendMessage(t, client, "critic", blackboard.ScopePublic, blackboard.KindCritique, "the critique", 2000)

		var buf bytes.Buffer
		criteria := &filter.Criteria{KindGlob: "crit*"}
		err := ListMessages(ctx, client, "", OutputFormatDefault, criteria, &buf)
		require.NoError(t, err)

		out := buf.String()
		assert.NotContains(t, out, "the plan")
		assert.Contains(t, out, "the critique")
	})

	t.Run("jsonl format round-trips", func(t *testing.T) {
		client := setupBoard(t)

		want := appendMessage(t, client, "planner", blackboard.ScopePublic, blackboard.KindPlan, "only message", 1000)

		var buf bytes.Buffer
		err := ListMessages(ctx, client, "", OutputFormatJSONL, nil, &buf)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var got blackboard.Message
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, "only message", got.Freeform)
	})

	t.Run("unknown format rejected", func(t *testing.T) {
		client := setupBoard(t)

		var buf bytes.Buffer
		err := ListMessages(ctx, client, "", OutputFormat("yaml"), nil, &buf)
		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("empty session", func(t *testing.T) {
		client := setupBoard(t)

		var buf bytes.Buffer
		err := ListMessages(ctx, client, "", OutputFormatDefault, nil, &buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "No messages found")
	})
}
