package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/moot/pkg/blackboard"
)

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name      string
		inputName string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid simple name",
			inputName: "gsm8k",
			wantErr:   false,
		},
		{
			name:      "valid name with hyphens",
			inputName: "session-1",
			wantErr:   false,
		},
		{
			name:      "valid name with numbers",
			inputName: "batch-task-42",
			wantErr:   false,
		},
		{
			name:      "empty name",
			inputName: "",
			wantErr:   true,
			errMsg:    "cannot be empty",
		},
		{
			name:      "name with uppercase",
			inputName: "Gsm8k",
			wantErr:   true,
			errMsg:    "must be lowercase",
		},
		{
			name:      "name with colon breaks key schema",
			inputName: "bad:name",
			wantErr:   true,
			errMsg:    "must be lowercase alphanumeric",
		},
		{
			name:      "name starting with hyphen",
			inputName: "-gsm8k",
			wantErr:   true,
			errMsg:    "not at start/end",
		},
		{
			name:      "name ending with hyphen",
			inputName: "gsm8k-",
			wantErr:   true,
			errMsg:    "not at start/end",
		},
		{
			name:      "name with glob metacharacter",
			inputName: "gsm8k*",
			wantErr:   true,
			errMsg:    "must be lowercase alphanumeric",
		},
		{
			name:      "name too long",
			inputName: "this-is-a-very-long-session-name-that-exceeds-the-maximum-length-limit",
			wantErr:   true,
			errMsg:    "too long",
		},
		{
			name:      "single character name",
			inputName: "a",
			wantErr:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.inputName)
			if tc.wantErr {
				assert.Error(t, err)
				if tc.errMsg != "" {
					assert.Contains(t, err.Error(), tc.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func initSession(t *testing.T, rdb *redis.Client, name, problem string) {
	t.Helper()
	client, err := blackboard.NewClient(&redis.Options{Addr: rdb.Options().Addr}, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.InitSession(context.Background(), problem))
}

func TestGenerateDefaultName(t *testing.T) {
	ctx := context.Background()
	rdb := setupRedis(t)

	t.Run("empty server starts at session-1", func(t *testing.T) {
		name, err := GenerateDefaultName(ctx, rdb)
		require.NoError(t, err)
		assert.Equal(t, "session-1", name)
	})

	t.Run("skips past the highest existing number", func(t *testing.T) {
		initSession(t, rdb, "session-1", "count trinkets")
		initSession(t, rdb, "session-7", "count blinkets")
		initSession(t, rdb, "my-own-name", "named by hand")

		name, err := GenerateDefaultName(ctx, rdb)
		require.NoError(t, err)
		assert.Equal(t, "session-8", name)
	})
}

func TestCheckNameCollision(t *testing.T) {
	ctx := context.Background()
	rdb := setupRedis(t)

	collision, err := CheckNameCollision(ctx, rdb, "gsm8k")
	require.NoError(t, err)
	assert.False(t, collision)

	initSession(t, rdb, "gsm8k", "a math problem")

	collision, err = CheckNameCollision(ctx, rdb, "gsm8k")
	require.NoError(t, err)
	assert.True(t, collision)
}
