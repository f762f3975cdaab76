//go:build integration

// Package testutil provides the shared environment for end-to-end tests:
// a real Redis started through testcontainers and a scripted stand-in for
// the model server.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dyluth/moot/pkg/blackboard"
)

// SetupRedisContainer starts a Redis container and returns its host:port
// address. The container is terminated when the test finishes.
func SetupRedisContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "Failed to start Redis container")

	t.Cleanup(func() {
		if err := redisC.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err, "Failed to get container host")

	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err, "Failed to get container port")

	return fmt.Sprintf("%s:%s", host, port.Port())
}

// E2EEnvironment represents an isolated end-to-end test environment: a temp
// working directory with a moot.yml, a containerised Redis and a unique
// session name.
type E2EEnvironment struct {
	T           *testing.T
	TmpDir      string
	SessionName string
	RedisAddr   string
	ModelURL    string
	BBClient    *blackboard.Client
	Ctx         context.Context
}

// SetupE2EEnvironment creates a fully isolated E2E environment. modelURL
// should point at a real Ollama server or a NewModelServer stand-in.
func SetupE2EEnvironment(t *testing.T, modelURL string) *E2EEnvironment {
	t.Helper()
	ctx := context.Background()

	redisAddr := SetupRedisContainer(t)

	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir), "Failed to change to test directory")

	env := &E2EEnvironment{
		T:           t,
		TmpDir:      tmpDir,
		SessionName: fmt.Sprintf("test-e2e-%s", time.Now().Format("20060102-150405-000000")),
		RedisAddr:   redisAddr,
		ModelURL:    modelURL,
		Ctx:         ctx,
	}
	env.WriteConfig(DefaultMootYML(redisAddr, modelURL))

	t.Cleanup(func() {
		if env.BBClient != nil {
			env.BBClient.Close()
		}
		_ = os.Chdir(originalDir)
	})

	return env
}

// WriteConfig replaces the environment's moot.yml.
func (env *E2EEnvironment) WriteConfig(mootYML string) {
	path := filepath.Join(env.TmpDir, "moot.yml")
	require.NoError(env.T, os.WriteFile(path, []byte(mootYML), 0644), "Failed to write moot.yml")
}

// InitializeBlackboardClient connects to the blackboard for this environment.
func (env *E2EEnvironment) InitializeBlackboardClient() {
	var err error
	env.BBClient, err = blackboard.NewClient(&redis.Options{Addr: env.RedisAddr}, env.SessionName)
	require.NoError(env.T, err, "Failed to create blackboard client")
}

// WaitForMessageByKind polls the public log for a message of the given kind
// (up to 30 seconds) and returns the first match.
func (env *E2EEnvironment) WaitForMessageByKind(kind blackboard.Kind) *blackboard.Message {
	require.NotNil(env.T, env.BBClient, "Blackboard client not initialized - call InitializeBlackboardClient first")

	env.T.Logf("Waiting for message of kind '%s'...", kind)

	for i := 0; i < 150; i++ {
		msgs, err := env.BBClient.ReadScope(env.Ctx, blackboard.ScopePublic)
		if err == nil {
			for _, m := range msgs {
				if m.Kind == kind {
					env.T.Logf("✓ Found message: kind=%s, author=%s, id=%s", m.Kind, m.Author, m.ID)
					return m
				}
			}
		}
		time.Sleep(200 * time.Millisecond)
	}

	require.Fail(env.T, fmt.Sprintf("Message of kind '%s' not found within 30 seconds", kind))
	return nil
}

// WaitForRound polls the session's round counter until it reaches at least
// the given round (up to 30 seconds).
func (env *E2EEnvironment) WaitForRound(round int) {
	require.NotNil(env.T, env.BBClient, "Blackboard client not initialized - call InitializeBlackboardClient first")

	for i := 0; i < 150; i++ {
		current, err := env.BBClient.Round(env.Ctx)
		if err == nil && current >= round {
			env.T.Logf("✓ Session reached round %d", current)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}

	require.Fail(env.T, fmt.Sprintf("Session did not reach round %d within 30 seconds", round))
}

// DefaultMootYML returns a minimal moot.yml pointing at the given Redis and
// model server addresses, with expert generation off so runs stay scripted.
func DefaultMootYML(redisAddr, modelURL string) string {
	return fmt.Sprintf(`version: "1.0"
redis:
  url: "%s"
model:
  url: "%s"
  models:
    - "llama3.1:8b"
orchestrator:
  max_rounds: 3
  agent_timeout_seconds: 30
experts:
  generate: false
`, redisAddr, modelURL)
}

// ModelRule scripts one mock model response: the first rule whose Contains
// string appears in the prompt wins.
type ModelRule struct {
	Contains string
	Response string
}

// NewModelServer returns an httptest server that speaks just enough of the
// Ollama generate API for a deliberation run. Unmatched prompts get the
// fallback response. The server is closed when the test finishes.
func NewModelServer(t *testing.T, rules []ModelRule, fallback string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/tags":
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"models":[{"name":"llama3.1:8b"}]}`)

		case r.Method == http.MethodPost && r.URL.Path == "/api/generate":
			var req struct {
				Prompt string `json:"prompt"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			response := fallback
			for _, rule := range rules {
				if strings.Contains(req.Prompt, rule.Contains) {
					response = rule.Response
					break
				}
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"response":          response,
				"eval_count":        10,
				"prompt_eval_count": 20,
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	t.Cleanup(srv.Close)
	return srv
}
