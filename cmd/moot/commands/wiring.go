package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/moot/internal/config"
	"github.com/dyluth/moot/internal/printer"
	"github.com/dyluth/moot/internal/session"
	"github.com/dyluth/moot/pkg/blackboard"
)

const defaultConfigPath = "moot.yml"

// loadConfig reads and validates moot.yml. A missing file at the default
// path is not an error: every setting has a default, so moot works out of
// the box against a local Redis and Ollama.
func loadConfig(path string) (*config.MootConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == defaultConfigPath {
		cfg := &config.MootConfig{Version: "1.0"}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			fmt.Sprintf("Failed to load %s: %v", path, err),
			[]string{
				"Initialize a fresh config:\n  moot init",
				"Check the YAML syntax and field names, then retry",
			},
		)
	}
	return cfg, nil
}

// dialBoard opens a session-scoped blackboard client and verifies Redis is
// reachable before any command work starts.
func dialBoard(ctx context.Context, cfg *config.MootConfig, sessionName string) (*blackboard.Client, error) {
	bbClient, err := blackboard.NewClient(&redis.Options{Addr: cfg.Redis.URL}, sessionName)
	if err != nil {
		return nil, fmt.Errorf("failed to create blackboard client: %w", err)
	}

	if err := bbClient.Ping(ctx); err != nil {
		bbClient.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", cfg.Redis.URL),
			nil,
			[]string{
				"Start a local Redis:\n  docker run -d -p 6379:6379 redis:7-alpine",
				"Or point redis.url in moot.yml at a running server",
			},
		)
	}

	return bbClient, nil
}

// resolveSession returns the target session name: the --session flag when
// given, otherwise the single session found on the server.
func resolveSession(ctx context.Context, cfg *config.MootConfig, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
	defer rdb.Close()

	name, err := session.Infer(ctx, rdb)
	if err != nil {
		if err.Error() == "no moot sessions found" {
			return "", printer.Error(
				"no moot sessions found",
				"No sessions exist on this Redis server.",
				[]string{"Start a deliberation first:\n  moot solve \"your problem\""},
			)
		}
		if err.Error() == "multiple sessions found, use --session to specify which one" {
			return "", printer.Error(
				"multiple sessions found",
				"More than one session exists on this Redis server.",
				[]string{
					"Specify which session to use:\n  --session <session-name>",
					"List sessions:\n  moot list",
				},
			)
		}
		return "", fmt.Errorf("failed to infer session: %w", err)
	}
	return name, nil
}
