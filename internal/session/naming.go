// Package session provides naming and discovery for moot deliberation
// sessions stored on a Redis server.
package session

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/moot/pkg/blackboard"
)

const (
	// DefaultNamePrefix is the prefix for auto-generated session names
	DefaultNamePrefix = "session-"

	// MaxNameLength is the maximum length for a session name
	MaxNameLength = 63
)

// NamePattern is the regex pattern for valid session names.
// Session names are embedded verbatim in Redis key patterns, so they must be
// lowercase alphanumeric with hyphens (not at start/end) and never contain
// a colon or glob metacharacter.
var NamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateName checks if a session name is safe to embed in Redis keys.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("session name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid session name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}

// GenerateDefaultName generates the next available session-N name.
// It scans Redis for existing sessions and finds the highest N in session-N names.
func GenerateDefaultName(ctx context.Context, rdb *redis.Client) (string, error) {
	names, err := scanSessionNames(ctx, rdb)
	if err != nil {
		return "", err
	}

	highestN := 0
	for _, name := range names {
		if strings.HasPrefix(name, DefaultNamePrefix) {
			numStr := strings.TrimPrefix(name, DefaultNamePrefix)
			if n, err := strconv.Atoi(numStr); err == nil {
				if n > highestN {
					highestN = n
				}
			}
		}
	}

	return fmt.Sprintf("%s%d", DefaultNamePrefix, highestN+1), nil
}

// CheckNameCollision checks if a session with the given name already exists
// on the Redis server. Returns true if a collision exists (name is in use).
func CheckNameCollision(ctx context.Context, rdb *redis.Client, sessionName string) (bool, error) {
	n, err := rdb.Exists(ctx, blackboard.MetaKey(sessionName)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check for name collision: %w", err)
	}

	return n > 0, nil
}

// scanSessionNames returns the names of all sessions on the server, found by
// scanning for their meta keys.
func scanSessionNames(ctx context.Context, rdb *redis.Client) ([]string, error) {
	var names []string
	var cursor uint64

	for {
		keys, next, err := rdb.Scan(ctx, cursor, blackboard.SessionScanPattern(), 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan for sessions: %w", err)
		}

		for _, key := range keys {
			if name, ok := blackboard.SessionFromMetaKey(key); ok {
				names = append(names, name)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return names, nil
}
