package session

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/moot/pkg/blackboard"
)

// Info holds the discoverable state of one session, assembled from its
// Redis keys for the `moot list` status table.
type Info struct {
	Name           string `json:"name"`
	Problem        string `json:"problem"`
	Round          int    `json:"round"`
	PublicMessages int64  `json:"public_messages"`
	CreatedAtMs    int64  `json:"created_at_ms"`
	LastActivityMs int64  `json:"last_activity_ms"`
}

// Discover finds every session on the Redis server and assembles its Info.
// Sessions are returned newest-first by creation time, name-ordered on ties.
func Discover(ctx context.Context, rdb *redis.Client) ([]Info, error) {
	names, err := scanSessionNames(ctx, rdb)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		info, err := Inspect(ctx, rdb, name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAtMs != infos[j].CreatedAtMs {
			return infos[i].CreatedAtMs > infos[j].CreatedAtMs
		}
		return infos[i].Name < infos[j].Name
	})

	return infos, nil
}

// Infer picks the target session when the user did not name one. It succeeds
// only when exactly one session exists on the server; callers match the
// error strings to print tailored guidance.
func Infer(ctx context.Context, rdb *redis.Client) (string, error) {
	names, err := scanSessionNames(ctx, rdb)
	if err != nil {
		return "", err
	}

	switch len(names) {
	case 0:
		return "", fmt.Errorf("no moot sessions found")
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("multiple sessions found, use --session to specify which one")
	}
}

// Inspect assembles the Info for a single named session.
func Inspect(ctx context.Context, rdb *redis.Client, name string) (Info, error) {
	info := Info{Name: name}

	meta, err := rdb.HGetAll(ctx, blackboard.MetaKey(name)).Result()
	if err != nil {
		return Info{}, fmt.Errorf("failed to read metadata for session '%s': %w", name, err)
	}
	if len(meta) == 0 {
		return Info{}, fmt.Errorf("session '%s' not found", name)
	}
	info.Problem = meta["problem"]
	info.CreatedAtMs, _ = strconv.ParseInt(meta["created_at_ms"], 10, 64)

	round, err := rdb.Get(ctx, blackboard.RoundKey(name)).Result()
	if err != nil && err != redis.Nil {
		return Info{}, fmt.Errorf("failed to read round for session '%s': %w", name, err)
	}
	info.Round, _ = strconv.Atoi(round)

	count, err := rdb.LLen(ctx, blackboard.LogKey(name, blackboard.ScopePublic)).Result()
	if err != nil {
		return Info{}, fmt.Errorf("failed to count messages for session '%s': %w", name, err)
	}
	info.PublicMessages = count

	info.LastActivityMs, err = lastActivity(ctx, rdb, name)
	if err != nil {
		return Info{}, err
	}

	return info, nil
}

// lastActivity returns the CreatedAtMs of the newest public message, or zero
// when the public log is empty.
func lastActivity(ctx context.Context, rdb *redis.Client, name string) (int64, error) {
	id, err := rdb.LIndex(ctx, blackboard.LogKey(name, blackboard.ScopePublic), -1).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read newest message for session '%s': %w", name, err)
	}

	at, err := rdb.HGet(ctx, blackboard.MessageKey(name, id), "created_at_ms").Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read message timestamp for session '%s': %w", name, err)
	}

	ms, _ := strconv.ParseInt(at, 10, 64)
	return ms, nil
}
