package blackboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides session-scoped Redis operations for the blackboard.
// All keys and channels are automatically namespaced with the session name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb         *redis.Client
	sessionName string
}

// NewClient creates a new blackboard client for the specified session.
// The client automatically namespaces all keys and channels with the session name.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - sessionName: Moot session identifier (must not be empty)
//
// Returns an error if sessionName is empty.
func NewClient(redisOpts *redis.Options, sessionName string) (*Client, error) {
	if sessionName == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}

	return &Client{
		rdb:         redis.NewClient(redisOpts),
		sessionName: sessionName,
	}, nil
}

// SessionName returns the session this client is scoped to.
func (c *Client) SessionName() string {
	return c.sessionName
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the client should not be used.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
// Returns an error if Redis is not reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// InitSession writes the session metadata hash. Called once when a
// deliberation starts; calling it again overwrites the metadata but never
// touches messages.
func (c *Client) InitSession(ctx context.Context, problem string) error {
	meta := &SessionMeta{
		Problem:     problem,
		CreatedAtMs: time.Now().UnixMilli(),
	}

	key := MetaKey(c.sessionName)
	if err := c.rdb.HSet(ctx, key, MetaToHash(meta)).Err(); err != nil {
		return fmt.Errorf("failed to write session metadata: %w", err)
	}

	return nil
}

// GetSessionMeta retrieves the session metadata.
// Returns (nil, redis.Nil) if the session doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetSessionMeta(ctx context.Context) (*SessionMeta, error) {
	key := MetaKey(c.sessionName)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session metadata: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	return HashToMeta(hashData), nil
}

// AppendMessage appends a message to its scope's log and publishes an event.
// Validates the message before writing; a zero CreatedAtMs is stamped with the
// current time. Returns an error if validation fails or a Redis operation fails.
//
// The message hash, the scope log push and the private space registration are
// executed in a single transaction so concurrent appenders can never observe a
// half-written message. Appends are strictly ordered per scope by the list push.
func (c *Client) AppendMessage(ctx context.Context, m *Message) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	if m.CreatedAtMs == 0 {
		m.CreatedAtMs = time.Now().UnixMilli()
	}

	hash, err := MessageToHash(m)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, MessageKey(c.sessionName, m.ID), hash)
	pipe.RPush(ctx, LogKey(c.sessionName, m.Scope), m.ID)
	if IsPrivateScope(m.Scope) {
		pipe.SAdd(ctx, SpacesKey(c.sessionName), m.Scope)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message to Redis: %w", err)
	}

	// Publish event after the write is durable
	msgJSON, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message for event: %w", err)
	}

	channel := MessageEventsChannel(c.sessionName)
	if err := c.rdb.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish message event: %w", err)
	}

	return nil
}

// GetMessage retrieves a message by ID.
// Returns (nil, redis.Nil) if the message doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	key := MessageKey(c.sessionName, messageID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read message from Redis: %w", err)
	}

	// Check if key exists (HGetAll returns empty map for non-existent keys)
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	msg, err := HashToMessage(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %w", err)
	}

	return msg, nil
}

// MessageExists checks if a message exists without fetching it.
func (c *Client) MessageExists(ctx context.Context, messageID string) (bool, error) {
	key := MessageKey(c.sessionName, messageID)
	exists, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check message existence: %w", err)
	}
	return exists > 0, nil
}

// ScanMessages returns the IDs of all messages in this session whose ID
// starts with the given prefix, in unspecified order. Used by short-id
// resolution in the CLI.
func (c *Client) ScanMessages(ctx context.Context, idPrefix string) ([]string, error) {
	pattern := MessageKey(c.sessionName, idPrefix) + "*"
	keyPrefix := MessageKey(c.sessionName, "")

	var ids []string
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan messages: %w", err)
		}
		for _, key := range keys {
			ids = append(ids, strings.TrimPrefix(key, keyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}

// ReadScope returns the full ordered message list for a scope (ScopePublic or
// a private space key). Every call decodes fresh copies; mutating the returned
// messages cannot alter the stored log. An unknown scope yields an empty slice.
func (c *Client) ReadScope(ctx context.Context, scope string) ([]*Message, error) {
	if err := ValidateScope(scope); err != nil {
		return nil, fmt.Errorf("invalid scope: %w", err)
	}

	ids, err := c.rdb.LRange(ctx, LogKey(c.sessionName, scope), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read scope log: %w", err)
	}

	if len(ids) == 0 {
		return []*Message{}, nil
	}

	// Fetch all message hashes in one round trip
	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, MessageKey(c.sessionName, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	messages := make([]*Message, 0, len(ids))
	for i, cmd := range cmds {
		hashData, err := cmd.Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read message %s: %w", ids[i], err)
		}
		if len(hashData) == 0 {
			return nil, fmt.Errorf("scope log references missing message %s", ids[i])
		}
		msg, err := HashToMessage(hashData)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize message %s: %w", ids[i], err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// MessageCount returns the number of messages in a scope.
// More efficient than ReadScope when only the count is needed.
func (c *Client) MessageCount(ctx context.Context, scope string) (int64, error) {
	count, err := c.rdb.LLen(ctx, LogKey(c.sessionName, scope)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// PrivateSpaceKeys returns the keys of all private spaces that have received
// at least one message. Order is unspecified.
func (c *Client) PrivateSpaceKeys(ctx context.Context) ([]string, error) {
	keys, err := c.rdb.SMembers(ctx, SpacesKey(c.sessionName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read private space registry: %w", err)
	}
	return keys, nil
}

// GetSnapshot returns an immutable view of the whole blackboard: the public
// log, every private space, and the current round. The snapshot is built from
// fresh decoded copies, so callers can hand it to agents without risking
// writes back into the log.
func (c *Client) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	round, err := c.Round(ctx)
	if err != nil {
		return nil, err
	}

	public, err := c.ReadScope(ctx, ScopePublic)
	if err != nil {
		return nil, err
	}

	spaceKeys, err := c.PrivateSpaceKeys(ctx)
	if err != nil {
		return nil, err
	}

	private := make(map[string][]*Message, len(spaceKeys))
	for _, key := range spaceKeys {
		msgs, err := c.ReadScope(ctx, key)
		if err != nil {
			return nil, err
		}
		private[key] = msgs
	}

	return &Snapshot{
		Round:   round,
		Public:  public,
		Private: private,
	}, nil
}

// IncrementRound advances the session's round counter and returns the new
// value. The counter starts at 0, so the first increment yields round 1.
func (c *Client) IncrementRound(ctx context.Context) (int, error) {
	round, err := c.rdb.Incr(ctx, RoundKey(c.sessionName)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment round: %w", err)
	}
	return int(round), nil
}

// Round returns the session's current round counter. A session with no rounds
// yet returns 0.
func (c *Client) Round(ctx context.Context) (int, error) {
	val, err := c.rdb.Get(ctx, RoundKey(c.sessionName)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read round: %w", err)
	}
	return val, nil
}

// PurgeSession deletes every key belonging to this session and returns the
// number of keys removed. This is an operator action for cleaning up finished
// sessions - during a deliberation the log is strictly append-only.
func (c *Client) PurgeSession(ctx context.Context) (int64, error) {
	var deleted int64
	var cursor uint64

	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, SessionKeyPattern(c.sessionName), 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan session keys: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete session keys: %w", err)
			}
			deleted += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

// Subscription represents an active Pub/Sub subscription to message events.
// Caller must call Close() when done to clean up resources.
// Subscriptions deliver full message objects via the Events() channel.
type Subscription struct {
	events <-chan *Message
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of message events.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Message {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeMessages subscribes to message append events for this session.
// Returns a Subscription that delivers full message objects.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent blocking.
// If the subscriber is too slow, events may be dropped by Redis Pub/Sub
// (at-most-once delivery).
func (c *Client) SubscribeMessages(ctx context.Context) (*Subscription, error) {
	channel := MessageEventsChannel(c.sessionName)
	pubsub := c.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *Message, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var m Message
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					// Send error on error channel, skip message
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal message event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &m:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
// Use this to check if GetMessage or GetSessionMeta returned "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
