package blackboard

import (
	"fmt"
	"strings"
)

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by session name to enable
// multiple Moot sessions to safely coexist on a single Redis server.
//
// Key pattern: moot:{session_name}:{entity}
// Channel pattern: moot:{session_name}:{event_type}_events

// MessageKey returns the Redis key for a message hash.
// Pattern: moot:{session_name}:message:{message_id}
func MessageKey(sessionName, messageID string) string {
	return fmt.Sprintf("moot:%s:message:%s", sessionName, messageID)
}

// LogKey returns the Redis key for a scope's ordered log of message IDs.
// The log is a Redis list; RPUSH preserves append order.
// Pattern: moot:{session_name}:log:{scope}
func LogKey(sessionName, scope string) string {
	return fmt.Sprintf("moot:%s:log:%s", sessionName, scope)
}

// SpacesKey returns the Redis key for the set registering private space keys.
// Pattern: moot:{session_name}:spaces
func SpacesKey(sessionName string) string {
	return fmt.Sprintf("moot:%s:spaces", sessionName)
}

// RoundKey returns the Redis key for the session's round counter.
// Pattern: moot:{session_name}:round
func RoundKey(sessionName string) string {
	return fmt.Sprintf("moot:%s:round", sessionName)
}

// MetaKey returns the Redis key for the session metadata hash.
// Pattern: moot:{session_name}:meta
func MetaKey(sessionName string) string {
	return fmt.Sprintf("moot:%s:meta", sessionName)
}

// MessageEventsChannel returns the Pub/Sub channel name for message events.
// Pattern: moot:{session_name}:message_events
func MessageEventsChannel(sessionName string) string {
	return fmt.Sprintf("moot:%s:message_events", sessionName)
}

// SessionKeyPattern returns the SCAN pattern matching every key belonging to
// a session. Used by purge.
func SessionKeyPattern(sessionName string) string {
	return fmt.Sprintf("moot:%s:*", sessionName)
}

// SessionScanPattern returns the SCAN pattern matching the meta key of every
// session on the server. Used by session discovery.
func SessionScanPattern() string {
	return "moot:*:meta"
}

// SessionFromMetaKey extracts the session name from a meta key produced by
// MetaKey. Returns ("", false) when the key does not match the schema.
func SessionFromMetaKey(key string) (string, bool) {
	if !strings.HasPrefix(key, "moot:") || !strings.HasSuffix(key, ":meta") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(key, "moot:"), ":meta")
	if name == "" || strings.Contains(name, ":") {
		return "", false
	}
	return name, true
}
