// Package blackboard provides type-safe Go definitions and Redis schema patterns
// for the Moot blackboard architecture.
//
// # Overview
//
// The blackboard is the shared memory through which all Moot agents communicate.
// It implements the Blackboard architectural pattern - a shared workspace where
// independent agents collaborate by reading and writing structured messages.
// The public log is visible to every agent; private spaces (debates between a
// subset of agents, or a single agent's reflections) are isolated from the
// public log and from each other.
//
// # Core Concepts
//
// Messages are immutable contributions to the deliberation. Every plan, critique,
// decision and expert analysis is represented as a message carrying both the
// model's structured output and its free-form text, with complete provenance
// via author, round and kind fields.
//
// The log is strictly append-only. No message is ever edited or deleted;
// cleaner agents write new messages annotating which earlier messages are
// redundant. This preserves a full audit trail of how an answer was reached.
//
// # Multi-Session Support
//
// All Redis keys and Pub/Sub channels are namespaced by session name to enable
// multiple Moot sessions to safely coexist on a single Redis server without
// interference. Each session has complete isolation of its data and events.
//
// # Usage Example
//
//	import "github.com/dyluth/moot/pkg/blackboard"
//
//	// Create a message
//	msg := &blackboard.Message{
//		ID:       uuid.New().String(),
//		Author:   "planner",
//		Round:    1,
//		Scope:    blackboard.ScopePublic,
//		Kind:     blackboard.KindPlan,
//		Freeform: "Step 1: count the trinkets. Step 2: subtract the blinkets.",
//	}
//
//	// Validate before storing
//	if err := msg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
//	// Generate Redis key for this message
//	key := blackboard.MessageKey("default-1", msg.ID)
//	// key = "moot:default-1:message:<uuid>"
//
// # Redis Schema
//
// All Redis keys follow the pattern: moot:{session_name}:{entity}
//
// Messages: moot:{session_name}:message:{message_id}
// Scope logs (ordered message IDs): moot:{session_name}:log:{scope}
// Private space registry: moot:{session_name}:spaces
// Round counter: moot:{session_name}:round
// Session metadata: moot:{session_name}:meta
//
// Pub/Sub channels: moot:{session_name}:message_events
//
// # Design Principles
//
// - Type Safety: All data structures have strong typing with validation methods
// - Immutability: Messages are immutable once appended
// - Auditability: Complete provenance via author, round and kind tracking
// - Isolation: Session namespacing prevents cross-session interference
package blackboard
