package blackboard

import (
	"sort"
	"strings"
)

// Private space naming
//
// Private spaces isolate a conversation from the public log. Two shapes exist:
// - Debate spaces hold an exchange between a fixed group of agents.
// - Reflection spaces hold a single agent's private working notes.
//
// Space keys are deterministic so that any component holding the participant
// names can reconstruct the key without a registry lookup.

const (
	debatePrefix     = "debate_"
	reflectionPrefix = "reflection_"
)

// DebateSpaceKey returns the private space key for a debate between the named
// agents. Names are sorted so the key is independent of participant order.
func DebateSpaceKey(agentNames ...string) string {
	sorted := make([]string, len(agentNames))
	copy(sorted, agentNames)
	sort.Strings(sorted)
	return debatePrefix + strings.Join(sorted, "_")
}

// ReflectionSpaceKey returns the private space key for an agent's
// self-reflection notes.
func ReflectionSpaceKey(agentName string) string {
	return reflectionPrefix + agentName
}

// IsPrivateScope reports whether a scope names a private space rather than
// the public log.
func IsPrivateScope(scope string) bool {
	return scope != ScopePublic
}

// IsReflectionOrDebate reports whether a private space key belongs to one of
// the two well-known space shapes. Fallback answer extraction only searches
// these spaces.
func IsReflectionOrDebate(spaceKey string) bool {
	return strings.HasPrefix(spaceKey, debatePrefix) || strings.HasPrefix(spaceKey, reflectionPrefix)
}
