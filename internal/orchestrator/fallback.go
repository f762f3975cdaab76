package orchestrator

import (
	"sort"

	"github.com/dyluth/moot/internal/validate"
	"github.com/dyluth/moot/pkg/blackboard"
)

// fallbackAnswer recovers an answer from the final blackboard snapshot after
// the round budget ran out without a critic-validated solution. Every step
// uses marker extraction only, so the result is something an agent actually
// stated as an answer, never an arbitrary slice of message text. Returns the
// empty string and SourceNone when nothing extractable exists anywhere.
//
// Search order:
//  1. private reflection and debate spaces, newest message first
//  2. the most recent public decision
//  3. any public message, newest first
func fallbackAnswer(snapshot *blackboard.Snapshot, problemType validate.ProblemType) (answer, source string) {
	if answer, key, ok := extractFromPrivateSpaces(snapshot, problemType); ok {
		return answer, privateSourcePrefix + key
	}

	if decisions := snapshot.PublicByKind(blackboard.KindDecision); len(decisions) > 0 {
		latest := decisions[len(decisions)-1]
		if answer, ok := validate.ExtractAnswer(latest.Freeform, problemType); ok {
			return answer, SourcePublicDecision
		}
	}

	// A hit on the newest public message is the last-message source; a hit
	// deeper in the history is an extraction find.
	for i := len(snapshot.Public) - 1; i >= 0; i-- {
		if answer, ok := validate.ExtractAnswer(snapshot.Public[i].Freeform, problemType); ok {
			if i == len(snapshot.Public)-1 {
				return answer, SourcePublicLast
			}
			return answer, SourcePublicExtraction
		}
	}

	return "", SourceNone
}

type privateCandidate struct {
	msg *blackboard.Message
	key string
}

// extractFromPrivateSpaces merges all reflection and debate messages and
// scans them newest first. Ties on CreatedAtMs keep sorted space-key order,
// so the scan is deterministic for any snapshot.
func extractFromPrivateSpaces(snapshot *blackboard.Snapshot, problemType validate.ProblemType) (answer, key string, ok bool) {
	var candidates []privateCandidate
	for _, spaceKey := range snapshot.PrivateSpaceKeysSorted() {
		if !blackboard.IsReflectionOrDebate(spaceKey) {
			continue
		}
		msgs := snapshot.Private[spaceKey]
		for i := len(msgs) - 1; i >= 0; i-- {
			candidates = append(candidates, privateCandidate{msg: msgs[i], key: spaceKey})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].msg.CreatedAtMs > candidates[j].msg.CreatedAtMs
	})

	for _, c := range candidates {
		if answer, ok := validate.ExtractAnswer(c.msg.Freeform, problemType); ok {
			return answer, c.key, true
		}
	}
	return "", "", false
}
