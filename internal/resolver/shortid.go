// Package resolver turns short message-id prefixes into full UUIDs so CLI
// users do not have to paste whole identifiers.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/moot/pkg/blackboard"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
// Set to 6 characters to balance usability with collision avoidance.
const MinShortIDLength = 6

// ResolveMessageID resolves a short ID prefix to a full message UUID.
// Returns the full UUID if exactly one match is found.
//
// Three cases are handled:
//  1. Input is already a full UUID (36 chars, 4 hyphens): existence check.
//  2. Input is shorter than MinShortIDLength: validation error.
//  3. Input is a prefix: scan for matches and require a unique result.
func ResolveMessageID(ctx context.Context, board *blackboard.Client, shortID string) (string, error) {
	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		exists, err := board.MessageExists(ctx, shortID)
		if err != nil {
			return "", fmt.Errorf("failed to verify message existence: %w", err)
		}
		if !exists {
			return "", &NotFoundError{ShortID: shortID}
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	matches, err := board.ScanMessages(ctx, shortID)
	if err != nil {
		return "", fmt.Errorf("failed to search for message: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no messages matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no messages found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple messages matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d messages", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError renders an AmbiguousError with the matching UUIDs
// (up to 10, then "...and N more") and a hint to lengthen the prefix.
func FormatAmbiguousError(err *AmbiguousError) string {
	msg := fmt.Sprintf("Error: ambiguous short ID '%s' matches %d messages:\n", err.ShortID, len(err.Matches))

	displayCount := len(err.Matches)
	if displayCount > 10 {
		displayCount = 10
	}
	for i := 0; i < displayCount; i++ {
		msg += fmt.Sprintf("  %s\n", err.Matches[i])
	}
	if len(err.Matches) > 10 {
		msg += fmt.Sprintf("  ...and %d more\n", len(err.Matches)-10)
	}

	msg += "\nUse a longer prefix to uniquely identify the message."
	return msg
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
