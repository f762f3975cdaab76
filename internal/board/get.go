package board

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dyluth/moot/pkg/blackboard"
)

// GetMessage retrieves a single message by ID and writes it as
// pretty-printed JSON to the writer. The ID must be a full UUID; short ID
// resolution happens in the caller via the resolver package.
func GetMessage(ctx context.Context, bbClient *blackboard.Client, messageID string, w io.Writer) error {
	if _, err := uuid.Parse(messageID); err != nil {
		return fmt.Errorf("invalid message ID format: must be a valid UUID")
	}

	msg, err := bbClient.GetMessage(ctx, messageID)
	if err != nil {
		if blackboard.IsNotFound(err) {
			return &MessageNotFoundError{MessageID: messageID}
		}
		return fmt.Errorf("failed to fetch message: %w", err)
	}

	if err := FormatSingleJSON(w, msg); err != nil {
		return fmt.Errorf("failed to format message: %w", err)
	}

	return nil
}

// MessageNotFoundError represents a specific "message not found" error so
// callers can distinguish it from other failures.
type MessageNotFoundError struct {
	MessageID string
}

func (e *MessageNotFoundError) Error() string {
	return fmt.Sprintf("message with ID '%s' not found", e.MessageID)
}

// IsNotFound returns true if the error is a MessageNotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*MessageNotFoundError)
	return ok
}
