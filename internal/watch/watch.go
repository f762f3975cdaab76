// Package watch streams blackboard message events for the `moot watch`
// command: an optional replay of recent history followed by live Pub/Sub
// events until the context is cancelled.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dyluth/moot/internal/filter"
	"github.com/dyluth/moot/pkg/blackboard"
)

// OutputFormat specifies how to format streamed events.
type OutputFormat string

const (
	// OutputFormatDefault uses human-readable output with timestamps and emojis
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON outputs line-delimited JSON for programmatic processing
	OutputFormatJSON OutputFormat = "json"
)

// kindEmoji maps each message kind to its stream marker.
var kindEmoji = map[blackboard.Kind]string{
	blackboard.KindPlan:     "📋",
	blackboard.KindCritique: "🔍",
	blackboard.KindCleanup:  "🧹",
	blackboard.KindConflict: "⚠️",
	blackboard.KindExpert:   "🧠",
	blackboard.KindDecision: "✅",
	blackboard.KindNote:     "📝",
}

// kindLabel maps each message kind to its human-readable stream label.
var kindLabel = map[blackboard.Kind]string{
	blackboard.KindPlan:     "Plan",
	blackboard.KindCritique: "Critique",
	blackboard.KindCleanup:  "Cleanup",
	blackboard.KindConflict: "Conflict",
	blackboard.KindExpert:   "Expert",
	blackboard.KindDecision: "Decision",
	blackboard.KindNote:     "Note",
}

// formatter renders one message event to the output stream.
type formatter interface {
	Format(m *blackboard.Message) error
}

// defaultFormatter writes human-readable event lines.
type defaultFormatter struct {
	writer io.Writer
}

func (f *defaultFormatter) Format(m *blackboard.Message) error {
	emoji, ok := kindEmoji[m.Kind]
	if !ok {
		emoji = "📝"
	}
	label, ok := kindLabel[m.Kind]
	if !ok {
		label = string(m.Kind)
	}

	ts := time.UnixMilli(m.CreatedAtMs).Format("15:04:05")
	_, err := fmt.Fprintf(f.writer, "[%s] %s %s: by=%s round=%d scope=%s %q\n",
		ts, emoji, label, m.Author, m.Round, m.Scope, preview(m.Freeform))
	return err
}

// jsonFormatter writes each message as one line of JSON.
type jsonFormatter struct {
	writer io.Writer
}

func (f *jsonFormatter) Format(m *blackboard.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message event: %w", err)
	}
	_, err = fmt.Fprintf(f.writer, "%s\n", string(data))
	return err
}

// newFormatter returns the formatter for the requested output format.
func newFormatter(format OutputFormat, w io.Writer) (formatter, error) {
	switch format {
	case OutputFormatDefault:
		return &defaultFormatter{writer: w}, nil
	case OutputFormatJSON:
		return &jsonFormatter{writer: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// StreamActivity streams message events for the client's session to the
// writer. When sinceMs is non-zero, messages created at or after that time
// are replayed first, then live events follow. Blocks until the context is
// cancelled or the subscription closes.
//
// The subscription starts before the replay so no event falls in the gap
// between the two.
func StreamActivity(ctx context.Context, bbClient *blackboard.Client, format OutputFormat, sinceMs int64, w io.Writer) error {
	f, err := newFormatter(format, w)
	if err != nil {
		return err
	}

	sub, err := bbClient.SubscribeMessages(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to message events: %w", err)
	}
	defer sub.Close()

	seen := make(map[string]bool)
	if sinceMs > 0 {
		replayed, err := replay(ctx, bbClient, f, sinceMs)
		if err != nil {
			return err
		}
		for _, id := range replayed {
			seen[id] = true
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case m, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if seen[m.ID] {
				continue
			}
			if err := f.Format(m); err != nil {
				return err
			}

		case subErr, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "⚠️  Skipping malformed message event: %v\n", subErr)
		}
	}
}

// preview returns the first non-empty line of the freeform content,
// truncated for single-line stream output.
func preview(freeform string) string {
	var firstLine string
	for _, line := range strings.Split(freeform, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			firstLine = trimmed
			break
		}
	}

	if len(firstLine) > 60 {
		return firstLine[:57] + "..."
	}
	return firstLine
}

// replay writes every existing message created at or after sinceMs, across
// the public log and every private space, in chronological order. Returns
// the IDs written so the live stream can suppress duplicates.
func replay(ctx context.Context, bbClient *blackboard.Client, f formatter, sinceMs int64) ([]string, error) {
	spaces, err := bbClient.PrivateSpaceKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list private spaces: %w", err)
	}

	var msgs []*blackboard.Message
	for _, scope := range append([]string{blackboard.ScopePublic}, spaces...) {
		scopeMsgs, err := bbClient.ReadScope(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to read scope '%s': %w", scope, err)
		}
		msgs = append(msgs, scopeMsgs...)
	}

	criteria := &filter.Criteria{SinceTimestampMs: sinceMs}
	msgs = criteria.Apply(msgs)

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAtMs < msgs[j].CreatedAtMs
	})

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if err := f.Format(m); err != nil {
			return nil, err
		}
		ids = append(ids, m.ID)
	}

	return ids, nil
}
