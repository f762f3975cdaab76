package board

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/moot/pkg/blackboard"
)

// FormatTable writes messages as a formatted table to the provided writer.
// Columns: ID (truncated), round, scope, kind, author, age and the first line
// of the freeform content. Returns the number of messages formatted.
func FormatTable(w io.Writer, msgs []*blackboard.Message, sessionName string) int {
	if len(msgs) == 0 {
		fmt.Fprintf(w, "No messages found for session '%s'\n", sessionName)
		return 0
	}

	fmt.Fprintf(w, "Messages for session '%s':\n\n", sessionName)

	fmt.Fprintf(w, "%-10s %-4s %-22s %-10s %-14s %-8s %s\n",
		"ID", "RND", "SCOPE", "KIND", "AUTHOR", "AGE", "CONTENT")
	fmt.Fprintf(w, "%-10s %-4s %-22s %-10s %-14s %-8s %s\n",
		"----------", "----", "----------------------", "----------", "--------------", "--------", "----------------------------------------")

	for _, m := range msgs {
		fmt.Fprintf(w, "%-10s %-4d %-22s %-10s %-14s %-8s %s\n",
			formatID(m.ID),
			m.Round,
			formatScope(m.Scope),
			string(m.Kind),
			formatAuthor(m.Author),
			formatTimestamp(m.CreatedAtMs),
			formatContent(m.Freeform),
		)
	}

	countMsg := "message"
	if len(msgs) != 1 {
		countMsg = "messages"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(msgs), countMsg)

	return len(msgs)
}

// FormatJSONL writes messages as line-delimited JSON to the provided writer.
// Each message is written as a single JSON object on its own line, which
// makes the output easy to process with tools like jq.
func FormatJSONL(w io.Writer, msgs []*blackboard.Message) error {
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal message to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes a single message as pretty-printed JSON to the
// provided writer. Used in get mode to display complete message details.
func FormatSingleJSON(w io.Writer, msg *blackboard.Message) error {
	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	fmt.Fprintln(w)

	return nil
}

// formatID truncates a message ID to the first 8 characters for compact display.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatScope truncates long private space keys for table display.
func formatScope(scope string) string {
	if len(scope) > 22 {
		return scope[:19] + "..."
	}
	return scope
}

// formatContent truncates freeform content to its first non-empty line with
// max 40 characters for table display. Empty content returns "-".
func formatContent(freeform string) string {
	if freeform == "" {
		return "-"
	}

	var firstLine string
	for _, line := range strings.Split(freeform, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			firstLine = trimmed
			break
		}
	}

	if firstLine == "" {
		return "-"
	}

	if len(firstLine) > 40 {
		return firstLine[:37] + "..."
	}

	return firstLine
}

// formatAuthor formats the author field for table display. Empty values
// return "-".
func formatAuthor(author string) string {
	if author == "" {
		return "-"
	}
	return author
}

// formatTimestamp formats a Unix millisecond timestamp as a relative age
// like "2m ago" or "1h ago".
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	t := time.Unix(timestampMs/1000, (timestampMs%1000)*1000000)
	diff := time.Since(t)

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
}
