// Package board implements the message inspection surface behind the
// `moot board` command: listing, filtering and fetching blackboard messages.
package board

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dyluth/moot/internal/filter"
	"github.com/dyluth/moot/pkg/blackboard"
)

// OutputFormat specifies how to format the message list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated content
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete messages as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ListMessages retrieves messages for a session and writes them to the
// provided writer. An empty scope reads the public log plus every registered
// private space; a named scope reads just that log. Messages are sorted by
// creation time for chronological output across scopes.
func ListMessages(ctx context.Context, bbClient *blackboard.Client, scope string, format OutputFormat, criteria *filter.Criteria, w io.Writer) error {
	scopes, err := resolveScopes(ctx, bbClient, scope)
	if err != nil {
		return err
	}

	var msgs []*blackboard.Message
	for _, sc := range scopes {
		scopeMsgs, err := bbClient.ReadScope(ctx, sc)
		if err != nil {
			return fmt.Errorf("failed to read scope '%s': %w", sc, err)
		}
		msgs = append(msgs, scopeMsgs...)
	}

	if criteria != nil {
		msgs = criteria.Apply(msgs)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAtMs < msgs[j].CreatedAtMs
	})

	switch format {
	case OutputFormatDefault:
		FormatTable(w, msgs, bbClient.SessionName())
	case OutputFormatJSONL:
		if err := FormatJSONL(w, msgs); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}

// resolveScopes expands an empty scope selector into the public log plus
// every registered private space.
func resolveScopes(ctx context.Context, bbClient *blackboard.Client, scope string) ([]string, error) {
	if scope != "" {
		return []string{scope}, nil
	}

	spaces, err := bbClient.PrivateSpaceKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list private spaces: %w", err)
	}

	return append([]string{blackboard.ScopePublic}, spaces...), nil
}
