package ai

import (
	"context"
)

// TextService is the interface for AI text generation backends
type TextService interface {
	// Summarize produces a concise summary of the given note content
	Summarize(ctx context.Context, content string) (string, error)

	// SuggestTasks extracts actionable task descriptions from note content,
	// one suggestion per returned element
	SuggestTasks(ctx context.Context, content string) ([]string, error)
}
