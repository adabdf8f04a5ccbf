package driven

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// SettingsStore persists the instance-wide chat settings (PostgreSQL).
// The LLM API key is encrypted at rest.
type SettingsStore interface {
	// Get retrieves the chat settings, or defaults if none saved yet
	Get(ctx context.Context) (*domain.ChatSettings, error)

	// Save persists the chat settings
	Save(ctx context.Context, settings *domain.ChatSettings) error
}
