package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements driven.SettingsStore using PostgreSQL.
// The LLM API key is encrypted with AES-256-GCM before it touches the
// database; everything else is stored in the clear.
type SettingsStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewSettingsStore creates a new SettingsStore
func NewSettingsStore(db *DB, encryptor *SecretEncryptor) *SettingsStore {
	return &SettingsStore{db: db, encryptor: encryptor}
}

// Get retrieves the chat settings, or defaults if none saved yet
func (s *SettingsStore) Get(ctx context.Context) (*domain.ChatSettings, error) {
	query := `
		SELECT llm_provider, llm_model, llm_api_key, llm_base_url,
			   temperature, max_tokens, history_window,
			   rag_enabled, rag_top_k, guest_ttl_hours,
			   updated_at, updated_by
		FROM chat_settings
		WHERE id = 1
	`

	var settings domain.ChatSettings
	var provider string
	var apiKeyBlob []byte
	var baseURL, updatedBy sql.NullString

	err := s.db.QueryRowContext(ctx, query).Scan(
		&provider,
		&settings.LLM.Model,
		&apiKeyBlob,
		&baseURL,
		&settings.Temperature,
		&settings.MaxTokens,
		&settings.HistoryWindow,
		&settings.RAGEnabled,
		&settings.RAGTopK,
		&settings.GuestTTLHours,
		&settings.UpdatedAt,
		&updatedBy,
	)
	if err == sql.ErrNoRows {
		return domain.DefaultChatSettings(), nil
	}
	if err != nil {
		return nil, err
	}

	settings.LLM.Provider = domain.LLMProvider(provider)
	settings.LLM.BaseURL = baseURL.String
	settings.UpdatedBy = updatedBy.String

	if len(apiKeyBlob) > 0 {
		apiKey, err := s.encryptor.DecryptString(apiKeyBlob)
		if err != nil {
			return nil, fmt.Errorf("decrypt llm api key: %w", err)
		}
		settings.LLM.APIKey = apiKey
	}

	return &settings, nil
}

// Save persists the chat settings
func (s *SettingsStore) Save(ctx context.Context, settings *domain.ChatSettings) error {
	var apiKeyBlob []byte
	if settings.LLM.APIKey != "" {
		blob, err := s.encryptor.EncryptString(settings.LLM.APIKey)
		if err != nil {
			return fmt.Errorf("encrypt llm api key: %w", err)
		}
		apiKeyBlob = blob
	}

	query := `
		INSERT INTO chat_settings (id, llm_provider, llm_model, llm_api_key, llm_base_url,
								   temperature, max_tokens, history_window,
								   rag_enabled, rag_top_k, guest_ttl_hours,
								   updated_at, updated_by)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			llm_provider = EXCLUDED.llm_provider,
			llm_model = EXCLUDED.llm_model,
			llm_api_key = EXCLUDED.llm_api_key,
			llm_base_url = EXCLUDED.llm_base_url,
			temperature = EXCLUDED.temperature,
			max_tokens = EXCLUDED.max_tokens,
			history_window = EXCLUDED.history_window,
			rag_enabled = EXCLUDED.rag_enabled,
			rag_top_k = EXCLUDED.rag_top_k,
			guest_ttl_hours = EXCLUDED.guest_ttl_hours,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`

	settings.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, query,
		string(settings.LLM.Provider),
		settings.LLM.Model,
		apiKeyBlob,
		NullString(nullableString(settings.LLM.BaseURL)),
		settings.Temperature,
		settings.MaxTokens,
		settings.HistoryWindow,
		settings.RAGEnabled,
		settings.RAGTopK,
		settings.GuestTTLHours,
		settings.UpdatedAt,
		NullString(nullableString(settings.UpdatedBy)),
	)
	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
