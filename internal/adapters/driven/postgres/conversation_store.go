package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore implements driven.ConversationStore using PostgreSQL.
// Only signed-in conversations land here; guest threads live in Redis.
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Save creates or updates a conversation
func (s *ConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_id, title, provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			provider = EXCLUDED.provider,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		conv.ID,
		conv.UserID,
		conv.Title,
		NullString(nullableString(string(conv.Provider))),
		conv.CreatedAt,
		conv.UpdatedAt,
	)
	return err
}

// Get retrieves a conversation by ID
func (s *ConversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `
		SELECT id, user_id, title, provider, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`

	var conv domain.Conversation
	var provider sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.Title,
		&provider,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	conv.Provider = domain.LLMProvider(provider.String)
	return &conv, nil
}

// ListByOwner lists conversations for a user, newest first
func (s *ConversationStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Conversation, error) {
	query := `
		SELECT id, user_id, title, provider, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		var provider sql.NullString

		err := rows.Scan(
			&conv.ID,
			&conv.UserID,
			&conv.Title,
			&provider,
			&conv.CreatedAt,
			&conv.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		conv.Provider = domain.LLMProvider(provider.String)
		convs = append(convs, &conv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return convs, nil
}

// Delete removes a conversation; messages cascade
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// AppendMessage adds a message to a conversation and bumps its UpdatedAt
func (s *ConversationStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, conversation_id, role, content, provider, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			msg.ID,
			msg.ConversationID,
			string(msg.Role),
			msg.Content,
			NullString(nullableString(string(msg.Provider))),
			msg.CreatedAt,
		)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
			time.Now(), msg.ConversationID,
		)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// GetMessages returns the most recent messages in chronological order.
// limit <= 0 returns the full history.
func (s *ConversationStore) GetMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, provider, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at
	`
	args := []any{conversationID}

	if limit > 0 {
		// Take the newest N, then flip back to chronological order
		query = `
			SELECT id, conversation_id, role, content, provider, created_at
			FROM (
				SELECT id, conversation_id, role, content, provider, created_at
				FROM messages
				WHERE conversation_id = $1
				ORDER BY created_at DESC
				LIMIT $2
			) recent
			ORDER BY created_at
		`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var msg domain.Message
		var provider sql.NullString

		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.Role,
			&msg.Content,
			&provider,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		msg.Provider = domain.LLMProvider(provider.String)
		msgs = append(msgs, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return msgs, nil
}

// UpdateTitle sets the conversation title
func (s *ConversationStore) UpdateTitle(ctx context.Context, id string, title string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title = $1, updated_at = $2 WHERE id = $3`,
		title, time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
