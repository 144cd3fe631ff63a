package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shopchat/shopchat-backend/internal/models"
	"github.com/shopchat/shopchat-backend/internal/repository"
)

// HistoryRepository persists conversation turns in PostgreSQL.
type HistoryRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts one turn. Turns are never updated or deleted.
func (r *HistoryRepository) Append(ctx context.Context, sessionID string, userID *int64, sender, content string) error {
	turn := &models.ConversationTurn{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserID:    userID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO chat_turns (id, session_id, user_id, sender, content, created_at)
		VALUES (:id, :session_id, :user_id, :sender, :content, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, turn); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// GetHistory returns every turn of a session in creation order.
func (r *HistoryRepository) GetHistory(ctx context.Context, sessionID string) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	query := `SELECT * FROM chat_turns WHERE session_id = $1 ORDER BY created_at ASC, id ASC`

	if err := r.db.SelectContext(ctx, &turns, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return turns, nil
}

// GetUserConversations returns a user's sessions, newest first, each with its
// turns shaped for display.
func (r *HistoryRepository) GetUserConversations(ctx context.Context, userID int64, limit, offset int) ([]repository.Conversation, error) {
	type sessionRow struct {
		SessionID string    `db:"session_id"`
		StartedAt time.Time `db:"started_at"`
	}

	var sessions []sessionRow
	sessionQuery := `
		SELECT session_id, MIN(created_at) AS started_at
		FROM chat_turns
		WHERE user_id = $1
		GROUP BY session_id
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &sessions, sessionQuery, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	conversations := make([]repository.Conversation, 0, len(sessions))
	for _, s := range sessions {
		turns, err := r.GetHistory(ctx, s.SessionID)
		if err != nil {
			return nil, err
		}

		conv := repository.Conversation{
			SessionID: s.SessionID,
			StartedAt: s.StartedAt,
		}
		for _, turn := range turns {
			content, show := repository.DisplayContent(turn)
			if !show {
				continue
			}
			conv.Messages = append(conv.Messages, repository.DisplayMessage{
				Sender:    turn.Sender,
				Content:   content,
				CreatedAt: turn.CreatedAt,
			})
		}
		conversations = append(conversations, conv)
	}

	return conversations, nil
}
