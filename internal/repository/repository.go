package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopchat/shopchat-backend/internal/models"
)

// HistoryStore is the append-only conversation transcript. Turns within a
// session are totally ordered by creation time and never mutated.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, userID *int64, sender, content string) error
	GetHistory(ctx context.Context, sessionID string) ([]models.ConversationTurn, error)
	GetUserConversations(ctx context.Context, userID int64, limit, offset int) ([]Conversation, error)
}

// Conversation is one session's display view, used by the history endpoint.
type Conversation struct {
	SessionID string           `json:"session_id"`
	StartedAt time.Time        `json:"started_at"`
	Messages  []DisplayMessage `json:"messages"`
}

// DisplayMessage is one turn shaped for display.
type DisplayMessage struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayContent shapes a persisted turn for the history view: function
// calls collapse to a tool marker, function responses are hidden entirely.
// The second return reports whether the turn should be shown at all.
func DisplayContent(turn models.ConversationTurn) (string, bool) {
	switch turn.Sender {
	case models.SenderFunctionCall:
		var call struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(turn.Content), &call); err != nil || call.Name == "" {
			return "⚙ tool", true
		}
		return "⚙ " + call.Name, true
	case models.SenderFunctionResponse:
		return "", false
	default:
		return turn.Content, true
	}
}
