package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopchat/shopchat-backend/internal/models"
)

func TestDisplayContent(t *testing.T) {
	tests := []struct {
		name    string
		turn    models.ConversationTurn
		want    string
		visible bool
	}{
		{
			name:    "user text passes through",
			turn:    models.ConversationTurn{Sender: models.SenderUser, Content: "hi"},
			want:    "hi",
			visible: true,
		},
		{
			name:    "ai text passes through",
			turn:    models.ConversationTurn{Sender: models.SenderAI, Content: "hello"},
			want:    "hello",
			visible: true,
		},
		{
			name:    "function call collapses to tool marker",
			turn:    models.ConversationTurn{Sender: models.SenderFunctionCall, Content: `{"name":"view_cart","args":{}}`},
			want:    "⚙ view_cart",
			visible: true,
		},
		{
			name:    "corrupt function call still shows a marker",
			turn:    models.ConversationTurn{Sender: models.SenderFunctionCall, Content: "garbage"},
			want:    "⚙ tool",
			visible: true,
		},
		{
			name:    "function response is hidden",
			turn:    models.ConversationTurn{Sender: models.SenderFunctionResponse, Content: `{"name":"view_cart"}`},
			visible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, visible := DisplayContent(tt.turn)
			assert.Equal(t, tt.visible, visible)
			if tt.visible {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
