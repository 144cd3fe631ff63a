package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/models"
)

// Action identifies the kind of audit event.
type Action string

const (
	ActionSessionCreated  Action = "session.created"
	ActionSessionEnded    Action = "session.ended"
	ActionSessionRejected Action = "session.rejected"
	ActionRateLimited     Action = "rate.limited"
	ActionInputRejected   Action = "input.rejected"
	ActionChatCompleted   Action = "chat.completed"
	ActionChatTimedOut    Action = "chat.timed_out"
	ActionChatAborted     Action = "chat.aborted"
	ActionChatFailed      Action = "chat.failed"
	ActionToolFailed      Action = "tool.failed"
)

// nonCritical actions are suppressed unless the debug flag is set.
// Security-relevant and error kinds are always recorded.
var nonCritical = map[Action]bool{
	ActionChatCompleted: true,
}

// Repository persists audit rows.
type Repository interface {
	Insert(ctx context.Context, log *models.AuditLog) error
	GetBySession(ctx context.Context, sessionID string, limit int) ([]models.AuditLog, error)
}

// Trail records structured security and operational events, separate from the
// chat history. Persistence is best-effort; a failed write is logged and
// never fails the request that produced the event.
type Trail struct {
	repo   Repository
	logger *logrus.Logger
	debug  bool
}

func NewTrail(repo Repository, logger *logrus.Logger, debug bool) *Trail {
	return &Trail{repo: repo, logger: logger, debug: debug}
}

// Record writes one audit event.
func (t *Trail) Record(ctx context.Context, rc models.RequestContext, sessionID string, action Action, details models.JSONB) {
	if nonCritical[action] && !t.debug {
		return
	}

	row := &models.AuditLog{
		ID:        uuid.New(),
		SessionID: sessionID,
		Action:    string(action),
		Details:   details,
		IPAddress: rc.ClientIP,
		UserAgent: rc.UserAgent,
		CreatedAt: time.Now(),
	}
	if rc.Authenticated() {
		uid := rc.UserID
		row.UserID = &uid
	}

	if err := t.repo.Insert(ctx, row); err != nil {
		t.logger.WithError(err).WithField("action", action).Error("Audit write failed")
	}
}
