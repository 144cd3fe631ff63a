package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/agent"
	"github.com/shopchat/shopchat-backend/internal/api/middleware"
	"github.com/shopchat/shopchat-backend/internal/audit"
	"github.com/shopchat/shopchat-backend/internal/models"
	"github.com/shopchat/shopchat-backend/internal/ratelimit"
	"github.com/shopchat/shopchat-backend/internal/sanitize"
	"github.com/shopchat/shopchat-backend/internal/session"
)

// ChatHandler hosts the conversation endpoints: session lifecycle and the
// message entry point that drives the orchestration loop.
type ChatHandler struct {
	guard        *session.Guard
	limiter      *ratelimit.Limiter
	sanitizer    *sanitize.Sanitizer
	orchestrator *agent.Orchestrator
	trail        *audit.Trail
	logger       *logrus.Logger
}

func NewChatHandler(
	guard *session.Guard,
	limiter *ratelimit.Limiter,
	sanitizer *sanitize.Sanitizer,
	orchestrator *agent.Orchestrator,
	trail *audit.Trail,
	logger *logrus.Logger,
) *ChatHandler {
	return &ChatHandler{
		guard:        guard,
		limiter:      limiter,
		sanitizer:    sanitizer,
		orchestrator: orchestrator,
		trail:        trail,
		logger:       logger,
	}
}

// CreateSession issues a fresh session token bound to the caller.
func (h *ChatHandler) CreateSession(c *fiber.Ctx) error {
	rc := middleware.FromCtx(c)

	sessionID, err := h.guard.Create(rc)
	if err != nil {
		h.logger.WithError(err).Error("Session creation failed")
		return fiber.NewError(fiber.StatusInternalServerError, "could not create session")
	}

	h.trail.Record(c.Context(), rc, sessionID, audit.ActionSessionCreated, nil)
	return c.JSON(fiber.Map{"session_id": sessionID})
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SendMessage is the public processMessage entry point. Session, rate limit
// and sanitization gates run in order before the orchestrator; a failure in
// any gate resolves at this boundary and never reaches the loop.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	rc := middleware.FromCtx(c)

	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	if !h.guard.Validate(req.SessionID, rc) {
		h.trail.Record(c.Context(), rc, req.SessionID, audit.ActionSessionRejected, nil)
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session")
	}
	h.guard.Refresh(req.SessionID)

	if !h.limiter.CheckLimit(rc.Identifier()) {
		retryAfter := h.limiter.RetryAfter(rc.Identifier())
		h.trail.Record(c.Context(), rc, req.SessionID, audit.ActionRateLimited, nil)
		c.Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
		return fiber.NewError(fiber.StatusTooManyRequests, "too many messages, slow down")
	}

	clean, err := h.sanitizer.Sanitize(req.Message)
	if err != nil {
		var vErr *sanitize.ValidationError
		if errors.As(err, &vErr) {
			h.trail.Record(c.Context(), rc, req.SessionID, audit.ActionInputRejected, models.JSONB{
				"reason": vErr.Reason,
			})
			return fiber.NewError(fiber.StatusBadRequest, "message could not be accepted")
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid message")
	}

	result := h.orchestrator.ProcessMessage(c.Context(), rc, req.SessionID, clean)
	return c.JSON(result)
}

type endSessionRequest struct {
	SessionID string `json:"session_id"`
}

// EndSession destroys the caller's session.
func (h *ChatHandler) EndSession(c *fiber.Ctx) error {
	rc := middleware.FromCtx(c)

	var req endSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	if !h.guard.Validate(req.SessionID, rc) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session")
	}

	h.guard.End(req.SessionID)
	h.trail.Record(c.Context(), rc, req.SessionID, audit.ActionSessionEnded, nil)
	return c.JSON(fiber.Map{"ended": true})
}
