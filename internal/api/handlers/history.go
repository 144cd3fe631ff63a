package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/api/middleware"
	"github.com/shopchat/shopchat-backend/internal/repository"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// HistoryHandler serves the paginated per-user conversation view.
type HistoryHandler struct {
	history repository.HistoryStore
	logger  *logrus.Logger
}

func NewHistoryHandler(history repository.HistoryStore, logger *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// GetHistory lists the authenticated user's past conversations, newest first.
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	rc := middleware.FromCtx(c)
	if !rc.Authenticated() {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	conversations, err := h.history.GetUserConversations(c.Context(), rc.UserID, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Loading conversations failed")
		return fiber.NewError(fiber.StatusInternalServerError, "could not load history")
	}

	return c.JSON(fiber.Map{
		"conversations": conversations,
		"limit":         limit,
		"offset":        offset,
	})
}
