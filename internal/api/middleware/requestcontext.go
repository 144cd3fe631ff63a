package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/models"
)

const contextKey = "request_context"

// RequestContext builds the explicit caller identity for every request: the
// authenticated user id when a valid bearer token is present, plus client IP
// and user agent. Downstream code reads it from locals instead of ambient
// request state.
func RequestContext(jwtSecret string, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := models.RequestContext{
			ClientIP:  c.IP(),
			UserAgent: c.Get("User-Agent"),
		}

		if token := extractBearer(c.Get("Authorization")); token != "" {
			userID, err := userIDFromToken(token, jwtSecret)
			if err != nil {
				logger.WithError(err).Debug("Bearer token rejected")
			} else {
				rc.UserID = userID
			}
		}

		c.Locals(contextKey, rc)
		return c.Next()
	}
}

// FromCtx returns the request context stored by the middleware.
func FromCtx(c *fiber.Ctx) models.RequestContext {
	if rc, ok := c.Locals(contextKey).(models.RequestContext); ok {
		return rc
	}
	return models.RequestContext{ClientIP: c.IP(), UserAgent: c.Get("User-Agent")}
}

func extractBearer(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}

func userIDFromToken(tokenString, secret string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected claims type")
	}
	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return 0, fmt.Errorf("missing uid claim")
	}
	return int64(uid), nil
}
