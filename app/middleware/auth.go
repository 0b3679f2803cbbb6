package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	dto "github.com/vibast-solutions/ms-go-mood-journal/app/dto/http"
	"github.com/vibast-solutions/ms-go-mood-journal/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	UserIDKey       = "user_id"
	SessionIDKey    = "session_id"
	SessionTokenKey = "session_token"
)

type sessionResolver interface {
	Resolve(ctx context.Context, tokenString string) (*service.Identity, error)
}

type AuthMiddleware struct {
	sessions   sessionResolver
	cookieName string
}

func NewAuthMiddleware(sessions sessionResolver, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookieName: cookieName}
}

// RequireSession accepts the session cookie or an Authorization bearer header.
func (m *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := m.sessionToken(c)
		if err != nil {
			logrus.WithError(err).Debug("Missing session credentials")
			return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
		}

		identity, err := m.sessions.Resolve(c.Request().Context(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrInvalidSession) {
				logrus.Debug("Invalid or expired session")
				return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid or expired session"})
			}
			logrus.WithError(err).Error("Failed to resolve session")
			return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(SessionIDKey, identity.SessionID)
		c.Set(SessionTokenKey, tokenString)

		return next(c)
	}
}

func (m *AuthMiddleware) sessionToken(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authentication required")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
