package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/adapter/repository"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/jwt"
)

const (
	// UserContextKey is the Echo context key for the authenticated user
	UserContextKey = "user"
)

// AuthMiddleware validates bearer tokens and enforces role and usage rules
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	userRepo   *repository.UserRepository
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *jwt.Manager, userRepo *repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		userRepo:   userRepo,
	}
}

// Authenticate validates the JWT bearer token, loads the account and sets it
// into the Echo context
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return respondAppError(c, errors.ErrUnauthenticated())
		}

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			if err == jwt.ErrExpiredToken {
				return respondAppError(c, errors.ErrTokenExpired())
			}
			return respondAppError(c, errors.ErrInvalidToken())
		}

		user, err := m.userRepo.FindByID(c.Request().Context(), claims.UserID)
		if err != nil {
			return respondAppError(c, errors.ErrInvalidToken())
		}
		if !user.IsActive {
			return respondAppError(c, errors.ErrAccountBlocked())
		}

		c.Set(UserContextKey, user)
		return next(c)
	}
}

// RequireAdmin rejects requests from non-admin accounts. Must run after
// Authenticate.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok {
			return respondAppError(c, errors.ErrUnauthenticated())
		}
		if !user.IsAdmin() {
			return respondAppError(c, errors.ErrPermissionDenied("admin access"))
		}
		return next(c)
	}
}

// MessageLimit blocks non-admin users who have exhausted their lifetime
// message allowance. Must run after Authenticate.
func (m *AuthMiddleware) MessageLimit(limit int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return respondAppError(c, errors.ErrUnauthenticated())
			}
			if !user.IsAdmin() && user.MessageCount >= limit {
				return respondAppError(c, errors.ErrMessageLimitReached(limit))
			}
			return next(c)
		}
	}
}

// CurrentUser retrieves the authenticated user from the Echo context
func CurrentUser(c echo.Context) (*entities.User, bool) {
	user, ok := c.Get(UserContextKey).(*entities.User)
	return user, ok
}

func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func respondAppError(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
