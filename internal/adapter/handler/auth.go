package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/http/middleware"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/auth"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/validator"
)

// Auth handles registration, login and token refresh endpoints
type Auth struct {
	authService *auth.Service
	validator   *validator.CustomValidator
	logger      *zap.Logger
	environment string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, validator *validator.CustomValidator, logger *zap.Logger, environment string) *Auth {
	return &Auth{
		authService: authService,
		validator:   validator,
		logger:      logger,
		environment: environment,
	}
}

// Signup registers a new account
// POST /v1/auth/signup
func (h *Auth) Signup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()), h.environment)
	}

	resp, err := h.authService.Signup(c.Request().Context(), &req)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, resp)
}

// Login authenticates by email and password
// POST /v1/auth/login
func (h *Auth) Login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()), h.environment)
	}

	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh exchanges a refresh token for a new token pair
// POST /v1/auth/refresh
func (h *Auth) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()), h.environment)
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, tokens)
}

// Me returns the authenticated user's profile
// GET /v1/auth/me
func (h *Auth) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	profile, err := h.authService.GetProfile(c.Request().Context(), user.ID)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, profile)
}
