package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/adapter/repository"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/course"
)

// AdminService covers the administrative operations this handler exposes
type AdminService interface {
	Stats(ctx context.Context) (*course.PlatformStats, error)
	ResetMessageCount(ctx context.Context, userID uuid.UUID) error
	SetUserAccess(ctx context.Context, userID uuid.UUID, active bool) (*entities.User, error)
	UserDetails(ctx context.Context, userID uuid.UUID) (*course.UserDetails, error)
}

// Admin handles platform administration endpoints
type Admin struct {
	service     AdminService
	userRepo    *repository.UserRepository
	logger      *zap.Logger
	environment string
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service AdminService, userRepo *repository.UserRepository, logger *zap.Logger, environment string) *Admin {
	return &Admin{
		service:     service,
		userRepo:    userRepo,
		logger:      logger,
		environment: environment,
	}
}

// Stats returns platform-wide counters and the live index state
// GET /v1/admin/stats
func (h *Admin) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, stats)
}

// ListUsers returns registered accounts
// GET /v1/admin/users
func (h *Admin) ListUsers(c echo.Context) error {
	limit, offset := pagination(c)
	users, err := h.userRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDatabase(err), h.environment)
	}
	return HandleSuccess(h.logger, c, users)
}

// GetUser returns one account with its course grants
// GET /v1/admin/users/:id
func (h *Admin) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid user id"), h.environment)
	}

	details, err := h.service.UserDetails(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, details)
}

type setUserAccessRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetUserAccess blocks or unblocks an account
// PATCH /v1/admin/users/:id/access
func (h *Admin) SetUserAccess(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid user id"), h.environment)
	}

	var req setUserAccessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if req.IsActive == nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("is_active is required"), h.environment)
	}

	user, err := h.service.SetUserAccess(c.Request().Context(), id, *req.IsActive)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, user)
}

// ResetMessages clears a user's message allowance
// POST /v1/admin/users/:id/reset-messages
func (h *Admin) ResetMessages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid user id"), h.environment)
	}

	if err := h.service.ResetMessageCount(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, map[string]string{"user_id": id.String(), "status": "reset"})
}
