package handler

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/http/middleware"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/conversation"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/validator"
)

// Conversation handles question answering, threads and archives
type Conversation struct {
	conversationService *conversation.Service
	validator           *validator.CustomValidator
	logger              *zap.Logger
	environment         string
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *conversation.Service, validator *validator.CustomValidator, logger *zap.Logger, environment string) *Conversation {
	return &Conversation{
		conversationService: conversationService,
		validator:           validator,
		logger:              logger,
		environment:         environment,
	}
}

// Ask answers a question against the caller's accessible courses
// POST /v1/ask
func (h *Conversation) Ask(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	var req conversation.AskRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()), h.environment)
	}

	resp, err := h.conversationService.Ask(c.Request().Context(), user, &req)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, resp)
}

type createConversationRequest struct {
	Title string `json:"title" validate:"max=255"`
}

// Create starts a new conversation
// POST /v1/conversations
func (h *Conversation) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}

	created, err := h.conversationService.Create(c.Request().Context(), user.ID, req.Title)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, created)
}

// List returns the caller's conversations
// GET /v1/conversations
func (h *Conversation) List(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	limit, offset := pagination(c)
	conversations, err := h.conversationService.List(c.Request().Context(), user.ID, limit, offset)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, conversations)
}

// Get returns one conversation with its messages
// GET /v1/conversations/:id
func (h *Conversation) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid conversation id"), h.environment)
	}

	found, err := h.conversationService.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, found)
}

// Rename updates a conversation's title
// PATCH /v1/conversations/:id
func (h *Conversation) Rename(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid conversation id"), h.environment)
	}

	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if req.Title == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("title is required"), h.environment)
	}

	updated, err := h.conversationService.Rename(c.Request().Context(), user.ID, id, req.Title)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, updated)
}

// Delete deactivates a conversation
// DELETE /v1/conversations/:id
func (h *Conversation) Delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid conversation id"), h.environment)
	}

	if err := h.conversationService.Delete(c.Request().Context(), user.ID, id); err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, map[string]string{"id": id.String(), "status": "deleted"})
}

// Archive snapshots a conversation into the archive
// POST /v1/archives
func (h *Conversation) Archive(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	var req conversation.ArchiveRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()), h.environment)
	}

	archive, err := h.conversationService.Archive(c.Request().Context(), user.ID, &req)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, archive)
}

// ListArchives returns the caller's archives
// GET /v1/archives
func (h *Conversation) ListArchives(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	limit, offset := pagination(c)
	archives, err := h.conversationService.ListArchives(c.Request().Context(), user.ID, limit, offset)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, archives)
}

// GetArchive returns one archive and its messages
// GET /v1/archives/:id
func (h *Conversation) GetArchive(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	id, err := parseUint(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid archive id"), h.environment)
	}

	archive, messages, err := h.conversationService.GetArchive(c.Request().Context(), user.ID, id)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{
		"archive":  archive,
		"messages": messages,
	})
}

// RestoreArchive brings an archived conversation back to the active list
// POST /v1/archives/:id/restore
func (h *Conversation) RestoreArchive(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	id, err := parseUint(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid archive id"), h.environment)
	}

	restored, err := h.conversationService.RestoreArchive(c.Request().Context(), user.ID, id)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, restored)
}

// DeleteArchive deactivates an archive
// DELETE /v1/archives/:id
func (h *Conversation) DeleteArchive(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	id, err := parseUint(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid archive id"), h.environment)
	}

	if err := h.conversationService.DeleteArchive(c.Request().Context(), user.ID, id); err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, map[string]string{"status": "deleted"})
}

// pagination reads limit and offset query parameters with sane defaults
func pagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint(v), err
}
