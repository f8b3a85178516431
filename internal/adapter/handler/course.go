package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/infrastructure/http/middleware"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/course"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/validator"
)

// maxCaptionFileSize caps one uploaded caption file at 10 MiB
const maxCaptionFileSize = 10 << 20

// Course handles course management and caption upload endpoints
type Course struct {
	courseService *course.Service
	validator     *validator.CustomValidator
	logger        *zap.Logger
	environment   string
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *course.Service, validator *validator.CustomValidator, logger *zap.Logger, environment string) *Course {
	return &Course{
		courseService: courseService,
		validator:     validator,
		logger:        logger,
		environment:   environment,
	}
}

// Create registers a new course (admin only)
// POST /v1/courses
func (h *Course) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	var req course.CreateCourseRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()), h.environment)
	}

	created, err := h.courseService.Create(c.Request().Context(), &req, user.ID)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, created)
}

// List returns active courses
// GET /v1/courses
func (h *Course) List(c echo.Context) error {
	limit, offset := pagination(c)
	courses, err := h.courseService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, courses)
}

// Get returns one course
// GET /v1/courses/:id
func (h *Course) Get(c echo.Context) error {
	found, err := h.courseService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, found)
}

// Update modifies a course's metadata (admin only)
// PATCH /v1/courses/:id
func (h *Course) Update(c echo.Context) error {
	var req course.UpdateCourseRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()), h.environment)
	}

	updated, err := h.courseService.Update(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, updated)
}

// Reindex rebuilds a course's vector index from its archived caption files
// (admin only)
// POST /v1/courses/:id/reindex
func (h *Course) Reindex(c echo.Context) error {
	report, err := h.courseService.ReindexCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, report)
}

// Delete removes a course and its indexed content (admin only)
// DELETE /v1/courses/:id
func (h *Course) Delete(c echo.Context) error {
	if err := h.courseService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, map[string]string{"id": c.Param("id"), "status": "deleted"})
}

// UploadCaptions ingests a multipart batch of .vtt caption files for a
// course (admin only). The optional "section" form field tags every file in
// the batch.
// POST /v1/courses/:id/captions
func (h *Course) UploadCaptions(c echo.Context) error {
	courseID := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}

	files := form.File["files"]
	if len(files) == 0 {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("no caption files provided"), h.environment)
	}
	section := c.FormValue("section")

	uploads := make([]course.CaptionUpload, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxCaptionFileSize {
			return HandleError(h.logger, c, errors.ErrInvalidUploadFile(fh.Filename), h.environment)
		}
		src, err := fh.Open()
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidUploadFile(fh.Filename), h.environment)
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidUploadFile(fh.Filename), h.environment)
		}
		uploads = append(uploads, course.CaptionUpload{
			FileName: fh.Filename,
			Content:  string(content),
			Section:  section,
		})
	}

	report, err := h.courseService.UploadCaptions(c.Request().Context(), courseID, uploads)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, report)
}

// GrantAccess grants a user access to a course (admin only)
// POST /v1/courses/access
func (h *Course) GrantAccess(c echo.Context) error {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	var req course.GrantAccessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}
	if err := h.validator.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()), h.environment)
	}

	access, err := h.courseService.GrantAccess(c.Request().Context(), &req, admin.ID)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, access)
}

// RevokeAccess removes a user's course access (admin only)
// DELETE /v1/courses/access
func (h *Course) RevokeAccess(c echo.Context) error {
	var req course.GrantAccessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(), h.environment)
	}

	if err := h.courseService.RevokeAccess(c.Request().Context(), req.UserID, req.CourseID); err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, map[string]string{"status": "revoked"})
}

// MyCourses returns the caller's course access grants
// GET /v1/courses/mine
func (h *Course) MyCourses(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated(), h.environment)
	}

	grants, err := h.courseService.ListUserCourses(c.Request().Context(), user.ID)
	if err != nil {
		return HandleError(h.logger, c, err, h.environment)
	}
	return HandleSuccess(h.logger, c, grants)
}

// IndexStats reports the vector index state (admin only)
// GET /v1/courses/index/stats
func (h *Course) IndexStats(c echo.Context) error {
	stats := h.courseService.IndexStats(c.Request().Context())
	if stats == nil {
		return HandleSuccess(h.logger, c, map[string]string{"status": "unavailable"})
	}
	return HandleSuccess(h.logger, c, stats)
}
