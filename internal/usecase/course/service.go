package course

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/adapter/repository"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/repositories"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/usecase/rag"
)

// CaptionArchive stores raw caption files for later re-indexing.
// Implementations are optional; a nil archive disables archival.
type CaptionArchive interface {
	SaveCaptionFile(ctx context.Context, courseID, fileName, content string) error
	GetCaptionFile(ctx context.Context, courseID, fileName string) (string, error)
	ListCaptionFiles(ctx context.Context, courseID string) ([]string, error)
	DeleteCourseCaptions(ctx context.Context, courseID string) error
}

// Service handles course management, access grants and caption ingestion
type Service struct {
	courseRepo     *repository.CourseRepository
	userRepo       *repository.UserRepository
	userCourseRepo *repository.UserCourseRepository
	ragService     *rag.Service
	vectorStore    repositories.VectorStore
	archive        CaptionArchive
	logger         *zap.Logger
}

// NewService creates a new course service
func NewService(
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	userCourseRepo *repository.UserCourseRepository,
	ragService *rag.Service,
	vectorStore repositories.VectorStore,
	archive CaptionArchive,
	logger *zap.Logger,
) *Service {
	return &Service{
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		userCourseRepo: userCourseRepo,
		ragService:     ragService,
		vectorStore:    vectorStore,
		archive:        archive,
		logger:         logger,
	}
}

// CreateCourseRequest carries a new course definition
type CreateCourseRequest struct {
	ID          string  `json:"id" validate:"required,min=3,max=100,alphanum"`
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
	Topic       string  `json:"topic" validate:"required,max=255"`
	Difficulty  string  `json:"difficulty" validate:"difficulty"`
	Duration    *int    `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// Create registers a new course
func (s *Service) Create(ctx context.Context, req *CreateCourseRequest, createdBy uuid.UUID) (*entities.Course, error) {
	id := strings.ToLower(strings.TrimSpace(req.ID))

	if _, err := s.courseRepo.FindByID(ctx, id); err == nil {
		return nil, errors.ErrCourseAlreadyExists(id)
	} else if err != entities.ErrCourseNotFound {
		return nil, errors.ErrDatabase(err)
	}

	difficulty := entities.CourseDifficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = entities.DifficultyBeginner
	}
	if !difficulty.IsValid() {
		return nil, errors.ErrInvalidArgument("invalid difficulty")
	}

	course := &entities.Course{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Topic:       req.Topic,
		Difficulty:  difficulty,
		Duration:    req.Duration,
		Price:       req.Price,
		IsActive:    true,
		CreatedBy:   createdBy,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, errors.ErrDatabase(err)
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("created_by", createdBy.String()),
	)
	return course, nil
}

// Get returns one course
func (s *Service) Get(ctx context.Context, id string) (*entities.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		if err == entities.ErrCourseNotFound {
			return nil, errors.ErrCourseNotFound(id)
		}
		return nil, errors.ErrDatabase(err)
	}
	return course, nil
}

// UpdateCourseRequest carries the mutable fields of a course. Only non-nil
// fields are applied.
type UpdateCourseRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string  `json:"description,omitempty"`
	Topic       *string  `json:"topic,omitempty" validate:"omitempty,max=255"`
	Difficulty  *string  `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
	Duration    *int     `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// Update modifies a course's metadata
func (s *Service) Update(ctx context.Context, id string, req *UpdateCourseRequest) (*entities.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		if err == entities.ErrCourseNotFound {
			return nil, errors.ErrCourseNotFound(id)
		}
		return nil, errors.ErrDatabase(err)
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Topic != nil {
		course.Topic = *req.Topic
	}
	if req.Difficulty != nil {
		difficulty := entities.CourseDifficulty(*req.Difficulty)
		if !difficulty.IsValid() {
			return nil, errors.ErrInvalidArgument("invalid difficulty")
		}
		course.Difficulty = difficulty
	}
	if req.Duration != nil {
		course.Duration = req.Duration
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, errors.ErrDatabase(err)
	}

	s.logger.Info("course updated", zap.String("course_id", course.ID))
	return course, nil
}

// List returns active courses
func (s *Service) List(ctx context.Context, limit, offset int) ([]*entities.Course, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	courses, err := s.courseRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return courses, nil
}

// Delete removes a course, its access grants, its indexed vectors and its
// archived caption files
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.courseRepo.FindByID(ctx, id); err != nil {
		if err == entities.ErrCourseNotFound {
			return errors.ErrCourseNotFound(id)
		}
		return errors.ErrDatabase(err)
	}

	if err := s.vectorStore.DeleteByCourse(ctx, id); err != nil {
		return errors.ErrVectorStoreUnavailable(err)
	}

	if s.archive != nil {
		if err := s.archive.DeleteCourseCaptions(ctx, id); err != nil {
			s.logger.Warn("failed to purge archived captions", zap.String("course_id", id), zap.Error(err))
		}
	}

	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabase(err)
	}

	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

// GrantAccessRequest carries an access grant for one user on one course
type GrantAccessRequest struct {
	UserID     uuid.UUID  `json:"user_id" validate:"required"`
	CourseID   string     `json:"course_id" validate:"required"`
	AccessType string     `json:"access_type" validate:"omitempty,oneof=purchased granted trial"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// GrantAccess gives a user access to a course
func (s *Service) GrantAccess(ctx context.Context, req *GrantAccessRequest, grantedBy uuid.UUID) (*entities.UserCourse, error) {
	if _, err := s.courseRepo.FindByID(ctx, req.CourseID); err != nil {
		if err == entities.ErrCourseNotFound {
			return nil, errors.ErrCourseNotFound(req.CourseID)
		}
		return nil, errors.ErrDatabase(err)
	}
	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		if err == entities.ErrUserNotFound {
			return nil, errors.ErrUserNotFound()
		}
		return nil, errors.ErrDatabase(err)
	}

	accessType := entities.AccessType(req.AccessType)
	if accessType == "" {
		accessType = entities.AccessGranted
	}
	if !accessType.IsValid() {
		return nil, errors.ErrInvalidArgument("invalid access type")
	}

	access := &entities.UserCourse{
		UserID:     req.UserID,
		CourseID:   req.CourseID,
		AccessType: accessType,
		GrantedBy:  &grantedBy,
		ExpiresAt:  req.ExpiresAt,
		IsActive:   true,
	}
	if err := s.userCourseRepo.Grant(ctx, access); err != nil {
		return nil, errors.ErrDatabase(err)
	}

	s.logger.Info("course access granted",
		zap.String("user_id", req.UserID.String()),
		zap.String("course_id", req.CourseID),
		zap.String("access_type", string(accessType)),
	)
	return access, nil
}

// RevokeAccess removes a user's access to a course
func (s *Service) RevokeAccess(ctx context.Context, userID uuid.UUID, courseID string) error {
	if err := s.userCourseRepo.Revoke(ctx, userID, courseID); err != nil {
		if err == entities.ErrCourseAccessMissing {
			return errors.ErrNotFound("course access")
		}
		return errors.ErrDatabase(err)
	}
	return nil
}

// ListUserCourses returns a user's access grants with courses preloaded
func (s *Service) ListUserCourses(ctx context.Context, userID uuid.UUID) ([]*entities.UserCourse, error) {
	grants, err := s.userCourseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return grants, nil
}

// AccessibleCourseIDs resolves the retrieval scope for a user. Admins see
// every active course; everyone else sees only their active, unexpired
// grants.
func (s *Service) AccessibleCourseIDs(ctx context.Context, user *entities.User) ([]string, error) {
	if user.IsAdmin() {
		courses, err := s.courseRepo.List(ctx, 1000, 0)
		if err != nil {
			return nil, errors.ErrDatabase(err)
		}
		ids := make([]string, len(courses))
		for i, c := range courses {
			ids[i] = c.ID
		}
		return ids, nil
	}

	ids, err := s.userCourseRepo.ListAccessibleCourseIDs(ctx, user.ID)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return ids, nil
}

// CaptionUpload is one caption file in an upload batch
type CaptionUpload struct {
	FileName string
	Content  string
	Section  string
}

// UploadReport summarizes an upload batch
type UploadReport struct {
	CourseID    string            `json:"courseId"`
	Files       []*rag.FileReport `json:"files"`
	TotalChunks int               `json:"totalChunks"`
}

// UploadCaptions ingests a batch of caption files for a course. Files are
// processed independently: one file's failure is reported per-file and never
// aborts its siblings.
func (s *Service) UploadCaptions(ctx context.Context, courseID string, uploads []CaptionUpload) (*UploadReport, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if err == entities.ErrCourseNotFound {
			return nil, errors.ErrCourseNotFound(courseID)
		}
		return nil, errors.ErrDatabase(err)
	}
	if len(uploads) == 0 {
		return nil, errors.ErrInvalidArgument("no caption files provided")
	}

	report := &UploadReport{CourseID: courseID, Files: make([]*rag.FileReport, 0, len(uploads))}
	okFiles := 0

	for _, upload := range uploads {
		if !strings.HasSuffix(strings.ToLower(upload.FileName), ".vtt") {
			report.Files = append(report.Files, &rag.FileReport{
				File:   upload.FileName,
				Status: "failed",
				Error:  "only .vtt caption files are supported",
			})
			continue
		}

		info := repositories.CourseInfo{
			CourseID:   course.ID,
			Topic:      course.Topic,
			Title:      course.Title,
			Difficulty: string(course.Difficulty),
			Section:    upload.Section,
		}
		fileReport, err := s.ragService.IngestFile(ctx, rag.IngestRequest{
			FileName: upload.FileName,
			Content:  upload.Content,
			Course:   info,
		})
		if err != nil {
			s.logger.Warn("caption file ingest failed",
				zap.String("course_id", courseID),
				zap.String("file", upload.FileName),
				zap.Error(err),
			)
			report.Files = append(report.Files, &rag.FileReport{
				File:   upload.FileName,
				Status: "failed",
				Error:  err.Error(),
			})
			continue
		}

		report.Files = append(report.Files, fileReport)
		report.TotalChunks += fileReport.Chunks
		okFiles++

		if s.archive != nil {
			if err := s.archive.SaveCaptionFile(ctx, courseID, upload.FileName, upload.Content); err != nil {
				s.logger.Warn("failed to archive caption file",
					zap.String("course_id", courseID),
					zap.String("file", upload.FileName),
					zap.Error(err),
				)
			}
		}
	}

	if okFiles > 0 {
		if err := s.courseRepo.AddIngestStats(ctx, courseID, okFiles, report.TotalChunks); err != nil {
			s.logger.Warn("failed to update course counters", zap.String("course_id", courseID), zap.Error(err))
		}
	}

	return report, nil
}

// ReindexCourse rebuilds a course's vectors from its archived caption files.
// The course's existing vectors are dropped first, so a partial failure leaves
// the index holding only the files that re-ingested cleanly. Section metadata
// is not archived and is absent from reindexed windows.
func (s *Service) ReindexCourse(ctx context.Context, courseID string) (*UploadReport, error) {
	if s.archive == nil {
		return nil, errors.ErrInvalidArgument("caption archival is disabled")
	}
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if err == entities.ErrCourseNotFound {
			return nil, errors.ErrCourseNotFound(courseID)
		}
		return nil, errors.ErrDatabase(err)
	}

	names, err := s.archive.ListCaptionFiles(ctx, courseID)
	if err != nil {
		return nil, errors.ErrStorage(err)
	}
	if len(names) == 0 {
		return nil, errors.ErrNotFound("archived caption files")
	}

	if err := s.vectorStore.DeleteByCourse(ctx, courseID); err != nil {
		return nil, errors.ErrVectorStoreUnavailable(err)
	}

	report := &UploadReport{CourseID: courseID, Files: make([]*rag.FileReport, 0, len(names))}
	okFiles := 0
	for _, name := range names {
		content, err := s.archive.GetCaptionFile(ctx, courseID, name)
		if err != nil {
			s.logger.Warn("failed to fetch archived caption file",
				zap.String("course_id", courseID),
				zap.String("file", name),
				zap.Error(err),
			)
			report.Files = append(report.Files, &rag.FileReport{File: name, Status: "failed", Error: err.Error()})
			continue
		}

		fileReport, err := s.ragService.IngestFile(ctx, rag.IngestRequest{
			FileName: name,
			Content:  content,
			Course: repositories.CourseInfo{
				CourseID:   course.ID,
				Topic:      course.Topic,
				Title:      course.Title,
				Difficulty: string(course.Difficulty),
			},
		})
		if err != nil {
			report.Files = append(report.Files, &rag.FileReport{File: name, Status: "failed", Error: err.Error()})
			continue
		}
		report.Files = append(report.Files, fileReport)
		report.TotalChunks += fileReport.Chunks
		okFiles++
	}

	course.VttFileCount = okFiles
	course.VectorCount = report.TotalChunks
	if err := s.courseRepo.Update(ctx, course); err != nil {
		s.logger.Warn("failed to update course counters", zap.String("course_id", courseID), zap.Error(err))
	}

	s.logger.Info("course reindexed",
		zap.String("course_id", courseID),
		zap.Int("files", okFiles),
		zap.Int("chunks", report.TotalChunks),
	)
	return report, nil
}

// IndexStats reports the vector index state, nil when unavailable
func (s *Service) IndexStats(ctx context.Context) *repositories.CollectionStats {
	return s.vectorStore.Stats(ctx)
}

// PlatformStats aggregates account and course counters with the live index
// state. Index stats degrade to null when the store is unreachable.
type PlatformStats struct {
	Users        int64                         `json:"users"`
	Courses      int64                         `json:"courses"`
	CaptionFiles int64                         `json:"captionFiles"`
	Vectors      int64                         `json:"vectors"`
	Index        *repositories.CollectionStats `json:"index"`
}

// Stats returns platform-wide counters for the admin dashboard
func (s *Service) Stats(ctx context.Context) (*PlatformStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	courses, files, vectors, err := s.courseRepo.Totals(ctx)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}
	return &PlatformStats{
		Users:        users,
		Courses:      courses,
		CaptionFiles: files,
		Vectors:      vectors,
		Index:        s.vectorStore.Stats(ctx),
	}, nil
}

// ResetMessageCount clears a user's message allowance (admin action)
func (s *Service) ResetMessageCount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if err == entities.ErrUserNotFound {
			return errors.ErrUserNotFound()
		}
		return errors.ErrDatabase(err)
	}
	if err := s.userRepo.ResetMessageCount(ctx, userID); err != nil {
		return errors.ErrDatabase(err)
	}
	return nil
}

// SetUserAccess blocks or unblocks an account. Blocked users fail
// authentication until an admin re-enables them.
func (s *Service) SetUserAccess(ctx context.Context, userID uuid.UUID, active bool) (*entities.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == entities.ErrUserNotFound {
			return nil, errors.ErrUserNotFound()
		}
		return nil, errors.ErrDatabase(err)
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.ErrDatabase(err)
	}

	s.logger.Info("user access toggled",
		zap.String("user_id", userID.String()),
		zap.Bool("is_active", active),
	)
	return user, nil
}

// GrantDetail is one access grant with its computed expiry state
type GrantDetail struct {
	*entities.UserCourse
	Expired bool `json:"expired"`
}

// UserDetails is one account with its course grants
type UserDetails struct {
	User   *entities.User `json:"user"`
	Grants []GrantDetail  `json:"grants"`
}

// UserDetails returns one account with its course grants
func (s *Service) UserDetails(ctx context.Context, userID uuid.UUID) (*UserDetails, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == entities.ErrUserNotFound {
			return nil, errors.ErrUserNotFound()
		}
		return nil, errors.ErrDatabase(err)
	}

	grants, err := s.userCourseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.ErrDatabase(err)
	}

	now := time.Now().UTC()
	details := &UserDetails{User: user, Grants: make([]GrantDetail, len(grants))}
	for i, grant := range grants {
		details.Grants[i] = GrantDetail{UserCourse: grant, Expired: grant.IsExpired(now)}
	}
	return details, nil
}
