package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

// UserCourseRepository implements course access-grant persistence using GORM
type UserCourseRepository struct {
	db *gorm.DB
}

// NewUserCourseRepository creates a new user-course repository
func NewUserCourseRepository(db *gorm.DB) *UserCourseRepository {
	return &UserCourseRepository{
		db: db,
	}
}

// Grant creates or reactivates an access grant for a user on a course
func (r *UserCourseRepository) Grant(ctx context.Context, access *entities.UserCourse) error {
	var existing entities.UserCourse
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", access.UserID, access.CourseID).
		First(&existing).Error
	if err == nil {
		existing.AccessType = access.AccessType
		existing.GrantedBy = access.GrantedBy
		existing.ExpiresAt = access.ExpiresAt
		existing.IsActive = true
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update course access: %w", err)
		}
		*access = existing
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to check course access: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(access).Error; err != nil {
		return fmt.Errorf("failed to grant course access: %w", err)
	}
	return nil
}

// Revoke deactivates a user's access to a course
func (r *UserCourseRepository) Revoke(ctx context.Context, userID uuid.UUID, courseID string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.UserCourse{}).
		Where("user_id = ? AND course_id = ? AND is_active = ?", userID, courseID, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to revoke course access: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrCourseAccessMissing
	}
	return nil
}

// ListAccessibleCourseIDs returns the IDs of every course the user holds an
// active, unexpired grant on. Admins bypass this at the usecase layer.
func (r *UserCourseRepository) ListAccessibleCourseIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var ids []string
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Model(&entities.UserCourse{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list accessible courses: %w", err)
	}
	return ids, nil
}

// ListByUser returns all of a user's access grants with the course preloaded
func (r *UserCourseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.UserCourse, error) {
	var grants []*entities.UserCourse
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to list user courses: %w", err)
	}
	return grants, nil
}
