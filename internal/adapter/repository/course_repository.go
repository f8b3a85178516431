package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

// CourseRepository implements course persistence using GORM
type CourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

// Create creates a new course
func (r *CourseRepository) Create(ctx context.Context, course *entities.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// FindByID finds a course by its slug-style ID, e.g. "node101"
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*entities.Course, error) {
	var course entities.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, entities.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return &course, nil
}

// List returns active courses ordered by creation time, newest first
func (r *CourseRepository) List(ctx context.Context, limit, offset int) ([]*entities.Course, error) {
	var courses []*entities.Course
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// Update updates a course
func (r *CourseRepository) Update(ctx context.Context, course *entities.Course) error {
	if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

// Delete removes a course and its access grants
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&entities.UserCourse{}).Error; err != nil {
			return fmt.Errorf("failed to delete course access: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&entities.Course{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete course: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return entities.ErrCourseNotFound
		}
		return nil
	})
}

// Totals sums the active courses' caption file and vector counters
func (r *CourseRepository) Totals(ctx context.Context) (courses, files, vectors int64, err error) {
	row := struct {
		Courses int64
		Files   int64
		Vectors int64
	}{}
	if err := r.db.WithContext(ctx).
		Model(&entities.Course{}).
		Select("COUNT(*) AS courses, COALESCE(SUM(vtt_file_count), 0) AS files, COALESCE(SUM(vector_count), 0) AS vectors").
		Where("is_active = ?", true).
		Scan(&row).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to sum course counters: %w", err)
	}
	return row.Courses, row.Files, row.Vectors, nil
}

// AddIngestStats bumps a course's caption file and vector counters after an
// upload batch
func (r *CourseRepository) AddIngestStats(ctx context.Context, id string, files, vectors int) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Course{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"vtt_file_count": gorm.Expr("vtt_file_count + ?", files),
			"vector_count":   gorm.Expr("vector_count + ?", vectors),
		}).Error; err != nil {
		return fmt.Errorf("failed to update course ingest stats: %w", err)
	}
	return nil
}
