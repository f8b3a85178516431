package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

// ArchiveRepository implements conversation-archive persistence using GORM
type ArchiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new archive repository
func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{
		db: db,
	}
}

// Create creates a new archive record
func (r *ArchiveRepository) Create(ctx context.Context, archive *entities.Archive) error {
	if err := r.db.WithContext(ctx).Create(archive).Error; err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

// FindByID finds an active archive by ID
func (r *ArchiveRepository) FindByID(ctx context.Context, id uint) (*entities.Archive, error) {
	var archive entities.Archive
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&archive).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, entities.ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to find archive: %w", err)
	}
	return &archive, nil
}

// ListByUser returns a user's active archives, most recently archived first
func (r *ArchiveRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Archive, error) {
	var archives []*entities.Archive
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("archived_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	return archives, nil
}

// TouchAccessed records when an archive was last opened
func (r *ArchiveRepository) TouchAccessed(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Archive{}).
		Where("id = ?", id).
		Update("last_accessed_at", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("failed to touch archive: %w", err)
	}
	return nil
}

// Delete soft-deletes an archive by deactivating it
func (r *ArchiveRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Archive{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to delete archive: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrArchiveNotFound
	}
	return nil
}
