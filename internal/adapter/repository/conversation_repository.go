package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

// ConversationRepository implements conversation persistence using GORM
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{
		db: db,
	}
}

// Create creates a new conversation
func (r *ConversationRepository) Create(ctx context.Context, conversation *entities.Conversation) error {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// FindByID finds a conversation, optionally with its messages preloaded
func (r *ConversationRepository) FindByID(ctx context.Context, id uuid.UUID, withMessages bool) (*entities.Conversation, error) {
	query := r.db.WithContext(ctx)
	if withMessages {
		query = query.Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		})
	}

	var conversation entities.Conversation
	if err := query.Where("id = ?", id).First(&conversation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, entities.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return &conversation, nil
}

// ListByUser returns a user's active conversations, most recently used first
func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Conversation, error) {
	var conversations []*entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("last_message_at DESC NULLS LAST").
		Limit(limit).
		Offset(offset).
		Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// Update updates a conversation
func (r *ConversationRepository) Update(ctx context.Context, conversation *entities.Conversation) error {
	if err := r.db.WithContext(ctx).Save(conversation).Error; err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return nil
}

// TouchLastMessage bumps the conversation's last activity marker
func (r *ConversationRepository) TouchLastMessage(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

// Restore reactivates a previously deactivated conversation
func (r *ConversationRepository) Restore(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("is_active", true)
	if res.Error != nil {
		return fmt.Errorf("failed to restore conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrConversationNotFound
	}
	return nil
}

// Delete soft-deletes a conversation by deactivating it
func (r *ConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to delete conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrConversationNotFound
	}
	return nil
}
