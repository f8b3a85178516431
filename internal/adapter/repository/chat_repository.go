package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
)

// ChatRepository implements chat-turn persistence using GORM
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{
		db: db,
	}
}

// Create persists a chat turn
func (r *ChatRepository) Create(ctx context.Context, chat *entities.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// ListByConversation returns all turns of a conversation, oldest first
func (r *ChatRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*entities.Chat, error) {
	var chats []*entities.Chat
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return chats, nil
}

// CountByConversation returns the number of turns in a conversation
func (r *ChatRepository) CountByConversation(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Chat{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return count, nil
}
