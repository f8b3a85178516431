package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Conversation groups a user's chat turns under one thread
type Conversation struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Title         string         `json:"title" gorm:"type:varchar(255);default:'New Chat';not null"`
	IsActive      bool           `json:"is_active" gorm:"default:true;not null"`
	LastMessageAt *time.Time     `json:"last_message_at,omitempty" gorm:"type:timestamp;index"`
	Metadata      datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`

	Messages []Chat `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Conversation) TableName() string {
	return "conversations"
}

// NewConversation creates a conversation with default values
func NewConversation(userID uuid.UUID, title string) *Conversation {
	if title == "" {
		title = "New Chat"
	}
	now := time.Now()
	return &Conversation{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         title,
		IsActive:      true,
		LastMessageAt: &now,
	}
}
