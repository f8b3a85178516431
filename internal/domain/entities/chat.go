package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatRole identifies which side of the conversation produced a message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// IsValid checks if the chat role is valid
func (r ChatRole) IsValid() bool {
	switch r {
	case ChatRoleUser, ChatRoleAssistant:
		return true
	}
	return false
}

// Chat is one persisted conversation turn. Assistant turns carry the
// retrieval references and token usage in Metadata.
type Chat struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ConversationID uuid.UUID      `json:"conversation_id" gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Message        string         `json:"message" gorm:"type:text;not null"`
	Role           ChatRole       `json:"role" gorm:"type:varchar(20);not null"`
	TokensUsed     int            `json:"tokens_used" gorm:"default:0"`
	Metadata       datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`
	Timestamp      time.Time      `json:"timestamp" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for GORM
func (Chat) TableName() string {
	return "chats"
}
