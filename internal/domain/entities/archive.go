package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Archive is a snapshot record of an archived conversation
type Archive struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_archive_user"`
	ConversationID uuid.UUID      `json:"conversation_id" gorm:"type:uuid;not null;index"`
	Title          string         `json:"title" gorm:"type:varchar(255);not null"`
	Description    *string        `json:"description,omitempty" gorm:"type:text"`
	Tags           datatypes.JSON `json:"tags,omitempty" gorm:"type:jsonb;default:'[]'"`
	MessageCount   int            `json:"message_count" gorm:"default:0;not null"`
	ArchivedAt     time.Time      `json:"archived_at" gorm:"not null;index"`
	LastAccessedAt *time.Time     `json:"last_accessed_at,omitempty" gorm:"type:timestamp"`
	IsActive       bool           `json:"is_active" gorm:"default:true;not null;index:idx_archive_user"`
	Metadata       datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Archive) TableName() string {
	return "archives"
}
