package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CourseDifficulty defines course difficulty levels
type CourseDifficulty string

const (
	DifficultyBeginner     CourseDifficulty = "beginner"
	DifficultyIntermediate CourseDifficulty = "intermediate"
	DifficultyAdvanced     CourseDifficulty = "advanced"
)

// IsValid checks if the difficulty is valid
func (d CourseDifficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Course represents a video course whose transcripts are indexed for
// retrieval. The ID is a human-readable identifier such as "node101".
type Course struct {
	ID          string           `json:"id" gorm:"type:varchar(100);primary_key"`
	Title       string           `json:"title" gorm:"type:varchar(255);not null"`
	Description *string          `json:"description,omitempty" gorm:"type:text"`
	Topic       string           `json:"topic" gorm:"type:varchar(100);not null;index"`
	Difficulty  CourseDifficulty `json:"difficulty" gorm:"type:varchar(50);default:'beginner';not null"`
	Duration    *int             `json:"duration,omitempty"` // minutes
	Price       float64          `json:"price" gorm:"type:decimal(10,2);default:0"`
	IsActive    bool             `json:"is_active" gorm:"default:true;not null;index"`

	// Counters maintained by the upload path
	VttFileCount int `json:"vtt_file_count" gorm:"default:0;not null"`
	VectorCount  int `json:"vector_count" gorm:"default:0;not null"`

	Metadata  datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`
	CreatedBy uuid.UUID      `json:"created_by" gorm:"type:uuid;not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Course) TableName() string {
	return "courses"
}
