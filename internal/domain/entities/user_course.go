package entities

import (
	"time"

	"github.com/google/uuid"
)

// AccessType describes how a user obtained course access
type AccessType string

const (
	AccessPurchased AccessType = "purchased"
	AccessGranted   AccessType = "granted"
	AccessTrial     AccessType = "trial"
)

// IsValid checks if the access type is valid
func (a AccessType) IsValid() bool {
	switch a {
	case AccessPurchased, AccessGranted, AccessTrial:
		return true
	}
	return false
}

// UserCourse is an access grant linking a user to a course. The set of a
// user's active grants forms the accessible course set used as the retrieval
// filter.
type UserCourse struct {
	ID         uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_course"`
	CourseID   string     `json:"course_id" gorm:"type:varchar(100);not null;index;uniqueIndex:idx_user_course"`
	AccessType AccessType `json:"access_type" gorm:"type:varchar(50);default:'granted';not null"`
	GrantedBy  *uuid.UUID `json:"granted_by,omitempty" gorm:"type:uuid"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" gorm:"type:timestamp"`
	IsActive   bool       `json:"is_active" gorm:"default:true;not null"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID;references:ID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (UserCourse) TableName() string {
	return "user_courses"
}

// IsExpired reports whether the grant has lapsed
func (uc *UserCourse) IsExpired(now time.Time) bool {
	return uc.ExpiresAt != nil && now.After(*uc.ExpiresAt)
}
