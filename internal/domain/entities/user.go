package entities

import (
	"time"

	"github.com/google/uuid"
)

// User represents a learner or administrator account
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email    string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Role     UserRole  `json:"role" gorm:"type:varchar(50);default:'user';not null"`
	IsActive bool      `json:"is_active" gorm:"default:true;not null"`

	PasswordHash string `json:"-" gorm:"column:password_hash;type:text;not null"` // Never expose in JSON

	// Profile
	Age  *int    `json:"age,omitempty"`
	City *string `json:"city,omitempty" gorm:"type:varchar(255)"`

	// MessageCount tracks answered questions for the non-admin message limit
	MessageCount int `json:"message_count" gorm:"default:0;not null"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty" gorm:"type:timestamp"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserRole defines user roles
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NewUser creates a new user with default values
func NewUser(username, email, passwordHash string) *User {
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		IsActive:     true,
	}
}
