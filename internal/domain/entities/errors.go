package entities

import "errors"

// Domain errors
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidPassword   = errors.New("invalid password")

	// Course errors
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseAlreadyExists = errors.New("course already exists")
	ErrCourseAccessExists  = errors.New("course access already granted")
	ErrCourseAccessMissing = errors.New("course access not found")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrChatNotFound         = errors.New("chat message not found")
	ErrArchiveNotFound      = errors.New("archive not found")

	// Caption errors
	ErrInvalidTimestamp = errors.New("invalid caption timestamp")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
)
