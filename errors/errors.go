package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the custom error type carried across application layers
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid request payload",
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrPermissionDenied(action string) AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_PERMISSION_DENIED,
		Message:  fmt.Sprintf("Permission denied: %s", action),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

// Authentication Errors
func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_TOKEN,
		Message:  "Invalid authentication token",
	}
}

func ErrTokenExpired() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_TOKEN_EXPIRED,
		Message:  "Authentication token has expired",
	}
}

func ErrInvalidCredentials() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_CREDENTIALS,
		Message:  "Invalid email or password",
	}
}

func ErrUserNotFound() AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_AUTH_USER_NOT_FOUND,
		Message:  "User not found",
	}
}

func ErrUserAlreadyExists(email string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_AUTH_USER_ALREADY_EXISTS,
		Message:  "User already exists",
	}.WithDetail("email", email)
}

func ErrInvalidRefreshToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_REFRESH_TOKEN,
		Message:  "Invalid refresh token",
	}
}

func ErrAccountBlocked() AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_AUTH_ACCOUNT_BLOCKED,
		Message:  "Your account has been blocked. Please contact administrator",
	}
}

// Course & Access Control Errors
func ErrCourseNotFound(courseID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_COURSE_NOT_FOUND,
		Message:  "Course not found",
	}.WithDetail("course_id", courseID)
}

func ErrCourseAlreadyExists(courseID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_COURSE_ALREADY_EXISTS,
		Message:  "Course already exists",
	}.WithDetail("course_id", courseID)
}

func ErrCourseAccessDenied(courseID string) AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_COURSE_ACCESS_DENIED,
		Message:  "You do not have access to this course",
	}.WithDetail("course_id", courseID)
}

// ErrNoAccessibleCourses signals the caller has no course content to query
// against. Distinct from an empty retrieval result.
func ErrNoAccessibleCourses() AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_NO_ACCESSIBLE_COURSES,
		Message:  "You do not have access to any course content",
	}
}

func ErrMessageLimitReached(limit int) AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_MESSAGE_LIMIT_REACHED,
		Message:  fmt.Sprintf("Message limit of %d reached. Please contact administrator", limit),
	}
}

// Upload & RAG Pipeline Errors
func ErrInvalidUploadFile(name string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_UPLOAD_INVALID_FILE,
		Message:  "Only .vtt caption files are allowed",
	}.WithDetail("file", name)
}

func ErrEmbeddingFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_EMBEDDING_FAILED,
		Message:  "Failed to embed text",
	}
}

func ErrVectorStoreUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_VECTOR_STORE_UNAVAILABLE,
		Message:  "Vector store is unavailable",
	}
}

func ErrAnswerGenerationFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_ANSWER_GENERATION_FAILED,
		Message:  "Failed to generate an answer",
	}
}

// Conversation Errors
func ErrConversationNotFound(conversationID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_CONVERSATION_NOT_FOUND,
		Message:  "Conversation not found",
	}.WithDetail("conversation_id", conversationID)
}

func ErrArchiveNotFound(archiveID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_ARCHIVE_NOT_FOUND,
		Message:  "Archive not found",
	}.WithDetail("archive_id", archiveID)
}

// Infrastructure Errors
func ErrDatabase(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database operation failed",
	}
}

func ErrStorage(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  "Object storage operation failed",
	}
}

func ErrCache(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_CACHE_FAILED,
		Message:  "Cache operation failed",
	}
}
