package errors

// ErrorCode identifies a class of application error. Codes are stable and
// safe to expose to API clients.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_HTTP_OK
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_PERMISSION_DENIED
	ErrorCode_UNAUTHENTICATED
	ErrorCode_FORBIDDEN
	ErrorCode_INVALID_PAYLOAD

	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED
	ErrorCode_AUTH_INVALID_CREDENTIALS
	ErrorCode_AUTH_USER_NOT_FOUND
	ErrorCode_AUTH_USER_ALREADY_EXISTS
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN
	ErrorCode_AUTH_ACCOUNT_BLOCKED

	ErrorCode_COURSE_NOT_FOUND
	ErrorCode_COURSE_ALREADY_EXISTS
	ErrorCode_COURSE_ACCESS_DENIED
	ErrorCode_NO_ACCESSIBLE_COURSES
	ErrorCode_MESSAGE_LIMIT_REACHED

	ErrorCode_UPLOAD_INVALID_FILE
	ErrorCode_EMBEDDING_FAILED
	ErrorCode_VECTOR_STORE_UNAVAILABLE
	ErrorCode_ANSWER_GENERATION_FAILED

	ErrorCode_CONVERSATION_NOT_FOUND
	ErrorCode_ARCHIVE_NOT_FOUND

	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                    "UNKNOWN",
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                  "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:   "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_NOT_FOUND:        "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS:   "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN: "AUTH_INVALID_REFRESH_TOKEN",
	ErrorCode_AUTH_ACCOUNT_BLOCKED:       "AUTH_ACCOUNT_BLOCKED",
	ErrorCode_COURSE_NOT_FOUND:           "COURSE_NOT_FOUND",
	ErrorCode_COURSE_ALREADY_EXISTS:      "COURSE_ALREADY_EXISTS",
	ErrorCode_COURSE_ACCESS_DENIED:       "COURSE_ACCESS_DENIED",
	ErrorCode_NO_ACCESSIBLE_COURSES:      "NO_ACCESSIBLE_COURSES",
	ErrorCode_MESSAGE_LIMIT_REACHED:      "MESSAGE_LIMIT_REACHED",
	ErrorCode_UPLOAD_INVALID_FILE:        "UPLOAD_INVALID_FILE",
	ErrorCode_EMBEDDING_FAILED:           "EMBEDDING_FAILED",
	ErrorCode_VECTOR_STORE_UNAVAILABLE:   "VECTOR_STORE_UNAVAILABLE",
	ErrorCode_ANSWER_GENERATION_FAILED:   "ANSWER_GENERATION_FAILED",
	ErrorCode_CONVERSATION_NOT_FOUND:     "CONVERSATION_NOT_FOUND",
	ErrorCode_ARCHIVE_NOT_FOUND:          "ARCHIVE_NOT_FOUND",
	ErrorCode_DB_CONNECTION_FAILED:       "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
}

// String returns the stable name of the error code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
