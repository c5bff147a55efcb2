package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Identity header set by the chat gateway in front of this service
const (
	HeaderUserID = "X-User-ID"
)

// Pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1
)
