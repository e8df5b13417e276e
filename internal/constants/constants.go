package constants

// Session / context keys
const (
	ContextKeyUserEmail = "user_email"
	ContextKeyTask      = "task"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Authentication
const (
	SessionName   = "task_session"
	SessionMaxAge = 86400 * 7 // 7 days
)
