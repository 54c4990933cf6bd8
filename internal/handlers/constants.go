package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody   = "Invalid request body"
	ErrMsgValidationFailed     = "Validation failed"
	ErrMsgUnauthorized         = "Unauthorized"
	ErrMsgInvalidCredentials   = "Invalid username or password"
	ErrMsgInvalidUserID        = "Invalid user ID"
	ErrMsgInvalidReviewerID    = "Invalid reviewer ID"
	ErrMsgInvalidQuestionID    = "Invalid question ID"
	ErrMsgInvalidAnswerID      = "Invalid answer ID"
	ErrMsgInvalidPagination    = "limit must be 1-100 and offset non-negative"
	ErrMsgInvalidStudentID     = "Invalid student ID"
	ErrMsgServiceUnavailable   = "Service temporarily unavailable"
	ErrMsgInternalServer       = "Internal server error"
	ErrMsgFailedToIssueToken   = "Failed to issue token"
	ErrMsgResourceRequired     = "resource query parameter is required"
)

// API path constants
const (
	APIBasePath = "/api/v1"
)

// Audit action constants
const (
	AuditActionLogin       = "user.login"
	AuditActionLoginFailed = "user.login.failed"
)
