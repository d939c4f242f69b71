package types

const (
	ErrInvalidInput    = "Invalid input"
	ErrDatabaseError   = "Database error"
	ErrBlockchainError = "Blockchain error"
	ErrUnauthorized    = "Unauthorized access"
	ErrForbidden       = "HR/Admin access required"
	ErrInternalError   = "internal server error"
)

// APIResponse is the envelope every payroll endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
