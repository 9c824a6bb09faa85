package utils

// Application constants
const (
	// Application name
	AppName = "BloomVest"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100
)

// Error messages
const (
	// Authentication errors
	ErrInvalidToken = "Invalid or expired token"
	ErrUnauthorized = "Unauthorized access"
	ErrForbidden    = "Access forbidden"

	// Payment errors
	ErrTransactionNotFound = "Transaction not found"
	ErrInvalidMetalType    = "metal_type must be gold or silver"
	ErrInvalidAmount       = "Amount must be greater than 0"
	ErrProviderDown        = "Payment provider is unreachable"

	// Database errors
	ErrRecordNotFound = "Record not found"
	ErrDBConnection   = "Database connection error"

	// Server errors
	ErrInternalServer = "Internal server error"
)
