package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidAmount        ErrorCode = 102
	ErrCodeMissingParameter     ErrorCode = 103
	ErrCodeInvalidVersion       ErrorCode = 104

	// Transport errors (200-299)
	ErrCodeRequestFailed ErrorCode = 200
	ErrCodeUnauthorized  ErrorCode = 201
	ErrCodeDecodeFailed  ErrorCode = 202
	ErrCodeBackendError  ErrorCode = 203

	// Session errors (300-399)
	ErrCodeNotAuthenticated ErrorCode = 300
	ErrCodeSessionStore     ErrorCode = 301

	// Stream errors (400-499)
	ErrCodeStreamDial     ErrorCode = 400
	ErrCodeStreamClosed   ErrorCode = 401
	ErrCodeMalformedEntry ErrorCode = 402

	// Export and archive errors (500-599)
	ErrCodeExportFailed    ErrorCode = 500
	ErrCodeArchiveFailed   ErrorCode = 501
	ErrCodeVersionMismatch ErrorCode = 502
)
