package utils

// Error codes returned to clients in the "code" field of every error body.
// Codes are stable, clients switch on them instead of parsing messages.
const (
	ErrorInternal       = 1000
	ErrorTokenAuthFail  = 1001
	ErrorLoginRequired  = 1002
	ErrorPermission     = 1003
	ErrorValidation     = 1004
	ErrorConflict       = 1005
	ErrorNotFound       = 1006
	ErrorBadRequestForm = 1007
)
