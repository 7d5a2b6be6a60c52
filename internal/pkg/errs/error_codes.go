/*
Package errs defines the application error codes and the CustomError type
returned to REST clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrValidationFailed indicates that a single field failed its validation rule.
	ErrValidationFailed = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrRouteNotFound indicates that no route matches the request path.
	ErrRouteNotFound = 1008

	// ErrMethodNotAllowed indicates that the path exists but not for the request method.
	ErrMethodNotAllowed = 1009
)

// 2xxx: Task Errors
const (
	// ErrTaskNotFound indicates that the task does not exist or belongs to another user.
	ErrTaskNotFound = 2101
)

// 3xxx: User, Session, and Security Errors
const (
	ErrUnauthorized       = 3001
	ErrInvalidToken       = 3002
	ErrInvalidCredentials = 3003
	ErrUserAlreadyExists  = 3004
	ErrUserNotFound       = 3005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
