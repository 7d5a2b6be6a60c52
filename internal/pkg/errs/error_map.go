package errs

import "net/http"

// errorMap holds the client-facing message and HTTP status for every code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrValidationFailed:     {Code: ErrValidationFailed, Message: "Invalid value for field '%s'.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrRouteNotFound:        {Code: ErrRouteNotFound, Message: "Resource not found.", Status: http.StatusNotFound},
	ErrMethodNotAllowed:     {Code: ErrMethodNotAllowed, Message: "Method not allowed.", Status: http.StatusMethodNotAllowed},

	// 2xxx: Task Errors
	ErrTaskNotFound: {Code: ErrTaskNotFound, Message: "Task not found", Status: http.StatusNotFound},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidToken:       {Code: ErrInvalidToken, Message: "Invalid token", Status: http.StatusUnauthorized},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid username or password", Status: http.StatusUnauthorized},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username/email already exists", Status: http.StatusBadRequest},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Not found", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Server error", Status: http.StatusInternalServerError},
}
