package errors

import "net/http"

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer = 1000
	ErrValidation     = 1001
	ErrNotFound       = 1002
	ErrUnauthorized   = 1003
	ErrForbidden      = 1004
	ErrAlreadyExists  = 1005
	ErrBadRequest     = 1006

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthUserNotFound       = 2001
	ErrAuthUsernameExists     = 2002
	ErrAuthInvalidToken       = 2003
	ErrAuthTokenExpired       = 2004
	ErrAuthInactiveUser       = 2005
	ErrAuthAdminRequired      = 2006

	// Catalog errors (3000-3999)
	ErrCollectionNotFound = 3000
	ErrCollectionExists   = 3001
	ErrFileNotFound       = 3002
	ErrInvalidName        = 3003
	ErrIO                 = 3004
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrValidation:     {ErrValidation, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:       {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:   {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:      {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrAlreadyExists:  {ErrAlreadyExists, http.StatusConflict, "Resource already exists"},
	ErrBadRequest:     {ErrBadRequest, http.StatusBadRequest, "Bad request"},

	// Auth errors
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
	ErrAuthUserNotFound:       {ErrAuthUserNotFound, http.StatusNotFound, "User not found"},
	ErrAuthUsernameExists:     {ErrAuthUsernameExists, http.StatusConflict, "Username already exists"},
	ErrAuthInvalidToken:       {ErrAuthInvalidToken, http.StatusForbidden, "Invalid token"},
	ErrAuthTokenExpired:       {ErrAuthTokenExpired, http.StatusForbidden, "Token has expired"},
	ErrAuthInactiveUser:       {ErrAuthInactiveUser, http.StatusForbidden, "Inactive user or user not found"},
	ErrAuthAdminRequired:      {ErrAuthAdminRequired, http.StatusForbidden, "Admin privileges required"},

	// Catalog errors
	ErrCollectionNotFound: {ErrCollectionNotFound, http.StatusNotFound, "Collection not found"},
	ErrCollectionExists:   {ErrCollectionExists, http.StatusConflict, "Collection already exists"},
	ErrFileNotFound:       {ErrFileNotFound, http.StatusNotFound, "File not found"},
	ErrInvalidName:        {ErrInvalidName, http.StatusBadRequest, "Invalid name or path"},
	ErrIO:                 {ErrIO, http.StatusInternalServerError, "Filesystem operation failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// FormatError builds a user-facing message, appending details when present
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return msg + ": " + details[0]
	}
	return msg
}
