package errors

import "fmt"

// OAuth2Error represents a standardized OAuth 2.0 error response body.
type OAuth2Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	State       string `json:"state,omitempty"`
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Standard OAuth2 error codes
const (
	InvalidRequest = "invalid_request"
	InvalidGrant   = "invalid_grant"
	ServerError    = "server_error"
)

func NewInvalidRequest(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        InvalidRequest,
		Description: description,
	}
}

func NewInvalidGrant(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        InvalidGrant,
		Description: description,
	}
}

func NewServerError(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        ServerError,
		Description: description,
	}
}

// RESTError is the structured error body returned by the REST surface,
// mirroring the {code, message} shape agents already parse.
type RESTError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RESTError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// REST error codes.
const (
	RESTForbidden       = "rest_forbidden"
	RESTProductNotFound = "ucp_product_not_found"
	RESTSessionNotFound = "ucp_session_not_found"
	RESTInternal        = "ucp_error"
)

func NewRESTForbidden(message string) *RESTError {
	return &RESTError{Code: RESTForbidden, Message: message}
}

func NewRESTNotFound(code, message string) *RESTError {
	return &RESTError{Code: code, Message: message}
}

func NewRESTInternal(message string) *RESTError {
	return &RESTError{Code: RESTInternal, Message: message}
}
