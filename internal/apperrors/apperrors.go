package apperrors

import (
	"errors"
	"net/http"
)

// ValidationError indicates bad or missing user input; recoverable by re-entry.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthRequiredError indicates the operation needs a signed-in user.
type AuthRequiredError struct {
	Msg string
}

func (e *AuthRequiredError) Error() string { return e.Msg }

// ConfigurationError indicates a deployment misconfiguration; not user-recoverable.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// UpstreamError indicates a failure of an upstream API call. Status carries the
// upstream HTTP status code for diagnostics; 0 means the request never completed.
type UpstreamError struct {
	Status int
	Msg    string
}

func (e *UpstreamError) Error() string { return e.Msg }

// MalformedResponseError indicates the upstream responded but violated its contract.
type MalformedResponseError struct {
	Msg string
}

func (e *MalformedResponseError) Error() string { return e.Msg }

// StoreWriteError indicates a remote store write failed. Callers that applied an
// optimistic local change roll it back when they see this.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

func NewValidation(msg string) error    { return &ValidationError{Msg: msg} }
func NewAuthRequired(msg string) error  { return &AuthRequiredError{Msg: msg} }
func NewConfiguration(msg string) error { return &ConfigurationError{Msg: msg} }

func NewUpstream(status int, msg string) error {
	return &UpstreamError{Status: status, Msg: msg}
}

func NewMalformedResponse(msg string) error { return &MalformedResponseError{Msg: msg} }

func NewStoreWrite(op string, err error) error {
	return &StoreWriteError{Op: op, Err: err}
}

// HTTPStatus maps an error from the taxonomy to the status the local request
// surface reports: bad input 400, no session 401, misconfiguration and contract
// violations 500, upstream failures pass the upstream status through.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		auth       *AuthRequiredError
		upstream   *UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &upstream):
		if upstream.Status >= 400 {
			return upstream.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
