package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-party relay & configuration errors
var (
	ErrConfigMissing      = errors.New("configuration missing")
	ErrRelayMisconfigured = errors.New("contact relay not configured")
	ErrRelayFailure       = errors.New("contact relay failed")
	ErrAlreadySent        = errors.New("message already sent")
	ErrAuthUnavailable    = errors.New("auth service unavailable")
)

// Dashboard workflow errors
var (
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrSubmitInFlight       = errors.New("submission already in progress")
	ErrEditorClosed         = errors.New("editor is closed")
)

func NewConfigMissingError(key string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("%s is not configured", key),
		Field:      key,
	}
}

// NewRelayMisconfiguredError reports a missing or placeholder relay endpoint. details is shown to the visitor.
func NewRelayMisconfiguredError(details string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrRelayMisconfigured,
		Details:    details,
	}
}

// NewRelayFailureError reports a rejected or unreachable relay. details is shown to the visitor.
func NewRelayFailureError(details string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrRelayFailure,
		Details:    details,
		Cause:      cause,
	}
}

func NewAlreadySentError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrAlreadySent,
		Details:    "This message has already been sent",
	}
}

func NewAuthUnavailableError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrAuthUnavailable,
		Cause:      cause,
	}
}

func NewConfirmationRequiredError(prompt string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusPreconditionRequired,
		err:        ErrConfirmationRequired,
		Details:    prompt,
		Field:      "confirm",
	}
}

func NewSubmitInFlightError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrSubmitInFlight,
	}
}

func NewEditorClosedError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusGone,
		err:        ErrEditorClosed,
	}
}

func IsRelayMisconfigured(err error) bool {
	return errors.Is(err, ErrRelayMisconfigured)
}

func IsRelayFailure(err error) bool {
	return errors.Is(err, ErrRelayFailure)
}

func IsConfirmationRequired(err error) bool {
	return errors.Is(err, ErrConfirmationRequired)
}

func IsSubmitInFlight(err error) bool {
	return errors.Is(err, ErrSubmitInFlight)
}
