package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType namespaces the error taxonomy by resource and HTTP status
// class. Payment errors and consent errors with the same underlying cause
// surface under different namespaces.
type ErrorType string

const (
	ErrorTypePIS400 ErrorType = "PIS_400"
	ErrorTypePIS401 ErrorType = "PIS_401"
	ErrorTypePIS403 ErrorType = "PIS_403"
	ErrorTypePIS404 ErrorType = "PIS_404"
	ErrorTypePIS405 ErrorType = "PIS_405"

	ErrorTypeAIS400 ErrorType = "AIS_400"
	ErrorTypeAIS401 ErrorType = "AIS_401"
	ErrorTypeAIS403 ErrorType = "AIS_403"
	ErrorTypeAIS404 ErrorType = "AIS_404"

	ErrorTypeGeneral400 ErrorType = "GENERAL_400"
)

// HTTPStatus derives the response status class from the error type.
func (t ErrorType) HTTPStatus() int {
	s := string(t)
	switch {
	case strings.HasSuffix(s, "_401"):
		return http.StatusUnauthorized
	case strings.HasSuffix(s, "_403"):
		return http.StatusForbidden
	case strings.HasSuffix(s, "_404"):
		return http.StatusNotFound
	case strings.HasSuffix(s, "_405"):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusBadRequest
	}
}

// MessageCode is the stable protocol error code carried in a TPP message.
type MessageCode string

const (
	CodeFormatError           MessageCode = "FORMAT_ERROR"
	CodePaymentFailed         MessageCode = "PAYMENT_FAILED"
	CodeResourceUnknown       MessageCode = "RESOURCE_UNKNOWN"
	CodeResourceExpired       MessageCode = "RESOURCE_EXPIRED"
	CodeServiceBlocked        MessageCode = "SERVICE_BLOCKED"
	CodeServiceFailed         MessageCode = "SERVICE_FAILED"
	CodeUnauthorized          MessageCode = "UNAUTHORIZED"
	CodeNotSupported          MessageCode = "PARAMETER_NOT_SUPPORTED"
	CodePsuCredentialsInvalid MessageCode = "PSU_CREDENTIALS_INVALID"
	CodeScaMethodUnknown      MessageCode = "SCA_METHOD_UNKNOWN"
	CodeCancellationInvalid   MessageCode = "CANCELLATION_INVALID"
	CodeStatusInvalid         MessageCode = "STATUS_INVALID"
	CodeServiceInvalid        MessageCode = "SERVICE_INVALID"
)

// TppMessage is one (code, text) pair surfaced verbatim to the TPP.
type TppMessage struct {
	Code MessageCode
	Text string
}

// MessageError is the stable failure representation every public
// operation returns. No operation in the core signals failure any other
// way.
type MessageError struct {
	ErrorType ErrorType
	Messages  []TppMessage
}

func (e *MessageError) Error() string {
	if len(e.Messages) == 0 {
		return string(e.ErrorType)
	}
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if m.Text == "" {
			parts = append(parts, string(m.Code))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", m.Code, m.Text))
	}
	return fmt.Sprintf("%s: %s", e.ErrorType, strings.Join(parts, "; "))
}

func (e *MessageError) HTTPStatus() int {
	return e.ErrorType.HTTPStatus()
}

// First returns the leading message code, or "" for an empty error.
func (e *MessageError) First() MessageCode {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0].Code
}

func NewMessageError(errorType ErrorType, code MessageCode, text string) *MessageError {
	return &MessageError{
		ErrorType: errorType,
		Messages:  []TppMessage{{Code: code, Text: text}},
	}
}

// AsMessageError unwraps a MessageError from an error chain.
func AsMessageError(err error) (*MessageError, bool) {
	var msgErr *MessageError
	ok := errors.As(err, &msgErr)
	return msgErr, ok
}

// Constructors for the failures the orchestration core raises itself,
// before any connector call is issued.

func NewFormatError(text string) *MessageError {
	return NewMessageError(ErrorTypePIS400, CodeFormatError, text)
}

func NewPaymentFailedError() *MessageError {
	return NewMessageError(ErrorTypePIS400, CodePaymentFailed, "Payment initiation has failed")
}

func NewPaymentNotFoundError() *MessageError {
	return NewMessageError(ErrorTypePIS400, CodeFormatError, "Payment not found")
}

func NewPaymentTypeMismatchError() *MessageError {
	return NewMessageError(ErrorTypePIS405, CodeServiceInvalid,
		"Payment service doesn't match the addressed payment")
}

func NewServiceFailedError() *MessageError {
	return NewMessageError(ErrorTypePIS400, CodeServiceFailed,
		"Payment data is temporarily not accessible")
}

func NewResourceUnknownError() *MessageError {
	return NewMessageError(ErrorTypePIS403, CodeResourceUnknown, "Resource unknown")
}

func NewStatusAlreadyFinalError() *MessageError {
	return NewMessageError(ErrorTypePIS400, CodeFormatError,
		"Payment is finalised already, so its status cannot be changed")
}

func NewPaymentAlreadyFinalisedError() *MessageError {
	return NewMessageError(ErrorTypePIS400, CodeFormatError,
		"Payment is finalised already and cannot be cancelled")
}

func NewResourceExpiredError() *MessageError {
	return NewMessageError(ErrorTypePIS403, CodeResourceExpired, "Resource expired")
}

func NewTppMismatchError() *MessageError {
	return NewMessageError(ErrorTypePIS401, CodeUnauthorized,
		"TPP certificate doesn't match the initial request")
}

func NewServiceBlockedError() *MessageError {
	return NewMessageError(ErrorTypePIS403, CodeServiceBlocked,
		"Authorisation endpoint is not accessible")
}

func NewScaMethodUnknownError(method string) *MessageError {
	return NewMessageError(ErrorTypePIS400, CodeScaMethodUnknown,
		fmt.Sprintf("Unknown SCA method %q", method))
}

func NewPsuCredentialsInvalidError() *MessageError {
	return NewMessageError(ErrorTypePIS401, CodePsuCredentialsInvalid,
		"PSU credentials are invalid")
}
