package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	// Agent errors
	ConnectionError      ErrorCode = "CONNECTION_ERROR"
	EncodingError        ErrorCode = "ENCODING_ERROR"
	OperationAlreadyOpen ErrorCode = "OPERATION_ALREADY_OPEN"
	OperationNotYetOpen  ErrorCode = "OPERATION_NOT_YET_OPEN"
	PreconditionNotMet   ErrorCode = "PRECONDITION_NOT_MET"
	DecodeError          ErrorCode = "DECODE_ERROR"
	DuplicateSignatory   ErrorCode = "DUPLICATE_SIGNATORY"
	UnsortedSignatories  ErrorCode = "UNSORTED_SIGNATORIES"
	SubmissionError      ErrorCode = "SUBMISSION_ERROR"

	// 5XX
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	NotFound             ErrorCode = "NOT_FOUND"
	BadRequest           ErrorCode = "BAD_REQUEST"
)

// Error represents an error with an application-specific error code. The HTTP
// status code is only meaningful when the error reaches the status API.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

const UninitializedStatusCode = 0

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the provided status code, error code, and underlying error.
// If the status code is not provided (0), it defaults to http.StatusInternalServerError(500).
// If the error code is empty, it defaults to INTERNAL_SERVICE_ERROR.
func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	if statusCode == UninitializedStatusCode {
		statusCode = http.StatusInternalServerError
	}
	if errorCode == "" {
		errorCode = InternalServiceError
	}
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  InternalServiceError,
		Err:        err,
	}
}

// Errorf builds an agent error of the given code.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(UninitializedStatusCode, code, fmt.Errorf(format, args...))
}

// WrapError attaches a code to err. Errors that already carry a code keep it.
func WrapError(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return NewError(UninitializedStatusCode, code, err)
}

// IsErrorCode reports whether any error in err's chain carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.ErrorCode == code
	}
	return false
}

// CodeOf returns the error code of err, or INTERNAL_SERVICE_ERROR for uncoded errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.ErrorCode
	}
	return InternalServiceError
}
