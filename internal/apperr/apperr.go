package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every recoverable failure the services surface. Anything
// that is not an *Error propagates to the handler layer as a plain 500.
type Kind string

const (
	KindNotAuthorized      Kind = "not_authorized"
	KindNotFound           Kind = "not_found"
	KindValidationFailed   Kind = "validation_failed"
	KindProgressInitFailed Kind = "progress_initialization_failed"
)

type Error struct {
	Status   int
	Kind     Kind
	Code     string
	Fallback string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, kind Kind, code string, err error) *Error {
	return &Error{Status: status, Kind: kind, Code: code, Err: err}
}

// NotAuthorized deliberately carries no detail about the resource beyond its
// type name, so a forbidden resource is indistinguishable from a missing one.
func NotAuthorized(action, resource string) *Error {
	return &Error{
		Status: http.StatusForbidden,
		Kind:   KindNotAuthorized,
		Code:   "not_authorized",
		Err:    fmt.Errorf("cannot %s %s", action, resource),
	}
}

func NotFound(code, fallback string) *Error {
	return &Error{
		Status:   http.StatusNotFound,
		Kind:     KindNotFound,
		Code:     code,
		Fallback: fallback,
	}
}

func Validation(code string, err error) *Error {
	return &Error{
		Status: http.StatusUnprocessableEntity,
		Kind:   KindValidationFailed,
		Code:   code,
		Err:    err,
	}
}

func ProgressInit(fallback string, err error) *Error {
	return &Error{
		Status:   http.StatusInternalServerError,
		Kind:     KindProgressInitFailed,
		Code:     "cannot_load_subject",
		Fallback: fallback,
		Err:      err,
	}
}

// From unwraps err into an *Error, or nil when err carries no classification.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func IsKind(err error, kind Kind) bool {
	e := From(err)
	return e != nil && e.Kind == kind
}
