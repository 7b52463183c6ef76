package apperr

import (
	"errors"
	"fmt"
)

// Reason is a machine-readable refinement of a Code. Conflict and Forbidden
// errors carry one so a UI can tell "you already have a running timer" apart
// from "this session belongs to someone else" without parsing messages.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonAlreadyRunning  Reason = "already_running"
	ReasonNoActiveSession Reason = "no_active_session"
	ReasonNotRunning      Reason = "not_running"
	ReasonNotOwner        Reason = "not_owner"
	ReasonNotAssignee     Reason = "not_assignee"
	ReasonAlreadyResolved Reason = "already_resolved"
	ReasonStillRunning    Reason = "still_running"
	ReasonSwitchState     Reason = "switch_state"
)

// Error is a coded error. Msg is returned to the caller together with the
// code and reason; Err is the underlying cause kept for logs only.
type Error struct {
	Code   Code
	Reason Reason
	Msg    string
	Err    error
}

func New(code Code, msg string, underlying error) *Error {
	return &Error{Code: code, Msg: msg, Err: underlying}
}

func NewWithReason(code Code, reason Reason, msg string) *Error {
	return &Error{Code: code, Reason: reason, Msg: msg}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code Code) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// HasReason reports whether err is an *Error carrying the given reason.
func HasReason(err error, reason Reason) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Reason == reason
	}
	return false
}

// CodeOf returns the code of err, or Internal for non-coded errors.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return Internal
}
