package sheetcalc

import (
	"errors"
	"fmt"
)

// ErrorCode is a spreadsheet error sentinel as displayed in a cell.
type ErrorCode string

const (
	ErrDiv0  ErrorCode = "#DIV/0!"
	ErrValue ErrorCode = "#VALUE!"
	ErrName  ErrorCode = "#NAME?"
	ErrEval  ErrorCode = "#ERROR!"
)

// EvalError is a typed evaluation failure carrying its display code.
// A failure in one cell never aborts evaluation of unrelated cells; the
// host records the code as the failing cell's displayed value.
type EvalError struct {
	Code   ErrorCode
	Reason string
}

func (e *EvalError) Error() string {
	if e.Reason == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func evalErrorf(code ErrorCode, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the display code from an evaluation error, falling back
// to #ERROR! for any other error.
func CodeOf(err error) ErrorCode {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ErrEval
}
