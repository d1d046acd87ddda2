package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedCoordinateSystem = errors.New("unsupported coordinate system")
	ErrMalformedRecord             = errors.New("malformed position record")
	ErrElementNotFound             = errors.New("element not found")
	ErrPositionNotFound            = errors.New("position not found")
	ErrNetworkNotFound             = errors.New("network not found")
)

// UnsupportedCoordinateSystemError aborts an import run. It carries the CRS of the
// first offending record.
type UnsupportedCoordinateSystemError struct {
	CRSName string
	CRSURN  string
}

func (e *UnsupportedCoordinateSystemError) Error() string {
	return fmt.Sprintf("unsupported coordinates system: %s (%s)", e.CRSName, e.CRSURN)
}

func (e *UnsupportedCoordinateSystemError) Is(target error) bool {
	return target == ErrUnsupportedCoordinateSystem
}

// MalformedRecordError reports a record with a missing or unparsable field.
type MalformedRecordError struct {
	ElementID string
	Field     string
	Value     string
	Err       error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed position record for %q: field %s", e.ElementID, e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" = %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
