package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeParseError         ErrorCode = "parse_error"
	CodeMissingDeviceID    ErrorCode = "missing_device_id"
	CodeMissingCoordinates ErrorCode = "missing_coordinates"
	CodeInvalidCoordinates ErrorCode = "invalid_coordinates"
	CodeUnknownDevice      ErrorCode = "unknown_device"
	CodeInactiveDevice     ErrorCode = "inactive_device"
	CodeLookupFailed       ErrorCode = "device_lookup_failed"
	CodeStoreWriteFailed   ErrorCode = "store_write_failed"
	CodeProjectionFailed   ErrorCode = "projection_failed"
	CodeGeofenceFailed     ErrorCode = "geofence_evaluation_failed"
)

var (
	ErrUnknownDevice  = errors.New("device not registered")
	ErrInactiveDevice = errors.New("device is inactive")
	ErrInfrastructure = errors.New("store unavailable")
	ErrNotFound       = errors.New("not found")
	ErrMalformedBody  = errors.New("malformed request body")
)

// ParseError reports a payload that cannot become a Position.
// DeviceExternalID is set once the identifier itself was readable.
type ParseError struct {
	Provider         string
	DeviceExternalID string
	Field            string
	Code             ErrorCode
	Reason           string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s payload: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s payload: %s: %s", e.Provider, e.Field, e.Reason)
}

// PointError is a failure confined to a single point of a batch.
type PointError struct {
	Code             ErrorCode
	DeviceExternalID string
	PointID          string
	Err              error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}

// CodeOf maps an error to its reason code.
func CodeOf(err error) ErrorCode {
	var pe *PointError
	if errors.As(err, &pe) {
		return pe.Code
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Code
	}
	switch {
	case errors.Is(err, ErrUnknownDevice):
		return CodeUnknownDevice
	case errors.Is(err, ErrInactiveDevice):
		return CodeInactiveDevice
	default:
		return CodeStoreWriteFailed
	}
}
