package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"parse error", &ParseError{Provider: "ruptela", Field: "latitude", Code: CodeMissingCoordinates}, CodeMissingCoordinates},
		{"wrapped unknown", fmt.Errorf("resolve: %w", ErrUnknownDevice), CodeUnknownDevice},
		{"inactive", ErrInactiveDevice, CodeInactiveDevice},
		{"point error wins", &PointError{Code: CodeProjectionFailed, Err: ErrUnknownDevice}, CodeProjectionFailed},
		{"anything else", errors.New("conn reset"), CodeStoreWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Provider: "autopi", Field: "device id", Code: CodeMissingDeviceID, Reason: "no candidate field present"}
	assert.Equal(t, "autopi payload: device id: no candidate field present", err.Error())

	err = &ParseError{Provider: "generic", Code: CodeParseError, Reason: "payload is not a JSON object"}
	assert.Equal(t, "generic payload: payload is not a JSON object", err.Error())
}

func TestCoordinateRanges(t *testing.T) {
	assert.True(t, ValidLatitude(90))
	assert.True(t, ValidLatitude(-90))
	assert.False(t, ValidLatitude(90.0001))
	assert.True(t, ValidLongitude(-180))
	assert.False(t, ValidLongitude(180.5))
}
