package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lejio/tracking/internal/domain"
)

func TestSplitBatch(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"single object", `{"imei":"1","lat":1,"lng":2}`, []string{`{"imei":"1","lat":1,"lng":2}`}},
		{"array", `[{"imei":"1"},{"imei":"2"}]`, []string{`{"imei":"1"}`, `{"imei":"2"}`}},
		{"envelope object", `{"data":{"imei":"1"}}`, []string{`{"imei":"1"}`}},
		{"envelope array", ` {"data":[{"imei":"1"},{"imei":"2"}]} `, []string{`{"imei":"1"}`, `{"imei":"2"}`}},
		{"data that is not an envelope", `{"imei":"1","data":"raw"}`, []string{`{"imei":"1","data":"raw"}`}},
		{"empty array", `[]`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitBatch([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.JSONEq(t, tt.want[i], string(got[i]))
			}
		})
	}
}

func TestSplitBatch_Malformed(t *testing.T) {
	for _, body := range []string{``, `   `, `{"imei":`, `42`, `"text"`} {
		_, err := SplitBatch([]byte(body))
		assert.ErrorIs(t, err, domain.ErrMalformedBody, body)
	}
}
