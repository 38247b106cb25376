package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lejio/tracking/internal/domain"
)

func TestHandleMetrics(t *testing.T) {
	PointsReceived.Add(3)
	RecordRejection(domain.CodeUnknownDevice)
	RecordRejection(domain.CodeUnknownDevice)
	RecordRejection(domain.CodeInvalidCoordinates)

	rec := httptest.NewRecorder()
	HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, "text/plain; version=0.0.4", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "gps_points_received_total ")
	assert.Contains(t, body, `gps_points_rejected_total{code="unknown_device"} `)
	assert.Contains(t, body, `gps_points_rejected_total{code="invalid_coordinates"} `)
	assert.Less(t,
		strings.Index(body, `code="invalid_coordinates"`),
		strings.Index(body, `code="unknown_device"`),
	)
	assert.GreaterOrEqual(t, Rejections(domain.CodeUnknownDevice), int64(2))
}
