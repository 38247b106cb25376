package domain

import "time"

type PointResult struct {
	Index      int       `json:"-"`
	DeviceID   string    `json:"device_id"`
	PointID    string    `json:"point_id"`
	RecordedAt time.Time `json:"recorded_at"`
	Alerts     int       `json:"alerts,omitempty"`
	Anomalies  []string  `json:"anomalies,omitempty"`
}

type PointFailure struct {
	Index    int       `json:"index"`
	Code     ErrorCode `json:"code"`
	Error    string    `json:"error"`
	DeviceID string    `json:"device_id,omitempty"`
	PointID  string    `json:"point_id,omitempty"`
}

// BatchResult aggregates one ingest call. Points still in flight when the
// call's context ended appear in neither list.
type BatchResult struct {
	Provider       string
	ProcessedCount int
	ErrorCount     int
	Results        []PointResult
	Errors         []PointFailure
}
