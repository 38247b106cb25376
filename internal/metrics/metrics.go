package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"

	"lejio/tracking/internal/domain"
)

var (
	BatchesIngested      atomic.Int64
	PointsReceived       atomic.Int64
	PointsProcessed      atomic.Int64
	AlertsRaised         atomic.Int64
	AlertPublishFailures atomic.Int64
	OdometerAnomalies    atomic.Int64
	StoreWriteFailures   atomic.Int64
	ProjectionFailures   atomic.Int64
	LiveStateFailures    atomic.Int64
)

var rejections = struct {
	sync.Mutex
	byCode map[domain.ErrorCode]int64
}{byCode: make(map[domain.ErrorCode]int64)}

// RecordRejection counts a point that ended up in a batch's error list.
func RecordRejection(code domain.ErrorCode) {
	rejections.Lock()
	rejections.byCode[code]++
	rejections.Unlock()
}

func Rejections(code domain.ErrorCode) int64 {
	rejections.Lock()
	defer rejections.Unlock()
	return rejections.byCode[code]
}

func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "gps_batches_ingested_total %d\n", BatchesIngested.Load())
	fmt.Fprintf(w, "gps_points_received_total %d\n", PointsReceived.Load())
	fmt.Fprintf(w, "gps_points_processed_total %d\n", PointsProcessed.Load())
	fmt.Fprintf(w, "gps_geofence_alerts_total %d\n", AlertsRaised.Load())
	fmt.Fprintf(w, "gps_alert_publish_failures_total %d\n", AlertPublishFailures.Load())
	fmt.Fprintf(w, "gps_odometer_anomalies_total %d\n", OdometerAnomalies.Load())
	fmt.Fprintf(w, "gps_store_write_failures_total %d\n", StoreWriteFailures.Load())
	fmt.Fprintf(w, "gps_projection_failures_total %d\n", ProjectionFailures.Load())
	fmt.Fprintf(w, "gps_live_state_failures_total %d\n", LiveStateFailures.Load())

	rejections.Lock()
	codes := make([]string, 0, len(rejections.byCode))
	counts := make(map[string]int64, len(rejections.byCode))
	for code, n := range rejections.byCode {
		codes = append(codes, string(code))
		counts[string(code)] = n
	}
	rejections.Unlock()

	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "gps_points_rejected_total{code=%q} %d\n", code, counts[code])
	}
}
