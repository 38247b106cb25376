package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/domain"
	"lejio/tracking/internal/geo"
)

const (
	defaultHistoryWindow = 24 * time.Hour
	defaultLimit         = 500
	maxLimit             = 5000
)

type readStore interface {
	PositionHistory(ctx context.Context, q domain.HistoryQuery) ([]domain.StoredPosition, error)
	VehicleLocation(ctx context.Context, vehicleID string) (*domain.VehicleLocation, error)
	ListActiveGeofences(ctx context.Context, vehicleID string) ([]domain.Geofence, error)
	AlertsByGeofence(ctx context.Context, geofenceID string, limit int) ([]domain.GeofenceAlert, error)
	AlertsByDevice(ctx context.Context, deviceID string, limit int) ([]domain.GeofenceAlert, error)
}

type liveLocator interface {
	LiveLocation(ctx context.Context, vehicleID string) (*domain.VehicleLocation, error)
}

type positionResponse struct {
	ID              string    `json:"id"`
	DeviceID        string    `json:"device_id"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Speed           *float64  `json:"speed,omitempty"`
	Heading         *float64  `json:"heading,omitempty"`
	Altitude        *float64  `json:"altitude,omitempty"`
	Odometer        *float64  `json:"odometer,omitempty"`
	IgnitionOn      *bool     `json:"ignition_on,omitempty"`
	FuelLevel       *float64  `json:"fuel_level,omitempty"`
	BatteryLevel    *float64  `json:"battery_level,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
	ReceivedAt      time.Time `json:"received_at"`
	OdometerAnomaly bool      `json:"odometer_anomaly,omitempty"`
}

type locationResponse struct {
	domain.VehicleLocation
	Source string `json:"source"`
}

// QueryHandler serves the read side: history, live location, geofences and
// alert feeds.
type QueryHandler struct {
	store readStore
	live  liveLocator
}

// NewQueryHandler builds the handler. live may be nil.
func NewQueryHandler(store readStore, live liveLocator) *QueryHandler {
	return &QueryHandler{store: store, live: live}
}

func (h *QueryHandler) Register(r *gin.RouterGroup) {
	r.GET("/devices/:device_id/positions", h.GetPositions)
	r.GET("/devices/:device_id/alerts", h.GetDeviceAlerts)
	r.GET("/vehicles/:vehicle_id/location", h.GetVehicleLocation)
	r.GET("/vehicles/:vehicle_id/geofences", h.GetVehicleGeofences)
	r.GET("/geofences/:geofence_id/alerts", h.GetGeofenceAlerts)
}

func (h *QueryHandler) GetPositions(c *gin.Context) {
	deviceID := c.Param("device_id")

	to := time.Now().UTC()
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to parameter"})
			return
		}
		to = t
	}
	from := to.Add(-defaultHistoryWindow)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from parameter"})
			return
		}
		from = t
	}
	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from is after to"})
		return
	}
	limit, ok := limitOf(c)
	if !ok {
		return
	}

	positions, err := h.store.PositionHistory(c.Request.Context(), domain.HistoryQuery{
		DeviceID: deviceID,
		From:     from,
		To:       to,
		Limit:    limit,
	})
	if err != nil {
		log.WithError(err).WithField("device", deviceID).Error("Position history failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch positions"})
		return
	}

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, geo.Track(deviceID, positions))
		return
	}

	out := make([]positionResponse, len(positions))
	for i, p := range positions {
		out[i] = toPositionResponse(p)
	}
	c.JSON(http.StatusOK, out)
}

func (h *QueryHandler) GetVehicleLocation(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")
	ctx := c.Request.Context()

	if h.live != nil {
		loc, err := h.live.LiveLocation(ctx, vehicleID)
		if err == nil {
			c.JSON(http.StatusOK, locationResponse{VehicleLocation: *loc, Source: "live"})
			return
		}
		if !errors.Is(err, domain.ErrNotFound) {
			log.WithError(err).WithField("vehicle", vehicleID).Warn("Live location unavailable")
		}
	}

	loc, err := h.store.VehicleLocation(ctx, vehicleID)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle location not found"})
		return
	}
	if err != nil {
		log.WithError(err).WithField("vehicle", vehicleID).Error("Vehicle location failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch location"})
		return
	}
	c.JSON(http.StatusOK, locationResponse{VehicleLocation: *loc, Source: "store"})
}

func (h *QueryHandler) GetVehicleGeofences(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	fences, err := h.store.ListActiveGeofences(c.Request.Context(), vehicleID)
	if err != nil {
		log.WithError(err).WithField("vehicle", vehicleID).Error("Geofence listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch geofences"})
		return
	}
	c.JSON(http.StatusOK, geo.GeofenceCollection(fences))
}

func (h *QueryHandler) GetGeofenceAlerts(c *gin.Context) {
	h.alerts(c, c.Param("geofence_id"), h.store.AlertsByGeofence)
}

func (h *QueryHandler) GetDeviceAlerts(c *gin.Context) {
	h.alerts(c, c.Param("device_id"), h.store.AlertsByDevice)
}

func (h *QueryHandler) alerts(c *gin.Context, id string, fetch func(context.Context, string, int) ([]domain.GeofenceAlert, error)) {
	limit, ok := limitOf(c)
	if !ok {
		return
	}

	alerts, err := fetch(c.Request.Context(), id, limit)
	if err != nil {
		log.WithError(err).WithField("id", id).Error("Alert feed failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}
	if alerts == nil {
		alerts = []domain.GeofenceAlert{}
	}
	c.JSON(http.StatusOK, alerts)
}

func limitOf(c *gin.Context) (int, bool) {
	v := c.Query("limit")
	if v == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
		return 0, false
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, true
}

func toPositionResponse(p domain.StoredPosition) positionResponse {
	return positionResponse{
		ID:              p.ID,
		DeviceID:        p.DeviceID,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		Speed:           p.Speed,
		Heading:         p.Heading,
		Altitude:        p.Altitude,
		Odometer:        p.Odometer,
		IgnitionOn:      p.IgnitionOn,
		FuelLevel:       p.FuelLevel,
		BatteryLevel:    p.BatteryLevel,
		RecordedAt:      p.RecordedAt,
		ReceivedAt:      p.ReceivedAt,
		OdometerAnomaly: p.OdometerAnomaly,
	}
}
