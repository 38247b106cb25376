package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lejio/tracking/internal/domain"
)

// memStore is an in-memory stand-in for the Postgres and Redis stores.
type memStore struct {
	mu        sync.Mutex
	devices   map[string]domain.Device
	vehicles  map[string]*domain.VehicleLocation
	geofences map[string][]domain.Geofence
	positions []domain.StoredPosition
	alerts    []domain.GeofenceAlert
	live      map[string]*domain.StoredPosition
	seq       int

	inFlight    map[string]int
	maxInFlight map[string]int
	appendDelay time.Duration

	appendFn  func(p *domain.StoredPosition) error
	projectFn func(vehicleID string) error
	alertFn   func(a *domain.GeofenceAlert) error
	pingFn    func() error
}

func newMemStore() *memStore {
	return &memStore{
		devices:     map[string]domain.Device{},
		vehicles:    map[string]*domain.VehicleLocation{},
		geofences:   map[string][]domain.Geofence{},
		live:        map[string]*domain.StoredPosition{},
		inFlight:    map[string]int{},
		maxInFlight: map[string]int{},
	}
}

func (m *memStore) addDevice(externalID, vehicleID string, active bool) {
	m.devices[externalID] = domain.Device{
		ID:         "dev-" + externalID,
		ExternalID: externalID,
		VehicleID:  vehicleID,
		IsActive:   active,
	}
	if vehicleID != "" {
		m.vehicles[vehicleID] = &domain.VehicleLocation{VehicleID: vehicleID}
	}
}

func (m *memStore) Resolve(_ context.Context, externalID string) (*domain.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[externalID]
	if !ok {
		return nil, fmt.Errorf("device %s: %w", externalID, domain.ErrUnknownDevice)
	}
	if !d.IsActive {
		return nil, fmt.Errorf("device %s: %w", externalID, domain.ErrInactiveDevice)
	}
	return &d, nil
}

func (m *memStore) AppendPosition(_ context.Context, p *domain.StoredPosition) (string, error) {
	m.mu.Lock()
	m.inFlight[p.DeviceID]++
	if m.inFlight[p.DeviceID] > m.maxInFlight[p.DeviceID] {
		m.maxInFlight[p.DeviceID] = m.inFlight[p.DeviceID]
	}
	m.mu.Unlock()

	if m.appendDelay > 0 {
		time.Sleep(m.appendDelay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight[p.DeviceID]--

	if m.appendFn != nil {
		if err := m.appendFn(p); err != nil {
			return "", err
		}
	}
	m.seq++
	p.ID = fmt.Sprintf("p-%d", m.seq)
	m.positions = append(m.positions, *p)
	return p.ID, nil
}

func (m *memStore) LastOdometer(_ context.Context, deviceID string) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.positions) - 1; i >= 0; i-- {
		p := m.positions[i]
		if p.DeviceID == deviceID && p.Odometer != nil {
			v := *p.Odometer
			return &v, nil
		}
	}
	return nil, nil
}

func (m *memStore) PreviousPosition(_ context.Context, deviceID, excludeID string) (*domain.StoredPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var candidates []domain.StoredPosition
	for _, p := range m.positions {
		if p.DeviceID == deviceID && p.ID != excludeID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	// stable sort keeps arrival order among equal timestamps
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RecordedAt.Before(candidates[j].RecordedAt)
	})
	last := candidates[len(candidates)-1]
	return &last, nil
}

func (m *memStore) UpdateVehicleLocation(_ context.Context, vehicleID string, lat, lon float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.projectFn != nil {
		if err := m.projectFn(vehicleID); err != nil {
			return false, err
		}
	}
	v, ok := m.vehicles[vehicleID]
	if !ok {
		return false, nil
	}
	v.Latitude, v.Longitude = lat, lon
	return true, nil
}

func (m *memStore) PipelineStateUpdate(_ context.Context, vehicleID string, p *domain.StoredPosition, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.live[vehicleID] = &cp
	return nil
}

func (m *memStore) ListActiveGeofences(_ context.Context, vehicleID string) ([]domain.Geofence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Geofence
	for _, g := range m.geofences[vehicleID] {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) InsertAlert(_ context.Context, a *domain.GeofenceAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.alertFn != nil {
		if err := m.alertFn(a); err != nil {
			return err
		}
	}
	a.ID = int64(len(m.alerts) + 1)
	a.CreatedAt = time.Now().UTC()
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *memStore) Ping(_ context.Context) error {
	if m.pingFn != nil {
		return m.pingFn()
	}
	return nil
}

func (m *memStore) positionsOf(deviceID string) []domain.StoredPosition {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StoredPosition
	for _, p := range m.positions {
		if p.DeviceID == deviceID {
			out = append(out, p)
		}
	}
	return out
}
