package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"lejio/tracking/internal/config"
	"lejio/tracking/internal/domain"
)

const (
	FleetGeoKey        = "fleet:geo"
	AlertChannel       = "geofence:alerts"
	vehicleStateKeyFmt = "vehicle:%s:state"
	vehicleChannelFmt  = "vehicle:%s:positions"
	deviceCacheKeyFmt  = "device:ext:%s"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     20,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Client() *redis.Client {
	return r.client
}

// PipelineStateUpdate writes the live state hash of a vehicle, moves it in
// the fleet GEO set and publishes the position, in one round trip.
func (r *RedisStore) PipelineStateUpdate(ctx context.Context, vehicleID string, p *domain.StoredPosition, ttl time.Duration) error {
	stateData := map[string]interface{}{
		"vehicle_id":  vehicleID,
		"device_id":   p.DeviceID,
		"point_id":    p.ID,
		"lat":         p.Latitude,
		"lng":         p.Longitude,
		"timestamp":   p.RecordedAt.Unix(),
		"received_at": p.ReceivedAt.Unix(),
	}
	if p.Speed != nil {
		stateData["speed"] = *p.Speed
	}
	if p.Heading != nil {
		stateData["heading"] = *p.Heading
	}
	if p.IgnitionOn != nil {
		stateData["ignition_on"] = *p.IgnitionOn
	}
	if p.FuelLevel != nil {
		stateData["fuel_level"] = *p.FuelLevel
	}
	if p.BatteryLevel != nil {
		stateData["battery_level"] = *p.BatteryLevel
	}

	pubPayload, err := json.Marshal(stateData)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	stateKey := fmt.Sprintf(vehicleStateKeyFmt, vehicleID)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, stateKey, stateData)
	if ttl > 0 {
		pipe.Expire(ctx, stateKey, ttl)
	}
	pipe.GeoAdd(ctx, FleetGeoKey, &redis.GeoLocation{
		Name:      vehicleID,
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
	})
	pipe.Publish(ctx, fmt.Sprintf(vehicleChannelFmt, vehicleID), pubPayload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// LiveLocation reads the live state hash. A missing or expired hash yields
// domain.ErrNotFound.
func (r *RedisStore) LiveLocation(ctx context.Context, vehicleID string) (*domain.VehicleLocation, error) {
	vals, err := r.client.HGetAll(ctx, fmt.Sprintf(vehicleStateKeyFmt, vehicleID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis live state %s: %w", vehicleID, err)
	}
	if len(vals) == 0 {
		return nil, domain.ErrNotFound
	}

	lat, errLat := strconv.ParseFloat(vals["lat"], 64)
	lng, errLng := strconv.ParseFloat(vals["lng"], 64)
	ts, errTS := strconv.ParseInt(vals["received_at"], 10, 64)
	if errLat != nil || errLng != nil || errTS != nil {
		return nil, fmt.Errorf("redis live state %s: malformed hash", vehicleID)
	}

	return &domain.VehicleLocation{
		VehicleID: vehicleID,
		Latitude:  lat,
		Longitude: lng,
		UpdatedAt: time.Unix(ts, 0).UTC(),
	}, nil
}

// CachedDevice returns the cached record and how long it has left. It returns
// nil without error on a cache miss. The remaining time is zero when the key
// carries no expiry.
func (r *RedisStore) CachedDevice(ctx context.Context, externalID string) (*domain.Device, time.Duration, error) {
	key := fmt.Sprintf(deviceCacheKeyFmt, externalID)

	pipe := r.client.Pipeline()
	get := pipe.Get(ctx, key)
	pttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, 0, fmt.Errorf("redis get device failed: %w", err)
	}

	val, err := get.Bytes()
	if err == redis.Nil {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("redis get device failed: %w", err)
	}

	var d domain.Device
	if err := json.Unmarshal(val, &d); err != nil {
		return nil, 0, fmt.Errorf("decode cached device %s: %w", externalID, err)
	}

	remaining := pttl.Val()
	if remaining < 0 {
		remaining = 0
	}
	return &d, remaining, nil
}

func (r *RedisStore) CacheDevice(ctx context.Context, d *domain.Device, ttl time.Duration) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode device %s: %w", d.ExternalID, err)
	}
	return r.client.Set(ctx, fmt.Sprintf(deviceCacheKeyFmt, d.ExternalID), b, ttl).Err()
}

func (r *RedisStore) PublishAlert(ctx context.Context, payload []byte) error {
	return r.client.Publish(ctx, AlertChannel, payload).Err()
}
