package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lejio/tracking/internal/domain"
)

var testAlert = domain.GeofenceAlert{
	ID:         11,
	GeofenceID: "gf-1",
	DeviceID:   "dev-1",
	VehicleID:  "veh-1",
	AlertType:  domain.AlertExit,
	Latitude:   55.69,
	Longitude:  12.57,
	CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
}

type fakePublisher struct {
	publishFn func(ctx context.Context, alert domain.GeofenceAlert) error
}

func (f *fakePublisher) Publish(ctx context.Context, alert domain.GeofenceAlert) error {
	return f.publishFn(ctx, alert)
}

func TestEncode(t *testing.T) {
	body, err := Encode(testAlert)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "gf-1", got["geofence_id"])
	assert.Equal(t, "exit", got["alert_type"])
	assert.Equal(t, "2024-05-01T10:00:00Z", got["created_at"])
	assert.Equal(t, 55.69, got["location"].(map[string]any)["latitude"])
}

func TestMulti_PublishesToAllAndJoinsErrors(t *testing.T) {
	var calls []string
	ok := &fakePublisher{publishFn: func(_ context.Context, a domain.GeofenceAlert) error {
		calls = append(calls, "ok:"+a.GeofenceID)
		return nil
	}}
	broken := &fakePublisher{publishFn: func(_ context.Context, _ domain.GeofenceAlert) error {
		calls = append(calls, "broken")
		return errors.New("broker gone")
	}}

	m := NewMulti(broken, nil, ok)
	assert.Equal(t, 2, m.Len())

	err := m.Publish(context.Background(), testAlert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker gone")
	assert.Equal(t, []string{"broken", "ok:gf-1"}, calls)
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, NewMulti().Publish(context.Background(), testAlert))
}

type fakeAlertChannel struct {
	payloads [][]byte
	err      error
}

func (f *fakeAlertChannel) PublishAlert(_ context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

func TestRedisPublisher(t *testing.T) {
	ch := &fakeAlertChannel{}
	require.NoError(t, NewRedisPublisher(ch).Publish(context.Background(), testAlert))
	require.Len(t, ch.payloads, 1)
	assert.Contains(t, string(ch.payloads[0]), `"device_id":"dev-1"`)

	ch.err = errors.New("closed")
	assert.Error(t, NewRedisPublisher(ch).Publish(context.Background(), testAlert))
}

type fakeAMQPChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (f *fakeAMQPChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func (f *fakeAMQPChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQPublisher(t *testing.T) {
	ch := &fakeAMQPChannel{}
	p := &RabbitMQPublisher{ch: ch, exchange: "fleet.geofence"}

	require.NoError(t, p.Publish(context.Background(), testAlert))
	assert.Equal(t, "fleet.geofence", ch.exchange)
	assert.Equal(t, "exit", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

type fakeNATS struct {
	subject string
	data    []byte
}

func (f *fakeNATS) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return nil
}

func TestNATSPublisher(t *testing.T) {
	conn := &fakeNATS{}
	p := &NATSPublisher{pub: conn, subject: "fleet.geofence.alerts"}

	require.NoError(t, p.Publish(context.Background(), testAlert))
	assert.Equal(t, "fleet.geofence.alerts.exit", conn.subject)
	assert.Contains(t, string(conn.data), `"geofence_id":"gf-1"`)
	p.Close()
}
