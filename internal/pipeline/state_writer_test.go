package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lejio/tracking/internal/domain"
)

func TestProject_IdempotentOverwrite(t *testing.T) {
	mem := newMemStore()
	mem.addDevice("357", "veh-1", true)
	p := NewStateProjector(mem, mem, time.Minute)

	pos := &domain.StoredPosition{Position: at(55.1, 12.1), ID: "p-1"}
	require.NoError(t, p.Project(context.Background(), "veh-1", pos))
	require.NoError(t, p.Project(context.Background(), "veh-1", pos))

	assert.Equal(t, 55.1, mem.vehicles["veh-1"].Latitude)
	assert.Equal(t, 12.1, mem.vehicles["veh-1"].Longitude)
	assert.Equal(t, "p-1", mem.live["veh-1"].ID)
}

func TestProject_LastWriteWins(t *testing.T) {
	mem := newMemStore()
	mem.addDevice("357", "veh-1", true)
	p := NewStateProjector(mem, nil, 0)

	newer := &domain.StoredPosition{Position: at(55.2, 12.2)}
	newer.RecordedAt = time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC)
	older := &domain.StoredPosition{Position: at(55.1, 12.1)}
	older.RecordedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, p.Project(context.Background(), "veh-1", newer))
	require.NoError(t, p.Project(context.Background(), "veh-1", older))

	assert.Equal(t, 55.1, mem.vehicles["veh-1"].Latitude)
}

func TestProject_MissingVehicle(t *testing.T) {
	p := NewStateProjector(newMemStore(), nil, 0)

	err := p.Project(context.Background(), "veh-x", &domain.StoredPosition{Position: at(1, 1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
