// Package registry resolves vendor device identifiers against the device
// directory, with a process-local cache in front of a shared Redis cache.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/domain"
)

type DeviceDirectory interface {
	LookupDevice(ctx context.Context, externalID string) (*domain.Device, error)
}

type DeviceCache interface {
	// CachedDevice also reports the entry's remaining lifetime, zero if unknown.
	CachedDevice(ctx context.Context, externalID string) (*domain.Device, time.Duration, error)
	CacheDevice(ctx context.Context, d *domain.Device, ttl time.Duration) error
}

type cacheEntry struct {
	device    domain.Device
	expiresAt time.Time
}

// Resolver is safe for concurrent use. A zero ttl disables both cache levels.
type Resolver struct {
	localCache sync.Map
	shared     DeviceCache
	directory  DeviceDirectory
	ttl        time.Duration
	now        func() time.Time
}

// NewResolver builds a Resolver. shared may be nil.
func NewResolver(directory DeviceDirectory, shared DeviceCache, ttl time.Duration) *Resolver {
	return &Resolver{
		shared:    shared,
		directory: directory,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Resolve returns the registered device for externalID. Unregistered ids fail
// with domain.ErrUnknownDevice and deactivated ones with
// domain.ErrInactiveDevice; anything else is a lookup failure.
func (r *Resolver) Resolve(ctx context.Context, externalID string) (*domain.Device, error) {
	d, err := r.load(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if !d.IsActive {
		return nil, fmt.Errorf("device %s: %w", externalID, domain.ErrInactiveDevice)
	}
	return d, nil
}

func (r *Resolver) load(ctx context.Context, externalID string) (*domain.Device, error) {
	// Level 1: in-memory cache
	if raw, ok := r.localCache.Load(externalID); ok {
		entry := raw.(cacheEntry)
		if r.now().Before(entry.expiresAt) {
			d := entry.device
			return &d, nil
		}
		r.localCache.Delete(externalID)
	}

	// Level 2: Redis
	if r.shared != nil && r.ttl > 0 {
		d, remaining, err := r.shared.CachedDevice(ctx, externalID)
		if err != nil {
			log.WithError(err).WithField("device", externalID).Warn("Device cache read failed")
		} else if d != nil {
			r.remember(d, remaining)
			return d, nil
		}
	}

	// Level 3: directory
	d, err := r.directory.LookupDevice(ctx, externalID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("device %s: %w", externalID, domain.ErrUnknownDevice)
	}
	if err != nil {
		return nil, err
	}

	if r.shared != nil && r.ttl > 0 {
		if err := r.shared.CacheDevice(ctx, d, r.ttl); err != nil {
			log.WithError(err).WithField("device", externalID).Warn("Device cache write failed")
		}
	}
	r.remember(d, r.ttl)
	return d, nil
}

// remember keeps d locally for at most ttl. An entry copied from Redis keeps
// the Redis expiry, so a record is never served longer than one ttl after it
// was read from the directory.
func (r *Resolver) remember(d *domain.Device, remaining time.Duration) {
	if r.ttl <= 0 {
		return
	}
	ttl := r.ttl
	if remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	r.localCache.Store(d.ExternalID, cacheEntry{
		device:    *d,
		expiresAt: r.now().Add(ttl),
	})
}

// Sweep drops expired in-memory entries and reports how many it removed.
func (r *Resolver) Sweep() int {
	now := r.now()
	removed := 0
	r.localCache.Range(func(key, value any) bool {
		if !now.Before(value.(cacheEntry).expiresAt) {
			r.localCache.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// ScheduleSweep registers Sweep on c with a cron spec such as "@every 1m".
func (r *Resolver) ScheduleSweep(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if n := r.Sweep(); n > 0 {
			log.WithField("removed", n).Debug("Swept expired device cache entries")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule device cache sweep %q: %w", spec, err)
	}
	return id, nil
}
