// Package registry keeps an in-memory snapshot of the active service areas and answers
// containment and nearest-area queries against it.
//
// Readers always see a complete snapshot: a reload builds a new slice and swaps the pointer,
// it never edits the slice in place. Invalidate marks the snapshot stale and the next read
// reloads it from the backing store.
package registry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"service-area-api/internal/models"

	"golang.org/x/sync/singleflight"
)

// Loader reads service areas from the backing store.
type Loader interface {
	ListActiveServiceAreas(ctx context.Context) ([]models.ServiceArea, error)
}

// Observer is notified after every reload attempt.
type Observer interface {
	RegistryRefreshed(activeAreas int, err error)
}

type snapshot struct {
	areas    []models.ServiceArea
	loadedAt time.Time
}

// Registry serves queries from the latest snapshot of active service areas.
type Registry struct {
	loader      Loader
	observer    Observer
	maxAge      time.Duration
	loadTimeout time.Duration
	now         func() time.Time

	current atomic.Pointer[snapshot]
	stale   atomic.Bool
	group   singleflight.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxAge forces a reload when the snapshot is older than d. Zero disables expiry.
func WithMaxAge(d time.Duration) Option {
	return func(r *Registry) { r.maxAge = d }
}

// WithLoadTimeout bounds a single reload. The default is DefaultLoadTimeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.loadTimeout = d
		}
	}
}

// WithObserver reports reload outcomes to o.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// DefaultLoadTimeout bounds a reload when WithLoadTimeout is not given.
const DefaultLoadTimeout = 10 * time.Second

// New creates a registry backed by loader. Nothing is loaded until the first read or Refresh.
func New(loader Loader, opts ...Option) *Registry {
	r := &Registry{loader: loader, loadTimeout: DefaultLoadTimeout, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invalidate marks the current snapshot stale. Call it after any create, update, delete,
// activation or deactivation of a service area.
func (r *Registry) Invalidate() {
	r.stale.Store(true)
}

// Refresh reloads the snapshot from the backing store. Concurrent callers share one load.
func (r *Registry) Refresh(ctx context.Context) error {
	_, err := r.reload(ctx)
	return err
}

// Areas returns the active service areas in registry order. The slice must not be modified.
func (r *Registry) Areas(ctx context.Context) ([]models.ServiceArea, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.areas, nil
}

// FindContaining returns the active area that contains the point, or nil if none does.
// Overlaps resolve to the smallest radius, then the lowest sort order, then registry order.
func (r *Registry) FindContaining(ctx context.Context, lat, lon float64) (*models.ServiceArea, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var best *models.ServiceArea
	for i := range snap.areas {
		a := &snap.areas[i]
		if !a.ContainsLocation(lat, lon) {
			continue
		}
		if best == nil || a.RadiusKm < best.RadiusKm ||
			(a.RadiusKm == best.RadiusKm && a.SortOrder < best.SortOrder) {
			best = a
		}
	}
	if best == nil {
		return nil, nil
	}
	match := *best
	return &match, nil
}

// FindNearest returns the active area whose center is closest to the point and the distance
// in kilometers. Ties resolve to the lowest sort order, then registry order. It returns
// nil when no area is active.
func (r *Registry) FindNearest(ctx context.Context, lat, lon float64) (*models.ServiceArea, float64, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}

	var best *models.ServiceArea
	var bestDist float64
	for i := range snap.areas {
		a := &snap.areas[i]
		d := a.DistanceKm(lat, lon)
		if best == nil || d < bestDist || (d == bestDist && a.SortOrder < best.SortOrder) {
			best = a
			bestDist = d
		}
	}
	if best == nil {
		return nil, 0, nil
	}
	nearest := *best
	return &nearest, bestDist, nil
}

func (r *Registry) snapshot(ctx context.Context) (*snapshot, error) {
	snap := r.current.Load()
	if snap != nil && !r.stale.Load() && !r.expired(snap) {
		return snap, nil
	}
	return r.reload(ctx)
}

func (r *Registry) expired(snap *snapshot) bool {
	return r.maxAge > 0 && r.now().Sub(snap.loadedAt) > r.maxAge
}

func (r *Registry) reload(ctx context.Context) (*snapshot, error) {
	v, err, _ := r.group.Do("reload", func() (interface{}, error) {
		// Cleared before loading so an Invalidate that races with the load forces another one.
		r.stale.Store(false)

		// Every caller in the flight waits on this load; it is detached from the first caller's cancellation.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()

		areas, err := r.loader.ListActiveServiceAreas(loadCtx)
		if err != nil {
			r.stale.Store(true)
			r.notify(0, err)
			return nil, fmt.Errorf("registry: failed to load service areas: %w: %w", models.ErrRegistryUnavailable, err)
		}

		active := make([]models.ServiceArea, 0, len(areas))
		for _, a := range areas {
			if a.IsActive {
				active = append(active, a)
			}
		}

		snap := &snapshot{areas: active, loadedAt: r.now()}
		r.current.Store(snap)
		r.notify(len(active), nil)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

func (r *Registry) notify(n int, err error) {
	if r.observer != nil {
		r.observer.RegistryRefreshed(n, err)
	}
}
