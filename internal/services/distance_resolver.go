package services

import (
	"context"
	"errors"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/obs"
	"moving-quote-service/internal/ports"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDistanceKm      = 20.0
	DefaultProviderTimeout = 10 * time.Second
)

// DistanceResolver resolves addresses to coordinates and coordinate pairs to distances.
//
// It coordinates:
//   - An in-memory cache per level (address -> coordinates, ordered pair -> distance)
//   - Coalescing of concurrent lookups for the same key into one upstream call
//   - An optional persistent store consulted before the upstream provider
//
// Entries never expire; failures are never cached. The resolver is safe for concurrent use.
type DistanceResolver struct {
	geocoder  ports.Geocoder
	provider  ports.DistanceProvider
	geoStore  ports.GeocodeStore
	distStore ports.DistanceStore
	log       *zap.Logger
	defaultKm float64
	timeout   time.Duration

	mu        sync.RWMutex
	coords    map[string]domain.Coordinates
	distances map[string]domain.DistanceResult

	// Bumped by each clear; lookups started under an older generation do not write back.
	coordsGen    uint64
	distancesGen uint64

	geocodeFlight  singleflight.Group
	distanceFlight singleflight.Group
}

type ResolverOption func(*DistanceResolver)

// WithDefaultKm sets the distance returned when a route cannot be resolved.
func WithDefaultKm(km float64) ResolverOption {
	return func(r *DistanceResolver) { r.defaultKm = km }
}

// WithTimeout bounds every upstream call.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *DistanceResolver) { r.timeout = d }
}

func WithLogger(log *zap.Logger) ResolverOption {
	return func(r *DistanceResolver) { r.log = log }
}

func WithGeocodeStore(s ports.GeocodeStore) ResolverOption {
	return func(r *DistanceResolver) { r.geoStore = s }
}

func WithDistanceStore(s ports.DistanceStore) ResolverOption {
	return func(r *DistanceResolver) { r.distStore = s }
}

func NewDistanceResolver(
	geocoder ports.Geocoder,
	provider ports.DistanceProvider,
	opts ...ResolverOption,
) (*DistanceResolver, error) {
	if geocoder == nil || provider == nil {
		return nil, errors.New("new distance resolver: geocoder and provider are required")
	}

	r := &DistanceResolver{
		geocoder:  geocoder,
		provider:  provider,
		log:       zap.NewNop(),
		defaultKm: DefaultDistanceKm,
		timeout:   DefaultProviderTimeout,
		coords:    make(map[string]domain.Coordinates),
		distances: make(map[string]domain.DistanceResult),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.defaultKm < 0 {
		return nil, fmt.Errorf("new distance resolver: default distance must not be negative (got %v)", r.defaultKm)
	}
	if r.timeout <= 0 {
		return nil, fmt.Errorf("new distance resolver: timeout must be positive (got %v)", r.timeout)
	}

	return r, nil
}

// DefaultKm returns the configured fallback distance.
func (r *DistanceResolver) DefaultKm() float64 { return r.defaultKm }

// ResolveCoordinates geocodes an address. Concurrent calls for the same uncached
// address share a single upstream request.
func (r *DistanceResolver) ResolveCoordinates(ctx context.Context, address domain.Address) (domain.Coordinates, error) {
	key := address.Key()
	if strings.Trim(key, "| ") == "" {
		return domain.Coordinates{}, fmt.Errorf("resolve coordinates: %w: empty address", domain.ErrNotFound)
	}

	if c, ok := r.cachedCoords(key); ok {
		return c, nil
	}

	ch := r.geocodeFlight.DoChan(key, func() (any, error) {
		// A call that finished between our cache miss and joining the group already filled the cache.
		if c, ok := r.cachedCoords(key); ok {
			return c, nil
		}
		gen := r.coordsGeneration()

		uctx, cancel := r.upstreamContext(ctx)
		defer cancel()

		if r.geoStore != nil {
			c, ok, err := r.geoStore.GetCoordinates(uctx, key)
			if err != nil {
				r.log.Warn("geocode store read failed", zap.String("address", key), zap.Error(err))
			} else if ok {
				r.putCoords(key, c, gen)
				return c, nil
			}
		}

		c, err := r.geocode(uctx, address)
		if err != nil {
			return nil, err
		}
		if r.putCoords(key, c, gen) && r.geoStore != nil {
			if err := r.geoStore.PutCoordinates(uctx, key, c); err != nil {
				r.log.Warn("geocode store write failed", zap.String("address", key), zap.Error(err))
			}
		}
		return c, nil
	})

	select {
	case <-ctx.Done():
		return domain.Coordinates{}, fmt.Errorf("resolve coordinates %q: %w: %w", key, domain.ErrNotFound, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Coordinates{}, fmt.Errorf("resolve coordinates %q: %w: %w", key, domain.ErrNotFound, res.Err)
		}
		return res.Val.(domain.Coordinates), nil
	}
}

// ResolveDistance returns the route from a to b. The cache key is ordered:
// (a, b) and (b, a) are resolved and cached independently.
func (r *DistanceResolver) ResolveDistance(ctx context.Context, a, b domain.Coordinates) (domain.DistanceResult, error) {
	key := DistanceKey(a, b)

	if d, ok := r.cachedDistance(key); ok {
		return d, nil
	}

	ch := r.distanceFlight.DoChan(key, func() (any, error) {
		if d, ok := r.cachedDistance(key); ok {
			return d, nil
		}
		gen := r.distancesGeneration()

		uctx, cancel := r.upstreamContext(ctx)
		defer cancel()

		if r.distStore != nil {
			d, ok, err := r.distStore.GetDistance(uctx, key)
			if err != nil {
				r.log.Warn("distance store read failed", zap.String("pair", key), zap.Error(err))
			} else if ok {
				r.putDistance(key, d, gen)
				return d, nil
			}
		}

		d, err := r.distance(uctx, a, b)
		if err != nil {
			return nil, err
		}
		if d.Kilometers < 0 || d.DurationMinutes < 0 {
			return nil, fmt.Errorf("%w: negative distance result %+v", domain.ErrProviderUnavailable, d)
		}
		if r.putDistance(key, d, gen) && r.distStore != nil {
			if err := r.distStore.PutDistance(uctx, key, d); err != nil {
				r.log.Warn("distance store write failed", zap.String("pair", key), zap.Error(err))
			}
		}
		return d, nil
	})

	select {
	case <-ctx.Done():
		return domain.DistanceResult{}, fmt.Errorf("resolve distance %s: %w: %w", key, domain.ErrNotFound, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.DistanceResult{}, fmt.Errorf("resolve distance %s: %w: %w", key, domain.ErrNotFound, res.Err)
		}
		return res.Val.(domain.DistanceResult), nil
	}
}

// ResolveRoute geocodes both addresses concurrently and resolves the distance between them.
// It never fails: on any error it logs and returns the default distance with fallback=true.
func (r *DistanceResolver) ResolveRoute(ctx context.Context, origin, destination domain.Address) (km float64, fallback bool) {
	var from, to domain.Coordinates

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := r.ResolveCoordinates(gctx, origin)
		from = c
		return err
	})
	g.Go(func() error {
		c, err := r.ResolveCoordinates(gctx, destination)
		to = c
		return err
	})

	if err := g.Wait(); err != nil {
		r.log.Warn("geocoding failed; using default distance",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Float64("default_km", r.defaultKm),
			zap.Error(err),
		)
		return r.defaultKm, true
	}

	d, err := r.ResolveDistance(ctx, from, to)
	if err != nil {
		r.log.Warn("distance lookup failed; using default distance",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Float64("default_km", r.defaultKm),
			zap.Error(err),
		)
		return r.defaultKm, true
	}

	return d.Kilometers, false
}

// DistanceByAddress returns the kilometers between two addresses, or the default distance.
func (r *DistanceResolver) DistanceByAddress(ctx context.Context, origin, destination domain.Address) float64 {
	km, _ := r.ResolveRoute(ctx, origin, destination)
	return km
}

// ClearCache drops every cached coordinate and distance. Lookups still in flight
// when it runs return their result to their callers but do not repopulate either cache.
func (r *DistanceResolver) ClearCache(ctx context.Context) error {
	return errors.Join(r.ClearGeocodeCache(ctx), r.ClearDistanceCache(ctx))
}

func (r *DistanceResolver) ClearGeocodeCache(ctx context.Context) error {
	r.mu.Lock()
	r.coords = make(map[string]domain.Coordinates)
	r.coordsGen++
	r.mu.Unlock()

	if r.geoStore != nil {
		if err := r.geoStore.PurgeCoordinates(ctx); err != nil {
			return fmt.Errorf("clear geocode cache: %w", err)
		}
	}
	return nil
}

func (r *DistanceResolver) ClearDistanceCache(ctx context.Context) error {
	r.mu.Lock()
	r.distances = make(map[string]domain.DistanceResult)
	r.distancesGen++
	r.mu.Unlock()

	if r.distStore != nil {
		if err := r.distStore.PurgeDistances(ctx); err != nil {
			return fmt.Errorf("clear distance cache: %w", err)
		}
	}
	return nil
}

// CacheSize reports the number of in-memory entries per level.
func (r *DistanceResolver) CacheSize() (coords, distances int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.coords), len(r.distances)
}

// DistanceKey builds the ordered cache key of a coordinate pair.
func DistanceKey(a, b domain.Coordinates) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(a.Lat) + "," + f(a.Lng) + "|" + f(b.Lat) + "," + f(b.Lng)
}

// upstreamContext ignores the first caller's cancellation; the shared call is
// bounded by the provider timeout only.
func (r *DistanceResolver) upstreamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
}

func (r *DistanceResolver) geocode(ctx context.Context, address domain.Address) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "resolver.geocode")(&err)
	return r.geocoder.Geocode(ctx, address)
}

func (r *DistanceResolver) distance(ctx context.Context, a, b domain.Coordinates) (_ domain.DistanceResult, err error) {
	defer obs.Time(ctx, "resolver.distance")(&err)
	return r.provider.Distance(ctx, a, b)
}

func (r *DistanceResolver) cachedCoords(key string) (domain.Coordinates, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coords[key]
	return c, ok
}

func (r *DistanceResolver) coordsGeneration() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coordsGen
}

// putCoords stores c unless the geocode cache was cleared after gen was read.
func (r *DistanceResolver) putCoords(key string, c domain.Coordinates, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.coordsGen {
		return false
	}
	r.coords[key] = c
	return true
}

func (r *DistanceResolver) cachedDistance(key string) (domain.DistanceResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.distances[key]
	return d, ok
}

func (r *DistanceResolver) distancesGeneration() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.distancesGen
}

// putDistance stores d unless the distance cache was cleared after gen was read.
func (r *DistanceResolver) putDistance(key string, d domain.DistanceResult, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.distancesGen {
		return false
	}
	r.distances[key] = d
	return true
}
