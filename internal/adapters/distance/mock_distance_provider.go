package distance

import (
	"context"
	"fmt"
	"moving-quote-service/internal/domain"
	"sync"

	"go.uber.org/atomic"
)

// MockGeocoder resolves addresses from a fixed table and counts upstream calls.
// Gate, when set, blocks every call until it is closed.
type MockGeocoder struct {
	mu    sync.RWMutex
	table map[string]domain.Coordinates
	fail  map[string]error

	Gate  chan struct{}
	Calls atomic.Int64
}

func NewMockGeocoder(table map[domain.Address]domain.Coordinates) *MockGeocoder {
	m := &MockGeocoder{
		table: make(map[string]domain.Coordinates, len(table)),
		fail:  make(map[string]error),
	}
	for a, c := range table {
		m.table[a.Key()] = c
	}
	return m
}

// FailWith makes lookups of address return err until cleared with a nil err.
func (m *MockGeocoder) FailWith(address domain.Address, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, address.Key())
		return
	}
	m.fail[address.Key()] = err
}

func (m *MockGeocoder) Geocode(ctx context.Context, address domain.Address) (domain.Coordinates, error) {
	m.Calls.Inc()

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return domain.Coordinates{}, ctx.Err()
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.fail[address.Key()]; ok {
		return domain.Coordinates{}, err
	}
	c, ok := m.table[address.Key()]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock geocoder: %q: %w", address.Key(), domain.ErrNotFound)
	}
	return c, nil
}

type MockPair struct {
	From, To   domain.Coordinates
	Kilometers float64
	Minutes    float64
}

// MockDistanceProvider serves ordered coordinate pairs from a fixed table and counts calls.
type MockDistanceProvider struct {
	m     map[[2]domain.Coordinates]domain.DistanceResult
	Err   error
	Gate  chan struct{}
	Calls atomic.Int64
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[[2]domain.Coordinates]domain.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[[2]domain.Coordinates{p.From, p.To}] = domain.DistanceResult{Kilometers: p.Kilometers, DurationMinutes: p.Minutes}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) Distance(ctx context.Context, origin, destination domain.Coordinates) (domain.DistanceResult, error) {
	p.Calls.Inc()

	if p.Gate != nil {
		select {
		case <-p.Gate:
		case <-ctx.Done():
			return domain.DistanceResult{}, ctx.Err()
		}
	}

	if p.Err != nil {
		return domain.DistanceResult{}, p.Err
	}

	r, ok := p.m[[2]domain.Coordinates{origin, destination}]
	if !ok {
		return domain.DistanceResult{}, fmt.Errorf("missing pair %v -> %v: %w", origin, destination, domain.ErrNotFound)
	}
	return r, nil
}
