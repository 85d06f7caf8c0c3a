package api

import (
	"context"
	"encoding/json"
	"errors"
	"moving-quote-service/internal/adapters/distance"
	"moving-quote-service/internal/api/dto"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	origin      = domain.Address{Street: "Av. Providencia", Number: "1234", Commune: "Providencia"}
	destination = domain.Address{Street: "Av. Apoquindo", Number: "4500", Commune: "Las Condes"}
)

type stubRulesStore struct {
	doc   domain.PricingRulesDocument
	fleet int
}

func (s *stubRulesStore) ActivePricingRules(context.Context) (domain.PricingRulesDocument, error) {
	return s.doc, nil
}

func (s *stubRulesStore) FleetSize(context.Context) (int, error) { return s.fleet, nil }

type stubSchedule struct{}

func (stubSchedule) CanonicalSlots(context.Context) ([]domain.TimeSlot, error) {
	return []domain.TimeSlot{{Label: "09:00", Recommended: true}, {Label: "10:00"}}, nil
}

func (stubSchedule) Occupancy(context.Context, time.Time, []domain.TimeSlot) (map[string]int, error) {
	return map[string]int{"09:00": 2}, nil
}

func (stubSchedule) BlockedSlots(context.Context, time.Time) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

type stubRulesCache struct{ invalidated int }

func (s *stubRulesCache) Invalidate(context.Context) error {
	s.invalidated++
	return nil
}

func rulesDocument() domain.PricingRulesDocument {
	freeKm := 50.0
	return domain.PricingRulesDocument{
		Version:            4,
		BasePrice:          50000,
		PricePerCubicMeter: 15000,
		PricePerKilometer:  800,
		FreeKilometers:     &freeKm,
		FloorSurcharge:     3000,
		AdditionalServices: &domain.AdditionalServicePrices{Disassembly: 15000, Assembly: 12000},
		SpecialPackaging:   &domain.SpecialPackagingPrices{SurchargePerItem: 5000},
		TimeSurcharges:     &domain.TimeSurcharges{Saturday: 10},
		Discounts:          &domain.Discounts{Flexibility: 10},
	}
}

type testServer struct {
	handler    http.Handler
	resolver   *services.DistanceResolver
	rules      *stubRulesStore
	rulesCache *stubRulesCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	a := domain.Coordinates{Lat: -33.4263, Lng: -70.6200}
	b := domain.Coordinates{Lat: -33.4110, Lng: -70.5780}
	geocoder := distance.NewMockGeocoder(map[domain.Address]domain.Coordinates{origin: a, destination: b})
	provider := distance.NewMockDistanceProvider([]distance.MockPair{{From: a, To: b, Kilometers: 80, Minutes: 70}})

	resolver, err := services.NewDistanceResolver(geocoder, provider)
	require.NoError(t, err)

	rules := &stubRulesStore{doc: rulesDocument(), fleet: 2}
	ruleProvider := services.NewRuleProvider(rules)
	cache := &stubRulesCache{}

	handler := NewRouter(Deps{
		Availability: services.NewAvailabilityService(ruleProvider, stubSchedule{}, services.NewSlotCalculator(nil)),
		Quotes:       services.NewQuoteService(ruleProvider, resolver),
		Distances:    resolver,
		RulesCache:   cache,
	})

	return &testServer{handler: handler, resolver: resolver, rules: rules, rulesCache: cache}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

const quoteBody = `{
	"personalInfo": {"name": "Ana", "email": "ana@example.com"},
	"date": "2026-11-02",
	"time": "09:00",
	"isFlexible": true,
	"origin": {"street": "Av. Providencia", "number": "1234", "commune": "Providencia"},
	"destination": {"street": "Av. Apoquindo", "number": "4500", "commune": "Las Condes"},
	"originProperty": {"propertyType": "apartment", "floor": 0},
	"destinationProperty": {"propertyType": "house", "floor": 0},
	"items": [{"id": "boxes", "volume": 3, "weight": 60, "quantity": 1}],
	"additionalServices": {"packing": true}
}`

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsUnreachableDatabase(t *testing.T) {
	handler := NewRouter(Deps{DB: failingPinger{}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestUnknownRoutesAndMethods(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodPost, "/health", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodGet, "/quotes", "").Code)
}

func TestAvailability(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/availability?date=2026-11-02", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "2026-11-02", res.Date)
	require.Len(t, res.Slots, 2)
	assert.False(t, res.Slots[0].IsAvailable)
	assert.Equal(t, 2, res.Slots[1].AvailableSlots)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/availability?date=02-11-2026", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/availability", "").Code)
}

func TestAvailabilityConfigurationError(t *testing.T) {
	s := newTestServer(t)
	s.rules.fleet = 0

	rec := s.do(http.MethodGet, "/availability?date=2026-11-02", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateQuote(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/quotes", quoteBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, int64(107100), res.EstimatedPrice)
	assert.Equal(t, 80.0, res.TotalDistanceKm)
	assert.False(t, res.DistanceFallback)
	assert.Equal(t, []string{"packing"}, res.ContactServices)
	assert.Equal(t, 4, res.RulesVersion)
	assert.NotEmpty(t, res.Breakdown)
}

func TestCreateQuoteFallsBackToDefaultDistance(t *testing.T) {
	s := newTestServer(t)

	body := strings.Replace(quoteBody, `"Las Condes"`, `"Unknown Commune"`, 1)
	rec := s.do(http.MethodPost, "/quotes", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.DistanceFallback)
	assert.Equal(t, s.resolver.DefaultKm(), res.TotalDistanceKm)
}

func TestCreateQuoteRejectsBadRequests(t *testing.T) {
	s := newTestServer(t)

	cases := map[string]string{
		"malformed json": `{"date":`,
		"unknown field":  strings.Replace(quoteBody, `"isFlexible"`, `"flexible"`, 1),
		"two objects":    quoteBody + `{}`,
		"bad date":       strings.Replace(quoteBody, `"2026-11-02"`, `"tomorrow"`, 1),
		"bad quantity":   strings.Replace(quoteBody, `"quantity": 1`, `"quantity": 0`, 1),
		"bad property":   strings.Replace(quoteBody, `"house"`, `"castle"`, 1),
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/quotes", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateQuoteConfigurationError(t *testing.T) {
	s := newTestServer(t)
	s.rules.doc.Discounts = nil

	rec := s.do(http.MethodPost, "/quotes", quoteBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"pricing configuration error"}`, rec.Body.String())
}

func TestAdminClearCache(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/quotes", quoteBody).Code)
	coords, distances := s.resolver.CacheSize()
	require.Equal(t, 2, coords)
	require.Equal(t, 1, distances)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/admin/cache?scope=distance", "").Code)
	coords, distances = s.resolver.CacheSize()
	assert.Equal(t, 2, coords)
	assert.Equal(t, 0, distances)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/admin/cache", "").Code)
	coords, _ = s.resolver.CacheSize()
	assert.Equal(t, 0, coords)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/admin/cache?scope=everything", "").Code)
}

func TestAdminInvalidateRules(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/admin/rules-cache", "").Code)
	assert.Equal(t, 1, s.rulesCache.invalidated)

	noCache := NewRouter(Deps{})
	rec := httptest.NewRecorder()
	noCache.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/rules-cache", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
