package services

import (
	"context"
	"errors"
	"fmt"
	"moving-quote-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRulesStore struct {
	mock.Mock
}

func (m *MockRulesStore) ActivePricingRules(ctx context.Context) (domain.PricingRulesDocument, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.PricingRulesDocument), args.Error(1)
}

func (m *MockRulesStore) FleetSize(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockScheduleStore struct {
	mock.Mock
}

func (m *MockScheduleStore) CanonicalSlots(ctx context.Context) ([]domain.TimeSlot, error) {
	args := m.Called(ctx)
	slots, _ := args.Get(0).([]domain.TimeSlot)
	return slots, args.Error(1)
}

func (m *MockScheduleStore) Occupancy(ctx context.Context, date time.Time, slots []domain.TimeSlot) (map[string]int, error) {
	args := m.Called(ctx, date, slots)
	occ, _ := args.Get(0).(map[string]int)
	return occ, args.Error(1)
}

func (m *MockScheduleStore) BlockedSlots(ctx context.Context, date time.Time) (map[string]struct{}, error) {
	args := m.Called(ctx, date)
	blocked, _ := args.Get(0).(map[string]struct{})
	return blocked, args.Error(1)
}

func TestRuleProviderActiveRules(t *testing.T) {
	store := new(MockRulesStore)
	store.On("ActivePricingRules", mock.Anything).Return(testRules().Document(), nil)

	rules, err := NewRuleProvider(store).ActiveRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testRules(), rules)
	store.AssertExpectations(t)
}

func TestRuleProviderFetchesOnEveryCall(t *testing.T) {
	store := new(MockRulesStore)
	store.On("ActivePricingRules", mock.Anything).Return(testRules().Document(), nil)

	p := NewRuleProvider(store)
	for i := 0; i < 3; i++ {
		_, err := p.ActiveRules(context.Background())
		require.NoError(t, err)
	}
	store.AssertNumberOfCalls(t, "ActivePricingRules", 3)
}

func TestRuleProviderConfigurationErrors(t *testing.T) {
	incomplete := testRules().Document()
	incomplete.Discounts = nil

	cases := map[string]struct {
		doc domain.PricingRulesDocument
		err error
	}{
		"no active record": {domain.PricingRulesDocument{}, fmt.Errorf("active pricing rules: %w", domain.ErrNotFound)},
		"missing group":    {incomplete, nil},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := new(MockRulesStore)
			store.On("ActivePricingRules", mock.Anything).Return(tc.doc, tc.err)

			_, err := NewRuleProvider(store).ActiveRules(context.Background())
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}

	_, err := NewRuleProvider(nil).ActiveRules(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRuleProviderPassesStoreFailuresThrough(t *testing.T) {
	boom := errors.New("connection refused")
	store := new(MockRulesStore)
	store.On("ActivePricingRules", mock.Anything).Return(domain.PricingRulesDocument{}, boom)

	_, err := NewRuleProvider(store).ActiveRules(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrConfiguration)
}

func TestRuleProviderFleet(t *testing.T) {
	store := new(MockRulesStore)
	store.On("FleetSize", mock.Anything).Return(3, nil).Once()
	store.On("FleetSize", mock.Anything).Return(0, nil).Once()
	store.On("FleetSize", mock.Anything).Return(0, domain.ErrNotFound).Once()

	p := NewRuleProvider(store)

	fleet, err := p.Fleet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, fleet.NumVehicles)

	_, err = p.Fleet(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = p.Fleet(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
