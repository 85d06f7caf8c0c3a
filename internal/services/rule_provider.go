package services

import (
	"context"
	"errors"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/ports"
)

// RuleProvider supplies the active pricing rules and fleet size, fetched fresh on every call.
// Caching, if any, belongs to the RulesStore implementation.
type RuleProvider struct {
	store ports.RulesStore
}

func NewRuleProvider(store ports.RulesStore) *RuleProvider {
	return &RuleProvider{store: store}
}

// ActiveRules returns the validated active rule set.
// Missing rule groups and missing records are configuration errors.
func (p *RuleProvider) ActiveRules(ctx context.Context) (domain.PricingRules, error) {
	if p.store == nil {
		return domain.PricingRules{}, fmt.Errorf("active rules: %w: no rules store", domain.ErrConfiguration)
	}

	doc, err := p.store.ActivePricingRules(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PricingRules{}, fmt.Errorf("active rules: %w: %w", domain.ErrConfiguration, err)
		}
		return domain.PricingRules{}, fmt.Errorf("active rules: %w", err)
	}

	rules, err := doc.Rules()
	if err != nil {
		return domain.PricingRules{}, fmt.Errorf("active rules: %w", err)
	}
	return rules, nil
}

// Fleet returns the current fleet configuration.
func (p *RuleProvider) Fleet(ctx context.Context) (domain.FleetConfig, error) {
	if p.store == nil {
		return domain.FleetConfig{}, fmt.Errorf("fleet: %w: no rules store", domain.ErrConfiguration)
	}

	n, err := p.store.FleetSize(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.FleetConfig{}, fmt.Errorf("fleet: %w: %w", domain.ErrConfiguration, err)
		}
		return domain.FleetConfig{}, fmt.Errorf("fleet: %w", err)
	}

	fleet, err := domain.NewFleetConfig(n)
	if err != nil {
		return domain.FleetConfig{}, fmt.Errorf("fleet: %w", err)
	}
	return fleet, nil
}
