package services

import (
	"context"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/obs"
)

// RouteResolver resolves the driving distance between two addresses without failing.
type RouteResolver interface {
	ResolveRoute(ctx context.Context, origin, destination domain.Address) (km float64, fallback bool)
}

// RulesSource returns the validated active pricing rules.
type RulesSource interface {
	ActiveRules(ctx context.Context) (domain.PricingRules, error)
}

// QuoteService prices a quote request end to end: one rules fetch, one route lookup, one calculation.
type QuoteService struct {
	Rules  RulesSource
	Routes RouteResolver
	Engine *QuoteEngine
}

func NewQuoteService(rules RulesSource, routes RouteResolver) *QuoteService {
	return &QuoteService{Rules: rules, Routes: routes, Engine: NewQuoteEngine()}
}

func (s *QuoteService) Quote(ctx context.Context, in domain.QuoteInputs) (_ domain.QuoteResult, err error) {
	defer obs.Time(ctx, "quote.Quote")(&err)

	// Reject bad input before touching the rules store or the routing provider.
	if err := in.Validate(); err != nil {
		return domain.QuoteResult{}, fmt.Errorf("quote: %w", err)
	}

	rules, err := s.Rules.ActiveRules(ctx)
	if err != nil {
		return domain.QuoteResult{}, fmt.Errorf("quote: %w", err)
	}

	km, fallback := s.Routes.ResolveRoute(ctx, in.Origin, in.Destination)

	res, err := s.Engine.Calculate(in, rules, km)
	if err != nil {
		return domain.QuoteResult{}, fmt.Errorf("quote: %w", err)
	}
	res.DistanceFallback = fallback

	return res, nil
}
