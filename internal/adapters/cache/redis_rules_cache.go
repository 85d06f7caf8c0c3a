package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/ports"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	rulesKey = "pricing:rules:active"
	fleetKey = "pricing:fleet:size"
)

// RedisRulesStore caches the active pricing rules and fleet size in Redis for a short TTL.
// Redis failures fall through to the wrapped store; they never fail a request.
type RedisRulesStore struct {
	next   ports.RulesStore
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisRulesStore(next ports.RulesStore, client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisRulesStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisRulesStore{next: next, client: client, ttl: ttl, log: log}
}

func (s *RedisRulesStore) ActivePricingRules(ctx context.Context) (domain.PricingRulesDocument, error) {
	if s.ttl > 0 {
		raw, err := s.client.Get(ctx, rulesKey).Bytes()
		switch {
		case err == nil:
			var doc domain.PricingRulesDocument
			decodeErr := json.Unmarshal(raw, &doc)
			if decodeErr == nil {
				return doc, nil
			}
			s.log.Warn("discarding undecodable cached pricing rules", zap.Error(decodeErr))
		case !errors.Is(err, redis.Nil):
			s.log.Warn("rules cache read failed", zap.Error(err))
		}
	}

	doc, err := s.next.ActivePricingRules(ctx)
	if err != nil {
		return domain.PricingRulesDocument{}, err
	}

	if s.ttl > 0 {
		payload, err := json.Marshal(doc)
		if err != nil {
			return domain.PricingRulesDocument{}, fmt.Errorf("encode pricing rules: %w", err)
		}
		if err := s.client.Set(ctx, rulesKey, payload, s.ttl).Err(); err != nil {
			s.log.Warn("rules cache write failed", zap.Error(err))
		}
	}

	return doc, nil
}

func (s *RedisRulesStore) FleetSize(ctx context.Context) (int, error) {
	if s.ttl > 0 {
		n, err := s.client.Get(ctx, fleetKey).Int()
		switch {
		case err == nil:
			return n, nil
		case !errors.Is(err, redis.Nil):
			s.log.Warn("fleet cache read failed", zap.Error(err))
		}
	}

	n, err := s.next.FleetSize(ctx)
	if err != nil {
		return 0, err
	}

	if s.ttl > 0 {
		if err := s.client.Set(ctx, fleetKey, strconv.Itoa(n), s.ttl).Err(); err != nil {
			s.log.Warn("fleet cache write failed", zap.Error(err))
		}
	}

	return n, nil
}

// Invalidate drops the cached entries so the next read hits the wrapped store.
func (s *RedisRulesStore) Invalidate(ctx context.Context) error {
	if err := s.client.Del(ctx, rulesKey, fleetKey).Err(); err != nil {
		return fmt.Errorf("invalidate rules cache: %w", err)
	}
	return nil
}
