package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

// Cache stores resolved setting values between requests.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Value is a registered setting with its effective value.
type Value struct {
	Definition
	Value int
}

type Service struct {
	store  repository.ConfigRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(store repository.ConfigRepository, cache Cache, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("config repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  store,
		cache:  cache,
		ttl:    defaultCacheTTL,
		logger: logger,
	}, nil
}

// ItemsPerPage returns the configured page size, defaulting to 10.
func (s *Service) ItemsPerPage(ctx context.Context) (int, error) {
	def, err := Lookup(ItemsPerPage)
	if err != nil {
		return DefaultItemsPerPage, err
	}
	return s.get(ctx, def)
}

// List returns every registered setting with its effective value.
func (s *Service) List(ctx context.Context) ([]Value, error) {
	defs := Definitions()
	values := make([]Value, 0, len(defs))
	for _, def := range defs {
		value, err := s.get(ctx, def)
		if err != nil {
			return nil, err
		}
		values = append(values, Value{Definition: def, Value: value})
	}
	return values, nil
}

// Set validates and stores a setting, then drops the cached value.
func (s *Service) Set(ctx context.Context, name string, raw string) (Value, error) {
	def, err := Lookup(name)
	if err != nil {
		return Value{}, err
	}

	value, err := def.Parse(raw)
	if err != nil {
		return Value{}, err
	}

	if err := s.store.Set(ctx, def.Plugin, def.Name, strconv.Itoa(value)); err != nil {
		return Value{}, fmt.Errorf("failed to store setting %s: %w", def.FullName(), err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey(def)); err != nil {
			s.logger.Warn("failed to invalidate cached setting",
				zap.String("setting", def.FullName()),
				zap.Error(err),
			)
		}
	}

	return Value{Definition: def, Value: value}, nil
}

func (s *Service) get(ctx context.Context, def Definition) (int, error) {
	key := cacheKey(def)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("failed to read cached setting", zap.String("setting", def.FullName()), zap.Error(err))
		} else if ok {
			return def.Resolve(cached), nil
		}
	}

	stored, err := s.store.Get(ctx, def.Plugin, def.Name)
	if errors.Is(err, domain.ErrNotFound) {
		stored = ""
	} else if err != nil {
		return def.Default, fmt.Errorf("failed to load setting %s: %w", def.FullName(), err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stored, s.ttl); err != nil {
			s.logger.Warn("failed to cache setting", zap.String("setting", def.FullName()), zap.Error(err))
		}
	}

	return def.Resolve(stored), nil
}

func cacheKey(def Definition) string {
	return "config:" + def.Plugin + ":" + def.Name
}
