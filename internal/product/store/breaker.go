package store

import (
	"context"
	"errors"
	"log/slog"

	perrors "github.com/abgdnv/marketplace/internal/product/errors"
	"github.com/abgdnv/marketplace/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerStore decorates a ProductStore with a circuit breaker.
// Missing products and cancelled requests are not counted as failures.
type BreakerStore struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

var _ ProductStore = (*BreakerStore)(nil)

// NewBreakerStore wraps next with a circuit breaker configured from cfg.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig, logger *slog.Logger) *BreakerStore {
	st := gobreaker.Settings{
		Name:        "product-store-cb",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, perrors.ErrProductNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[any](st)}
}

// State returns the current breaker state.
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerStore) ContainsKey(ctx context.Context, id string) (bool, error) {
	res, err := s.cb.Execute(func() (any, error) {
		return s.next.ContainsKey(ctx, id)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func (s *BreakerStore) Get(ctx context.Context, id string) (*Product, error) {
	res, err := s.cb.Execute(func() (any, error) {
		return s.next.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Product), nil
}

func (s *BreakerStore) Insert(ctx context.Context, product Product) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.next.Insert(ctx, product)
	})
	return err
}

func (s *BreakerStore) Remove(ctx context.Context, id string) (*Product, error) {
	res, err := s.cb.Execute(func() (any, error) {
		return s.next.Remove(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Product), nil
}

func (s *BreakerStore) Values(ctx context.Context) ([]Product, error) {
	res, err := s.cb.Execute(func() (any, error) {
		return s.next.Values(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]Product), nil
}
