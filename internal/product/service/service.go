// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/marketplace/internal/product/errors"
	"github.com/abgdnv/marketplace/internal/product/store"
	"github.com/abgdnv/marketplace/pkg/messaging"
	"github.com/abgdnv/marketplace/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the product operations reachable through the router.
// Business outcomes such as "not found" or "already exists" are reported in the
// Response; a non-nil error means the store could not serve the request.
type ProductService interface {
	// ListProducts returns every stored product ordered by ID.
	ListProducts(ctx context.Context, req ListRequest) (*Response, error)

	// GetProduct returns a single product or a not found message.
	GetProduct(ctx context.Context, req GetRequest) (*Response, error)

	// AddProduct stores a new product unless its ID is already taken.
	AddProduct(ctx context.Context, req AddRequest) (*Response, error)

	// UpdateProduct replaces an existing product. The ID from the path always wins.
	UpdateProduct(ctx context.Context, req UpdateRequest) (*Response, error)

	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, req DeleteRequest) (*Response, error)
}

// Service implements ProductService on top of a ProductStore.
type Service struct {
	store     store.ProductStore
	publisher messaging.Publisher
	logger    *slog.Logger
	mutations metric.Int64Counter
	now       func() time.Time
}

var _ ProductService = (*Service)(nil)

// NewService creates a new instance of ProductService.
func NewService(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("marketplace")
	mutations, err := meter.Int64Counter("products_mutated",
		metric.WithDescription("Total number of successful product mutations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_mutated counter: %v", err))
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		store:     productStore,
		publisher: publisher,
		logger:    logger.With("component", "service"),
		mutations: mutations,
		now:       time.Now,
	}
}

func (s *Service) ListProducts(ctx context.Context, _ ListRequest) (*Response, error) {
	products, err := s.store.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &Response{Data: products}, nil
}

func (s *Service) GetProduct(ctx context.Context, req GetRequest) (*Response, error) {
	product, err := s.store.Get(ctx, req.ID)
	if errors.Is(err, perrors.ErrProductNotFound) {
		return message(fmt.Sprintf("a product with id=%s not found", req.ID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", req.ID, err)
	}
	return &Response{Data: product}, nil
}

func (s *Service) AddProduct(ctx context.Context, req AddRequest) (*Response, error) {
	product := req.Product
	exists, err := s.store.ContainsKey(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product %s: %w", product.ID, err)
	}
	if exists {
		return message(fmt.Sprintf("a product id=%s already exists", product.ID)), nil
	}
	if err = s.store.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to add product %s: %w", product.ID, err)
	}

	s.publish(ctx, events.ProductCreatedEvent{
		ProductID:  product.ID,
		Product:    toSnapshot(product),
		OccurredAt: s.now().UTC(),
	})
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "add")))

	return &Response{Data: ProductResult{Product: product}}, nil
}

func (s *Service) UpdateProduct(ctx context.Context, req UpdateRequest) (*Response, error) {
	product := req.Product
	product.ID = req.ID

	exists, err := s.store.ContainsKey(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product %s: %w", req.ID, err)
	}
	if !exists {
		return message(fmt.Sprintf("couldn't update a product with id=%s. product not found", req.ID)), nil
	}
	if err = s.store.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", req.ID, err)
	}

	s.publish(ctx, events.ProductUpdatedEvent{
		ProductID:  product.ID,
		Product:    toSnapshot(product),
		OccurredAt: s.now().UTC(),
	})
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "update")))

	return &Response{Data: ProductResult{Product: product}}, nil
}

func (s *Service) DeleteProduct(ctx context.Context, req DeleteRequest) (*Response, error) {
	_, err := s.store.Remove(ctx, req.ID)
	if errors.Is(err, perrors.ErrProductNotFound) {
		return message(fmt.Sprintf("couldn't delete a product with id=%s. there is no such product.", req.ID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete product %s: %w", req.ID, err)
	}

	s.publish(ctx, events.ProductDeletedEvent{
		ProductID:  req.ID,
		OccurredAt: s.now().UTC(),
	})
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "delete")))

	return &Response{Data: DeleteResult{ID: req.ID, Deleted: true}}, nil
}

// publish never fails the caller; the mutation has already happened.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func message(msg string) *Response {
	return &Response{Data: Message{Msg: msg}}
}

func toSnapshot(p store.Product) events.ProductSnapshot {
	return events.ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Location:    p.Location,
		Description: p.Description,
		Image:       p.Image,
		Owner:       p.Owner,
	}
}
