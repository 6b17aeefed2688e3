package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

type orderStore interface {
	ListOrders(ctx context.Context, page, limit int) (*backend.OrderList, error)
	GetOrder(ctx context.Context, orderID string) (*backend.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
}

type queryCache interface {
	GetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, out any) (bool, error)
	SetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string, topics ...enums.CacheTopic) error
}

// Service proxies order history reads and the cancel affordance.
type Service interface {
	List(ctx context.Context, userID string, page, limit int) (*backend.OrderList, error)
	Get(ctx context.Context, userID, orderID string) (*backend.Order, error)
	Cancel(ctx context.Context, userID, orderID string) error
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Store orderStore
	Cache queryCache
	TTLs  config.CacheConfig
}

type service struct {
	store orderStore
	cache queryCache
	ttls  config.CacheConfig
}

// NewService constructs the orders service. The cache is optional.
func NewService(params ServiceParams) (*service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order store required")
	}
	return &service{
		store: params.Store,
		cache: params.Cache,
		ttls:  params.TTLs,
	}, nil
}

// List returns one page of order history, cached per page.
func (s *service) List(ctx context.Context, userID string, page, limit int) (*backend.OrderList, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	suffix := fmt.Sprintf("page-%d-limit-%d", page, limit)
	if s.cache != nil {
		var cached backend.OrderList
		hit, err := s.cache.GetJSON(ctx, userID, enums.CacheTopicOrders, suffix, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	list, err := s.store.ListOrders(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, userID, enums.CacheTopicOrders, suffix, list, s.ttls.OrdersTTL)
	}
	return list, nil
}

// Get returns a single order. Single-order reads are not cached: the detail
// screen is where settlement progress is watched, so it always reads through.
func (s *service) Get(ctx context.Context, userID, orderID string) (*backend.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.store.GetOrder(ctx, orderID)
}

// Cancel asks the backend to cancel an order. Only orders that have not
// shipped are cancelable; the backend re-checks, this guard just gives the
// user a precise error without a round trip through its state machine.
func (s *service) Cancel(ctx context.Context, userID, orderID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.IsCancelable() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order in status %q cannot be canceled", order.Status))
	}

	if err := s.store.CancelOrder(ctx, orderID); err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID, enums.CacheTopicOrders)
	}
	return nil
}
