package cart

import (
	"context"
	"strings"
	"time"

	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

type cartStore interface {
	GetCart(ctx context.Context) (*backend.Cart, error)
}

type queryCache interface {
	GetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, out any) (bool, error)
	SetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, value any, ttl time.Duration) error
}

// Service reads the user's cart and prices its line items.
type Service interface {
	Get(ctx context.Context, userID string) (*backend.Cart, error)
	ItemTotal(item backend.CartItem) int64
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store cartStore
	Cache queryCache
	TTLs  config.CacheConfig
}

type service struct {
	store cartStore
	cache queryCache
	ttls  config.CacheConfig
}

// NewService constructs the cart service. The cache is optional.
func NewService(params ServiceParams) (*service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	return &service{
		store: params.Store,
		cache: params.Cache,
		ttls:  params.TTLs,
	}, nil
}

// Get returns the cart, served from cache when fresh.
func (s *service) Get(ctx context.Context, userID string) (*backend.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if s.cache != nil {
		var cached backend.Cart
		hit, err := s.cache.GetJSON(ctx, userID, enums.CacheTopicCart, "", &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	cart, err := s.store.GetCart(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, userID, enums.CacheTopicCart, "", cart, s.ttls.CartTTL)
	}
	return cart, nil
}

// ItemTotal prices one cart line across its size rows.
func (s *service) ItemTotal(item backend.CartItem) int64 {
	return item.Total()
}
