package paymentmethods

import (
	"context"
	"strings"
	"time"

	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

type methodStore interface {
	ListPaymentMethods(ctx context.Context) ([]backend.PaymentMethod, error)
	CreateSetupIntent(ctx context.Context) (string, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID string, setAsDefault bool) (*backend.PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, paymentMethodID string) error
	DeletePaymentMethod(ctx context.Context, paymentMethodID string) error
}

type queryCache interface {
	GetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, out any) (bool, error)
	SetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string, topics ...enums.CacheTopic) error
}

// Service proxies payment-method CRUD to the backend, keeping the cached
// list coherent across mutations.
type Service interface {
	List(ctx context.Context, userID string) ([]backend.PaymentMethod, error)
	SetupSecret(ctx context.Context) (string, error)
	Add(ctx context.Context, userID, paymentMethodID string, setAsDefault bool) (*backend.PaymentMethod, error)
	SetDefault(ctx context.Context, userID, paymentMethodID string) error
	Remove(ctx context.Context, userID, paymentMethodID string) error
}

// ServiceParams groups dependencies for the payment method service.
type ServiceParams struct {
	Store methodStore
	Cache queryCache
	TTLs  config.CacheConfig
}

type service struct {
	store methodStore
	cache queryCache
	ttls  config.CacheConfig
}

// NewService constructs the payment method service. The cache is optional.
func NewService(params ServiceParams) (*service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "method store required")
	}
	return &service{
		store: params.Store,
		cache: params.Cache,
		ttls:  params.TTLs,
	}, nil
}

// List returns the user's stored cards, served from cache when fresh.
func (s *service) List(ctx context.Context, userID string) ([]backend.PaymentMethod, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	if s.cache != nil {
		var cached []backend.PaymentMethod
		hit, err := s.cache.GetJSON(ctx, userID, enums.CacheTopicPaymentMethods, "", &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	methods, err := s.store.ListPaymentMethods(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, userID, enums.CacheTopicPaymentMethods, "", methods, s.ttls.PaymentMethodsTTL)
	}
	return methods, nil
}

// SetupSecret obtains a client secret for collecting a new card on-device.
func (s *service) SetupSecret(ctx context.Context) (string, error) {
	return s.store.CreateSetupIntent(ctx)
}

// Add attaches a collected card. The stored-card list and the checkout view
// both change, so their topics are invalidated together.
func (s *service) Add(ctx context.Context, userID, paymentMethodID string, setAsDefault bool) (*backend.PaymentMethod, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(paymentMethodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}

	method, err := s.store.AttachPaymentMethod(ctx, paymentMethodID, setAsDefault)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return method, nil
}

// SetDefault promotes a stored card to the account default.
func (s *service) SetDefault(ctx context.Context, userID, paymentMethodID string) error {
	if strings.TrimSpace(paymentMethodID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}

	if err := s.store.SetDefaultPaymentMethod(ctx, paymentMethodID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

// Remove detaches a stored card.
func (s *service) Remove(ctx context.Context, userID, paymentMethodID string) error {
	if strings.TrimSpace(paymentMethodID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}

	if err := s.store.DeletePaymentMethod(ctx, paymentMethodID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

func (s *service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, userID, enums.CacheTopicPaymentMethods, enums.CacheTopicCheckoutInfo)
}
