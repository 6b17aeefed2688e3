package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

type infoLoader interface {
	GetCheckoutInfo(ctx context.Context, itemIDs []string) (*backend.CheckoutInfo, error)
}

type queryCache interface {
	GetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, out any) (bool, error)
	SetJSON(ctx context.Context, userID string, topic enums.CacheTopic, suffix string, value any, ttl time.Duration) error
}

// InfoService fetches the server-computed checkout view for a selection,
// cached per selection. The snapshot is never patched locally: any cart
// mutation invalidates the topic and forces a refetch.
type InfoService struct {
	loader infoLoader
	cache  queryCache
	ttls   config.CacheConfig
}

// NewInfoService builds the loader. The cache is optional.
func NewInfoService(loader infoLoader, cache queryCache, ttls config.CacheConfig) (*InfoService, error) {
	if loader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "info loader required")
	}
	return &InfoService{loader: loader, cache: cache, ttls: ttls}, nil
}

// Load returns the checkout info for the selected items.
func (s *InfoService) Load(ctx context.Context, userID string, itemIDs []string) (*backend.CheckoutInfo, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(itemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items selected")
	}

	suffix := strings.Join(itemIDs, ",")
	if s.cache != nil {
		var cached backend.CheckoutInfo
		hit, err := s.cache.GetJSON(ctx, userID, enums.CacheTopicCheckoutInfo, suffix, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	info, err := s.loader.GetCheckoutInfo(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, userID, enums.CacheTopicCheckoutInfo, suffix, info, s.ttls.CheckoutInfoTTL)
	}
	return info, nil
}
