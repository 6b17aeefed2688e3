package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/designdrip/storefront-core/api/responses"
	"github.com/designdrip/storefront-core/pkg/config"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
	"github.com/designdrip/storefront-core/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// SubmitRateLimit throttles checkout submissions per user with a fixed
// window. Runs after Auth so the user id is present.
func SubmitRateLimit(cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.SubmitLimit <= 0 || cfg.SubmitWindow <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID, err := UserID(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, "checkout:"+userID, cfg.SubmitLimit, cfg.SubmitWindow)
			if err != nil {
				// The throttle is best effort; a broken counter must not
				// block checkout.
				if logg != nil {
					logg.Warn(ctx, "rate limit counter unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"attempts":       count,
						"limit":          cfg.SubmitLimit,
						"window_seconds": int(cfg.SubmitWindow.Seconds()),
					})
					logg.Warn(logCtx, "checkout.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many checkout attempts, try again shortly"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
