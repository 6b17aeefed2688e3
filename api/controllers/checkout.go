package controllers

import (
	"context"
	"net/http"

	"github.com/designdrip/storefront-core/api/middleware"
	"github.com/designdrip/storefront-core/api/responses"
	"github.com/designdrip/storefront-core/api/validators"
	"github.com/designdrip/storefront-core/internal/cart"
	checkoutsvc "github.com/designdrip/storefront-core/internal/checkout"
	"github.com/designdrip/storefront-core/internal/paymentmethods"
	"github.com/designdrip/storefront-core/internal/pricing"
	"github.com/designdrip/storefront-core/internal/shipping"
	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
	"github.com/designdrip/storefront-core/pkg/logger"
	"github.com/designdrip/storefront-core/pkg/money"
)

type checkoutInfoLoader interface {
	Load(ctx context.Context, userID string, itemIDs []string) (*backend.CheckoutInfo, error)
}

type checkoutSubmitter interface {
	Submit(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.Outcome, error)
}

type topicInvalidator interface {
	Invalidate(ctx context.Context, userID string, topics ...enums.CacheTopic) error
}

// CheckoutInfo returns the server-computed checkout view for the selected
// cart items. The first load of a flow bootstraps the payment-method
// selection from the account default. Without an explicit itemIds query the
// user's cart selection is handed off.
func CheckoutInfo(svc checkoutInfoLoader, sessions *paymentmethods.SessionRegistry, selections *cart.SelectionRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemIDs := validators.ParseQueryIDList(r, "itemIds")
		if len(itemIDs) == 0 && selections != nil {
			itemIDs, err = selections.Selection(userID).CheckoutIDs()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		info, err := svc.Load(r.Context(), userID, itemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var selectedID string
		if sessions != nil {
			session := sessions.Session(userID)
			session.ApplyCheckoutInfo(info)
			selectedID, _ = session.SelectedID()
		}

		responses.WriteSuccess(w, map[string]any{
			"info":                  info,
			"selectedPaymentMethod": selectedID,
		})
	}
}

type quoteRequest struct {
	ItemIDs        []string `json:"itemIds" validate:"omitempty,min=1"`
	ShippingMethod string   `json:"shippingMethod" validate:"omitempty,oneof=standard express"`
}

type quoteDisplay struct {
	Subtotal     string `json:"subtotal"`
	ShippingCost string `json:"shippingCost"`
	GrandTotal   string `json:"grandTotal"`
}

type quoteResponse struct {
	ItemIDs      []string     `json:"itemIds"`
	Subtotal     int64        `json:"subtotal"`
	ShippingCost int64        `json:"shippingCost"`
	GrandTotal   int64        `json:"grandTotal"`
	Display      quoteDisplay `json:"display"`
}

// CheckoutQuote prices a selection ahead of submission: subtotal from the
// checkout view plus the shipping cost for the chosen method. Omitting
// itemIds prices the user's cart selection.
func CheckoutQuote(svc checkoutInfoLoader, resolver *shipping.Resolver, selections *cart.SelectionRegistry, display money.Formatter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemIDs := payload.ItemIDs
		if len(itemIDs) == 0 {
			if selections == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no items selected"))
				return
			}
			itemIDs, err = selections.Selection(userID).CheckoutIDs()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		info, err := svc.Load(r.Context(), userID, itemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method := enums.ShippingMethodStandard
		if payload.ShippingMethod != "" {
			method, err = enums.ParseShippingMethod(payload.ShippingMethod)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown shipping method"))
				return
			}
		}

		quote, err := pricing.BuildQuote(info, resolver.CostFor(method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quoteResponse{
			ItemIDs:      quote.ItemIDs,
			Subtotal:     quote.Subtotal,
			ShippingCost: quote.ShippingCost,
			GrandTotal:   quote.GrandTotal,
			Display: quoteDisplay{
				Subtotal:     display.Format(quote.Subtotal),
				ShippingCost: display.Format(quote.ShippingCost),
				GrandTotal:   display.Format(quote.GrandTotal),
			},
		})
	}
}

type submitRequest struct {
	PaymentMethodID string           `json:"paymentMethodId" validate:"required"`
	ItemIDs         []string         `json:"itemIds" validate:"required,min=1"`
	Shipping        *shippingPayload `json:"shipping,omitempty"`
}

type shippingPayload struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Method     string `json:"method" validate:"required,oneof=standard express"`
}

// CheckoutSubmit drives one checkout attempt to a terminal outcome. The
// response always carries the outcome state and message; cached query
// families named by the outcome are invalidated before responding.
func CheckoutSubmit(
	coordinator checkoutSubmitter,
	infoSvc checkoutInfoLoader,
	resolver *shipping.Resolver,
	cache topicInvalidator,
	sessions *paymentmethods.SessionRegistry,
	selections *cart.SelectionRegistry,
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := infoSvc.Load(r.Context(), userID, payload.ItemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var details *shipping.Details
		if payload.Shipping != nil {
			method, err := enums.ParseShippingMethod(payload.Shipping.Method)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown shipping method"))
				return
			}
			details, err = resolver.Capture(shipping.Address{
				Name:       payload.Shipping.Name,
				Phone:      payload.Shipping.Phone,
				Line1:      payload.Shipping.Line1,
				Line2:      payload.Shipping.Line2,
				City:       payload.Shipping.City,
				State:      payload.Shipping.State,
				PostalCode: payload.Shipping.PostalCode,
				Country:    payload.Shipping.Country,
			}, method)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		outcome, err := coordinator.Submit(r.Context(), checkoutsvc.SubmitInput{
			UserID:          userID,
			Info:            info,
			PaymentMethodID: payload.PaymentMethodID,
			ItemIDs:         payload.ItemIDs,
			Shipping:        details,
			RequireShipping: payload.Shipping != nil,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if cache != nil && len(outcome.Invalidate) > 0 {
			if err := cache.Invalidate(r.Context(), userID, outcome.Invalidate...); err != nil && logg != nil {
				logg.Warn(r.Context(), "cache invalidation after checkout failed")
			}
		}

		// A settled flow is over; the next one bootstraps its selection fresh,
		// and the purchased items are no longer selectable.
		if outcome.State == checkoutsvc.StateSucceeded {
			if sessions != nil {
				sessions.Reset(userID)
			}
			if selections != nil {
				selections.Reset(userID)
			}
		}

		responses.WriteSuccess(w, outcome)
	}
}
