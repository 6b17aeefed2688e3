package controllers

import (
	"net/http"

	"github.com/designdrip/storefront-core/api/middleware"
	"github.com/designdrip/storefront-core/api/responses"
	"github.com/designdrip/storefront-core/api/validators"
	"github.com/designdrip/storefront-core/internal/cart"
	"github.com/designdrip/storefront-core/pkg/logger"
	"github.com/designdrip/storefront-core/pkg/money"
)

// CartFetch returns the user's cart with per-line totals computed, raw and
// formatted for display.
func CartFetch(svc cart.Service, display money.Formatter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userCart, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		totals := make(map[string]int64, len(userCart.Items))
		formatted := make(map[string]string, len(userCart.Items))
		for _, item := range userCart.Items {
			total := svc.ItemTotal(item)
			totals[item.ID] = total
			formatted[item.ID] = display.Format(total)
		}

		responses.WriteSuccess(w, map[string]any{
			"cart":              userCart,
			"itemTotals":        totals,
			"itemTotalsDisplay": formatted,
		})
	}
}

// CartSelection returns the current selection with its subtotal over a fresh
// cart snapshot.
func CartSelection(svc cart.Service, selections *cart.SelectionRegistry, display money.Formatter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userCart, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selection := selections.Selection(userID)
		subtotal := selection.Subtotal(userCart)
		responses.WriteSuccess(w, map[string]any{
			"itemIds":         selection.IDs(),
			"subtotal":        subtotal,
			"subtotalDisplay": display.Format(subtotal),
		})
	}
}

type toggleRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

// CartSelectionToggle flips one item's membership in the selection.
func CartSelectionToggle(selections *cart.SelectionRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload toggleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selection := selections.Selection(userID)
		selected := selection.Toggle(payload.ItemID)
		responses.WriteSuccess(w, map[string]any{
			"itemId":   payload.ItemID,
			"selected": selected,
			"itemIds":  selection.IDs(),
		})
	}
}

// CartSelectionAll marks every item in the current cart, in cart order.
func CartSelectionAll(svc cart.Service, selections *cart.SelectionRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userCart, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selection := selections.Selection(userID)
		selection.SelectAll(userCart)
		responses.WriteSuccess(w, map[string]any{"itemIds": selection.IDs()})
	}
}

// CartSelectionClear drops every selected item.
func CartSelectionClear(selections *cart.SelectionRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selections.Selection(userID).Clear()
		responses.WriteSuccess(w, map[string]any{"itemIds": []string{}})
	}
}
