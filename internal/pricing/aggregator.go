package pricing

import (
	"github.com/designdrip/storefront-core/pkg/backend"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

// Quote is the priced view of a checkout selection. Amounts are minor
// currency units.
type Quote struct {
	ItemIDs      []string `json:"itemIds"`
	Subtotal     int64    `json:"subtotal"`
	ShippingCost int64    `json:"shippingCost"`
	GrandTotal   int64    `json:"grandTotal"`
}

// Empty reports whether the quote covers no items. An empty quote is a
// terminal state for the screen, never a submittable one.
func (q Quote) Empty() bool {
	return len(q.ItemIDs) == 0
}

// BuildQuote prices a checkout-info snapshot plus the current shipping cost.
// The subtotal is recomputed from the line items rather than trusted from the
// snapshot's aggregate, so the two can be cross-checked by callers.
func BuildQuote(info *backend.CheckoutInfo, shippingCost int64) (*Quote, error) {
	if info == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout info is required")
	}
	if shippingCost < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative")
	}

	itemIDs := make([]string, 0, len(info.Items))
	var subtotal int64
	for _, item := range info.Items {
		itemIDs = append(itemIDs, item.ID)
		subtotal += item.Total
	}

	return &Quote{
		ItemIDs:      itemIDs,
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		GrandTotal:   subtotal + shippingCost,
	}, nil
}

// Reprice returns a copy of the quote with a new shipping cost. Used when the
// shipping method toggles without a checkout-info refetch.
func (q Quote) Reprice(shippingCost int64) Quote {
	q.ShippingCost = shippingCost
	q.GrandTotal = q.Subtotal + shippingCost
	return q
}
