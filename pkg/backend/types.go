package backend

import (
	"time"

	"github.com/designdrip/storefront-core/pkg/enums"
)

// CheckoutItem is one line of the server-computed checkout view.
type CheckoutItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DesignName string `json:"designName"`
	Color      string `json:"color"`
	Total      int64  `json:"total"`
}

// CheckoutInfo is the backend's snapshot of a selection. It goes stale after
// any cart mutation and must be refetched, never patched locally.
type CheckoutInfo struct {
	Items                []CheckoutItem `json:"items"`
	TotalAmount          int64          `json:"totalAmount"`
	HasPaymentMethods    bool           `json:"hasPaymentMethods"`
	DefaultPaymentMethod *PaymentMethod `json:"defaultPaymentMethod,omitempty"`
}

// PaymentMethod is the stored-card view the backend exposes.
type PaymentMethod struct {
	ID        string `json:"id"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"exp_month"`
	ExpYear   int    `json:"exp_year"`
	IsDefault bool   `json:"isDefault"`
}

// ShippingAddressFields is the postal portion of a shipping record.
type ShippingAddressFields struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ShippingDetails is the shipping block attached to a checkout submission.
type ShippingDetails struct {
	Name    string                `json:"name"`
	Phone   string                `json:"phone,omitempty"`
	Address ShippingAddressFields `json:"address"`
	Method  enums.ShippingMethod  `json:"method"`
	Cost    int64                 `json:"cost"`
}

// CheckoutRequest is built once per attempt and submitted exactly once.
type CheckoutRequest struct {
	PaymentMethodID string           `json:"paymentMethodId"`
	ItemIDs         []string         `json:"itemIds"`
	ReturnURL       string           `json:"return_url"`
	Shipping        *ShippingDetails `json:"shipping,omitempty"`
}

// CheckoutResponse is the raw union the backend returns for a submission.
// internal/checkout classifies it into a tagged result; nothing else should
// branch on these optional fields.
type CheckoutResponse struct {
	Status          string `json:"status"`
	RequiresAction  bool   `json:"requiresAction,omitempty"`
	ClientSecret    string `json:"clientSecret,omitempty"`
	OrderID         string `json:"orderId,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

// CartItemSize is one size row within a cart line item.
type CartItemSize struct {
	Size         string `json:"size"`
	Quantity     int    `json:"quantity"`
	PricePerSize int64  `json:"pricePerSize"`
}

// CartItem is one customized-garment line in the cart.
type CartItem struct {
	ID         string         `json:"id"`
	DesignID   string         `json:"designId"`
	DesignName string         `json:"designName"`
	Name       string         `json:"name"`
	Color      string         `json:"color"`
	Sizes      []CartItemSize `json:"data"`
}

// Total sums the item's size rows.
func (c CartItem) Total() int64 {
	var total int64
	for _, row := range c.Sizes {
		total += row.PricePerSize * int64(row.Quantity)
	}
	return total
}

// Cart is the authenticated user's cart contents.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
}

// OrderItemSize mirrors the size/quantity breakdown on an order line.
type OrderItemSize struct {
	Size         string `json:"size"`
	Quantity     int    `json:"quantity"`
	PricePerUnit int64  `json:"pricePerUnit"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	DesignID   string          `json:"designId"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Sizes      []OrderItemSize `json:"sizes"`
	TotalPrice int64           `json:"totalPrice"`
}

// Order is the terminal artifact of a checkout; the client only ever reads it.
type Order struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	Items         []OrderItem       `json:"items"`
	TotalAmount   int64             `json:"totalAmount"`
	Status        enums.OrderStatus `json:"status"`
	PaymentMethod string            `json:"paymentMethod"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Pagination is the backend's page descriptor for order lists.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalOrders int  `json:"totalOrders"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// OrderList is a page of the user's order history.
type OrderList struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}
