package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/designdrip/storefront-core/api/middleware"
	"github.com/designdrip/storefront-core/internal/cart"
	checkoutsvc "github.com/designdrip/storefront-core/internal/checkout"
	"github.com/designdrip/storefront-core/internal/paymentmethods"
	"github.com/designdrip/storefront-core/internal/shipping"
	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/enums"
	"github.com/designdrip/storefront-core/pkg/logger"
	"github.com/designdrip/storefront-core/pkg/money"
)

type stubInfoLoader struct {
	info    *backend.CheckoutInfo
	lastIDs []string
	err     error
}

func (s *stubInfoLoader) Load(ctx context.Context, userID string, itemIDs []string) (*backend.CheckoutInfo, error) {
	s.lastIDs = itemIDs
	if s.err != nil {
		return nil, s.err
	}
	return s.info, nil
}

type stubCoordinator struct {
	outcome   *checkoutsvc.Outcome
	err       error
	lastInput checkoutsvc.SubmitInput
	calls     int
}

func (s *stubCoordinator) Submit(ctx context.Context, input checkoutsvc.SubmitInput) (*checkoutsvc.Outcome, error) {
	s.calls++
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

type stubInvalidator struct {
	topics []enums.CacheTopic
	userID string
}

func (s *stubInvalidator) Invalidate(ctx context.Context, userID string, topics ...enums.CacheTopic) error {
	s.userID = userID
	s.topics = append(s.topics, topics...)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func testResolver() *shipping.Resolver {
	return shipping.NewResolver(config.ShippingConfig{ExpressSurcharge: 30000})
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
}

func TestCheckoutSubmitHappyPath(t *testing.T) {
	loader := &stubInfoLoader{info: &backend.CheckoutInfo{
		Items:       []backend.CheckoutItem{{ID: "item-1", Total: 250000}},
		TotalAmount: 250000,
	}}
	coordinator := &stubCoordinator{outcome: &checkoutsvc.Outcome{
		State:      checkoutsvc.StateSucceeded,
		Message:    "Payment successful!",
		OrderRef:   "order-1",
		NavigateTo: checkoutsvc.NavigateOrderDetail,
		Invalidate: enums.AllCacheTopics(),
	}}
	cache := &stubInvalidator{}

	body, _ := json.Marshal(map[string]any{
		"paymentMethodId": "pm_1",
		"itemIds":         []string{"item-1"},
	})
	sessions := paymentmethods.NewSessionRegistry()
	if err := sessions.Session("user-1").Select("pm_1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	selections := cart.NewSelectionRegistry()
	selections.Selection("user-1").Toggle("item-1")

	rec := httptest.NewRecorder()
	CheckoutSubmit(coordinator, loader, testResolver(), cache, sessions, selections, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/checkout", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if coordinator.lastInput.UserID != "user-1" || coordinator.lastInput.PaymentMethodID != "pm_1" {
		t.Fatalf("unexpected submit input %+v", coordinator.lastInput)
	}
	if coordinator.lastInput.RequireShipping {
		t.Fatalf("shipping not sent, must not be required")
	}

	var envelope struct {
		Data checkoutsvc.Outcome `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Message != "Payment successful!" || envelope.Data.OrderRef != "order-1" {
		t.Fatalf("unexpected outcome %+v", envelope.Data)
	}

	if cache.userID != "user-1" || len(cache.topics) != 4 {
		t.Fatalf("expected all four topics invalidated, got %v for %q", cache.topics, cache.userID)
	}

	// Success ends the flow, so the selection session starts over.
	if _, ok := sessions.Session("user-1").SelectedID(); ok {
		t.Fatalf("session must reset after a settled checkout")
	}
	if selections.Selection("user-1").Selected("item-1") {
		t.Fatalf("cart selection must reset after a settled checkout")
	}
}

func TestCheckoutSubmitWithShippingStampsCost(t *testing.T) {
	loader := &stubInfoLoader{info: &backend.CheckoutInfo{
		Items:       []backend.CheckoutItem{{ID: "item-1", Total: 500000}},
		TotalAmount: 500000,
	}}
	coordinator := &stubCoordinator{outcome: &checkoutsvc.Outcome{State: checkoutsvc.StatePending}}

	body, _ := json.Marshal(map[string]any{
		"paymentMethodId": "pm_1",
		"itemIds":         []string{"item-1"},
		"shipping": map[string]string{
			"name":        "Linh Tran",
			"line1":       "12 Hang Bac",
			"city":        "Hanoi",
			"state":       "HN",
			"postal_code": "100000",
			"country":     "VN",
			"method":      "express",
		},
	})
	rec := httptest.NewRecorder()
	CheckoutSubmit(coordinator, loader, testResolver(), nil, nil, nil, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/checkout", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if !coordinator.lastInput.RequireShipping {
		t.Fatalf("shipping sent, must be required")
	}
	if coordinator.lastInput.Shipping == nil || coordinator.lastInput.Shipping.Cost != 30000 {
		t.Fatalf("express cost not stamped: %+v", coordinator.lastInput.Shipping)
	}
}

func TestCheckoutSubmitRejectsIncompleteShipping(t *testing.T) {
	loader := &stubInfoLoader{info: &backend.CheckoutInfo{
		Items: []backend.CheckoutItem{{ID: "item-1", Total: 1000}},
	}}
	coordinator := &stubCoordinator{}

	body, _ := json.Marshal(map[string]any{
		"paymentMethodId": "pm_1",
		"itemIds":         []string{"item-1"},
		"shipping": map[string]string{
			"name":   "Linh Tran",
			"method": "standard",
		},
	})
	rec := httptest.NewRecorder()
	CheckoutSubmit(coordinator, loader, testResolver(), nil, nil, nil, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/checkout", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if coordinator.calls != 0 {
		t.Fatalf("coordinator must not run on invalid shipping")
	}
}

func TestCheckoutSubmitRejectsMissingPaymentMethod(t *testing.T) {
	coordinator := &stubCoordinator{}
	body, _ := json.Marshal(map[string]any{"itemIds": []string{"item-1"}})

	rec := httptest.NewRecorder()
	CheckoutSubmit(coordinator, &stubInfoLoader{}, testResolver(), nil, nil, nil, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/checkout", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if coordinator.calls != 0 {
		t.Fatalf("coordinator must not run without a payment method")
	}
}

func TestCheckoutInfoPassesSelection(t *testing.T) {
	loader := &stubInfoLoader{info: &backend.CheckoutInfo{
		Items:                []backend.CheckoutItem{{ID: "item-1", Total: 100}, {ID: "item-2", Total: 200}},
		TotalAmount:          300,
		DefaultPaymentMethod: &backend.PaymentMethod{ID: "pm_default"},
	}}
	sessions := paymentmethods.NewSessionRegistry()

	rec := httptest.NewRecorder()
	CheckoutInfo(loader, sessions, nil, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/checkout/info?itemIds=item-1,item-2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if len(loader.lastIDs) != 2 || loader.lastIDs[0] != "item-1" {
		t.Fatalf("selection not forwarded: %v", loader.lastIDs)
	}

	var envelope struct {
		Data struct {
			SelectedPaymentMethod string `json:"selectedPaymentMethod"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.SelectedPaymentMethod != "pm_default" {
		t.Fatalf("default not bootstrapped: %+v", envelope.Data)
	}
}

func TestCheckoutQuoteAddsExpressSurcharge(t *testing.T) {
	loader := &stubInfoLoader{info: &backend.CheckoutInfo{
		Items:       []backend.CheckoutItem{{ID: "item-1", Total: 500000}},
		TotalAmount: 500000,
	}}

	body, _ := json.Marshal(map[string]any{
		"itemIds":        []string{"item-1"},
		"shippingMethod": "express",
	})
	rec := httptest.NewRecorder()
	CheckoutQuote(loader, testResolver(), nil, money.VND, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/checkout/quote", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data quoteResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.GrandTotal != 530000 || envelope.Data.ShippingCost != 30000 {
		t.Fatalf("unexpected quote %+v", envelope.Data)
	}
	if envelope.Data.Display.GrandTotal != "₫530,000" {
		t.Fatalf("unexpected display total %q", envelope.Data.Display.GrandTotal)
	}
}

func TestCheckoutInfoFallsBackToCartSelection(t *testing.T) {
	loader := &stubInfoLoader{info: &backend.CheckoutInfo{
		Items:       []backend.CheckoutItem{{ID: "item-2", Total: 200}, {ID: "item-1", Total: 100}},
		TotalAmount: 300,
	}}
	selections := cart.NewSelectionRegistry()
	selections.Selection("user-1").Toggle("item-2")
	selections.Selection("user-1").Toggle("item-1")

	rec := httptest.NewRecorder()
	CheckoutInfo(loader, nil, selections, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/checkout/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(loader.lastIDs) != 2 || loader.lastIDs[0] != "item-2" || loader.lastIDs[1] != "item-1" {
		t.Fatalf("cart selection not handed off in order: %v", loader.lastIDs)
	}
}

func TestCheckoutQuoteFallsBackToCartSelection(t *testing.T) {
	loader := &stubInfoLoader{info: &backend.CheckoutInfo{
		Items:       []backend.CheckoutItem{{ID: "item-1", Total: 500000}},
		TotalAmount: 500000,
	}}
	selections := cart.NewSelectionRegistry()
	selections.Selection("user-1").Toggle("item-1")

	body, _ := json.Marshal(map[string]any{"shippingMethod": "standard"})
	rec := httptest.NewRecorder()
	CheckoutQuote(loader, testResolver(), selections, money.VND, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/checkout/quote", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(loader.lastIDs) != 1 || loader.lastIDs[0] != "item-1" {
		t.Fatalf("cart selection not handed off: %v", loader.lastIDs)
	}
}

func TestCheckoutQuoteEmptySelectionRejected(t *testing.T) {
	selections := cart.NewSelectionRegistry()

	body, _ := json.Marshal(map[string]any{})
	rec := httptest.NewRecorder()
	CheckoutQuote(&stubInfoLoader{}, testResolver(), selections, money.VND, testLogger()).
		ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/checkout/quote", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection, got %d", rec.Code)
	}
}
