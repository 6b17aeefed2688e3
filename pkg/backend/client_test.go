package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/designdrip/storefront-core/pkg/auth"
	"github.com/designdrip/storefront-core/pkg/config"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

func testConfig() config.BackendConfig {
	return config.BackendConfig{
		BaseURL: "http://backend.test/api",
		Timeout: 5 * time.Second,
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(testConfig(), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestGetCheckoutInfoRequest(t *testing.T) {
	const expectedURL = "http://backend.test/api/payments/checkout/info?itemIds=item-1%2Citem-2"
	respBody := `{"items":[{"id":"item-1","name":"Classic Tee","designName":"Wave","color":"black","total":250000}],"totalAmount":250000,"hasPaymentMethods":true,"defaultPaymentMethod":{"id":"pm_1","brand":"visa","last4":"4242","exp_month":4,"exp_year":2030,"isDefault":true}}`

	var capturedURL string
	var capturedAuth string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedAuth = req.Header.Get("Authorization")
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client := newTestClient(t, rt)
	ctx := auth.ContextWithToken(context.Background(), "user-token")

	info, err := client.GetCheckoutInfo(ctx, []string{"item-1", "item-2"})
	if err != nil {
		t.Fatalf("get checkout info: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedAuth != "Bearer user-token" {
		t.Fatalf("unexpected auth header %q", capturedAuth)
	}
	if info.TotalAmount != 250000 || len(info.Items) != 1 {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.DefaultPaymentMethod == nil || info.DefaultPaymentMethod.Last4 != "4242" {
		t.Fatalf("unexpected default payment method %+v", info.DefaultPaymentMethod)
	}
}

func TestGetCheckoutInfoRequiresItems(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", req.URL)
		return nil, nil
	})

	if _, err := client.GetCheckoutInfo(context.Background(), nil); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSubmitCheckoutRequest(t *testing.T) {
	respBody := `{"status":"succeeded","orderId":"order-9","paymentIntentId":"pi_123"}`

	var capturedBody map[string]any
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", req.Method)
		}
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(raw, &capturedBody); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client := newTestClient(t, rt)
	resp, err := client.SubmitCheckout(context.Background(), CheckoutRequest{
		PaymentMethodID: "pm_1",
		ItemIDs:         []string{"item-1"},
		ReturnURL:       "designdripmobile://orders",
	})
	if err != nil {
		t.Fatalf("submit checkout: %v", err)
	}
	if capturedBody["paymentMethodId"] != "pm_1" {
		t.Fatalf("unexpected payment method %v", capturedBody["paymentMethodId"])
	}
	if capturedBody["return_url"] != "designdripmobile://orders" {
		t.Fatalf("unexpected return url %v", capturedBody["return_url"])
	}
	if _, ok := capturedBody["shipping"]; ok {
		t.Fatalf("shipping should be omitted when nil")
	}
	if resp.OrderID != "order-9" || resp.PaymentIntentID != "pi_123" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSubmitCheckoutSurfacesBackendMessage(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusPaymentRequired, `{"error":"Your card was declined."}`), nil
	})

	client := newTestClient(t, rt)
	_, err := client.SubmitCheckout(context.Background(), CheckoutRequest{
		PaymentMethodID: "pm_1",
		ItemIDs:         []string{"item-1"},
	})
	if err == nil {
		t.Fatalf("expected payment error")
	}

	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if coded.Code() != pkgerrors.CodePayment {
		t.Fatalf("expected payment code, got %s", coded.Code())
	}
	if coded.Message() != "Your card was declined." {
		t.Fatalf("expected backend message, got %q", coded.Message())
	}
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusPaymentRequired, pkgerrors.CodePayment},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
		{http.StatusBadGateway, pkgerrors.CodeDependency},
	}

	for _, tt := range tests {
		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(tt.status, `{}`), nil
		})
		client := newTestClient(t, rt)

		_, err := client.GetCart(context.Background())
		coded := pkgerrors.As(err)
		if coded == nil {
			t.Fatalf("status %d: expected coded error, got %v", tt.status, err)
		}
		if coded.Code() != tt.code {
			t.Fatalf("status %d: expected code %s, got %s", tt.status, tt.code, coded.Code())
		}
	}
}

func TestListPaymentMethods(t *testing.T) {
	respBody := `{"paymentMethods":[{"id":"pm_1","brand":"visa","last4":"4242","exp_month":4,"exp_year":2030,"isDefault":true},{"id":"pm_2","brand":"mastercard","last4":"4444","exp_month":9,"exp_year":2031,"isDefault":false}]}`

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/payments/payment-methods" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client := newTestClient(t, rt)
	methods, err := client.ListPaymentMethods(context.Background())
	if err != nil {
		t.Fatalf("list payment methods: %v", err)
	}
	if len(methods) != 2 || methods[0].ID != "pm_1" || !methods[0].IsDefault {
		t.Fatalf("unexpected methods %+v", methods)
	}
}

func TestDeletePaymentMethodEscapesID(t *testing.T) {
	var capturedPath string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedPath = req.URL.EscapedPath()
		if req.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", req.Method)
		}
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	client := newTestClient(t, rt)
	if err := client.DeletePaymentMethod(context.Background(), "pm/odd id"); err != nil {
		t.Fatalf("delete payment method: %v", err)
	}
	if capturedPath != "/api/payments/payment-methods/pm%2Fodd%20id" {
		t.Fatalf("unexpected path %q", capturedPath)
	}
}

func TestCancelOrderSendsCanceledStatus(t *testing.T) {
	var capturedBody map[string]string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPut {
			t.Fatalf("unexpected method %s", req.Method)
		}
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(raw, &capturedBody); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	client := newTestClient(t, rt)
	if err := client.CancelOrder(context.Background(), "order-1"); err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if capturedBody["status"] != "canceled" {
		t.Fatalf("unexpected status %q", capturedBody["status"])
	}
}

func TestListOrdersDefaultsPaging(t *testing.T) {
	var capturedQuery string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedQuery = req.URL.RawQuery
		return jsonResponse(http.StatusOK, `{"orders":[],"pagination":{"page":1,"limit":10,"totalOrders":0,"totalPages":0,"hasNextPage":false,"hasPrevPage":false}}`), nil
	})

	client := newTestClient(t, rt)
	list, err := client.ListOrders(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if capturedQuery != "limit=10&page=1" {
		t.Fatalf("unexpected query %q", capturedQuery)
	}
	if list.Pagination.Page != 1 {
		t.Fatalf("unexpected pagination %+v", list.Pagination)
	}
}

func TestCartItemTotal(t *testing.T) {
	item := CartItem{Sizes: []CartItemSize{
		{Size: "M", Quantity: 2, PricePerSize: 120000},
		{Size: "L", Quantity: 1, PricePerSize: 130000},
	}}
	if got := item.Total(); got != 370000 {
		t.Fatalf("Total() = %d, want 370000", got)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
