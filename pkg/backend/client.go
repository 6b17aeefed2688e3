package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/designdrip/storefront-core/pkg/auth"
	"github.com/designdrip/storefront-core/pkg/config"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

const (
	defaultTimeout             = 15 * time.Second
	errorBodyReadLimit   int64 = 1024
	checkoutInfoPath           = "payments/checkout/info"
	checkoutSubmitPath         = "payments/checkout"
	paymentMethodsPath         = "payments/payment-methods"
	cartPath                   = "cart"
	ordersPath                 = "orders"
)

var errBaseURLRequired = errors.New("storefront backend base URL is required")

// Client talks to the DesignDrip storefront backend. Every call forwards the
// caller's bearer token from the request context; the client itself holds no
// credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the storefront backend client.
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(cfg.BaseURL)
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// GetCheckoutInfo fetches the server-computed checkout view for the selected
// cart items.
func (c *Client) GetCheckoutInfo(ctx context.Context, itemIDs []string) (*CheckoutInfo, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	if len(itemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item IDs are required")
	}

	query := url.Values{}
	query.Set("itemIds", strings.Join(itemIDs, ","))

	var info CheckoutInfo
	if err := c.do(ctx, http.MethodGet, checkoutInfoPath+"?"+query.Encode(), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SubmitCheckout posts a checkout attempt. The raw response union is returned
// as-is; classification happens in the checkout coordinator.
func (c *Client) SubmitCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	if strings.TrimSpace(req.PaymentMethodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method ID is required")
	}
	if len(req.ItemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item IDs are required")
	}

	var resp CheckoutResponse
	if err := c.do(ctx, http.MethodPost, checkoutSubmitPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPaymentMethods fetches the user's stored cards.
func (c *Client) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}

	var resp struct {
		PaymentMethods []PaymentMethod `json:"paymentMethods"`
	}
	if err := c.do(ctx, http.MethodGet, paymentMethodsPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.PaymentMethods, nil
}

// CreateSetupIntent asks the backend for a client secret used to collect a new
// card on the device.
func (c *Client) CreateSetupIntent(ctx context.Context) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}

	var resp struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.do(ctx, http.MethodPost, paymentMethodsPath+"/setup-intent", nil, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.ClientSecret) == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "backend returned empty setup intent secret")
	}
	return resp.ClientSecret, nil
}

// AttachPaymentMethod registers a collected card against the user's account,
// optionally promoting it to the default.
func (c *Client) AttachPaymentMethod(ctx context.Context, paymentMethodID string, setAsDefault bool) (*PaymentMethod, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	if strings.TrimSpace(paymentMethodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method ID is required")
	}

	body := map[string]any{
		"paymentMethodId": paymentMethodID,
		"setAsDefault":    setAsDefault,
	}
	var resp struct {
		PaymentMethod PaymentMethod `json:"paymentMethod"`
	}
	if err := c.do(ctx, http.MethodPost, paymentMethodsPath+"/attach", body, &resp); err != nil {
		return nil, err
	}
	return &resp.PaymentMethod, nil
}

// SetDefaultPaymentMethod marks a stored card as the account default.
func (c *Client) SetDefaultPaymentMethod(ctx context.Context, paymentMethodID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	if strings.TrimSpace(paymentMethodID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method ID is required")
	}

	body := map[string]string{"paymentMethodId": paymentMethodID}
	return c.do(ctx, http.MethodPost, paymentMethodsPath+"/default", body, nil)
}

// DeletePaymentMethod detaches a stored card.
func (c *Client) DeletePaymentMethod(ctx context.Context, paymentMethodID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	trimmed := strings.TrimSpace(paymentMethodID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method ID is required")
	}

	return c.do(ctx, http.MethodDelete, paymentMethodsPath+"/"+url.PathEscape(trimmed), nil, nil)
}

// GetCart fetches the authenticated user's cart.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}

	var cart Cart
	if err := c.do(ctx, http.MethodGet, cartPath, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListOrders fetches a page of the user's order history.
func (c *Client) ListOrders(ctx context.Context, page, limit int) (*OrderList, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var list OrderList
	if err := c.do(ctx, http.MethodGet, ordersPath+"?"+query.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetOrder fetches a single order by ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order ID is required")
	}

	var order Order
	if err := c.do(ctx, http.MethodGet, ordersPath+"/"+url.PathEscape(trimmed), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder asks the backend to cancel an order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "backend client not configured")
	}
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order ID is required")
	}

	body := map[string]string{"status": "canceled"}
	return c.do(ctx, http.MethodPut, ordersPath+"/"+url.PathEscape(trimmed)+"/status", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal backend request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build backend request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := auth.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute backend request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
	}
	return nil
}

// statusError converts a non-2xx backend response into a coded error. The
// backend's own message is surfaced when present so callers can show it
// verbatim.
func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	message := ""
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil {
		message = strings.TrimSpace(apiErr.Error)
	}

	code := codeForStatus(resp.StatusCode)
	if message != "" {
		return pkgerrors.New(code, message)
	}
	return pkgerrors.Wrap(code, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), "backend request failed")
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusPaymentRequired:
		return pkgerrors.CodePayment
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	default:
		return pkgerrors.CodeDependency
	}
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}
