// Package gateway implements the PayPal-style checkout API client:
// token exchange, order creation, capture, and snapshot retrieval,
// plus translation of gateway error payloads into user-safe messages.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront/checkout/internal/apperr"
	"github.com/storefront/checkout/internal/config"
)

// ErrAlreadyCaptured signals that a capture request targeted an order
// the gateway has already captured. It is a recoverable condition, not
// a failure: callers resolve it by fetching the order snapshot.
var ErrAlreadyCaptured = errors.New("order already captured")

// alreadyCapturedToken is the issue token the gateway places in the
// 422 error body of a duplicate capture request.
const alreadyCapturedToken = "ORDER_ALREADY_CAPTURED"

// ParseError reports a gateway response that lacks a required field.
type ParseError struct {
	Field string
}

func (e *ParseError) Error() string {
	return "invalid gateway response: missing " + e.Field
}

func (e *ParseError) Kind() string { return "gateway_error" }

// CreatedOrder is the outcome of creating a gateway order.
type CreatedOrder struct {
	OrderID     string
	ApprovalURL string
}

// CaptureResult is the parsed outcome of a capture or order snapshot.
type CaptureResult struct {
	Status       string
	ProductName  string
	Amount       decimal.Decimal
	CurrencyCode string
}

// Client performs the remote checkout operations. All calls are
// synchronous; timeouts belong to the injected HTTP client and the
// request context.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        config.GatewayConfig
	log        *slog.Logger
}

// NewClient returns a gateway client for the configured base URL.
func NewClient(httpClient *http.Client, cfg config.GatewayConfig, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cfg:        cfg,
		log:        log,
	}
}

// --- wire types, validated once at the parsing boundary ---

type linkObject struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type createOrderResponse struct {
	ID    string       `json:"id"`
	Links []linkObject `json:"links"`
}

type amountObject struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type captureObject struct {
	Amount amountObject `json:"amount"`
}

type paymentsObject struct {
	Captures []captureObject `json:"captures"`
}

type purchaseUnitObject struct {
	Description string          `json:"description,omitempty"`
	Amount      *amountObject   `json:"amount,omitempty"`
	Payments    *paymentsObject `json:"payments,omitempty"`
}

type orderResponse struct {
	Status        string               `json:"status"`
	PurchaseUnits []purchaseUnitObject `json:"purchase_units"`
}

type createOrderPayload struct {
	Intent             string               `json:"intent"`
	PurchaseUnits      []purchaseUnitObject `json:"purchase_units"`
	ApplicationContext applicationContext   `json:"application_context"`
}

type applicationContext struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

// CreateOrder creates a gateway order with intent CAPTURE and a single
// purchase unit, returning the gateway order id and the approval URL
// the payer must visit.
func (c *Client) CreateOrder(ctx context.Context, token string, amount decimal.Decimal, description string) (CreatedOrder, error) {
	payload := createOrderPayload{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitObject{{
			Amount: &amountObject{
				CurrencyCode: c.cfg.CurrencyCode,
				Value:        amount.StringFixed(2),
			},
			Description: description,
		}},
		ApplicationContext: applicationContext{
			ReturnURL: c.cfg.ReturnURL,
			CancelURL: c.cfg.CancelURL,
		},
	}

	body, err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", token, payload, "order creation")
	if err != nil {
		return CreatedOrder{}, err
	}

	var resp createOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return CreatedOrder{}, fmt.Errorf("decode create order response: %w", err)
	}
	if resp.ID == "" {
		return CreatedOrder{}, &ParseError{Field: "id"}
	}

	for _, l := range resp.Links {
		if strings.EqualFold(l.Rel, "approve") {
			return CreatedOrder{OrderID: resp.ID, ApprovalURL: l.Href}, nil
		}
	}
	return CreatedOrder{}, &ParseError{Field: `links[rel="approve"]`}
}

// CaptureOrder finalizes payment for a previously created gateway
// order. A 422 response carrying the ORDER_ALREADY_CAPTURED token is
// reported as ErrAlreadyCaptured rather than a failure.
func (c *Client) CaptureOrder(ctx context.Context, token, orderID string) (CaptureResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", token, nil, "capture")
	if err != nil {
		var he *httpError
		if errors.As(err, &he) && he.status == http.StatusUnprocessableEntity &&
			bytes.Contains(he.body, []byte(alreadyCapturedToken)) {
			return CaptureResult{}, ErrAlreadyCaptured
		}
		return CaptureResult{}, err
	}
	return parseCaptureResult(body)
}

// GetOrder fetches the current order snapshot. It shares the capture
// response shape and serves as the fallback after ErrAlreadyCaptured.
func (c *Client) GetOrder(ctx context.Context, token, orderID string) (CaptureResult, error) {
	body, err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+orderID, token, nil, "order lookup")
	if err != nil {
		return CaptureResult{}, err
	}
	return parseCaptureResult(body)
}

// parseCaptureResult reads the shared capture/snapshot response shape:
// top-level status and the first capture of the first purchase unit.
func parseCaptureResult(body []byte) (CaptureResult, error) {
	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return CaptureResult{}, fmt.Errorf("decode order response: %w", err)
	}
	if len(resp.PurchaseUnits) == 0 {
		return CaptureResult{}, &ParseError{Field: "purchase_units"}
	}

	unit := resp.PurchaseUnits[0]
	if unit.Payments == nil || len(unit.Payments.Captures) == 0 {
		return CaptureResult{}, &ParseError{Field: "purchase_units[0].payments.captures"}
	}

	amt := unit.Payments.Captures[0].Amount
	value, err := decimal.NewFromString(amt.Value)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("parse captured amount %q: %w", amt.Value, err)
	}

	productName := unit.Description
	if productName == "" {
		productName = "Purchase"
	}

	return CaptureResult{
		Status:       resp.Status,
		ProductName:  productName,
		Amount:       value,
		CurrencyCode: amt.CurrencyCode,
	}, nil
}

// httpError carries a non-2xx gateway response so callers can inspect
// the status and raw body before translation.
type httpError struct {
	op     string
	status int
	body   []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("gateway %s returned %d", e.op, e.status)
}

// do performs one gateway request with bearer auth and returns the
// response body. Non-2xx responses come back as a translated
// apperr.GatewayError wrapping an httpError; transport failures become
// a GatewayError with no upstream status.
func (c *Client) do(ctx context.Context, method, path, token string, payload any, op string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op, ctxErr)
		}
		c.log.Error("gateway request failed", "op", op, "err", err)
		return nil, fmt.Errorf("%s: %w", op, apperr.Gateway(op+" failed: gateway unreachable", 0))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		he := &httpError{op: op, status: resp.StatusCode, body: body}
		msg := translateError(op, resp.StatusCode, body)
		return nil, fmt.Errorf("%w: %w", apperr.Gateway(msg, resp.StatusCode), he)
	}
	return body, nil
}
