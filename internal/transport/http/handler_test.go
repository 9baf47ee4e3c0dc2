package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/storefront/checkout/internal/apperr"
	"github.com/storefront/checkout/internal/catalog"
	"github.com/storefront/checkout/internal/model"
	"github.com/storefront/checkout/internal/store"
)

type stubCheckout struct {
	createResp  model.CreateOrderResponse
	createErr   error
	captureResp model.CaptureOrderResponse
	captureErr  error

	gotProductID int64
	gotOrderID   string
}

func (s *stubCheckout) CreateOrder(_ context.Context, productID int64) (model.CreateOrderResponse, error) {
	s.gotProductID = productID
	return s.createResp, s.createErr
}

func (s *stubCheckout) CaptureOrder(_ context.Context, orderID string) (model.CaptureOrderResponse, error) {
	s.gotOrderID = orderID
	return s.captureResp, s.captureErr
}

func newTestRouter(t *testing.T, checkout *stubCheckout) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(checkout, catalog.New(), store.NewMemory(), log, 2*time.Second)
	return h.Routes()
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubCheckout{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestListProducts(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubCheckout{})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var out []model.ProductPayload
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out, 3)
	require.Equal(t, "Mock T-Shirt", out[0].Name)
	require.True(t, out[0].Price.Equal(decimal.RequireFromString("19.99")))
}

func TestCreateOrderEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		checkout   *stubCheckout
		wantStatus int
		wantMsg    string
	}{
		{
			name: "success",
			body: `{"productId":1}`,
			checkout: &stubCheckout{createResp: model.CreateOrderResponse{
				PaypalOrderID: "5O190127TN364715T",
				ApprovalURL:   "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T",
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid_json",
			body:       `{"productId":`,
			checkout:   &stubCheckout{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid JSON",
		},
		{
			name:       "unknown_field",
			body:       `{"productId":1,"couponCode":"X"}`,
			checkout:   &stubCheckout{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid JSON",
		},
		{
			name:       "missing_product_id",
			body:       `{}`,
			checkout:   &stubCheckout{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "productId is required",
		},
		{
			name:       "unknown_product",
			body:       `{"productId":42}`,
			checkout:   &stubCheckout{createErr: apperr.Validationf("invalid product id: 42")},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid product id: 42",
		},
		{
			name:       "gateway_unavailable",
			body:       `{"productId":1}`,
			checkout:   &stubCheckout{createErr: apperr.ErrGatewayUnavailable},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "payment gateway unavailable",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, tt.checkout)

			req := httptest.NewRequest(http.MethodPost, "/api/paypal/create-order", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantMsg != "" {
				var out model.ErrorPayload
				require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
				require.Equal(t, tt.wantMsg, out.Message)
				return
			}

			var out model.CreateOrderResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
			require.Equal(t, tt.checkout.createResp, out)
		})
	}
}

func TestCaptureOrderEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		checkout   *stubCheckout
		wantStatus int
		wantMsg    string
	}{
		{
			name:   "success",
			target: "/api/paypal/capture-order?orderId=5O190127TN364715T",
			checkout: &stubCheckout{captureResp: model.CaptureOrderResponse{
				Status:       "COMPLETED",
				ProductName:  "Mock T-Shirt",
				Amount:       model.Money{Decimal: decimal.RequireFromString("19.99")},
				CurrencyCode: "USD",
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "blank_order_id",
			target:     "/api/paypal/capture-order",
			checkout:   &stubCheckout{captureErr: apperr.Validationf("order id is required")},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "order id is required",
		},
		{
			name:       "gateway_error",
			target:     "/api/paypal/capture-order?orderId=X",
			checkout:   &stubCheckout{captureErr: apperr.Gateway("Gateway: INTERNAL_SERVER_ERROR", 500)},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Gateway: INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, tt.checkout)

			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantMsg != "" {
				var out model.ErrorPayload
				require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
				require.Equal(t, tt.wantMsg, out.Message)
				return
			}

			var out model.CaptureOrderResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
			require.Equal(t, "COMPLETED", out.Status)
			require.Equal(t, "Mock T-Shirt", out.ProductName)
			require.True(t, out.Amount.Equal(decimal.RequireFromString("19.99")))
		})
	}
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()
	require.NoError(t, st.Save(context.Background(), &model.Order{
		ExternalOrderID: "EXT-1",
		ProductName:     "Mock T-Shirt",
		Amount:          decimal.RequireFromString("19.99"),
		CurrencyCode:    "USD",
		Status:          model.OrderStatusPending,
	}))

	h := New(&stubCheckout{}, catalog.New(), st, log, 2*time.Second)
	router := h.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var out []model.OrderPayload
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out, 1)
	require.Equal(t, "EXT-1", out[0].ExternalOrderID)
	require.Equal(t, model.OrderStatusPending, out[0].Status)
}

// Amounts go over the wire as bare JSON numbers (19.99), not quoted
// strings ("19.99"). Decoding back into the payload types accepts both
// shapes, so this test inspects the raw bodies.
func TestAmountsMarshalAsNumbers(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubCheckout{captureResp: model.CaptureOrderResponse{
		Status:       "COMPLETED",
		ProductName:  "Mock T-Shirt",
		Amount:       model.Money{Decimal: decimal.RequireFromString("19.99")},
		CurrencyCode: "USD",
	}})

	rawNumber := func(t *testing.T, body *bytes.Buffer, decode func(*json.Decoder) (any, error)) json.Number {
		t.Helper()
		dec := json.NewDecoder(body)
		dec.UseNumber()
		v, err := decode(dec)
		require.NoError(t, err)
		n, ok := v.(json.Number)
		require.True(t, ok, "expected a JSON number, got %T (%v)", v, v)
		return n
	}

	req := httptest.NewRequest(http.MethodPost, "/api/paypal/capture-order?orderId=X", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	amount := rawNumber(t, w.Body, func(dec *json.Decoder) (any, error) {
		var out map[string]any
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
		return out["amount"], nil
	})
	require.Equal(t, "19.99", amount.String())

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	price := rawNumber(t, w.Body, func(dec *json.Decoder) (any, error) {
		var out []map[string]any
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
		require.NotEmpty(t, out)
		return out[0]["price"], nil
	})
	require.Equal(t, "19.99", price.String())
}

func TestUnsafeErrorsAreMasked(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubCheckout{
		captureErr: context.DeadlineExceeded,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/paypal/capture-order?orderId=X", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusGatewayTimeout, w.Code)

	var out model.ErrorPayload
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Equal(t, "payment processing failed", out.Message)
}
