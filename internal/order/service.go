// Package order orchestrates the order lifecycle: creating gateway
// orders, capturing payment, and reconciling local order records with
// gateway state.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/checkout/internal/apperr"
	"github.com/storefront/checkout/internal/catalog"
	"github.com/storefront/checkout/internal/gateway"
	"github.com/storefront/checkout/internal/model"
	"github.com/storefront/checkout/internal/store"
)

type tokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

type gatewayClient interface {
	CreateOrder(ctx context.Context, token string, amount decimal.Decimal, description string) (gateway.CreatedOrder, error)
	CaptureOrder(ctx context.Context, token, orderID string) (gateway.CaptureResult, error)
	GetOrder(ctx context.Context, token, orderID string) (gateway.CaptureResult, error)
}

type productCatalog interface {
	ByID(id int64) (catalog.Product, bool)
}

// Service owns the order state machine and the idempotency and error
// policy around gateway calls. Captures for the same order are not
// serialized against each other; the last store write wins.
type Service struct {
	tokens   tokenProvider
	gw       gatewayClient
	store    store.Store
	catalog  productCatalog
	currency string
	log      *slog.Logger
	now      func() time.Time
}

// New creates a Service. Orders are created in the given currency.
// It panics on nil dependencies the service cannot run without.
func New(tokens tokenProvider, gw gatewayClient, st store.Store, cat productCatalog, currency string, log *slog.Logger) *Service {
	if tokens == nil || gw == nil || st == nil || cat == nil {
		panic("order.New: nil dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		tokens:   tokens,
		gw:       gw,
		store:    st,
		catalog:  cat,
		currency: currency,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder creates a gateway order for the given product and
// persists a PENDING local record. Repeated calls for the same product
// create independent orders; there is no deduplication.
func (s *Service) CreateOrder(ctx context.Context, productID int64) (model.CreateOrderResponse, error) {
	product, ok := s.catalog.ByID(productID)
	if !ok {
		return model.CreateOrderResponse{}, apperr.Validationf("invalid product id: %d", productID)
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return model.CreateOrderResponse{}, err
	}

	created, err := s.gw.CreateOrder(ctx, token, product.Price, product.Name)
	if err != nil {
		return model.CreateOrderResponse{}, err
	}

	now := s.now()
	o := &model.Order{
		ExternalOrderID: created.OrderID,
		ProductName:     product.Name,
		Amount:          product.Price,
		CurrencyCode:    s.currency,
		Status:          model.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Save(ctx, o); err != nil {
		s.log.Error("failed to persist created order", "external_order_id", created.OrderID, "err", err)
		return model.CreateOrderResponse{}, fmt.Errorf("persist order: %w", apperr.Gateway("order persistence failed", 0))
	}

	s.log.Info("created gateway order",
		"external_order_id", created.OrderID,
		"product", product.Name,
		"amount", product.Price,
	)

	return model.CreateOrderResponse{
		PaypalOrderID: created.OrderID,
		ApprovalURL:   created.ApprovalURL,
	}, nil
}

// CaptureOrder finalizes payment for a gateway order and reconciles
// the local record. Duplicate captures converge to the original
// outcome via the snapshot fallback instead of erroring.
func (s *Service) CaptureOrder(ctx context.Context, externalOrderID string) (model.CaptureOrderResponse, error) {
	if strings.TrimSpace(externalOrderID) == "" {
		return model.CaptureOrderResponse{}, apperr.Validationf("order id is required")
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return model.CaptureOrderResponse{}, err
	}

	result, err := s.gw.CaptureOrder(ctx, token, externalOrderID)
	if err == nil {
		return s.finalize(ctx, externalOrderID, result)
	}

	if errors.Is(err, gateway.ErrAlreadyCaptured) {
		s.log.Info("order already captured, fetching snapshot", "external_order_id", externalOrderID)
		snapshot, ferr := s.gw.GetOrder(ctx, token, externalOrderID)
		if ferr == nil {
			return s.finalize(ctx, externalOrderID, snapshot)
		}
		err = ferr
	}

	s.log.Error("capture failed", "external_order_id", externalOrderID, "err", err)
	s.markFailed(ctx, externalOrderID)
	return model.CaptureOrderResponse{}, err
}

// finalize applies a capture result to the local record: it recovers a
// missing record from the gateway data, records (but never blocks on)
// amount mismatches, and overwrites the status with the gateway's
// verdict.
func (s *Service) finalize(ctx context.Context, externalOrderID string, result gateway.CaptureResult) (model.CaptureOrderResponse, error) {
	now := s.now()

	o, err := s.store.FindByExternalID(ctx, externalOrderID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		o = &model.Order{
			ExternalOrderID: externalOrderID,
			ProductName:     result.ProductName,
			Amount:          result.Amount,
			CurrencyCode:    result.CurrencyCode,
			CreatedAt:       now,
		}
		s.log.Info("created order from gateway snapshot, no local record",
			"external_order_id", externalOrderID, "amount", result.Amount)

	case err != nil:
		return model.CaptureOrderResponse{}, fmt.Errorf("lookup order: %w", apperr.Gateway("order persistence failed", 0))

	case !o.Amount.Equal(result.Amount):
		s.log.Warn("captured amount differs from stored amount",
			"external_order_id", externalOrderID,
			"stored", o.Amount,
			"captured", result.Amount,
		)
	}

	if strings.EqualFold(result.Status, "COMPLETED") {
		o.Status = model.OrderStatusCompleted
	} else {
		o.Status = model.OrderStatusFailed
	}
	o.UpdatedAt = now

	if err := s.store.Save(ctx, o); err != nil {
		s.log.Error("failed to persist captured order", "external_order_id", externalOrderID, "err", err)
		return model.CaptureOrderResponse{}, fmt.Errorf("persist order: %w", apperr.Gateway("order persistence failed", 0))
	}

	return model.CaptureOrderResponse{
		Status:       result.Status,
		ProductName:  o.ProductName,
		Amount:       model.Money{Decimal: result.Amount},
		CurrencyCode: result.CurrencyCode,
	}, nil
}

// markFailed flips the local record to FAILED after a capture failure.
// Best effort: store errors are logged, never escalated, so they do
// not mask the original gateway error.
func (s *Service) markFailed(ctx context.Context, externalOrderID string) {
	o, err := s.store.FindByExternalID(ctx, externalOrderID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("failed to look up order for failure marking", "external_order_id", externalOrderID, "err", err)
		}
		return
	}

	o.Status = model.OrderStatusFailed
	o.UpdatedAt = s.now()
	if err := s.store.Save(ctx, o); err != nil {
		s.log.Error("failed to mark order as failed", "external_order_id", externalOrderID, "err", err)
		return
	}
	s.log.Info("marked order as failed after capture error", "external_order_id", externalOrderID)
}
