// Package model defines the order entity and the request and response
// payloads used by the API. It keeps shared types in one place for reuse.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a local order record.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// Order is the local record of a purchase attempt and its outcome.
//
// ID is assigned by the store on first save. ExternalOrderID is the
// identifier assigned by the payment gateway and is unique across all
// orders once set. ProductName is a snapshot taken at creation or
// capture time, not a live catalog reference.
type Order struct {
	ID              string
	ExternalOrderID string
	ProductName     string
	Amount          decimal.Decimal
	CurrencyCode    string
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Money is a decimal amount as exposed over HTTP. It marshals as a
// bare JSON number (19.99, not "19.99"), the shape the storefront
// frontend consumes, and accepts both shapes on input.
type Money struct {
	decimal.Decimal
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.Decimal.UnmarshalJSON(b)
}

// CreateOrderRequest is the input payload for creating a gateway order.
type CreateOrderRequest struct {
	ProductID int64 `json:"productId"`
}

// CreateOrderResponse is returned after a gateway order has been created.
type CreateOrderResponse struct {
	PaypalOrderID string `json:"paypalOrderId"`
	ApprovalURL   string `json:"approvalUrl"`
}

// CaptureOrderResponse is returned after a capture attempt resolved.
type CaptureOrderResponse struct {
	Status       string `json:"status"`
	ProductName  string `json:"productName"`
	Amount       Money  `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// ErrorPayload describes an error response.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ProductPayload is one catalog entry as exposed over HTTP.
type ProductPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// OrderPayload is one local order record as exposed over HTTP.
type OrderPayload struct {
	ID              string      `json:"id"`
	ExternalOrderID string      `json:"externalOrderId"`
	ProductName     string      `json:"productName"`
	Amount          Money       `json:"amount"`
	CurrencyCode    string      `json:"currencyCode"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
