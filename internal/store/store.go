// Package store provides persistence for local order records.
//
// Two implementations exist: an in-memory store for tests and
// development, and a SQLite-backed store for real deployments.
package store

import (
	"context"
	"errors"

	"github.com/storefront/checkout/internal/model"
)

// ErrNotFound is returned when no order matches the lookup key.
var ErrNotFound = errors.New("order not found")

// ErrDuplicateExternalID is returned when an insert would violate the
// external order id uniqueness invariant.
var ErrDuplicateExternalID = errors.New("duplicate external order id")

// Store persists local order records.
//
// Save inserts the order when its ID is empty (assigning a new one) and
// updates the existing record otherwise. FindByExternalID returns
// ErrNotFound when no order carries the given gateway order id.
type Store interface {
	FindByExternalID(ctx context.Context, externalID string) (*model.Order, error)
	Save(ctx context.Context, o *model.Order) error
	List(ctx context.Context) ([]*model.Order, error)
}
