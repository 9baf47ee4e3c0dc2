// Package app wires the checkout service together from configuration.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/storefront/checkout/internal/catalog"
	"github.com/storefront/checkout/internal/config"
	"github.com/storefront/checkout/internal/gateway"
	"github.com/storefront/checkout/internal/order"
	"github.com/storefront/checkout/internal/store"
	httptransport "github.com/storefront/checkout/internal/transport/http"
)

// App holds the assembled service and its shutdown hooks.
type App struct {
	Handler *httptransport.Handler
	Store   store.Store

	closers []func() error
}

// New assembles catalog, store, gateway client, and the order service
// from cfg. The store is SQLite when cfg.StorePath is set, in-memory
// otherwise.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	timeout := time.Duration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var (
		st      store.Store
		closers []func() error
	)
	if cfg.StorePath != "" {
		sq, err := store.OpenSQLite(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		st = sq
		closers = append(closers, sq.Close)
	} else {
		st = store.NewMemory()
	}

	httpClient := &http.Client{Timeout: timeout}
	tokens := gateway.NewTokenProvider(httpClient, cfg.Gateway)
	client := gateway.NewClient(httpClient, cfg.Gateway, log)

	cat := catalog.New()
	svc := order.New(tokens, client, st, cat, cfg.Gateway.CurrencyCode, log)

	return &App{
		Handler: httptransport.New(svc, cat, st, log, timeout),
		Store:   st,
		closers: closers,
	}, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
