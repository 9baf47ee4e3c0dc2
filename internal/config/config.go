// Package config loads the immutable service configuration.
//
// Configuration comes from an optional YAML file with environment
// variable overrides for deployment-specific values and secrets. The
// resulting Config value is constructed once at startup and passed
// explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings
// such as "30s" or "1m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds everything the checkout service needs at runtime.
type Config struct {
	// ListenAddr is the HTTP listen address of the service.
	ListenAddr string `yaml:"listen_addr"`

	// StorePath is the SQLite database path. Empty selects the
	// in-memory store.
	StorePath string `yaml:"store_path"`

	// RequestTimeout bounds each inbound request, including all
	// outbound gateway calls made on its behalf.
	RequestTimeout Duration `yaml:"request_timeout"`

	Gateway GatewayConfig `yaml:"gateway"`
}

// GatewayConfig holds the payment gateway credentials and checkout URLs.
type GatewayConfig struct {
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	CurrencyCode string `yaml:"currency_code"`
	ReturnURL    string `yaml:"return_url"`
	CancelURL    string `yaml:"cancel_url"`
}

// Default returns the configuration used when no file is present.
// Return and cancel URLs point at the storefront frontend.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		RequestTimeout: Duration(30 * time.Second),
		Gateway: GatewayConfig{
			BaseURL:      "https://api-m.sandbox.paypal.com",
			CurrencyCode: "USD",
			ReturnURL:    "http://localhost:5173/checkout/success",
			CancelURL:    "http://localhost:5173/checkout/cancel",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), applies environment overrides, and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CHECKOUT_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("CHECKOUT_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("PAYPAL_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("PAYPAL_CLIENT_ID"); v != "" {
		cfg.Gateway.ClientID = v
	}
	if v := os.Getenv("PAYPAL_CLIENT_SECRET"); v != "" {
		cfg.Gateway.ClientSecret = v
	}
	if v := os.Getenv("PAYPAL_CURRENCY_CODE"); v != "" {
		cfg.Gateway.CurrencyCode = v
	}
	if v := os.Getenv("PAYPAL_RETURN_URL"); v != "" {
		cfg.Gateway.ReturnURL = v
	}
	if v := os.Getenv("PAYPAL_CANCEL_URL"); v != "" {
		cfg.Gateway.CancelURL = v
	}
}

// Validate rejects configurations that cannot talk to the gateway.
func (c Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return errors.New("config: gateway base_url is required")
	}
	if c.Gateway.ClientID == "" || c.Gateway.ClientSecret == "" {
		return errors.New("config: gateway client_id and client_secret are required")
	}
	if c.Gateway.CurrencyCode == "" {
		return errors.New("config: gateway currency_code is required")
	}
	return nil
}
