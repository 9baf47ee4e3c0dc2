package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/storefront/checkout/internal/apperr"
	"github.com/storefront/checkout/internal/config"
)

// TokenProvider exchanges static client credentials for a short-lived
// bearer token via the gateway's client-credentials grant.
//
// Tokens are not cached: every orchestration operation fetches a fresh
// one. Rate-limit pressure is accepted in exchange for having no token
// lifetime state to manage.
type TokenProvider struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

// NewTokenProvider returns a provider using the given HTTP client and
// gateway credentials.
func NewTokenProvider(httpClient *http.Client, cfg config.GatewayConfig) *TokenProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenProvider{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AccessToken performs the client-credentials grant and returns the
// bearer token. Any failure, including a response without an
// access_token field, is reported as apperr.ErrGatewayUnavailable.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", apperr.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned %d: %w", resp.StatusCode, apperr.ErrGatewayUnavailable)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token: %w", apperr.ErrGatewayUnavailable)
	}
	return tr.AccessToken, nil
}
