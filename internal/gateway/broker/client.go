// Package broker adapts the fixed HTTP contract of the multi-broker router.
// It is a thin transport layer: no retry, no caching, no local state beyond
// the search rate limiter.
package broker

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/model"

	"golang.org/x/time/rate"
)

// Client wraps the broker-router REST API consumed by the order console.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	username      string
	password      string
	token         string
	searchLimiter *rate.Limiter
}

// NewClient constructs a broker client from configuration.
func NewClient(cfg config.GatewayConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("gateway.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing gateway.base_url failed: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true // #nosec G402
		}
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	ratePerSec := cfg.SearchRatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	burst := cfg.SearchBurst
	if burst <= 0 {
		burst = 3
	}
	return &Client{
		baseURL:       parsed,
		httpClient:    httpClient,
		username:      strings.TrimSpace(cfg.Username),
		password:      strings.TrimSpace(cfg.Password),
		token:         strings.TrimSpace(cfg.APIToken),
		searchLimiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetOrders fetches the five-bucket order snapshot. Absent buckets come back
// as empty slices so that two contract-equivalent responses fingerprint the
// same.
func (c *Client) GetOrders(ctx context.Context) (model.OrderSnapshot, error) {
	var resp ordersResponse
	if err := c.doRequest(ctx, http.MethodGet, "/get_orders", nil, &resp); err != nil {
		return model.OrderSnapshot{}, err
	}
	return model.OrderSnapshot{
		Pending:   emptyIfNil(resp.Pending),
		Traded:    emptyIfNil(resp.Traded),
		Rejected:  emptyIfNil(resp.Rejected),
		Cancelled: emptyIfNil(resp.Cancelled),
		Others:    emptyIfNil(resp.Others),
	}, nil
}

// CancelOrders submits one batch cancel and returns the router message.
func (c *Client) CancelOrders(ctx context.Context, orders []model.OrderRef) (string, error) {
	if len(orders) == 0 {
		return "", fmt.Errorf("cancel batch cannot be empty")
	}
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPost, "/cancel_order", CancelRequest{Orders: orders}, &raw); err != nil {
		return "", err
	}
	return collapseMessage(raw, "cancel request sent"), nil
}

// ModifyOrder submits a sparse-diff modify and returns the router message.
func (c *Client) ModifyOrder(ctx context.Context, req ModifyRequest) (string, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPost, "/modify_order", modifyEnvelope{Order: req}, &raw); err != nil {
		return "", err
	}
	return collapseMessage(raw, "modify request sent"), nil
}

// PlaceOrder submits a trade and returns the router message.
func (c *Client) PlaceOrder(ctx context.Context, payload PlacePayload) (string, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPost, "/place_order", payload, &raw); err != nil {
		return "", err
	}
	return collapseMessage(raw, "order placed"), nil
}

// LTP fetches the last traded price for a symbol. Callers treat any failure
// as cosmetic; the endpoint is optional on older routers.
func (c *Client) LTP(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return 0, fmt.Errorf("symbol cannot be empty")
	}
	var resp ltpResponse
	path := "/ltp?symbol=" + url.QueryEscape(symbol)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.LTP, nil
}

// GetClients fetches the read-only client list.
func (c *Client) GetClients(ctx context.Context) ([]model.Client, error) {
	var resp clientsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/get_clients", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Clients, nil
}

// GetGroups fetches account groups. The wire shape differs between router
// versions, so the raw body goes through the tolerant normalizer.
func (c *Client) GetGroups(ctx context.Context) ([]model.Group, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/groups", nil, &raw); err != nil {
		return nil, err
	}
	return NormalizeGroups(raw), nil
}

// SearchSymbols proxies a typed-ahead symbol lookup, rate limited.
func (c *Client) SearchSymbols(ctx context.Context, q, exchange string) ([]model.SymbolOption, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if err := c.searchLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	path := "/search_symbols?q=" + url.QueryEscape(q) + "&exchange=" + url.QueryEscape(exchange)
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return NormalizeSymbols(raw), nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any, out any) error {
	if c == nil {
		return fmt.Errorf("broker client not initialized")
	}
	endpoint, err := c.resolveEndpoint(path)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("serializing request failed: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("building request failed: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling broker router failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(data) == 0 {
			return fmt.Errorf("broker router returned error: %s", resp.Status)
		}
		return fmt.Errorf("broker router returned error (%s): %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding broker response failed: %w", err)
	}
	return nil
}

func (c *Client) resolveEndpoint(path string) (*url.URL, error) {
	if c.baseURL == nil {
		return nil, fmt.Errorf("broker API base URL not set")
	}
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = "/"
	}
	query := ""
	if idx := strings.Index(trimmed, "?"); idx >= 0 {
		query = trimmed[idx+1:]
		trimmed = trimmed[:idx]
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	base := *c.baseURL
	base.Path = strings.TrimSuffix(base.Path, "/") + trimmed
	base.RawPath = ""
	base.RawQuery = query
	base.Fragment = ""
	return &base, nil
}

func emptyIfNil(orders []model.Order) []model.Order {
	if orders == nil {
		return []model.Order{}
	}
	return orders
}
