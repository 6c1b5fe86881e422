// Package client talks to the storefront HTTP API. It satisfies
// overlay.DataSource so the overlay renderer can run against a remote
// storefront.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/overlay"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/pagination"
)

const serviceName = "storefront"

// Requester executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type Requester interface {
	Request(ctx context.Context, method, url, contentType string, body io.Reader) (*http.Response, error)
}

// CircuitOpenFallback reports an open breaker as a retryable unavailability.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.Unavailable("storefront is temporarily unavailable, please retry shortly")
}

// Client is a typed storefront API client.
type Client struct {
	http    Requester
	baseURL string
	logger  *slog.Logger
}

// New creates a client for the API at baseURL.
func New(requester Requester, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    requester,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// NewResilient builds the default retrying, circuit-broken transport.
func NewResilient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	cfg := httpclient.DefaultConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("storefront-api"),
		logger,
	).WithFallback(CircuitOpenFallback)
	return New(cb, baseURL, logger)
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// ListProducts returns one page of the catalog.
func (c *Client) ListProducts(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}
	path := "/api/v1/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page pagination.Result[domain.Product]
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return pagination.Result[domain.Product]{}, err
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var env envelope[domain.Product]
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(id), nil, &env); err != nil {
		return domain.Product{}, err
	}
	return env.Data, nil
}

// ListCart returns the cart with its totals.
func (c *Client) ListCart(ctx context.Context) (domain.Cart, error) {
	var env envelope[domain.Cart]
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, &env); err != nil {
		return domain.Cart{}, err
	}
	return env.Data, nil
}

func (c *Client) ListCartItems(ctx context.Context) ([]domain.CartItem, error) {
	cart, err := c.ListCart(ctx)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (domain.CartItem, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}
	var env envelope[domain.CartItem]
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart", body, &env); err != nil {
		return domain.CartItem{}, err
	}
	return env.Data, nil
}

func (c *Client) UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) (domain.CartItem, error) {
	body := map[string]any{"quantity": quantity}
	var env envelope[domain.CartItem]
	if err := c.do(ctx, http.MethodPatch, "/api/v1/cart/"+url.PathEscape(itemID), body, &env); err != nil {
		return domain.CartItem{}, err
	}
	return env.Data, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart/"+url.PathEscape(itemID), nil, nil)
}

// ResolveOverlay asks the server what the overlay for s would display.
func (c *Client) ResolveOverlay(ctx context.Context, s overlay.State) (overlay.Resolution, error) {
	path := "/api/v1/overlay"
	if q := overlay.Encode(s, nil); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var env envelope[overlay.Resolution]
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return overlay.Resolution{}, err
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	resp, err := c.http.Request(ctx, method, c.baseURL+path, contentType, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, httpclient.FromServerError(err, serviceName))
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "storefront api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
