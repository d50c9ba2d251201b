// Package wix adapts the Wix Stores API to the agent's product surface.
// Prices arrive as JSON numbers; they are decoded as json.Number and parsed
// exactly, never through float64.
package wix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	moneyx "github.com/kittipatv/checkout-agent/pkg/money"
)

const (
	defaultBaseURL       = "https://www.wixapis.com"
	queryPath            = "/stores/v1/products/query"
	productPath          = "/stores/v1/products/"
	defaultListLimit     = 10
	maxListLimit         = 100
	maxResponseSizeBytes = 2 << 20
)

type Config struct {
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	SiteID  string        `envconfig:"SITE_ID" split_words:"true" required:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://www.wixapis.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// ClientOption customizes Client.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

type Client struct {
	baseURL    string
	apiKey     string
	siteID     string
	httpClient *http.Client
}

var _ contractx.Platform = (*Client)(nil)

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("wix api key is required")
	}
	if strings.TrimSpace(cfg.SiteID) == "" {
		return nil, errors.New("wix site id is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid wix base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		siteID:  strings.TrimSpace(cfg.SiteID),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type wireProduct struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	PriceData   struct {
		Currency string      `json:"currency"`
		Price    json.Number `json:"price"`
	} `json:"priceData"`
	Stock struct {
		InStock bool `json:"inStock"`
	} `json:"stock"`
}

type queryRequest struct {
	Query struct {
		Filter string `json:"filter,omitempty"`
		Paging struct {
			Limit int `json:"limit"`
		} `json:"paging"`
	} `json:"query"`
}

type queryResponse struct {
	Products []wireProduct `json:"products"`
}

type productEnvelope struct {
	Product wireProduct `json:"product"`
}

// SearchBySKU queries with an exact sku filter. A clean miss returns
// (nil, nil).
func (c *Client) SearchBySKU(ctx context.Context, sku string) (*contractx.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, nil
	}

	out, err := c.query(ctx, map[string]any{"sku": sku}, 1)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	product, err := mapProduct(out[0])
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*contractx.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: empty product id", contractx.ErrProductNotFound)
	}

	var out productEnvelope
	err := c.do(ctx, http.MethodGet, productPath+url.PathEscape(productID), nil, &out)
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", contractx.ErrProductNotFound, productID)
		}
		return nil, err
	}

	product, err := mapProduct(out.Product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListProducts(ctx context.Context, limit int, search string) ([]contractx.Product, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var filter map[string]any
	if search = strings.TrimSpace(search); search != "" {
		filter = map[string]any{"name": map[string]any{"$contains": search}}
	}

	out, err := c.query(ctx, filter, limit)
	if err != nil {
		return nil, err
	}

	products := make([]contractx.Product, 0, len(out))
	for _, p := range out {
		product, err := mapProduct(p)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// query posts a filtered product query. The Stores API takes the filter as a
// JSON document encoded into a string field.
func (c *Client) query(ctx context.Context, filter map[string]any, limit int) ([]wireProduct, error) {
	var req queryRequest
	req.Query.Paging.Limit = limit
	if len(filter) > 0 {
		encoded, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("encode wix filter: %w", err)
		}
		req.Query.Filter = string(encoded)
	}

	var out queryResponse
	if err := c.do(ctx, http.MethodPost, queryPath, req, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func mapProduct(p wireProduct) (contractx.Product, error) {
	product := contractx.Product{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Currency:    p.PriceData.Currency,
		InStock:     p.Stock.InStock,
	}
	if p.PriceData.Price != "" {
		price, err := moneyx.Parse(p.PriceData.Price.String())
		if err != nil {
			return contractx.Product{}, fmt.Errorf("parse price for product %s: %w", p.ID, err)
		}
		product.Price = price
	}
	return product, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("wix: status %d: %s", e.code, e.body)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal wix payload %s: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build wix request %s: %w", path, err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("wix-site-id", c.siteID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute wix request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("read wix response %s: %w", path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode wix response %s: %w", path, err)
	}
	return nil
}
