// Package woocommerce adapts the WooCommerce REST API (wc/v3) to the agent's
// product surface.
package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	moneyx "github.com/kittipatv/checkout-agent/pkg/money"
)

const (
	productsPath         = "/wp-json/wc/v3/products"
	defaultListLimit     = 10
	maxListLimit         = 100
	maxResponseSizeBytes = 2 << 20
)

type Config struct {
	BaseURL        string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	ConsumerKey    string        `envconfig:"CONSUMER_KEY" split_words:"true" required:"true"`
	ConsumerSecret string        `envconfig:"CONSUMER_SECRET" split_words:"true" required:"true"`
	Timeout        time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
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
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
}

var _ contractx.Platform = (*Client)(nil)

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("woocommerce base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid woocommerce base url: %w", err)
	}
	if strings.TrimSpace(cfg.ConsumerKey) == "" || strings.TrimSpace(cfg.ConsumerSecret) == "" {
		return nil, errors.New("woocommerce consumer key and secret are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:        baseURL,
		consumerKey:    strings.TrimSpace(cfg.ConsumerKey),
		consumerSecret: strings.TrimSpace(cfg.ConsumerSecret),
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
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Price       string `json:"price"`
	StockStatus string `json:"stock_status"`
}

// SearchBySKU uses the native sku filter; WooCommerce returns an array with
// at most one exact match. A clean miss returns (nil, nil).
func (c *Client) SearchBySKU(ctx context.Context, sku string) (*contractx.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("sku", sku)

	var out []wireProduct
	if err := c.do(ctx, productsPath+"?"+query.Encode(), &out); err != nil {
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

	var out wireProduct
	err := c.do(ctx, productsPath+"/"+url.PathEscape(productID), &out)
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", contractx.ErrProductNotFound, productID)
		}
		return nil, err
	}

	product, err := mapProduct(out)
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

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(limit))
	if search = strings.TrimSpace(search); search != "" {
		query.Set("search", search)
	}

	var out []wireProduct
	if err := c.do(ctx, productsPath+"?"+query.Encode(), &out); err != nil {
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

func mapProduct(p wireProduct) (contractx.Product, error) {
	product := contractx.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		InStock:     p.StockStatus == "instock",
	}
	if p.Price != "" {
		price, err := moneyx.Parse(p.Price)
		if err != nil {
			return contractx.Product{}, fmt.Errorf("parse price for product %d: %w", p.ID, err)
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
	return fmt.Sprintf("woocommerce: status %d: %s", e.code, e.body)
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build woocommerce request %s: %w", path, err)
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute woocommerce request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("read woocommerce response %s: %w", path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode woocommerce response %s: %w", path, err)
	}
	return nil
}
