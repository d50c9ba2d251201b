// Package shopify adapts the Shopify Admin REST API to the agent's product
// surface. Variant prices arrive as decimal strings and are parsed exactly
// into minor units.
package shopify

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
	apiVersion           = "2024-01"
	defaultListLimit     = 10
	maxListLimit         = 250
	maxResponseSizeBytes = 2 << 20
)

type Config struct {
	ShopDomain  string        `envconfig:"SHOP_DOMAIN" split_words:"true" required:"true"`
	AccessToken string        `envconfig:"ACCESS_TOKEN" split_words:"true" required:"true"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
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

// WithBaseURL overrides the shop-domain base URL; tests point it at a local
// server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

var _ contractx.Platform = (*Client)(nil)

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	domain := strings.TrimSpace(cfg.ShopDomain)
	if domain == "" {
		return nil, errors.New("shopify shop domain is required")
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errors.New("shopify access token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:     "https://" + strings.TrimRight(domain, "/"),
		accessToken: token,
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

type wireVariant struct {
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type wireProduct struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	BodyHTML string        `json:"body_html"`
	Variants []wireVariant `json:"variants"`
}

type productEnvelope struct {
	Product wireProduct `json:"product"`
}

type productsEnvelope struct {
	Products []wireProduct `json:"products"`
}

// SearchBySKU scans the product listing for a variant with the given SKU.
// The Admin API has no SKU filter, so the match happens client side. A clean
// miss returns (nil, nil).
func (c *Client) SearchBySKU(ctx context.Context, sku string) (*contractx.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(maxListLimit))
	query.Set("fields", "id,title,body_html,variants")

	var out productsEnvelope
	if err := c.do(ctx, "/products.json?"+query.Encode(), &out); err != nil {
		return nil, err
	}

	for i := range out.Products {
		for j := range out.Products[i].Variants {
			if strings.EqualFold(out.Products[i].Variants[j].SKU, sku) {
				product, err := mapProduct(out.Products[i], &out.Products[i].Variants[j])
				if err != nil {
					return nil, err
				}
				return &product, nil
			}
		}
	}
	return nil, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*contractx.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: empty product id", contractx.ErrProductNotFound)
	}

	var out productEnvelope
	err := c.do(ctx, "/products/"+url.PathEscape(productID)+".json", &out)
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", contractx.ErrProductNotFound, productID)
		}
		return nil, err
	}

	product, err := mapProduct(out.Product, nil)
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
	query.Set("limit", strconv.Itoa(limit))
	query.Set("fields", "id,title,body_html,variants")
	if search = strings.TrimSpace(search); search != "" {
		query.Set("title", search)
	}

	var out productsEnvelope
	if err := c.do(ctx, "/products.json?"+query.Encode(), &out); err != nil {
		return nil, err
	}

	products := make([]contractx.Product, 0, len(out.Products))
	for i := range out.Products {
		product, err := mapProduct(out.Products[i], nil)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// mapProduct flattens a product and one chosen variant. When variant is nil,
// the first variant carries the price and SKU; stock is truthy when any
// variant has inventory.
func mapProduct(p wireProduct, variant *wireVariant) (contractx.Product, error) {
	product := contractx.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		Name:        p.Title,
		Description: p.BodyHTML,
	}

	if variant == nil && len(p.Variants) > 0 {
		variant = &p.Variants[0]
	}
	if variant != nil {
		price, err := moneyx.Parse(variant.Price)
		if err != nil {
			return contractx.Product{}, fmt.Errorf("parse price for product %d: %w", p.ID, err)
		}
		product.Price = price
		product.SKU = variant.SKU
		product.InStock = variant.InventoryQuantity > 0
	}

	if !product.InStock {
		for i := range p.Variants {
			if p.Variants[i].InventoryQuantity > 0 {
				product.InStock = true
				break
			}
		}
	}
	return product, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("shopify: status %d: %s", e.code, e.body)
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/api/"+apiVersion+path, nil)
	if err != nil {
		return fmt.Errorf("build shopify request %s: %w", path, err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute shopify request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("read shopify response %s: %w", path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode shopify response %s: %w", path, err)
	}
	return nil
}
