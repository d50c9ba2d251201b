// Package omise is a REST client for the Omise payment gateway. Amounts are
// integer minor units end to end; the raw card number never appears here,
// only vault tokens.
package omise

import (
	"bytes"
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
)

const (
	defaultBaseURL       = "https://api.omise.co"
	defaultListLimit     = 20
	maxListLimit         = 100
	maxResponseSizeBytes = 2 << 20
)

type Config struct {
	SecretKey string        `envconfig:"SECRET_KEY" split_words:"true" required:"true"`
	BaseURL   string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.omise.co"`
	ReturnURI string        `envconfig:"RETURN_URI" split_words:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// APIError is the gateway's error envelope. Code carries machine-readable
// decline reasons such as insufficient_fund.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("omise: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("omise: %s (%s)", e.Message, e.Code)
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

// Client talks to the gateway with secret-key basic auth.
type Client struct {
	baseURL    string
	secretKey  string
	returnURI  string
	httpClient *http.Client
}

var _ contractx.PaymentGateway = (*Client)(nil)

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errors.New("omise secret key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid omise base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		returnURI: strings.TrimSpace(cfg.ReturnURI),
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

// CreateCharge charges a card token or a previously created source. Redirect
// flows get the configured return URI unless the request carries its own.
func (c *Client) CreateCharge(ctx context.Context, req contractx.ChargeRequest) (*contractx.Charge, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("charge amount must be positive, got %d", req.Amount)
	}
	if req.CardToken == "" && req.SourceID == "" {
		return nil, errors.New("charge requires a card token or a source id")
	}
	if req.ReturnURI == "" {
		req.ReturnURI = c.returnURI
	}

	var charge contractx.Charge
	if err := c.do(ctx, http.MethodPost, "/charges", req, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

// CreateSource creates an alternative payment source (promptpay or an
// internet_banking_* type).
func (c *Client) CreateSource(ctx context.Context, req contractx.SourceRequest) (*contractx.Source, error) {
	if req.Type == "" {
		return nil, errors.New("source type is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("source amount must be positive, got %d", req.Amount)
	}

	var source contractx.Source
	if err := c.do(ctx, http.MethodPost, "/sources", req, &source); err != nil {
		return nil, err
	}
	return &source, nil
}

func (c *Client) GetCharge(ctx context.Context, chargeID string) (*contractx.Charge, error) {
	chargeID = strings.TrimSpace(chargeID)
	if chargeID == "" {
		return nil, errors.New("charge id is required")
	}

	var charge contractx.Charge
	if err := c.do(ctx, http.MethodGet, "/charges/"+url.PathEscape(chargeID), nil, &charge); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", contractx.ErrChargeNotFound, chargeID)
		}
		return nil, err
	}
	return &charge, nil
}

type chargeList struct {
	Data []contractx.Charge `json:"data"`
}

// ListCharges pages through past charges, newest first. Limit is clamped to
// the gateway's 1..100 window.
func (c *Client) ListCharges(ctx context.Context, limit, offset int) ([]contractx.Charge, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("order", "reverse_chronological")

	var list chargeList
	if err := c.do(ctx, http.MethodGet, "/charges?"+query.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

// CreateRefund refunds a charge. A non-positive amount refunds whatever
// remains unrefunded on the charge.
func (c *Client) CreateRefund(ctx context.Context, chargeID string, amount int64) (*contractx.Refund, error) {
	chargeID = strings.TrimSpace(chargeID)
	if chargeID == "" {
		return nil, errors.New("charge id is required")
	}

	if amount <= 0 {
		charge, err := c.GetCharge(ctx, chargeID)
		if err != nil {
			return nil, err
		}
		amount = charge.Amount - charge.RefundedAmount
		if amount <= 0 {
			return nil, fmt.Errorf("charge %s has nothing left to refund", chargeID)
		}
	}

	var refund contractx.Refund
	path := "/charges/" + url.PathEscape(chargeID) + "/refunds"
	if err := c.do(ctx, http.MethodPost, path, refundRequest{Amount: amount}, &refund); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", contractx.ErrChargeNotFound, chargeID)
		}
		return nil, err
	}
	return &refund, nil
}

type tokenEnvelope struct {
	ID   string `json:"id"`
	Used bool   `json:"used"`
	Card struct {
		Brand           string `json:"brand"`
		LastDigits      string `json:"last_digits"`
		ExpirationMonth int    `json:"expiration_month"`
		ExpirationYear  int    `json:"expiration_year"`
	} `json:"card"`
}

// GetToken dereferences a vault token into card display details.
func (c *Client) GetToken(ctx context.Context, tokenID string) (*contractx.CardToken, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, errors.New("token id is required")
	}

	var envelope tokenEnvelope
	if err := c.do(ctx, http.MethodGet, "/tokens/"+url.PathEscape(tokenID), nil, &envelope); err != nil {
		return nil, err
	}
	return &contractx.CardToken{
		ID:         envelope.ID,
		Brand:      envelope.Card.Brand,
		LastDigits: envelope.Card.LastDigits,
		ExpMonth:   envelope.Card.ExpirationMonth,
		ExpYear:    envelope.Card.ExpirationYear,
		Used:       envelope.Used,
	}, nil
}

type capabilityEnvelope struct {
	PaymentMethods []struct {
		Name       string   `json:"name"`
		Currencies []string `json:"currencies"`
	} `json:"payment_methods"`
}

// Capabilities reports the payment methods and currencies the gateway
// account accepts. Also serves as the health probe for the gateway.
func (c *Client) Capabilities(ctx context.Context) (*contractx.GatewayCapabilities, error) {
	var envelope capabilityEnvelope
	if err := c.do(ctx, http.MethodGet, "/capability", nil, &envelope); err != nil {
		return nil, err
	}

	caps := &contractx.GatewayCapabilities{}
	seen := make(map[string]struct{})
	for _, method := range envelope.PaymentMethods {
		caps.PaymentMethods = append(caps.PaymentMethods, method.Name)
		for _, currency := range method.Currencies {
			if _, ok := seen[currency]; ok {
				continue
			}
			seen[currency] = struct{}{}
			caps.Currencies = append(caps.Currencies, currency)
		}
	}
	return caps, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.SetBasicAuth(c.secretKey, "")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Code = ""
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
