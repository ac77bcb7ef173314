package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shoplivehq/shoplive-backend/pkg/config"
	"github.com/shoplivehq/shoplive-backend/pkg/enums"
	pkgerrors "github.com/shoplivehq/shoplive-backend/pkg/errors"
	"github.com/shoplivehq/shoplive-backend/pkg/logger"
)

const (
	createIntentPath  = "/payments/create-intent"
	confirmIntentPath = "/payments/confirm"
	listMethodsPath   = "/payments/methods"
)

var (
	errBaseURLRequired = errors.New("payments base url is required")
	errAPIKeyRequired  = errors.New("payments api key is required")
)

// Client talks to the external payment backend over JSON/HTTP.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	httpc   *http.Client
}

// NewClient validates the configured credentials once at startup. A missing
// key fails fast instead of silently producing an unauthenticated client.
func NewClient(ctx context.Context, cfg config.PaymentsConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("payments client initialized (%s)", baseURL))
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		httpc:   &http.Client{},
	}, nil
}

// CreateIntentInput carries the payload for a new payment intent.
type CreateIntentInput struct {
	AmountCents    int64
	Currency       string
	IdempotencyKey string
}

// ConfirmIntentInput carries the payload for confirming an intent.
type ConfirmIntentInput struct {
	IntentID        string
	PaymentMethodID string
	IdempotencyKey  string
}

// CreateIntent registers a new charge attempt with the payment backend.
func (c *Client) CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent amount must be positive")
	}
	body := createIntentRequest{
		Amount:   input.AmountCents,
		Currency: strings.TrimSpace(input.Currency),
	}

	var intent Intent
	if err := c.post(ctx, createIntentPath, input.IdempotencyKey, body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ConfirmIntent asks the backend to charge the intent with the given method.
func (c *Client) ConfirmIntent(ctx context.Context, input ConfirmIntentInput) (*Intent, error) {
	if strings.TrimSpace(input.IntentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	if strings.TrimSpace(input.PaymentMethodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}
	body := confirmIntentRequest{
		PaymentIntentID: strings.TrimSpace(input.IntentID),
		PaymentMethodID: strings.TrimSpace(input.PaymentMethodID),
	}

	var intent Intent
	if err := c.post(ctx, confirmIntentPath, input.IdempotencyKey, body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ListMethods fetches the stored payment methods for the configured account.
func (c *Client) ListMethods(ctx context.Context) ([]Method, error) {
	var methods []Method
	if err := c.do(ctx, http.MethodGet, listMethodsPath, "", nil, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, body, dest any) error {
	return c.do(ctx, http.MethodPost, path, idempotencyKey, body, dest)
}

// do runs one request under the client deadline and maps failure classes to
// typed errors the checkout flow can branch on.
func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, body, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payment request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return pkgerrors.Wrap(pkgerrors.CodePaymentTimeout, err, "payment backend timed out")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment backend unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeAuthExpired, "payment backend rejected credentials")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return pkgerrors.New(pkgerrors.CodeDependency, "payment backend error").
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment response")
	}
	return nil
}

type createIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type confirmIntentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentMethodID string `json:"payment_method_id"`
}

// Intent mirrors the payment backend's intent resource.
type Intent struct {
	ID           string                    `json:"id"`
	Amount       int64                     `json:"amount"`
	Currency     string                    `json:"currency"`
	Status       enums.PaymentIntentStatus `json:"status"`
	ClientSecret string                    `json:"client_secret"`
}

// Method mirrors a stored payment method descriptor.
type Method struct {
	ID          string                  `json:"id"`
	Type        enums.PaymentMethodType `json:"type"`
	CardBrand   string                  `json:"card_brand,omitempty"`
	CardLast4   string                  `json:"card_last4,omitempty"`
	BillingName string                  `json:"billing_name,omitempty"`
}
