package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avdeev-m/ticketline/config"
	"github.com/avdeev-m/ticketline/internal/domain"
)

// Client talks to the Paystack transaction API. With no secret key
// configured it runs in demo mode: initialization returns a local
// success URL and every verification reports success, so the whole
// pipeline works without a provider account.
type Client struct {
	secretKey   string
	baseURL     string
	callbackURL string
	httpClient  *http.Client
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type VerifyResult struct {
	Reference     string
	Status        string
	Amount        int64
	PaidAt        string
	Channel       string
	Currency      string
	CustomerEmail string
	Raw           []byte
}

func (v VerifyResult) Succeeded() bool {
	return v.Status == "success"
}

func NewClient(cfg config.PaystackConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 || timeout > 10*time.Second {
		timeout = 10 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &Client{
		secretKey:   cfg.SecretKey,
		baseURL:     baseURL,
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) configured() bool {
	return c.secretKey != ""
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
		PaidAt    string `json:"paid_at"`
		Channel   string `json:"channel"`
		Currency  string `json:"currency"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

func (c *Client) Initialize(ctx context.Context, email string, amountMinorUnits int64, reference string, metadata map[string]string) (*InitializeResult, error) {
	if !c.configured() {
		return &InitializeResult{
			AuthorizationURL: fmt.Sprintf("%s/payment/success?reference=%s&demo=true", c.callbackURL, reference),
			AccessCode:       "demo_access_code",
			Reference:        reference,
		}, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"email":        email,
		"amount":       amountMinorUnits,
		"reference":    reference,
		"metadata":     metadata,
		"callback_url": c.callbackURL + "/payment/success",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	var parsed initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode initialize response: %v", domain.ErrOracleUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK || !parsed.Status {
		return nil, fmt.Errorf("initialize payment: %s", parsed.Message)
	}

	return &InitializeResult{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
		Reference:        parsed.Data.Reference,
	}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if !c.configured() {
		raw, _ := json.Marshal(map[string]string{"reference": reference, "status": "success", "channel": "demo"})
		return &VerifyResult{
			Reference: reference,
			Status:    "success",
			PaidAt:    time.Now().UTC().Format(time.RFC3339),
			Channel:   "demo",
			Raw:       raw,
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	var parsed verifyResponse
	if err := json.NewDecoder(io.TeeReader(resp.Body, &buf)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode verify response: %v", domain.ErrOracleUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK || !parsed.Status {
		return nil, fmt.Errorf("verify payment: %s", parsed.Message)
	}

	return &VerifyResult{
		Reference:     parsed.Data.Reference,
		Status:        parsed.Data.Status,
		Amount:        parsed.Data.Amount,
		PaidAt:        parsed.Data.PaidAt,
		Channel:       parsed.Data.Channel,
		Currency:      parsed.Data.Currency,
		CustomerEmail: parsed.Data.Customer.Email,
		Raw:           buf.Bytes(),
	}, nil
}
