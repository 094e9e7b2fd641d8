package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClient talks to the processor's REST API with form-encoded requests and
// a bearer key, mirroring how the processor's own SDKs wire it.
type HTTPClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *log.Logger
}

func NewHTTPClient(baseURL, apiKey string, logger *log.Logger) *HTTPClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	Error        *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

func (c *HTTPClient) CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(in.AmountMinor, 10))
	form.Set("currency", strings.ToLower(in.Currency))
	if in.Email != "" {
		form.Set("receipt_email", in.Email)
	}
	for k, v := range in.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("processor request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("processor response: %w", err)
	}

	var out intentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("processor response decode (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || out.Error != nil {
		msg := "unknown error"
		if out.Error != nil {
			msg = out.Error.Message
		}
		c.logger.Printf("processor: create intent failed status=%d code=%v", resp.StatusCode, msg)
		return nil, fmt.Errorf("processor error (status %d): %s", resp.StatusCode, msg)
	}

	return &Intent{
		ID:           out.ID,
		ClientSecret: out.ClientSecret,
		AmountMinor:  out.Amount,
		Currency:     out.Currency,
		Status:       out.Status,
	}, nil
}
