// Package facebook is the adapter for the Facebook Graph API: WhatsApp
// Business Accounts, message templates and commerce catalogs.
package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseSize is the maximum response body read from the Graph API (10 MB)
const maxResponseSize = 10 << 20

// Client implements integration.GraphClient
type Client struct {
	baseURL         string
	systemUserToken string
	systemUserID    string
	appID           string
	creditLineID    string
	httpClient      *http.Client
	limiter         *rate.Limiter
	metrics         *telemetry.ClientMetrics
	logger          *zap.Logger
}

var _ integration.GraphClient = (*Client)(nil)

// NewClient creates a Graph API client. A zero RateLimit disables the
// outbound limiter.
func NewClient(cfg config.WhatsAppConfig, logger *zap.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	return &Client{
		baseURL:         cfg.GraphBaseURL(),
		systemUserToken: cfg.SystemUserToken,
		systemUserID:    cfg.SystemUserID,
		appID:           cfg.AppID,
		creditLineID:    cfg.CreditLineID,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		limiter:         limiter,
		logger:          logger,
	}
}

// WithMetrics counts every Graph API call on m
func (c *Client) WithMetrics(m *telemetry.ClientMetrics) *Client {
	c.metrics = m
	return c
}

// request describes one Graph API call
type request struct {
	operation   string
	method      string
	path        string
	query       url.Values
	token       string
	authScheme  string
	contentType string
	body        []byte
	header      http.Header
}

func jsonRequest(operation, method, path string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("facebook: failed to encode %s: %w", operation, err)
	}
	return request{operation: operation, method: method, path: path, contentType: "application/json", body: body}, nil
}

func formRequest(operation, path string, form url.Values) request {
	return request{
		operation:   operation,
		method:      http.MethodPost,
		path:        path,
		contentType: "application/x-www-form-urlencoded",
		body:        []byte(form.Encode()),
	}
}

// do sends r and decodes a 200 response into out. Anything else becomes an
// ExternalAPIError carrying the response body.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("facebook: rate limiter: %w", err)
		}
	}

	token := r.token
	if token == "" {
		token = c.systemUserToken
	}
	if token == "" {
		return fmt.Errorf("%w: whatsapp system_user_token", integration.ErrNotConfigured)
	}

	target := c.baseURL + "/" + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return fmt.Errorf("facebook: failed to create request: %w", err)
	}
	scheme := r.authScheme
	if scheme == "" {
		scheme = "Bearer"
	}
	req.Header.Set("Authorization", scheme+" "+token)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Record(ctx, integration.ServiceFacebook, r.operation, 0, time.Since(start))
		return fmt.Errorf("facebook: %s: %w", r.operation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("facebook: failed to read response: %w", err)
	}

	c.metrics.Record(ctx, integration.ServiceFacebook, r.operation, resp.StatusCode, time.Since(start))
	c.logger.Debug("Graph API request",
		zap.String("operation", r.operation),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return integration.NewExternalAPIError(integration.ServiceFacebook, r.operation, resp.StatusCode, string(respBody))
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %s: %v", integration.ErrInvalidResponse, r.operation, err)
	}
	return nil
}

// idResponse is the common {"id": "..."} creation answer
type idResponse struct {
	ID string `json:"id"`
}

func (r idResponse) require(operation string) (string, error) {
	if r.ID == "" {
		return "", fmt.Errorf("%w: %s returned no id", integration.ErrInvalidResponse, operation)
	}
	return r.ID, nil
}
