// Package vtex talks to VTEX stores with app key/token credentials
package vtex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// maxResponseSize bounds the error body kept from the store (64 KB)
const maxResponseSize = 64 << 10

const credentialCheckPath = "/api/catalog_system/pvt/products/GetProductAndSkuIds"

var ErrInvalidDomain = errors.New("vtex: store domain is required")

// Client implements integration.CommercePlatform
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

var _ integration.CommercePlatform = (*Client)(nil)

// NewClient creates a VTEX client
func NewClient(cfg config.VTEXConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// CheckCredentials lists product ids with the credentials; any status
// other than 200 means they were refused
func (c *Client) CheckCredentials(ctx context.Context, creds integration.StoreCredentials) error {
	base, err := storeURL(creds.Domain)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+credentialCheckPath, nil)
	if err != nil {
		return fmt.Errorf("vtex: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-VTEX-API-AppKey", creds.AppKey)
	req.Header.Set("X-VTEX-API-AppToken", creds.AppToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vtex: credential check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		c.logger.Warn("VTEX credential check refused",
			zap.String("domain", creds.Domain),
			zap.Int("status", resp.StatusCode))
		return integration.NewExternalAPIError(integration.ServiceVTEX, "check_credentials", resp.StatusCode, string(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// storeURL turns a bare store domain into an https base URL. Domains that
// already carry a scheme are used as given.
func storeURL(domain string) (string, error) {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" {
		return "", ErrInvalidDomain
	}
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	u, err := url.Parse(domain)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	return u.Scheme + "://" + u.Host, nil
}
