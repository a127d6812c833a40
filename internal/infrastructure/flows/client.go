// Package flows is the HTTP adapter for the channel orchestration backend.
// Requests authenticate with an OAuth2 client-credentials token and are
// never retried.
package flows

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// maxResponseSize is the maximum response body read from the backend (10 MB)
const maxResponseSize = 10 << 20

const channelTypeCacheSize = 128

// Client implements integration.FlowsClient
type Client struct {
	baseURL     string
	useV2Routes bool
	httpClient  *http.Client
	typeCache   *expirable.LRU[string, *integration.ChannelType]
	metrics     *telemetry.ClientMetrics
	logger      *zap.Logger
}

var _ integration.FlowsClient = (*Client)(nil)

// NewClient creates a client. The OAuth2 token endpoint is optional: with
// none configured requests are sent unauthenticated.
func NewClient(flowsCfg config.FlowsConfig, authCfg config.AuthConfig, logger *zap.Logger) *Client {
	base := &http.Client{Timeout: flowsCfg.Timeout}

	httpClient := base
	if authCfg.OIDCTokenEndpoint != "" {
		cc := &clientcredentials.Config{
			ClientID:     authCfg.OIDCClientID,
			ClientSecret: authCfg.OIDCClientSecret,
			TokenURL:     authCfg.OIDCTokenEndpoint,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = flowsCfg.Timeout
	}

	var cache *expirable.LRU[string, *integration.ChannelType]
	if flowsCfg.ChannelTypeCache > 0 {
		cache = expirable.NewLRU[string, *integration.ChannelType](channelTypeCacheSize, nil, flowsCfg.ChannelTypeCache)
	}

	return &Client{
		baseURL:     strings.TrimRight(flowsCfg.BaseURL, "/"),
		useV2Routes: flowsCfg.UseV2Routes,
		httpClient:  httpClient,
		typeCache:   cache,
		logger:      logger,
	}
}

// WithMetrics counts every call on m
func (c *Client) WithMetrics(m *telemetry.ClientMetrics) *Client {
	c.metrics = m
	return c
}

// ---------------------------------------------------------------------------
// Channels
// ---------------------------------------------------------------------------

// ListChannels lists every channel of channelTypeCode
func (c *Client) ListChannels(ctx context.Context, channelTypeCode string) ([]integration.Channel, error) {
	query := url.Values{"channel_type": {channelTypeCode}}

	var resp struct {
		Channels []integration.Channel `json:"channels"`
	}
	if err := c.do(ctx, "list_channels", http.MethodGet, "/api/v2/internals/channel/", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

// CreateChannel creates a generic channel
func (c *Client) CreateChannel(ctx context.Context, req integration.CreateChannelRequest) (*integration.Channel, error) {
	var channel integration.Channel
	if err := c.do(ctx, "create_channel", http.MethodPost, "/api/v2/internals/channel/", nil, req, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// CreateWACChannel creates a WhatsApp Cloud channel. The v2 route carries
// the project in the path instead of the body.
func (c *Client) CreateWACChannel(ctx context.Context, req integration.CreateWACChannelRequest) (*integration.Channel, error) {
	endpoint := "/v1/organization/project/create_wac_channel/"
	if c.useV2Routes {
		endpoint = "/v2/projects/" + url.PathEscape(req.ProjectUUID) + "/create-wac-channel"
		req.ProjectUUID = ""
	}

	var channel integration.Channel
	if err := c.do(ctx, "create_wac_channel", http.MethodPost, endpoint, nil, req, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// ReleaseChannel deletes a channel on behalf of userEmail
func (c *Client) ReleaseChannel(ctx context.Context, channelUUID, userEmail string) error {
	query := url.Values{"user": {userEmail}}
	return c.do(ctx, "release_channel", http.MethodDelete, "/api/v2/internals/channel/"+url.PathEscape(channelUUID), query, nil, nil)
}

// DetailChannel returns a channel with its config
func (c *Client) DetailChannel(ctx context.Context, channelUUID string) (*integration.Channel, error) {
	var channel integration.Channel
	if err := c.do(ctx, "detail_channel", http.MethodGet, "/api/v2/internals/channel/"+url.PathEscape(channelUUID), nil, nil, &channel); err != nil {
		return nil, err
	}
	if channel.UUID == "" {
		channel.UUID = channelUUID
	}
	return &channel, nil
}

// UpdateChannelConfig replaces the config of a channel
func (c *Client) UpdateChannelConfig(ctx context.Context, channelUUID string, cfg map[string]any) error {
	body := map[string]any{"config": cfg}
	return c.do(ctx, "update_channel_config", http.MethodPatch, "/api/v2/internals/channel/"+url.PathEscape(channelUUID), nil, body, nil)
}

// ---------------------------------------------------------------------------
// Channel types
// ---------------------------------------------------------------------------

// ListChannelTypes lists the channel types the backend supports
func (c *Client) ListChannelTypes(ctx context.Context) ([]integration.ChannelType, error) {
	var resp struct {
		ChannelTypes []integration.ChannelType `json:"channel_types"`
	}
	if err := c.do(ctx, "list_channel_types", http.MethodGet, "/v1/channel-types", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ChannelTypes, nil
}

// DetailChannelType returns one channel type. Results are cached for the
// configured duration.
func (c *Client) DetailChannelType(ctx context.Context, code string) (*integration.ChannelType, error) {
	if c.typeCache != nil {
		if cached, ok := c.typeCache.Get(code); ok {
			return cached, nil
		}
	}

	query := url.Values{"channel_type_code": {code}}
	var ct integration.ChannelType
	if err := c.do(ctx, "detail_channel_type", http.MethodGet, "/v1/channel-types", query, nil, &ct); err != nil {
		return nil, err
	}
	if ct.Code == "" {
		ct.Code = code
	}

	if c.typeCache != nil {
		c.typeCache.Add(code, &ct)
	}
	return &ct, nil
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

// CreateExternalService registers an external service and returns its uuid
func (c *Client) CreateExternalService(ctx context.Context, user, projectUUID, typeCode string, fields map[string]any) (string, error) {
	body := map[string]any{
		"user":        user,
		"project":     projectUUID,
		"type_fields": fields,
		"type_code":   typeCode,
	}
	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := c.do(ctx, "create_external_service", http.MethodPost, "/v1/externals", nil, body, &resp); err != nil {
		return "", err
	}
	if resp.UUID == "" {
		return "", fmt.Errorf("%w: external service without uuid", integration.ErrInvalidResponse)
	}
	return resp.UUID, nil
}

// UserAPIToken returns the project API token of user
func (c *Client) UserAPIToken(ctx context.Context, user, projectUUID string) (string, error) {
	query := url.Values{"user": {user}, "org": {projectUUID}}
	var resp struct {
		APIToken string `json:"api_token"`
	}
	if err := c.do(ctx, "user_api_token", http.MethodGet, "/api/v2/internals/users/api-token/", query, nil, &resp); err != nil {
		return "", err
	}
	return resp.APIToken, nil
}

// ReportSentMessages forwards the report request. The upstream status is
// returned as is; only transport failures are errors.
func (c *Client) ReportSentMessages(ctx context.Context, report integration.SentMessagesReport) (int, error) {
	query := url.Values{
		"project_uuid": {report.ProjectUUID},
		"start_date":   {report.StartDate},
		"end_date":     {report.EndDate},
		"user":         {report.User},
	}
	status, _, err := c.send(ctx, "report_sent_messages", http.MethodGet, "/api/v2/internals/flows/sent-messages/", query, nil)
	if err != nil {
		return 0, err
	}
	return status, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// do sends a request and decodes a successful response into out. Any status
// outside 2xx becomes an ExternalAPIError carrying the body.
func (c *Client) do(ctx context.Context, operation, method, endpoint string, query url.Values, body, out any) error {
	status, respBody, err := c.send(ctx, operation, method, endpoint, query, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		c.logger.Warn("Flows request failed",
			zap.String("operation", operation),
			zap.Int("status", status))
		return integration.NewExternalAPIError(integration.ServiceFlows, operation, status, string(respBody))
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %s: %v", integration.ErrInvalidResponse, operation, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, operation, method, endpoint string, query url.Values, body any) (int, []byte, error) {
	if c.baseURL == "" {
		return 0, nil, fmt.Errorf("%w: flows base_url", integration.ErrNotConfigured)
	}

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("flows: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("flows: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Record(ctx, integration.ServiceFlows, operation, 0, time.Since(start))
		return 0, nil, fmt.Errorf("flows: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("flows: failed to read response: %w", err)
	}

	c.metrics.Record(ctx, integration.ServiceFlows, operation, resp.StatusCode, time.Since(start))
	c.logger.Debug("Flows request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	return resp.StatusCode, respBody, nil
}
