package facebook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WhatsAppConfig{
		APIURL:          srv.URL,
		APIVersion:      "v18.0",
		SystemUserToken: "system-token",
		SystemUserID:    "system-user",
		AppID:           "app-1",
		CreditLineID:    "credit-1",
		Timeout:         5 * time.Second,
	}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ---------------------------------------------------------------------------
// WABA
// ---------------------------------------------------------------------------

func TestClient_GetWABA(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/waba-1", r.URL.Path)
		assert.Equal(t, "Bearer system-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("fields"), "message_template_namespace")
		writeJSON(w, http.StatusOK, map[string]any{
			"id":                         "waba-1",
			"currency":                   "USD",
			"message_template_namespace": "ns",
			"owner_business_info":        map[string]any{"id": "biz-1"},
		})
	})

	waba, err := client.GetWABA(context.Background(), "waba-1")
	require.NoError(t, err)
	assert.Equal(t, "ns", waba.MessageTemplateNamespace)
	assert.Equal(t, "biz-1", waba.OwnerBusinessID)
	assert.Equal(t, "USD", waba.Currency)
}

func TestClient_ProvisioningCalls(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/v18.0/waba-1/assigned_users":
			assert.Equal(t, "system-user", r.URL.Query().Get("user"))
			assert.Equal(t, "MANAGE", r.URL.Query().Get("tasks"))
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		case "/v18.0/credit-1/whatsapp_credit_sharing_and_attach":
			assert.Equal(t, "waba-1", r.URL.Query().Get("waba_id"))
			assert.Equal(t, "USD", r.URL.Query().Get("waba_currency"))
			writeJSON(w, http.StatusOK, map[string]any{"allocation_config_id": "alloc-1"})
		case "/v18.0/waba-1/subscribed_apps":
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		case "/v18.0/phone-1/register":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "whatsapp", r.PostForm.Get("messaging_product"))
			assert.Equal(t, "123456", r.PostForm.Get("pin"))
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	require.NoError(t, client.AssignSystemUser(ctx, "waba-1"))
	alloc, err := client.ShareCreditLine(ctx, "waba-1", "USD")
	require.NoError(t, err)
	assert.Equal(t, "alloc-1", alloc)
	require.NoError(t, client.SubscribeApp(ctx, "waba-1"))
	require.NoError(t, client.RegisterPhoneNumber(ctx, "phone-1", "123456"))

	assert.EqualValues(t, 4, calls.Load())
}

func TestClient_GetPhoneNumber_UsesGivenToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"display_phone_number": "+55 11", "verified_name": "Shop"})
	})

	phone, err := client.GetPhoneNumber(context.Background(), "user-token", "phone-1")
	require.NoError(t, err)
	assert.Equal(t, "phone-1", phone.ID)
	assert.Equal(t, "+55 11", phone.DisplayPhoneNumber)
	assert.Equal(t, "Shop", phone.VerifiedName)
}

func TestClient_ListPhoneNumbers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/waba-1/phone_numbers", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{
			{"id": "p1", "display_phone_number": "+1"},
			{"id": "p2", "display_phone_number": "+2"},
		}})
	})

	phones, err := client.ListPhoneNumbers(context.Background(), "waba-1")
	require.NoError(t, err)
	require.Len(t, phones, 2)
	assert.Equal(t, "p2", phones[1].ID)
}

func TestClient_DebugToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/debug_token", r.URL.Path)
		assert.Equal(t, "user-token", r.URL.Query().Get("input_token"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"is_valid": true,
			"granular_scopes": []map[string]any{
				{"scope": integration.ScopeWhatsAppBusinessManagement, "target_ids": []string{"waba-1"}},
			},
		}})
	})

	info, err := client.DebugToken(context.Background(), "user-token")
	require.NoError(t, err)
	assert.True(t, info.IsValid)
	assert.Equal(t, []string{"waba-1"}, info.Targets(integration.ScopeWhatsAppBusinessManagement))
}

func TestClient_ErrorKeepsUpstreamBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"message": "Invalid OAuth access token"}})
	})

	err := client.SubscribeApp(context.Background(), "waba-1")
	apiErr, ok := integration.AsExternalAPIError(err)
	require.True(t, ok)
	assert.Equal(t, integration.ServiceFacebook, apiErr.Service)
	assert.Equal(t, "subscribe_app", apiErr.Operation)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Invalid OAuth access token")
}

func TestClient_NoTokenConfigured(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{APIURL: "http://localhost", APIVersion: "v18.0"}, zap.NewNop())
	_, err := client.GetWABA(context.Background(), "waba-1")
	assert.ErrorIs(t, err, integration.ErrNotConfigured)
}

func TestClient_RateLimiterHonoursContext(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{
		APIURL: "http://localhost", APIVersion: "v18.0", SystemUserToken: "t", RateLimit: 0.001, RateBurst: 1,
	}, zap.NewNop())
	// Drain the single token so the next call has to wait
	require.True(t, client.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := client.SubscribeApp(ctx, "waba-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

func TestClient_UploadHeaderMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v18.0/app-1/uploads":
			assert.Equal(t, "3", r.URL.Query().Get("file_length"))
			assert.Equal(t, "image/png", r.URL.Query().Get("file_type"))
			assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"id": "upload:session-1"})
		case "/v18.0/upload:session-1":
			assert.Equal(t, "OAuth app-token", r.Header.Get("Authorization"))
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			assert.Equal(t, "0", r.Header.Get("file_offset"))
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "png", string(body))
			writeJSON(w, http.StatusOK, map[string]any{"h": "handle-1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	handle, err := client.UploadHeaderMedia(context.Background(), "app-token", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "handle-1", handle)
}

func TestClient_MessageTemplates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/waba-1/message_templates", r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "welcome", body["name"])
			assert.Equal(t, "pt_BR", body["language"])
			assert.NotContains(t, body, "WABAID")
			writeJSON(w, http.StatusOK, map[string]any{"id": "tpl-1", "status": "PENDING"})
		case http.MethodDelete:
			assert.Equal(t, "welcome", r.URL.Query().Get("name"))
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}
	})
	ctx := context.Background()

	id, err := client.CreateMessageTemplate(ctx, "", integration.CreateTemplateRequest{
		WABAID:     "waba-1",
		Name:       "welcome",
		Category:   "UTILITY",
		Language:   "pt_BR",
		Components: []map[string]any{{"type": "BODY", "text": "Hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", id)

	require.NoError(t, client.DeleteMessageTemplate(ctx, "waba-1", "welcome"))
}

// ---------------------------------------------------------------------------
// Commerce
// ---------------------------------------------------------------------------

func TestClient_Catalogs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /v18.0/biz-1/owned_product_catalogs":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Main", body["name"])
			assert.Equal(t, "commerce", body["vertical"])
			writeJSON(w, http.StatusOK, map[string]any{"id": "cat-1"})
		case "DELETE /v18.0/cat-1":
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()

	id, err := client.CreateCatalog(ctx, "biz-1", "Main", "commerce")
	require.NoError(t, err)
	assert.Equal(t, "cat-1", id)
	require.NoError(t, client.DeleteCatalog(ctx, "cat-1"))
}

func TestClient_CreateCatalog_NoID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	_, err := client.CreateCatalog(context.Background(), "biz-1", "Main", "")
	assert.ErrorIs(t, err, integration.ErrInvalidResponse)
}

func TestClient_ProductFeeds(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /v18.0/cat-1/product_feeds":
			writeJSON(w, http.StatusOK, map[string]any{"id": "feed-1"})
		case "POST /v18.0/feed-1/uploads":
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "products.csv", header.Filename)
			assert.Equal(t, "id,title\n1,Shirt\n", string(data))
			writeJSON(w, http.StatusOK, map[string]any{"id": "upload-1"})
		case "DELETE /v18.0/feed-1":
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()

	id, err := client.CreateProductFeed(ctx, "cat-1", "Feed")
	require.NoError(t, err)
	assert.Equal(t, "feed-1", id)

	require.NoError(t, client.UploadProductFeed(ctx, "feed-1", integration.FeedFile{
		Name: "products.csv", ContentType: "text/csv", Data: []byte("id,title\n1,Shirt\n"),
	}))
	require.NoError(t, client.DeleteProductFeed(ctx, "feed-1"))
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

func TestClient_CountsCallOutcomes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v18.0/missing" {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"message": "unknown"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "waba-1"})
	})
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	calls, err := telemetry.NewClientMetrics(mp.Meter("test"))
	require.NoError(t, err)
	client.WithMetrics(calls)

	_, err = client.GetWABA(context.Background(), "waba-1")
	require.NoError(t, err)
	_, err = client.GetWABA(context.Background(), "waba-1")
	require.NoError(t, err)
	_, err = client.GetWABA(context.Background(), "missing")
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "external_api_request_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				op, _ := dp.Attributes.Value(telemetry.AttrOperation)
				outcome, _ := dp.Attributes.Value(telemetry.AttrOutcome)
				service, _ := dp.Attributes.Value(telemetry.AttrPeerService)
				assert.Equal(t, integration.ServiceFacebook, service.AsString())
				counts[op.AsString()+" "+outcome.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{
		"get_waba " + telemetry.OutcomeSuccess:     2,
		"get_waba " + telemetry.OutcomeClientError: 1,
	}, counts)
}
