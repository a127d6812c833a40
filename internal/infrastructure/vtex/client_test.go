package vtex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckCredentials(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"accepted", http.StatusOK, false},
		{"unauthorized", http.StatusUnauthorized, true},
		{"forbidden", http.StatusForbidden, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, credentialCheckPath, r.URL.Path)
				assert.Equal(t, "key", r.Header.Get("X-VTEX-API-AppKey"))
				assert.Equal(t, "token", r.Header.Get("X-VTEX-API-AppToken"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"data":{}}`))
			}))
			defer srv.Close()

			client := NewClient(config.VTEXConfig{Timeout: 5 * time.Second}, zap.NewNop())
			err := client.CheckCredentials(context.Background(), integration.StoreCredentials{
				Domain: srv.URL, AppKey: "key", AppToken: "token",
			})

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			apiErr, ok := integration.AsExternalAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, integration.ServiceVTEX, apiErr.Service)
		})
	}
}

func TestStoreURL(t *testing.T) {
	tests := []struct {
		domain  string
		want    string
		wantErr bool
	}{
		{"store.vtexcommercestable.com.br", "https://store.vtexcommercestable.com.br", false},
		{"https://store.myvtex.com/", "https://store.myvtex.com", false},
		{"http://127.0.0.1:8080/admin", "http://127.0.0.1:8080", false},
		{"  ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			got, err := storeURL(tt.domain)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDomain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
