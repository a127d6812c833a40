package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Router and DomainGroup
// =============================================================================

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	var calls []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			calls = append(calls, name)
			c.Next()
		}
	}

	engine := gin.New()
	parent := NewDomainGroup("parent", "/parent").Use(mark("parent"))
	child := parent.Group("child", "/child").Use(mark("child"))
	child.DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	parent.Group("other", "/other").PUT("", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "parent", parent.Name())
	assert.Equal(t, "/child", child.Prefix())

	parent.RegisterRoutes(engine.Group("/api/v1"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/parent/child/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"parent", "child"}, calls)

	calls = nil
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/parent/other", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"parent"}, calls)
}

// =============================================================================
// Marketplace engine
// =============================================================================

type operatorOnly struct{ email string }

func (a operatorOnly) CanCreate(context.Context, identity.Principal, uuid.UUID) bool { return false }

func (a operatorOnly) CanAccessObject(context.Context, identity.Principal, string, uuid.UUID) bool {
	return false
}

func (a operatorOnly) IsInternalOperator(p identity.Principal) bool { return p.Email == a.email }

func newTestEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	tokens := auth.NewJWTService(config.AuthConfig{
		JWTSecret: "test-secret-key-at-least-32-chars",
		JWTIssuer: "test-issuer",
	})
	authz := operatorOnly{email: "crm@example.com"}

	h := Handlers{
		Health:         handler.NewHealthHandler("test", nil),
		AppTypes:       handler.NewAppTypeHandler(nil),
		Apps:           handler.NewAppHandler(nil, nil, authz),
		Cloud:          handler.NewCloudHandler(nil, nil, authz),
		Catalogs:       handler.NewCatalogHandler(nil, nil, nil, authz),
		Templates:      handler.NewTemplateHandler(nil, nil, authz),
		Authorizations: handler.NewAuthorizationHandler(nil),
	}
	engine := New(Options{
		HTTP:        config.HTTPConfig{CORSAllowOrigins: []string{"*"}, MaxBodySize: 1 << 20},
		Logger:      zap.NewNop(),
		Tokens:      tokens,
		Authorizer:  authz,
		RateLimiter: middleware.NewRateLimiter(100, 100),
	}, h)
	return engine, tokens
}

func TestNew_RegistersRoutes(t *testing.T) {
	engine, _ := newTestEngine(t)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /api/v1/health",
		"GET /api/v1/apptypes",
		"GET /api/v1/apptypes/:code",
		"GET /api/v1/apptypes/generic/detail-channel",
		"GET /api/v1/apptypes/generic/detail-channel/:channel_code",
		"GET /api/v1/my-apps",
		"GET /api/v1/apptypes/:code/apps",
		"POST /api/v1/apptypes/:code/apps",
		"GET /api/v1/apptypes/:code/apps/:uuid",
		"DELETE /api/v1/apptypes/:code/apps/:uuid",
		"PATCH /api/v1/apptypes/:code/apps/:uuid/configure",
		"GET /api/v1/apptypes/:code/apps/debug_token",
		"GET /api/v1/apptypes/:code/apps/phone_numbers",
		"PATCH /api/v1/apptypes/:code/apps/:uuid/update_webhook",
		"GET /api/v1/apptypes/:code/apps/:uuid/report_sent_messages",
		"GET /api/v1/apptypes/:code/apps/:uuid/catalogs",
		"POST /api/v1/apptypes/:code/apps/:uuid/catalogs",
		"GET /api/v1/apptypes/:code/apps/:uuid/catalogs/:catalog_uuid",
		"DELETE /api/v1/apptypes/:code/apps/:uuid/catalogs/:catalog_uuid",
		"GET /api/v1/apptypes/:code/apps/:uuid/catalogs/:catalog_uuid/products",
		"GET /api/v1/apptypes/:code/apps/:uuid/catalogs/:catalog_uuid/product_feeds",
		"POST /api/v1/apptypes/:code/apps/:uuid/catalogs/:catalog_uuid/product_feeds",
		"GET /api/v1/apptypes/:code/apps/:uuid/catalogs/:catalog_uuid/product_feeds/:feed_uuid",
		"DELETE /api/v1/apptypes/:code/apps/:uuid/catalogs/:catalog_uuid/product_feeds/:feed_uuid",
		"GET /api/v1/apptypes/:code/apps/:uuid/catalogs/:catalog_uuid/product_feeds/:feed_uuid/products",
		"GET /api/v1/apps/:app_uuid/templates",
		"POST /api/v1/apps/:app_uuid/templates",
		"GET /api/v1/apps/:app_uuid/templates/languages",
		"GET /api/v1/apps/:app_uuid/templates/:uuid",
		"DELETE /api/v1/apps/:app_uuid/templates/:uuid",
		"POST /api/v1/apps/:app_uuid/templates/:uuid/translations",
		"GET /api/v1/internal/projects/:project_uuid/authorizations",
		"PUT /api/v1/internal/projects/:project_uuid/authorizations",
		"GET /api/v1/internal/projects/:project_uuid/authorizations/:email",
		"DELETE /api/v1/internal/projects/:project_uuid/authorizations/:email",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestNew_HealthIsPublic(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestNew_RequiresToken(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/apptypes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNew_InternalRoutesNeedOperator(t *testing.T) {
	engine, tokens := newTestEngine(t)
	path := "/api/v1/internal/projects/" + uuid.NewString() + "/authorizations"

	token, err := tokens.GenerateToken("user@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNew_CloudActionsRejectOtherTypes(t *testing.T) {
	engine, tokens := newTestEngine(t)
	token, err := tokens.GenerateToken("user@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/apptypes/wwc/apps/debug_token?input_token=x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
