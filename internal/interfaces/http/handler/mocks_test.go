package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsvc "github.com/marketplace/backend/internal/application/app"
	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	"github.com/marketplace/backend/internal/application/provisioning"
	templateapp "github.com/marketplace/backend/internal/application/template"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testUser = "user@example.com"

// =============================================================================
// Mocks
// =============================================================================

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) CanCreate(ctx context.Context, p identity.Principal, projectUUID uuid.UUID) bool {
	return m.Called(ctx, p, projectUUID).Bool(0)
}

func (m *mockAuthorizer) CanAccessObject(ctx context.Context, p identity.Principal, method string, projectUUID uuid.UUID) bool {
	return m.Called(ctx, p, method, projectUUID).Bool(0)
}

func (m *mockAuthorizer) IsInternalOperator(p identity.Principal) bool {
	return m.Called(p).Bool(0)
}

// allowAll returns an authorizer granting every check
func allowAll() *mockAuthorizer {
	authz := new(mockAuthorizer)
	authz.On("CanCreate", mock.Anything, mock.Anything, mock.Anything).Return(true)
	authz.On("CanAccessObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	authz.On("IsInternalOperator", mock.Anything).Return(true)
	return authz
}

// denyAll returns an authorizer refusing every check
func denyAll() *mockAuthorizer {
	authz := new(mockAuthorizer)
	authz.On("CanCreate", mock.Anything, mock.Anything, mock.Anything).Return(false)
	authz.On("CanAccessObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false)
	authz.On("IsInternalOperator", mock.Anything).Return(false)
	return authz
}

type mockAppTypes struct {
	mock.Mock
}

func (m *mockAppTypes) List(ctx context.Context) []appsvc.AppTypeResponse {
	return m.Called(ctx).Get(0).([]appsvc.AppTypeResponse)
}

func (m *mockAppTypes) Get(ctx context.Context, code string) (*appsvc.AppTypeResponse, error) {
	args := m.Called(ctx, code)
	resp, _ := args.Get(0).(*appsvc.AppTypeResponse)
	return resp, args.Error(1)
}

func (m *mockAppTypes) ChannelTypes(ctx context.Context) ([]appsvc.ChannelTypeResponse, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]appsvc.ChannelTypeResponse)
	return list, args.Error(1)
}

func (m *mockAppTypes) ChannelType(ctx context.Context, code string) (*appsvc.ChannelTypeResponse, error) {
	args := m.Called(ctx, code)
	resp, _ := args.Get(0).(*appsvc.ChannelTypeResponse)
	return resp, args.Error(1)
}

type mockAppQueries struct {
	mock.Mock
}

func (m *mockAppQueries) ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]appsvc.AppResponse, error) {
	args := m.Called(ctx, projectUUID)
	list, _ := args.Get(0).([]appsvc.AppResponse)
	return list, args.Error(1)
}

func (m *mockAppQueries) ListByType(ctx context.Context, code string, projectUUID uuid.UUID) ([]appsvc.AppResponse, error) {
	args := m.Called(ctx, code, projectUUID)
	list, _ := args.Get(0).([]appsvc.AppResponse)
	return list, args.Error(1)
}

func (m *mockAppQueries) Find(ctx context.Context, code string, id uuid.UUID) (*app.App, error) {
	args := m.Called(ctx, code, id)
	a, _ := args.Get(0).(*app.App)
	return a, args.Error(1)
}

func (m *mockAppQueries) FindByID(ctx context.Context, id uuid.UUID) (*app.App, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*app.App)
	return a, args.Error(1)
}

type mockProvisioner struct {
	mock.Mock
}

func (m *mockProvisioner) Kind(code string) (apptype.ProvisionKind, error) {
	args := m.Called(code)
	return args.Get(0).(apptype.ProvisionKind), args.Error(1)
}

func (m *mockProvisioner) CreateChannel(ctx context.Context, user, code string, req provisioning.CreateChannelRequest) (*appsvc.AppResponse, error) {
	args := m.Called(ctx, user, code, req)
	resp, _ := args.Get(0).(*appsvc.AppResponse)
	return resp, args.Error(1)
}

func (m *mockProvisioner) CreateGenericChannel(ctx context.Context, user string, req provisioning.CreateGenericChannelRequest) (*appsvc.AppResponse, error) {
	args := m.Called(ctx, user, req)
	resp, _ := args.Get(0).(*appsvc.AppResponse)
	return resp, args.Error(1)
}

func (m *mockProvisioner) CreateWhatsAppCloud(ctx context.Context, user string, req provisioning.CreateCloudRequest) (*provisioning.CreateCloudResponse, error) {
	args := m.Called(ctx, user, req)
	resp, _ := args.Get(0).(*provisioning.CreateCloudResponse)
	return resp, args.Error(1)
}

func (m *mockProvisioner) CreateExternal(ctx context.Context, user, code string, req provisioning.CreateExternalRequest) (*appsvc.AppResponse, error) {
	args := m.Called(ctx, user, code, req)
	resp, _ := args.Get(0).(*appsvc.AppResponse)
	return resp, args.Error(1)
}

func (m *mockProvisioner) CreateVTEX(ctx context.Context, user string, req provisioning.CreateVTEXRequest) (*appsvc.AppResponse, error) {
	args := m.Called(ctx, user, req)
	resp, _ := args.Get(0).(*appsvc.AppResponse)
	return resp, args.Error(1)
}

func (m *mockProvisioner) Configure(ctx context.Context, user string, a *app.App, req provisioning.ConfigureRequest) (*appsvc.AppResponse, error) {
	args := m.Called(ctx, user, a, req)
	resp, _ := args.Get(0).(*appsvc.AppResponse)
	return resp, args.Error(1)
}

func (m *mockProvisioner) Delete(ctx context.Context, user string, a *app.App) error {
	return m.Called(ctx, user, a).Error(0)
}

type mockCloud struct {
	mock.Mock
}

func (m *mockCloud) DebugToken(ctx context.Context, inputToken string) (*provisioning.DebugTokenResponse, error) {
	args := m.Called(ctx, inputToken)
	resp, _ := args.Get(0).(*provisioning.DebugTokenResponse)
	return resp, args.Error(1)
}

func (m *mockCloud) PhoneNumbers(ctx context.Context, wabaID string) ([]integration.PhoneNumber, error) {
	args := m.Called(ctx, wabaID)
	numbers, _ := args.Get(0).([]integration.PhoneNumber)
	return numbers, args.Error(1)
}

func (m *mockCloud) UpdateWebhook(ctx context.Context, user string, a *app.App, req provisioning.UpdateWebhookRequest) (*appsvc.AppResponse, error) {
	args := m.Called(ctx, user, a, req)
	resp, _ := args.Get(0).(*appsvc.AppResponse)
	return resp, args.Error(1)
}

func (m *mockCloud) ReportSentMessages(ctx context.Context, user string, req provisioning.ReportRequest) (int, error) {
	args := m.Called(ctx, user, req)
	return args.Int(0), args.Error(1)
}

type mockCatalogs struct {
	mock.Mock
}

func (m *mockCatalogs) Create(ctx context.Context, user string, appID uuid.UUID, req catalogapp.CreateCatalogRequest) (*catalogapp.CatalogResponse, error) {
	args := m.Called(ctx, user, appID, req)
	resp, _ := args.Get(0).(*catalogapp.CatalogResponse)
	return resp, args.Error(1)
}

func (m *mockCatalogs) Delete(ctx context.Context, user string, appID, catalogID uuid.UUID) error {
	return m.Called(ctx, user, appID, catalogID).Error(0)
}

func (m *mockCatalogs) List(ctx context.Context, appID uuid.UUID) ([]catalogapp.CatalogResponse, error) {
	args := m.Called(ctx, appID)
	list, _ := args.Get(0).([]catalogapp.CatalogResponse)
	return list, args.Error(1)
}

func (m *mockCatalogs) Get(ctx context.Context, appID, catalogID uuid.UUID) (*catalogapp.CatalogResponse, error) {
	args := m.Called(ctx, appID, catalogID)
	resp, _ := args.Get(0).(*catalogapp.CatalogResponse)
	return resp, args.Error(1)
}

func (m *mockCatalogs) Products(ctx context.Context, appID, catalogID uuid.UUID) ([]catalogapp.ProductResponse, error) {
	args := m.Called(ctx, appID, catalogID)
	list, _ := args.Get(0).([]catalogapp.ProductResponse)
	return list, args.Error(1)
}

type mockFeeds struct {
	mock.Mock
}

func (m *mockFeeds) Create(ctx context.Context, user string, appID, catalogID uuid.UUID, req catalogapp.CreateFeedRequest) (*catalogapp.FeedResponse, error) {
	args := m.Called(ctx, user, appID, catalogID, req)
	resp, _ := args.Get(0).(*catalogapp.FeedResponse)
	return resp, args.Error(1)
}

func (m *mockFeeds) Delete(ctx context.Context, appID, catalogID, feedID uuid.UUID) error {
	return m.Called(ctx, appID, catalogID, feedID).Error(0)
}

func (m *mockFeeds) List(ctx context.Context, appID, catalogID uuid.UUID) ([]catalogapp.FeedResponse, error) {
	args := m.Called(ctx, appID, catalogID)
	list, _ := args.Get(0).([]catalogapp.FeedResponse)
	return list, args.Error(1)
}

func (m *mockFeeds) Get(ctx context.Context, appID, catalogID, feedID uuid.UUID) (*catalogapp.FeedResponse, error) {
	args := m.Called(ctx, appID, catalogID, feedID)
	resp, _ := args.Get(0).(*catalogapp.FeedResponse)
	return resp, args.Error(1)
}

func (m *mockFeeds) Products(ctx context.Context, appID, catalogID, feedID uuid.UUID) ([]catalogapp.ProductResponse, error) {
	args := m.Called(ctx, appID, catalogID, feedID)
	list, _ := args.Get(0).([]catalogapp.ProductResponse)
	return list, args.Error(1)
}

type mockTemplates struct {
	mock.Mock
}

func (m *mockTemplates) Create(ctx context.Context, user string, appID uuid.UUID, req templateapp.CreateTemplateRequest) (*templateapp.TemplateResponse, error) {
	args := m.Called(ctx, user, appID, req)
	resp, _ := args.Get(0).(*templateapp.TemplateResponse)
	return resp, args.Error(1)
}

func (m *mockTemplates) List(ctx context.Context, appID uuid.UUID, req templateapp.ListTemplatesRequest) (*shared.Paginated[templateapp.TemplateResponse], error) {
	args := m.Called(ctx, appID, req)
	page, _ := args.Get(0).(*shared.Paginated[templateapp.TemplateResponse])
	return page, args.Error(1)
}

func (m *mockTemplates) Get(ctx context.Context, appID, id uuid.UUID) (*templateapp.TemplateResponse, error) {
	args := m.Called(ctx, appID, id)
	resp, _ := args.Get(0).(*templateapp.TemplateResponse)
	return resp, args.Error(1)
}

func (m *mockTemplates) Destroy(ctx context.Context, appID, id uuid.UUID) error {
	return m.Called(ctx, appID, id).Error(0)
}

func (m *mockTemplates) CreateTranslation(ctx context.Context, appID, templateID uuid.UUID, req templateapp.CreateTranslationRequest) (*templateapp.TranslationResponse, error) {
	args := m.Called(ctx, appID, templateID, req)
	resp, _ := args.Get(0).(*templateapp.TranslationResponse)
	return resp, args.Error(1)
}

func (m *mockTemplates) Languages() []templateapp.LanguageResponse {
	return m.Called().Get(0).([]templateapp.LanguageResponse)
}

type mockAuthorizations struct {
	mock.Mock
}

func (m *mockAuthorizations) GrantRole(ctx context.Context, req identityapp.GrantRoleRequest) (*identityapp.AuthorizationResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*identityapp.AuthorizationResponse)
	return resp, args.Error(1)
}

func (m *mockAuthorizations) GetRole(ctx context.Context, email string, projectUUID uuid.UUID) (*identityapp.AuthorizationResponse, error) {
	args := m.Called(ctx, email, projectUUID)
	resp, _ := args.Get(0).(*identityapp.AuthorizationResponse)
	return resp, args.Error(1)
}

func (m *mockAuthorizations) ListByProject(ctx context.Context, projectUUID uuid.UUID) ([]identityapp.AuthorizationResponse, error) {
	args := m.Called(ctx, projectUUID)
	list, _ := args.Get(0).([]identityapp.AuthorizationResponse)
	return list, args.Error(1)
}

func (m *mockAuthorizations) RevokeRole(ctx context.Context, email string, projectUUID uuid.UUID) error {
	return m.Called(ctx, email, projectUUID).Error(0)
}

// =============================================================================
// Helpers
// =============================================================================

// newTestRouter returns an engine whose requests run as testUser
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.JWTPrincipalKey, identity.Principal{Email: testUser})
		c.Next()
	})
	return r
}

func newTestApp(t *testing.T, code apptype.Code) *app.App {
	t.Helper()
	a, err := app.NewApp(code.String(), uuid.New(), app.PlatformWeniFlows, testUser)
	require.NoError(t, err)
	return a
}

func doRequest(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return doRequest(r, method, path, reader, "application/json")
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error
}
