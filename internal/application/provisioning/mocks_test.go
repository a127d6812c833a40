package provisioning

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockAppRepository struct {
	mock.Mock
}

func (m *MockAppRepository) Create(ctx context.Context, a *app.App) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAppRepository) Update(ctx context.Context, a *app.App) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAppRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAppRepository) FindByID(ctx context.Context, id uuid.UUID) (*app.App, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.App), args.Error(1)
}

func (m *MockAppRepository) FindByFlowObjectUUID(ctx context.Context, id uuid.UUID) (*app.App, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.App), args.Error(1)
}

func (m *MockAppRepository) FindAll(ctx context.Context, filter app.Filter) ([]*app.App, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*app.App), args.Error(1)
}

// =============================================================================
// Mock Integrations
// =============================================================================

type MockChannelManager struct {
	mock.Mock
}

func (m *MockChannelManager) ListChannels(ctx context.Context, channelTypeCode string) ([]integration.Channel, error) {
	args := m.Called(ctx, channelTypeCode)
	return args.Get(0).([]integration.Channel), args.Error(1)
}

func (m *MockChannelManager) CreateChannel(ctx context.Context, req integration.CreateChannelRequest) (*integration.Channel, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Channel), args.Error(1)
}

func (m *MockChannelManager) CreateWACChannel(ctx context.Context, req integration.CreateWACChannelRequest) (*integration.Channel, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Channel), args.Error(1)
}

func (m *MockChannelManager) ReleaseChannel(ctx context.Context, channelUUID, userEmail string) error {
	return m.Called(ctx, channelUUID, userEmail).Error(0)
}

func (m *MockChannelManager) DetailChannel(ctx context.Context, channelUUID string) (*integration.Channel, error) {
	args := m.Called(ctx, channelUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Channel), args.Error(1)
}

func (m *MockChannelManager) UpdateChannelConfig(ctx context.Context, channelUUID string, config map[string]any) error {
	return m.Called(ctx, channelUUID, config).Error(0)
}

type MockChannelTypeCatalog struct {
	mock.Mock
}

func (m *MockChannelTypeCatalog) ListChannelTypes(ctx context.Context) ([]integration.ChannelType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ChannelType), args.Error(1)
}

func (m *MockChannelTypeCatalog) DetailChannelType(ctx context.Context, code string) (*integration.ChannelType, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ChannelType), args.Error(1)
}

type MockProjectServices struct {
	mock.Mock
}

func (m *MockProjectServices) CreateExternalService(ctx context.Context, user, projectUUID, typeCode string, fields map[string]any) (string, error) {
	args := m.Called(ctx, user, projectUUID, typeCode, fields)
	return args.String(0), args.Error(1)
}

func (m *MockProjectServices) UserAPIToken(ctx context.Context, user, projectUUID string) (string, error) {
	args := m.Called(ctx, user, projectUUID)
	return args.String(0), args.Error(1)
}

func (m *MockProjectServices) ReportSentMessages(ctx context.Context, report integration.SentMessagesReport) (int, error) {
	args := m.Called(ctx, report)
	return args.Int(0), args.Error(1)
}

type MockWABAManager struct {
	mock.Mock
}

func (m *MockWABAManager) GetWABA(ctx context.Context, wabaID string) (*integration.WABA, error) {
	args := m.Called(ctx, wabaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.WABA), args.Error(1)
}

func (m *MockWABAManager) AssignSystemUser(ctx context.Context, wabaID string) error {
	return m.Called(ctx, wabaID).Error(0)
}

func (m *MockWABAManager) ShareCreditLine(ctx context.Context, wabaID, currency string) (string, error) {
	args := m.Called(ctx, wabaID, currency)
	return args.String(0), args.Error(1)
}

func (m *MockWABAManager) SubscribeApp(ctx context.Context, wabaID string) error {
	return m.Called(ctx, wabaID).Error(0)
}

func (m *MockWABAManager) RegisterPhoneNumber(ctx context.Context, phoneNumberID, pin string) error {
	return m.Called(ctx, phoneNumberID, pin).Error(0)
}

func (m *MockWABAManager) GetPhoneNumber(ctx context.Context, token, phoneNumberID string) (*integration.PhoneNumber, error) {
	args := m.Called(ctx, token, phoneNumberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PhoneNumber), args.Error(1)
}

func (m *MockWABAManager) ListPhoneNumbers(ctx context.Context, wabaID string) ([]integration.PhoneNumber, error) {
	args := m.Called(ctx, wabaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.PhoneNumber), args.Error(1)
}

func (m *MockWABAManager) DebugToken(ctx context.Context, inputToken string) (*integration.TokenInfo, error) {
	args := m.Called(ctx, inputToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.TokenInfo), args.Error(1)
}

type MockCommercePlatform struct {
	mock.Mock
}

func (m *MockCommercePlatform) CheckCredentials(ctx context.Context, creds integration.StoreCredentials) error {
	return m.Called(ctx, creds).Error(0)
}

type MockTaskQueue struct {
	mock.Mock
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task shared.Task) error {
	return m.Called(ctx, task).Error(0)
}
