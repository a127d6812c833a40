package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/catalog"
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

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Create(ctx context.Context, c *catalog.Catalog) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogRepository) FindByID(ctx context.Context, appID, id uuid.UUID) (*catalog.Catalog, error) {
	args := m.Called(ctx, appID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Catalog), args.Error(1)
}

func (m *MockCatalogRepository) FindByApp(ctx context.Context, appID uuid.UUID) ([]*catalog.Catalog, error) {
	args := m.Called(ctx, appID)
	return args.Get(0).([]*catalog.Catalog), args.Error(1)
}

type MockFeedRepository struct {
	mock.Mock
}

func (m *MockFeedRepository) Create(ctx context.Context, f *catalog.ProductFeed) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFeedRepository) Update(ctx context.Context, f *catalog.ProductFeed) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFeedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFeedRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductFeed, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductFeed), args.Error(1)
}

func (m *MockFeedRepository) FindInCatalog(ctx context.Context, catalogID, id uuid.UUID) (*catalog.ProductFeed, error) {
	args := m.Called(ctx, catalogID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductFeed), args.Error(1)
}

func (m *MockFeedRepository) FindByCatalog(ctx context.Context, catalogID uuid.UUID) ([]*catalog.ProductFeed, error) {
	args := m.Called(ctx, catalogID)
	return args.Get(0).([]*catalog.ProductFeed), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) FindByCatalog(ctx context.Context, catalogID uuid.UUID) ([]*catalog.Product, error) {
	args := m.Called(ctx, catalogID)
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByFeed(ctx context.Context, catalogID, feedID uuid.UUID) ([]*catalog.Product, error) {
	args := m.Called(ctx, catalogID, feedID)
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

// =============================================================================
// Mock Integrations
// =============================================================================

type MockCommerceManager struct {
	mock.Mock
}

func (m *MockCommerceManager) CreateCatalog(ctx context.Context, businessID, name, vertical string) (string, error) {
	args := m.Called(ctx, businessID, name, vertical)
	return args.String(0), args.Error(1)
}

func (m *MockCommerceManager) DeleteCatalog(ctx context.Context, catalogID string) error {
	return m.Called(ctx, catalogID).Error(0)
}

func (m *MockCommerceManager) CreateProductFeed(ctx context.Context, catalogID, name string) (string, error) {
	args := m.Called(ctx, catalogID, name)
	return args.String(0), args.Error(1)
}

func (m *MockCommerceManager) UploadProductFeed(ctx context.Context, feedID string, file integration.FeedFile) error {
	return m.Called(ctx, feedID, file).Error(0)
}

func (m *MockCommerceManager) DeleteProductFeed(ctx context.Context, feedID string) error {
	return m.Called(ctx, feedID).Error(0)
}

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

type MockFeedParser struct {
	mock.Mock
}

func (m *MockFeedParser) Parse(ctx context.Context, file integration.FeedFile) ([]catalog.ProductRow, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductRow), args.Error(1)
}

type MockFileArchive struct {
	mock.Mock
}

func (m *MockFileArchive) Put(ctx context.Context, key, contentType string, data []byte) error {
	return m.Called(ctx, key, contentType, data).Error(0)
}

type MockTaskQueue struct {
	mock.Mock
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task shared.Task) error {
	return m.Called(ctx, task).Error(0)
}
