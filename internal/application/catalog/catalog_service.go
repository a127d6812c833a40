// Package catalog keeps commerce catalogs, product feeds and products of
// WhatsApp Cloud Apps in step with the Facebook Commerce API.
package catalog

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service manages the catalogs of cloud channel Apps
type Service struct {
	apps     app.Repository
	catalogs catalog.CatalogRepository
	products catalog.ProductRepository
	commerce integration.CommerceManager
	channels integration.ChannelManager
	logger   *zap.Logger
}

// NewService creates a new catalog Service
func NewService(
	apps app.Repository,
	catalogs catalog.CatalogRepository,
	products catalog.ProductRepository,
	commerce integration.CommerceManager,
	channels integration.ChannelManager,
	logger *zap.Logger,
) *Service {
	return &Service{
		apps:     apps,
		catalogs: catalogs,
		products: products,
		commerce: commerce,
		channels: channels,
		logger:   logger,
	}
}

// Create creates the catalog on Facebook, stores it and adds it to the
// App's catalog mirror
func (s *Service) Create(ctx context.Context, user string, appID uuid.UUID, req CreateCatalogRequest) (*CatalogResponse, error) {
	a, cloud, err := s.editableCloudApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	businessID := cloud.WABusinessID
	if businessID == "" {
		return nil, shared.NewValidationError("The app has no wa_business_id configured")
	}
	if req.Name == "" {
		return nil, catalog.ErrMissingName
	}

	externalID, err := s.commerce.CreateCatalog(ctx, businessID, req.Name, req.Category)
	if err != nil {
		return nil, err
	}

	c, err := catalog.NewCatalog(a.ID, externalID, req.Name, req.Category, user)
	if err == nil {
		err = s.catalogs.Create(ctx, c)
	}
	if err == nil {
		err = s.updateMirror(ctx, user, a, append(slices.Clone(cloud.Catalogs), apptype.CatalogRef{FacebookCatalogID: externalID}))
	}
	if err != nil {
		s.logger.Error("Facebook catalog created but local state could not be saved",
			zap.String("app_uuid", a.ID.String()),
			zap.String("facebook_catalog_id", externalID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Catalog created",
		zap.String("app_uuid", a.ID.String()),
		zap.String("catalog_uuid", c.ID.String()),
		zap.String("facebook_catalog_id", externalID))

	resp := ToCatalogResponse(c)
	return &resp, nil
}

// Delete removes the catalog from Facebook, then from the mirror and the
// database. Nothing changes locally when the Facebook delete fails.
func (s *Service) Delete(ctx context.Context, user string, appID, catalogID uuid.UUID) error {
	a, cloud, err := s.editableCloudApp(ctx, appID)
	if err != nil {
		return err
	}
	c, err := s.catalogs.FindByID(ctx, a.ID, catalogID)
	if err != nil {
		return err
	}

	if err := s.commerce.DeleteCatalog(ctx, c.FacebookCatalogID); err != nil {
		return err
	}

	refs := slices.DeleteFunc(slices.Clone(cloud.Catalogs), func(ref apptype.CatalogRef) bool {
		return ref.FacebookCatalogID == c.FacebookCatalogID
	})
	if err := s.updateMirror(ctx, user, a, refs); err != nil {
		return err
	}
	if err := s.catalogs.Delete(ctx, c.ID); err != nil {
		return err
	}

	s.logger.Info("Catalog deleted",
		zap.String("app_uuid", a.ID.String()),
		zap.String("facebook_catalog_id", c.FacebookCatalogID))
	return nil
}

// List returns the catalogs of a cloud App
func (s *Service) List(ctx context.Context, appID uuid.UUID) ([]CatalogResponse, error) {
	a, err := s.cloudApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	catalogs, err := s.catalogs.FindByApp(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	out := make([]CatalogResponse, 0, len(catalogs))
	for _, c := range catalogs {
		out = append(out, ToCatalogResponse(c))
	}
	return out, nil
}

// Get returns one catalog of a cloud App
func (s *Service) Get(ctx context.Context, appID, catalogID uuid.UUID) (*CatalogResponse, error) {
	c, err := s.find(ctx, appID, catalogID)
	if err != nil {
		return nil, err
	}
	resp := ToCatalogResponse(c)
	return &resp, nil
}

// Products lists the products of a catalog
func (s *Service) Products(ctx context.Context, appID, catalogID uuid.UUID) ([]ProductResponse, error) {
	c, err := s.find(ctx, appID, catalogID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindByCatalog(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

func (s *Service) find(ctx context.Context, appID, catalogID uuid.UUID) (*catalog.Catalog, error) {
	a, err := s.cloudApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	return s.catalogs.FindByID(ctx, a.ID, catalogID)
}

// cloudApp loads an App that may own catalogs
func (s *Service) cloudApp(ctx context.Context, appID uuid.UUID) (*app.App, error) {
	a, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if a.Code != apptype.CodeWhatsAppCloud.String() {
		return nil, ErrNotCloudApp
	}
	return a, nil
}

// editableCloudApp loads a cloud App with its decoded config. Callers
// decode before any Facebook call.
func (s *Service) editableCloudApp(ctx context.Context, appID uuid.UUID) (*app.App, apptype.WhatsAppCloudConfig, error) {
	a, err := s.cloudApp(ctx, appID)
	if err != nil {
		return nil, apptype.WhatsAppCloudConfig{}, err
	}
	cloud, err := apptype.DecodeWhatsAppCloud(a.Config)
	if err != nil {
		return nil, apptype.WhatsAppCloudConfig{}, err
	}
	return a, cloud, nil
}

// updateMirror rewrites config.catalogs with refs, saves the App and pushes
// the new list to the remote channel
func (s *Service) updateMirror(ctx context.Context, user string, a *app.App, refs []apptype.CatalogRef) error {
	if refs == nil {
		refs = []apptype.CatalogRef{}
	}

	cfg := a.Config.Clone()
	cfg.Set("catalogs", catalogList(refs))
	a.ReplaceConfig(cfg, user)
	if err := s.apps.Update(ctx, a); err != nil {
		return err
	}

	if !a.HasFlowObject() {
		return nil
	}
	channel, err := s.channels.DetailChannel(ctx, a.FlowObjectUUID.String())
	if err != nil {
		return err
	}
	remote := app.Config(channel.Config).Clone()
	remote.Set("catalogs", catalogList(refs))
	return s.channels.UpdateChannelConfig(ctx, a.FlowObjectUUID.String(), remote)
}

func catalogList(refs []apptype.CatalogRef) []any {
	out := make([]any, 0, len(refs))
	for _, ref := range refs {
		out = append(out, map[string]any{"facebook_catalog_id": ref.FacebookCatalogID})
	}
	return out
}

var ErrNotCloudApp = shared.NewDomainError(shared.CodeInvalidInput, "Catalogs are only available for WhatsApp Cloud apps")
