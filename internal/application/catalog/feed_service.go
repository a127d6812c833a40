package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FeedParser reads the product rows of an uploaded feed file
type FeedParser interface {
	Parse(ctx context.Context, file integration.FeedFile) ([]catalog.ProductRow, error)
}

// FileArchive keeps a copy of uploaded feed files
type FileArchive interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// FeedService uploads product feeds and ingests their products
type FeedService struct {
	catalogs *Service
	feeds    catalog.FeedRepository
	products catalog.ProductRepository
	commerce integration.CommerceManager
	parser   FeedParser
	archive  FileArchive
	tasks    shared.TaskQueue
	logger   *zap.Logger
}

// NewFeedService creates a new FeedService. archive may be nil when feed
// files are not kept.
func NewFeedService(
	catalogs *Service,
	feeds catalog.FeedRepository,
	products catalog.ProductRepository,
	commerce integration.CommerceManager,
	parser FeedParser,
	archive FileArchive,
	tasks shared.TaskQueue,
	logger *zap.Logger,
) *FeedService {
	return &FeedService{
		catalogs: catalogs,
		feeds:    feeds,
		products: products,
		commerce: commerce,
		parser:   parser,
		archive:  archive,
		tasks:    tasks,
		logger:   logger,
	}
}

// Create registers a feed on Facebook, uploads the file and schedules the
// ingestion of its products
func (s *FeedService) Create(ctx context.Context, user string, appID, catalogID uuid.UUID, req CreateFeedRequest) (*FeedResponse, error) {
	if req.File == nil || len(req.File.Data) == 0 {
		return nil, ErrMissingFeedFile
	}
	c, err := s.catalogs.find(ctx, appID, catalogID)
	if err != nil {
		return nil, err
	}
	name := req.Name
	if name == "" {
		name = req.File.Name
	}

	externalID, err := s.commerce.CreateProductFeed(ctx, c.FacebookCatalogID, name)
	if err != nil {
		return nil, err
	}
	if err := s.commerce.UploadProductFeed(ctx, externalID, *req.File); err != nil {
		return nil, err
	}
	rows, err := s.parser.Parse(ctx, *req.File)
	if err != nil {
		s.logger.Warn("Feed uploaded but file could not be parsed",
			zap.String("facebook_feed_id", externalID),
			zap.Error(err))
		return nil, err
	}

	feed, err := catalog.NewProductFeed(c.ID, externalID, name, user)
	if err != nil {
		return nil, err
	}
	s.archiveFile(ctx, feed, *req.File)
	if err := s.feeds.Create(ctx, feed); err != nil {
		s.logger.Error("Facebook feed created but could not be saved",
			zap.String("catalog_uuid", c.ID.String()),
			zap.String("facebook_feed_id", externalID),
			zap.Error(err))
		return nil, err
	}

	if len(rows) > 0 {
		task, err := shared.NewTask(shared.TaskCreateProductsByFeed, ProductsByFeedArgs{
			ProductFeedUUID: feed.ID,
			FileProducts:    rows,
			UserEmail:       user,
		})
		if err == nil {
			err = s.tasks.Enqueue(ctx, task)
		}
		if err != nil {
			s.logger.Error("Failed to enqueue product ingestion",
				zap.String("feed_uuid", feed.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Product feed created",
		zap.String("feed_uuid", feed.ID.String()),
		zap.String("facebook_feed_id", externalID),
		zap.Int("products", len(rows)))

	resp := ToFeedResponse(feed)
	return &resp, nil
}

func (s *FeedService) archiveFile(ctx context.Context, feed *catalog.ProductFeed, file integration.FeedFile) {
	if s.archive == nil {
		return
	}
	key := path.Join("feeds", feed.CatalogID.String(), feed.ID.String(), path.Base(file.Name))
	if err := s.archive.Put(ctx, key, file.ContentType, file.Data); err != nil {
		s.logger.Warn("Failed to archive feed file",
			zap.String("feed_uuid", feed.ID.String()),
			zap.Error(err))
		return
	}
	feed.FileKey = key
}

// Delete removes the feed from Facebook, then locally
func (s *FeedService) Delete(ctx context.Context, appID, catalogID, feedID uuid.UUID) error {
	feed, err := s.find(ctx, appID, catalogID, feedID)
	if err != nil {
		return err
	}
	if err := s.commerce.DeleteProductFeed(ctx, feed.FacebookFeedID); err != nil {
		return err
	}
	return s.feeds.Delete(ctx, feed.ID)
}

// List returns the feeds of a catalog
func (s *FeedService) List(ctx context.Context, appID, catalogID uuid.UUID) ([]FeedResponse, error) {
	c, err := s.catalogs.find(ctx, appID, catalogID)
	if err != nil {
		return nil, err
	}
	feeds, err := s.feeds.FindByCatalog(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out := make([]FeedResponse, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, ToFeedResponse(f))
	}
	return out, nil
}

// Get returns one feed
func (s *FeedService) Get(ctx context.Context, appID, catalogID, feedID uuid.UUID) (*FeedResponse, error) {
	feed, err := s.find(ctx, appID, catalogID, feedID)
	if err != nil {
		return nil, err
	}
	resp := ToFeedResponse(feed)
	return &resp, nil
}

// Products lists the products created from a feed
func (s *FeedService) Products(ctx context.Context, appID, catalogID, feedID uuid.UUID) ([]ProductResponse, error) {
	feed, err := s.find(ctx, appID, catalogID, feedID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindByFeed(ctx, feed.CatalogID, feed.ID)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

func (s *FeedService) find(ctx context.Context, appID, catalogID, feedID uuid.UUID) (*catalog.ProductFeed, error) {
	c, err := s.catalogs.find(ctx, appID, catalogID)
	if err != nil {
		return nil, err
	}
	return s.feeds.FindInCatalog(ctx, c.ID, feedID)
}

// IngestProducts upserts the parsed rows of a feed into its catalog. Rows
// are keyed on their retailer id, so a redelivered task rewrites the same
// products. The feed ends in error only when no row could be stored.
func (s *FeedService) IngestProducts(ctx context.Context, args ProductsByFeedArgs) (*IngestionResult, error) {
	feed, err := s.feeds.FindByID(ctx, args.ProductFeedUUID)
	if err != nil {
		if errors.Is(err, catalog.ErrFeedNotFound) {
			s.logger.Warn("Feed removed before its products were ingested",
				zap.String("feed_uuid", args.ProductFeedUUID.String()))
			return &IngestionResult{}, nil
		}
		return nil, err
	}

	result := &IngestionResult{Total: len(args.FileProducts)}
	for i, row := range args.FileProducts {
		p, err := row.Product(feed.CatalogID, feed.ID, args.UserEmail)
		if err == nil {
			err = s.products.Upsert(ctx, p)
		}
		if err != nil {
			result.Failed++
			s.logger.Warn("Failed to ingest feed product",
				zap.String("feed_uuid", feed.ID.String()),
				zap.Int("row", i+1),
				zap.String("product_retailer_id", row.ID),
				zap.Error(err))
			continue
		}
		result.Upserted++
	}

	status := catalog.FeedStatusSuccess
	if result.Total > 0 && result.Upserted == 0 {
		status = catalog.FeedStatusError
	}
	if err := feed.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.feeds.Update(ctx, feed); err != nil {
		return nil, fmt.Errorf("update feed status: %w", err)
	}

	s.logger.Info("Feed products ingested",
		zap.String("feed_uuid", feed.ID.String()),
		zap.Int("upserted", result.Upserted),
		zap.Int("failed", result.Failed))
	return result, nil
}

// HandleTask runs a create_products_by_feed task
func (s *FeedService) HandleTask(ctx context.Context, task shared.Task) error {
	var args ProductsByFeedArgs
	if err := task.Decode(&args); err != nil {
		return err
	}
	_, err := s.IngestProducts(ctx, args)
	return err
}

var ErrMissingFeedFile = shared.NewDomainError(shared.CodeInvalidInput, "file is a required parameter")
