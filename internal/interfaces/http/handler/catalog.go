package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// CatalogOperations manage the commerce catalogs of a cloud App
type CatalogOperations interface {
	Create(ctx context.Context, user string, appID uuid.UUID, req catalogapp.CreateCatalogRequest) (*catalogapp.CatalogResponse, error)
	Delete(ctx context.Context, user string, appID, catalogID uuid.UUID) error
	List(ctx context.Context, appID uuid.UUID) ([]catalogapp.CatalogResponse, error)
	Get(ctx context.Context, appID, catalogID uuid.UUID) (*catalogapp.CatalogResponse, error)
	Products(ctx context.Context, appID, catalogID uuid.UUID) ([]catalogapp.ProductResponse, error)
}

// FeedOperations manage the product feeds of a catalog
type FeedOperations interface {
	Create(ctx context.Context, user string, appID, catalogID uuid.UUID, req catalogapp.CreateFeedRequest) (*catalogapp.FeedResponse, error)
	Delete(ctx context.Context, appID, catalogID, feedID uuid.UUID) error
	List(ctx context.Context, appID, catalogID uuid.UUID) ([]catalogapp.FeedResponse, error)
	Get(ctx context.Context, appID, catalogID, feedID uuid.UUID) (*catalogapp.FeedResponse, error)
	Products(ctx context.Context, appID, catalogID, feedID uuid.UUID) ([]catalogapp.ProductResponse, error)
}

// CatalogHandler serves catalogs, product feeds and their products
type CatalogHandler struct {
	BaseHandler
	apps     AppQueries
	catalogs CatalogOperations
	feeds    FeedOperations
	authz    Authorizer
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(apps AppQueries, catalogs CatalogOperations, feeds FeedOperations, authz Authorizer) *CatalogHandler {
	return &CatalogHandler{
		apps:     apps,
		catalogs: catalogs,
		feeds:    feeds,
		authz:    authz,
	}
}

// appScope resolves and authorizes the cloud App of the path
func (h *CatalogHandler) appScope(c *gin.Context) (uuid.UUID, bool) {
	appID, ok := h.uuidParam(c, "uuid")
	if !ok {
		return uuid.Nil, false
	}
	a, err := h.apps.Find(c.Request.Context(), apptype.CodeWhatsAppCloud.String(), appID)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	if !h.authorizeObject(c, h.authz, a.ProjectUUID) {
		return uuid.Nil, false
	}
	return appID, true
}

func (h *CatalogHandler) catalogScope(c *gin.Context) (appID, catalogID uuid.UUID, ok bool) {
	if appID, ok = h.appScope(c); !ok {
		return
	}
	catalogID, ok = h.uuidParam(c, "catalog_uuid")
	return
}

// ListCatalogs handles GET .../apps/:uuid/catalogs
func (h *CatalogHandler) ListCatalogs(c *gin.Context) {
	appID, ok := h.appScope(c)
	if !ok {
		return
	}
	list, err := h.catalogs.List(c.Request.Context(), appID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// CreateCatalog handles POST .../apps/:uuid/catalogs
func (h *CatalogHandler) CreateCatalog(c *gin.Context) {
	appID, ok := h.appScope(c)
	if !ok {
		return
	}
	var req catalogapp.CreateCatalogRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.catalogs.Create(c.Request.Context(), principal(c).Email, appID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetCatalog handles GET .../catalogs/:catalog_uuid
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	appID, catalogID, ok := h.catalogScope(c)
	if !ok {
		return
	}
	resp, err := h.catalogs.Get(c.Request.Context(), appID, catalogID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteCatalog handles DELETE .../catalogs/:catalog_uuid
func (h *CatalogHandler) DeleteCatalog(c *gin.Context) {
	appID, catalogID, ok := h.catalogScope(c)
	if !ok {
		return
	}
	if err := h.catalogs.Delete(c.Request.Context(), principal(c).Email, appID, catalogID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CatalogProducts handles GET .../catalogs/:catalog_uuid/products
func (h *CatalogHandler) CatalogProducts(c *gin.Context) {
	appID, catalogID, ok := h.catalogScope(c)
	if !ok {
		return
	}
	products, err := h.catalogs.Products(c.Request.Context(), appID, catalogID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// ListFeeds handles GET .../catalogs/:catalog_uuid/product_feeds
func (h *CatalogHandler) ListFeeds(c *gin.Context) {
	appID, catalogID, ok := h.catalogScope(c)
	if !ok {
		return
	}
	feeds, err := h.feeds.List(c.Request.Context(), appID, catalogID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, feeds)
}

// CreateFeed handles POST .../catalogs/:catalog_uuid/product_feeds as a
// multipart upload with the fields name and file
func (h *CatalogHandler) CreateFeed(c *gin.Context) {
	appID, catalogID, ok := h.catalogScope(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.handleBindError(c, err)
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "No file was uploaded")
		return
	}
	f, err := header.Open()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "The uploaded file could not be read")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "The uploaded file could not be read")
		return
	}

	resp, err := h.feeds.Create(c.Request.Context(), principal(c).Email, appID, catalogID, catalogapp.CreateFeedRequest{
		Name: c.PostForm("name"),
		File: &integration.FeedFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		},
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

func (h *CatalogHandler) feedScope(c *gin.Context) (appID, catalogID, feedID uuid.UUID, ok bool) {
	if appID, catalogID, ok = h.catalogScope(c); !ok {
		return
	}
	feedID, ok = h.uuidParam(c, "feed_uuid")
	return
}

// GetFeed handles GET .../product_feeds/:feed_uuid
func (h *CatalogHandler) GetFeed(c *gin.Context) {
	appID, catalogID, feedID, ok := h.feedScope(c)
	if !ok {
		return
	}
	resp, err := h.feeds.Get(c.Request.Context(), appID, catalogID, feedID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteFeed handles DELETE .../product_feeds/:feed_uuid
func (h *CatalogHandler) DeleteFeed(c *gin.Context) {
	appID, catalogID, feedID, ok := h.feedScope(c)
	if !ok {
		return
	}
	if err := h.feeds.Delete(c.Request.Context(), appID, catalogID, feedID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// FeedProducts handles GET .../product_feeds/:feed_uuid/products
func (h *CatalogHandler) FeedProducts(c *gin.Context) {
	appID, catalogID, feedID, ok := h.feedScope(c)
	if !ok {
		return
	}
	products, err := h.feeds.Products(c.Request.Context(), appID, catalogID, feedID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}
