package facebook

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/marketplace/backend/internal/domain/integration"
)

// CreateCatalog creates a catalog owned by businessID
func (c *Client) CreateCatalog(ctx context.Context, businessID, name, vertical string) (string, error) {
	payload := map[string]string{"name": name}
	if vertical != "" {
		payload["vertical"] = vertical
	}
	r, err := jsonRequest("create_catalog", http.MethodPost, url.PathEscape(businessID)+"/owned_product_catalogs", payload)
	if err != nil {
		return "", err
	}

	var resp idResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return "", err
	}
	return resp.require("create_catalog")
}

// DeleteCatalog deletes a catalog
func (c *Client) DeleteCatalog(ctx context.Context, catalogID string) error {
	return c.do(ctx, request{operation: "delete_catalog", method: http.MethodDelete, path: url.PathEscape(catalogID)}, nil)
}

// CreateProductFeed creates an empty feed in catalogID
func (c *Client) CreateProductFeed(ctx context.Context, catalogID, name string) (string, error) {
	r, err := jsonRequest("create_product_feed", http.MethodPost, url.PathEscape(catalogID)+"/product_feeds", map[string]string{"name": name})
	if err != nil {
		return "", err
	}

	var resp idResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return "", err
	}
	return resp.require("create_product_feed")
}

// UploadProductFeed uploads a feed file as multipart form data
func (c *Client) UploadProductFeed(ctx context.Context, feedID string, file integration.FeedFile) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("facebook: failed to build upload: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return fmt.Errorf("facebook: failed to build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("facebook: failed to build upload: %w", err)
	}

	return c.do(ctx, request{
		operation:   "upload_product_feed",
		method:      http.MethodPost,
		path:        url.PathEscape(feedID) + "/uploads",
		contentType: w.FormDataContentType(),
		body:        buf.Bytes(),
	}, nil)
}

// DeleteProductFeed deletes a feed
func (c *Client) DeleteProductFeed(ctx context.Context, feedID string) error {
	return c.do(ctx, request{operation: "delete_product_feed", method: http.MethodDelete, path: url.PathEscape(feedID)}, nil)
}
