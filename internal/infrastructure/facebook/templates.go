package facebook

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marketplace/backend/internal/domain/integration"
)

// UploadHeaderMedia opens a resumable upload session on the platform app
// and sends data in one chunk, returning the file handle
func (c *Client) UploadHeaderMedia(ctx context.Context, token, mimeType string, data []byte) (string, error) {
	if c.appID == "" {
		return "", fmt.Errorf("%w: whatsapp app_id", integration.ErrNotConfigured)
	}

	var session idResponse
	err := c.do(ctx, request{
		operation: "create_upload_session",
		method:    http.MethodPost,
		path:      url.PathEscape(c.appID) + "/uploads",
		query: url.Values{
			"file_length": {strconv.Itoa(len(data))},
			"file_type":   {mimeType},
		},
		token: token,
	}, &session)
	if err != nil {
		return "", err
	}
	sessionID, err := session.require("create_upload_session")
	if err != nil {
		return "", err
	}

	var upload struct {
		Handle string `json:"h"`
	}
	err = c.do(ctx, request{
		operation:   "upload_media",
		method:      http.MethodPost,
		path:        sessionID,
		token:       token,
		authScheme:  "OAuth",
		contentType: mimeType,
		body:        data,
		header:      http.Header{"file_offset": {"0"}},
	}, &upload)
	if err != nil {
		return "", err
	}
	if upload.Handle == "" {
		return "", fmt.Errorf("%w: upload returned no handle", integration.ErrInvalidResponse)
	}
	return upload.Handle, nil
}

// CreateMessageTemplate submits a template translation for review
func (c *Client) CreateMessageTemplate(ctx context.Context, token string, req integration.CreateTemplateRequest) (string, error) {
	r, err := jsonRequest("create_message_template", http.MethodPost, url.PathEscape(req.WABAID)+"/message_templates", req)
	if err != nil {
		return "", err
	}
	r.token = token

	var resp idResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return "", err
	}
	return resp.require("create_message_template")
}

// DeleteMessageTemplate deletes every language of the named template
func (c *Client) DeleteMessageTemplate(ctx context.Context, wabaID, name string) error {
	return c.do(ctx, request{
		operation: "delete_message_template",
		method:    http.MethodDelete,
		path:      url.PathEscape(wabaID) + "/message_templates",
		query:     url.Values{"name": {name}},
	}, nil)
}
