package template

import (
	"context"
	"encoding/base64"
	"fmt"
	"maps"
	"strings"

	"github.com/marketplace/backend/internal/domain/shared"
)

// Header formats
const (
	HeaderText     = "TEXT"
	HeaderImage    = "IMAGE"
	HeaderDocument = "DOCUMENT"
	HeaderVideo    = "VIDEO"
	HeaderLocation = "LOCATION"
)

// Button and OTP types with special handling
const (
	ButtonOTP   = "OTP"
	OTPCopyCode = "COPY_CODE"
	OTPOneTap   = "ONE_TAP"
)

// Component is one entry of the Graph API template components list
type Component map[string]any

// HeaderInput is the requested header of a translation. For media formats
// Example is a data URI such as "data:image/png;base64,iVBOR...".
type HeaderInput struct {
	HeaderType string
	Text       string
	Example    string
}

// ButtonInput is one requested button
type ButtonInput struct {
	ButtonType    string
	Text          string
	CountryCode   string
	PhoneNumber   string
	URL           string
	OTPType       string
	PackageName   string
	SignatureHash string
	AutofillText  string
}

// TranslationRequest is everything needed to create one translation.
// Body and Footer are passed to the Graph API as given.
type TranslationRequest struct {
	Language string
	Country  string
	Header   *HeaderInput
	Body     map[string]any
	Footer   map[string]any
	Buttons  []ButtonInput
}

// MediaUploader stores header media on Facebook and returns the upload handle
type MediaUploader interface {
	UploadHeaderMedia(ctx context.Context, mimeType string, data []byte) (handle string, err error)
}

// Media is a decoded data URI
type Media struct {
	MimeType string
	Data     []byte
}

// ParseDataURI decodes "data:<mime>;base64,<payload>"
func ParseDataURI(uri string) (Media, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Media{}, ErrInvalidMedia
	}
	mimeType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || mimeType == "" || payload == "" {
		return Media{}, ErrInvalidMedia
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Media{}, fmt.Errorf("%w: %v", ErrInvalidMedia, err)
	}
	return Media{MimeType: mimeType, Data: data}, nil
}

// IsMediaHeader reports whether a header format carries an uploaded file
func IsMediaHeader(format string) bool {
	switch format {
	case HeaderImage, HeaderDocument, HeaderVideo:
		return true
	}
	return false
}

// Composer turns a TranslationRequest into Graph API components
type Composer struct {
	category Category
	uploader MediaUploader
}

// NewComposer creates a composer for a template of the given category
func NewComposer(category Category, uploader MediaUploader) *Composer {
	return &Composer{category: category, uploader: uploader}
}

// Validate checks the request without contacting Facebook
func (c *Composer) Validate(req TranslationRequest) error {
	if strings.TrimSpace(req.Language) == "" {
		return shared.NewValidationError("language is required")
	}
	if !IsSupportedLanguage(req.Language) {
		return shared.NewValidationError("unsupported language %q", req.Language)
	}
	if len(req.Body) == 0 {
		return shared.NewValidationError("body is required")
	}
	if h := req.Header; h != nil {
		format := headerFormat(h)
		switch format {
		case HeaderText, HeaderLocation:
		case HeaderImage, HeaderDocument, HeaderVideo:
			if _, err := ParseDataURI(h.Example); err != nil {
				return err
			}
		default:
			return shared.NewValidationError("unknown header_type %q", h.HeaderType)
		}
	}
	for i, b := range req.Buttons {
		if err := c.validateButton(b); err != nil {
			return fmt.Errorf("button %d: %w", i, err)
		}
	}
	return nil
}

func (c *Composer) validateButton(b ButtonInput) error {
	if strings.TrimSpace(b.ButtonType) == "" {
		return shared.NewValidationError("button_type is required")
	}
	if c.isOTP(b) {
		switch b.OTPType {
		case OTPCopyCode:
		case OTPOneTap:
			if b.PackageName == "" || b.SignatureHash == "" {
				return ErrOneTapFieldsRequired
			}
		default:
			return shared.NewValidationError("otp_type must be COPY_CODE or ONE_TAP")
		}
		return nil
	}
	if b.PhoneNumber != "" && strings.TrimSpace(b.CountryCode) == "" {
		return shared.NewValidationError("country_code is required with phone_number")
	}
	return nil
}

// Compose validates the request, uploads media headers and returns the
// ordered components: body, header, footer, buttons.
func (c *Composer) Compose(ctx context.Context, req TranslationRequest) ([]Component, error) {
	if err := c.Validate(req); err != nil {
		return nil, err
	}

	components := []Component{Component(maps.Clone(req.Body))}

	if req.Header != nil {
		header, err := c.composeHeader(ctx, req.Header)
		if err != nil {
			return nil, err
		}
		components = append(components, header)
	}

	if len(req.Footer) > 0 {
		components = append(components, Component(maps.Clone(req.Footer)))
	}

	if len(req.Buttons) > 0 {
		buttons := make([]Component, 0, len(req.Buttons))
		for _, b := range req.Buttons {
			buttons = append(buttons, c.composeButton(b))
		}
		components = append(components, Component{
			"type":    "BUTTONS",
			"buttons": buttons,
		})
	}

	return components, nil
}

func (c *Composer) composeHeader(ctx context.Context, h *HeaderInput) (Component, error) {
	format := headerFormat(h)
	header := Component{
		"type":   "HEADER",
		"format": format,
	}
	if h.Text != "" {
		header["text"] = h.Text
	}

	if !IsMediaHeader(format) {
		if h.Example != "" {
			header["example"] = h.Example
		}
		return header, nil
	}

	media, err := ParseDataURI(h.Example)
	if err != nil {
		return nil, err
	}
	if c.uploader == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "media headers need an uploader")
	}
	handle, err := c.uploader.UploadHeaderMedia(ctx, media.MimeType, media.Data)
	if err != nil {
		return nil, err
	}
	header["example"] = map[string]any{"header_handle": handle}
	return header, nil
}

func (c *Composer) composeButton(b ButtonInput) Component {
	if c.isOTP(b) {
		out := Component{"type": ButtonOTP, "otp_type": b.OTPType}
		if b.OTPType == OTPOneTap {
			out["package_name"] = b.PackageName
			out["signature_hash"] = b.SignatureHash
			if b.AutofillText != "" {
				out["autofill_text"] = b.AutofillText
			}
		}
		return out
	}

	out := Component{"type": b.ButtonType}
	setIfPresent(out, "text", b.Text)
	setIfPresent(out, "url", b.URL)
	if b.PhoneNumber != "" {
		out["phone_number"] = fmt.Sprintf("+%s %s", strings.TrimPrefix(b.CountryCode, "+"), b.PhoneNumber)
	}
	setIfPresent(out, "otp_type", b.OTPType)
	setIfPresent(out, "package_name", b.PackageName)
	setIfPresent(out, "signature_hash", b.SignatureHash)
	setIfPresent(out, "autofill_text", b.AutofillText)
	return out
}

func (c *Composer) isOTP(b ButtonInput) bool {
	return c.category == CategoryAuthentication && b.ButtonType == ButtonOTP
}

func headerFormat(h *HeaderInput) string {
	format := strings.ToUpper(strings.TrimSpace(h.HeaderType))
	if format == "" {
		return HeaderText
	}
	return format
}

func setIfPresent(c Component, key, value string) {
	if value != "" {
		c[key] = value
	}
}

var (
	ErrInvalidMedia         = shared.NewDomainError(shared.CodeInvalidInput, "header example must be a base64 data URI")
	ErrOneTapFieldsRequired = shared.NewDomainError(shared.CodeInvalidInput, "For ONE_TAP buttons, 'package_name' and 'signature_hash' are required.")
)
