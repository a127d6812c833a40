package integration

import "context"

// ---------------------------------------------------------------------------
// Facebook Graph API
// ---------------------------------------------------------------------------

// WABA is a WhatsApp Business Account
type WABA struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	Currency                 string `json:"currency"`
	MessageTemplateNamespace string `json:"message_template_namespace"`
	OwnerBusinessID          string `json:"-"`
}

// PhoneNumber is a WhatsApp phone number of a WABA
type PhoneNumber struct {
	ID                 string `json:"id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	VerifiedName       string `json:"verified_name"`
	QualityRating      string `json:"quality_rating,omitempty"`
}

// Granular scopes reported by debug_token
const (
	ScopeWhatsAppBusinessManagement = "whatsapp_business_management"
	ScopeBusinessManagement         = "business_management"
)

// GranularScope is one permission of a debugged token
type GranularScope struct {
	Scope     string   `json:"scope"`
	TargetIDs []string `json:"target_ids"`
}

// TokenInfo is the result of debug_token
type TokenInfo struct {
	AppID          string          `json:"app_id"`
	IsValid        bool            `json:"is_valid"`
	GranularScopes []GranularScope `json:"granular_scopes"`
}

// Targets returns the target ids of scope, or nil
func (t TokenInfo) Targets(scope string) []string {
	for _, s := range t.GranularScopes {
		if s.Scope == scope {
			return s.TargetIDs
		}
	}
	return nil
}

// WABAManager provisions WhatsApp Cloud accounts with the system-user token
type WABAManager interface {
	GetWABA(ctx context.Context, wabaID string) (*WABA, error)
	AssignSystemUser(ctx context.Context, wabaID string) error
	ShareCreditLine(ctx context.Context, wabaID, currency string) (allocationConfigID string, err error)
	SubscribeApp(ctx context.Context, wabaID string) error
	RegisterPhoneNumber(ctx context.Context, phoneNumberID, pin string) error

	// GetPhoneNumber reads a phone number with the given token; empty
	// token means the system-user token
	GetPhoneNumber(ctx context.Context, token, phoneNumberID string) (*PhoneNumber, error)
	ListPhoneNumbers(ctx context.Context, wabaID string) ([]PhoneNumber, error)
	DebugToken(ctx context.Context, inputToken string) (*TokenInfo, error)
}

// TemplateManager manages message templates. Empty token means the
// system-user token.
type TemplateManager interface {
	// UploadHeaderMedia opens an upload session and uploads data, returning
	// the file handle
	UploadHeaderMedia(ctx context.Context, token, mimeType string, data []byte) (string, error)

	// CreateMessageTemplate returns the id Facebook assigned
	CreateMessageTemplate(ctx context.Context, token string, req CreateTemplateRequest) (string, error)

	DeleteMessageTemplate(ctx context.Context, wabaID, name string) error
}

// CreateTemplateRequest is the message_templates payload
type CreateTemplateRequest struct {
	WABAID     string           `json:"-"`
	Name       string           `json:"name"`
	Category   string           `json:"category"`
	Language   string           `json:"language"`
	Components []map[string]any `json:"components"`
}

// FeedFile is a product feed file to upload
type FeedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CommerceManager manages catalogs and product feeds
type CommerceManager interface {
	CreateCatalog(ctx context.Context, businessID, name, vertical string) (string, error)
	DeleteCatalog(ctx context.Context, catalogID string) error
	CreateProductFeed(ctx context.Context, catalogID, name string) (string, error)
	UploadProductFeed(ctx context.Context, feedID string, file FeedFile) error
	DeleteProductFeed(ctx context.Context, feedID string) error
}

// GraphClient is the full Graph API surface
type GraphClient interface {
	WABAManager
	TemplateManager
	CommerceManager
}
