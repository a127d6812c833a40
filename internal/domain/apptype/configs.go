package apptype

import (
	"strings"

	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/shared"
)

// CatalogRef is one entry of a cloud channel's catalog mirror
type CatalogRef struct {
	FacebookCatalogID string `json:"facebook_catalog_id"`
}

// WhatsAppCloudConfig is the config of a wpp-cloud App
type WhatsAppCloudConfig struct {
	Title                      string         `json:"title,omitempty"`
	WANumber                   string         `json:"wa_number,omitempty"`
	WAVerifiedName             string         `json:"wa_verified_name,omitempty"`
	WAWabaID                   string         `json:"wa_waba_id,omitempty"`
	WACurrency                 string         `json:"wa_currency,omitempty"`
	WABusinessID               string         `json:"wa_business_id,omitempty"`
	WAMessageTemplateNamespace string         `json:"wa_message_template_namespace,omitempty"`
	WAPin                      string         `json:"wa_pin,omitempty"`
	WAAllocationConfigID       string         `json:"wa_allocation_config_id,omitempty"`
	WAPhoneNumberID            string         `json:"wa_phone_number_id,omitempty"`
	Catalogs                   []CatalogRef   `json:"catalogs,omitempty"`
	Webhook                    map[string]any `json:"webhook,omitempty"`
}

func (c WhatsAppCloudConfig) Validate() error {
	return nil
}

// HasCatalog reports whether the mirror already lists id
func (c WhatsAppCloudConfig) HasCatalog(id string) bool {
	for _, ref := range c.Catalogs {
		if ref.FacebookCatalogID == id {
			return true
		}
	}
	return false
}

// WABARef identifies a WhatsApp Business Account
type WABARef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// WhatsAppConfig is the config of an on-premise wpp App
type WhatsAppConfig struct {
	Title         string         `json:"title,omitempty"`
	FBAccessToken string         `json:"fb_access_token,omitempty"`
	AuthToken     string         `json:"auth_token,omitempty"`
	FBNamespace   string         `json:"fb_namespace,omitempty"`
	BaseURL       string         `json:"base_url,omitempty"`
	WABA          *WABARef       `json:"waba,omitempty"`
	PhoneNumber   map[string]any `json:"phone_number,omitempty"`
}

func (c WhatsAppConfig) Validate() error {
	return nil
}

// TelegramConfig is the config of a tg App
type TelegramConfig struct {
	Title string `json:"title,omitempty"`
	Token string `json:"token,omitempty"`
}

func (c TelegramConfig) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return shared.NewValidationError("telegram token is required")
	}
	return nil
}

// WebChatConfig is the config of a wwc App
type WebChatConfig struct {
	Title       string `json:"title,omitempty"`
	InputText   string `json:"inputTextFieldHint,omitempty"`
	MainColor   string `json:"mainColor,omitempty"`
	AvatarImage string `json:"avatarImage,omitempty"`
	Script      string `json:"script,omitempty"`
}

func (c WebChatConfig) Validate() error {
	return nil
}

// WhatsAppDemoConfig is the config of a wpp-demo App
type WhatsAppDemoConfig struct {
	Title       string `json:"title,omitempty"`
	RouterToken string `json:"router_token,omitempty"`
	Redirect    string `json:"redirect_url,omitempty"`
}

func (c WhatsAppDemoConfig) Validate() error {
	return nil
}

// GenericChannelConfig is the config of a generic App. ChannelCode is the
// orchestration channel type the App was created for.
type GenericChannelConfig struct {
	Title       string `json:"title,omitempty"`
	ChannelCode string `json:"channel_code,omitempty"`
}

func (c GenericChannelConfig) Validate() error {
	return nil
}

// OmieConfig is the config of an omie App
type OmieConfig struct {
	Name      string `json:"name,omitempty"`
	AppKey    string `json:"app_key,omitempty"`
	AppSecret string `json:"app_secret,omitempty"`
}

func (c OmieConfig) Validate() error {
	if strings.TrimSpace(c.AppKey) == "" {
		return shared.NewValidationError("app_key is required")
	}
	if strings.TrimSpace(c.AppSecret) == "" {
		return shared.NewValidationError("app_secret is required")
	}
	return nil
}

// VTEXConfig is the config of a vtex App
type VTEXConfig struct {
	Domain       string `json:"domain,omitempty"`
	AppKey       string `json:"app_key,omitempty"`
	AppToken     string `json:"app_token,omitempty"`
	WppCloudUUID string `json:"wpp_cloud_uuid,omitempty"`
	StoreName    string `json:"store_name,omitempty"`
}

func (c VTEXConfig) Validate() error {
	if strings.TrimSpace(c.Domain) == "" {
		return shared.NewValidationError("domain is required")
	}
	if c.AppKey == "" || c.AppToken == "" {
		return shared.NewValidationError("app_key and app_token are required")
	}
	return nil
}

// DecodeWhatsAppCloud reads a wpp-cloud config
func DecodeWhatsAppCloud(cfg app.Config) (WhatsAppCloudConfig, error) {
	var c WhatsAppCloudConfig
	if err := cfg.Decode(&c); err != nil {
		return c, shared.NewValidationError("invalid wpp-cloud config: %v", err)
	}
	return c, nil
}

// DecodeWhatsApp reads an on-premise wpp config
func DecodeWhatsApp(cfg app.Config) (WhatsAppConfig, error) {
	var c WhatsAppConfig
	if err := cfg.Decode(&c); err != nil {
		return c, shared.NewValidationError("invalid wpp config: %v", err)
	}
	return c, nil
}

// WABAID resolves the WhatsApp Business Account of any WhatsApp App:
// wa_waba_id first, then waba.id.
func WABAID(cfg app.Config) string {
	if id := cfg.GetString("wa_waba_id"); id != "" {
		return id
	}
	var c struct {
		WABA *WABARef `json:"waba"`
	}
	if err := cfg.Decode(&c); err != nil || c.WABA == nil {
		return ""
	}
	return c.WABA.ID
}
