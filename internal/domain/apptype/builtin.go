package apptype

import "github.com/marketplace/backend/internal/domain/app"

// Built-in app types
var (
	WebChat = appType[WebChatConfig]{desc: Descriptor{
		Code:            CodeWebChat,
		Name:            "Weni Web Chat",
		Description:     "WeniWebChat.data.description",
		Summary:         "WeniWebChat.data.summary",
		Category:        CategoryChannel,
		Developer:       "Weni",
		BgColor:         "#00DED333",
		Platform:        app.PlatformWeniFlows,
		ChannelTypeCode: "WWC",
		Provision:       ProvisionChannel,
		Deletable:       true,
	}}

	Telegram = appType[TelegramConfig]{desc: Descriptor{
		Code:            CodeTelegram,
		Name:            "Telegram",
		Description:     "Telegram.data.description",
		Summary:         "Telegram.data.summary",
		Category:        CategoryChannel,
		Developer:       "Weni",
		BgColor:         "#0088CC33",
		Platform:        app.PlatformWeniFlows,
		ChannelTypeCode: "TG",
		Provision:       ProvisionChannel,
		Deletable:       true,
	}}

	WhatsAppDemo = appType[WhatsAppDemoConfig]{desc: Descriptor{
		Code:            CodeWhatsAppDemo,
		Name:            "WhatsApp Demo",
		Description:     "WhatsAppDemo.data.description",
		Summary:         "WhatsAppDemo.data.summary",
		Category:        CategoryChannel,
		Developer:       "Weni",
		BgColor:         "#00DED333",
		Platform:        app.PlatformWeniFlows,
		ChannelTypeCode: "WA",
		Provision:       ProvisionChannel,
		Deletable:       true,
	}}

	WhatsApp = appType[WhatsAppConfig]{desc: Descriptor{
		Code:            CodeWhatsApp,
		Name:            "WhatsApp",
		Description:     "WhatsApp.data.description",
		Summary:         "WhatsApp.data.summary",
		Category:        CategoryChannel,
		Developer:       "Weni",
		BgColor:         "#d1fcc9cc",
		Platform:        app.PlatformWeniFlows,
		ChannelTypeCode: "WA",
		Provision:       ProvisionNone,
		Deletable:       true,
	}}

	WhatsAppCloud = appType[WhatsAppCloudConfig]{desc: Descriptor{
		Code:            CodeWhatsAppCloud,
		Name:            "WhatsApp Cloud",
		Description:     "WhatsAppCloud.data.description",
		Summary:         "WhatsAppCloud.data.summary",
		Category:        CategoryChannel,
		Developer:       "Weni",
		BgColor:         "#d1fcc9cc",
		Platform:        app.PlatformWeniFlows,
		ChannelTypeCode: "WAC",
		Provision:       ProvisionWhatsAppCloud,
		Deletable:       false,
	}}

	Generic = appType[GenericChannelConfig]{desc: Descriptor{
		Code:        CodeGeneric,
		Name:        "Generic",
		Description: "GenericChannel.data.description",
		Summary:     "GenericChannel.data.summary",
		Category:    CategoryChannel,
		Developer:   "Weni",
		BgColor:     "#00DED333",
		Platform:    app.PlatformWeniFlows,
		Provision:   ProvisionGenericChannel,
		Deletable:   true,
	}}

	Omie = appType[OmieConfig]{desc: Descriptor{
		Code:        CodeOmie,
		Name:        "Omie",
		Description: "Omie.data.description",
		Summary:     "Omie.data.summary",
		Category:    CategoryExternals,
		Developer:   "Weni",
		BgColor:     "#00A0E333",
		Platform:    app.PlatformOmie,
		Provision:   ProvisionExternal,
		Deletable:   true,
	}}

	VTEX = appType[VTEXConfig]{desc: Descriptor{
		Code:        CodeVTEX,
		Name:        "VTEX",
		Description: "VTEX.data.description",
		Summary:     "VTEX.data.summary",
		Category:    CategoryEcommerce,
		Developer:   "Weni",
		BgColor:     "#F71963",
		Platform:    app.PlatformVTEX,
		Provision:   ProvisionCommerce,
		Deletable:   true,
	}}
)

// DefaultRegistry returns a registry with every built-in type
func DefaultRegistry() *Registry {
	return NewRegistry(WebChat, Telegram, WhatsAppDemo, WhatsApp, WhatsAppCloud, Generic, Omie, VTEX)
}
