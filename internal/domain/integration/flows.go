package integration

import (
	"context"
	"net/http"
)

// ---------------------------------------------------------------------------
// Channel orchestration backend
// ---------------------------------------------------------------------------

// Channel type codes used by the orchestration backend
const (
	ChannelTypeWebChat       = "WWC"
	ChannelTypeTelegram      = "TG"
	ChannelTypeWhatsApp      = "WA"
	ChannelTypeWhatsAppCloud = "WAC"
)

// Channel is a channel as listed by the orchestration backend
type Channel struct {
	UUID        string         `json:"uuid"`
	Name        string         `json:"name"`
	Address     string         `json:"address"`
	ProjectUUID string         `json:"project_uuid"`
	IsActive    bool           `json:"is_active"`
	Config      map[string]any `json:"config"`
}

// CreateChannelRequest creates a generic channel
type CreateChannelRequest struct {
	User            string         `json:"user"`
	ProjectUUID     string         `json:"org"`
	Data            map[string]any `json:"data"`
	ChannelTypeCode string         `json:"channeltype_code"`
}

// CreateWACChannelRequest creates a WhatsApp Cloud channel
type CreateWACChannelRequest struct {
	User          string         `json:"user"`
	ProjectUUID   string         `json:"project_uuid,omitempty"`
	Config        map[string]any `json:"config"`
	PhoneNumberID string         `json:"phone_number_id"`
}

// ChannelType is an entry of the orchestration backend's channel-type catalogue
type ChannelType struct {
	Code       string         `json:"code"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

// ChannelManager creates, inspects and releases channels
type ChannelManager interface {
	// ListChannels lists every channel of the given type code
	ListChannels(ctx context.Context, channelTypeCode string) ([]Channel, error)

	// CreateChannel creates a generic channel and returns it with its uuid
	CreateChannel(ctx context.Context, req CreateChannelRequest) (*Channel, error)

	// CreateWACChannel creates a WhatsApp Cloud channel
	CreateWACChannel(ctx context.Context, req CreateWACChannelRequest) (*Channel, error)

	// ReleaseChannel deletes a channel on behalf of userEmail
	ReleaseChannel(ctx context.Context, channelUUID, userEmail string) error

	// DetailChannel returns a channel including its current config
	DetailChannel(ctx context.Context, channelUUID string) (*Channel, error)

	// UpdateChannelConfig replaces the config of a channel
	UpdateChannelConfig(ctx context.Context, channelUUID string, config map[string]any) error
}

// ChannelTypeCatalog exposes the orchestration backend's channel types
type ChannelTypeCatalog interface {
	ListChannelTypes(ctx context.Context) ([]ChannelType, error)
	DetailChannelType(ctx context.Context, code string) (*ChannelType, error)
}

// SentMessagesReport asks for a sent-messages report of a project
type SentMessagesReport struct {
	ProjectUUID string
	StartDate   string
	EndDate     string
	User        string
}

// ProjectServices covers project-level operations on the orchestration backend
type ProjectServices interface {
	// CreateExternalService registers an external service and returns its uuid
	CreateExternalService(ctx context.Context, user, projectUUID, typeCode string, fields map[string]any) (string, error)

	// UserAPIToken returns the project API token of a user
	UserAPIToken(ctx context.Context, user, projectUUID string) (string, error)

	// ReportSentMessages forwards a report request and returns the upstream status
	ReportSentMessages(ctx context.Context, report SentMessagesReport) (int, error)
}

// FlowsClient is the full orchestration backend surface
type FlowsClient interface {
	ChannelManager
	ChannelTypeCatalog
	ProjectServices
}

// IsSuccess reports whether an upstream status is 200 or 201
func IsSuccess(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated
}
