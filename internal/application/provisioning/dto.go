package provisioning

import "github.com/google/uuid"

// CreateChannelRequest creates a wwc, tg or wpp-demo App
type CreateChannelRequest struct {
	ProjectUUID uuid.UUID      `json:"project_uuid" validate:"required"`
	Config      map[string]any `json:"config"`
}

// CreateGenericChannelRequest creates a generic App for an orchestration
// channel type such as AC
type CreateGenericChannelRequest struct {
	ProjectUUID uuid.UUID      `json:"project_uuid" validate:"required"`
	ChannelCode string         `json:"channel_code" validate:"required"`
	Config      map[string]any `json:"config"`
}

// CreateCloudRequest onboards a WhatsApp Cloud number
type CreateCloudRequest struct {
	ProjectUUID   uuid.UUID `json:"project_uuid" validate:"required"`
	InputToken    string    `json:"input_token" validate:"required"`
	WABAID        string    `json:"waba_id" validate:"required"`
	PhoneNumberID string    `json:"phone_number_id" validate:"required"`
	BusinessID    string    `json:"business_id" validate:"required"`
}

// CreateCloudResponse echoes the validated onboarding input
type CreateCloudResponse struct {
	AppID         uuid.UUID `json:"app_uuid"`
	ProjectUUID   uuid.UUID `json:"project_uuid"`
	WABAID        string    `json:"waba_id"`
	PhoneNumberID string    `json:"phone_number_id"`
	BusinessID    string    `json:"business_id"`
}

// CreateExternalRequest creates an unconfigured external App
type CreateExternalRequest struct {
	ProjectUUID uuid.UUID      `json:"project_uuid" validate:"required"`
	Config      map[string]any `json:"config"`
}

// ConfigureRequest carries the config of an external App
type ConfigureRequest struct {
	Config map[string]any `json:"config" validate:"required"`
}

// CreateVTEXRequest installs a VTEX store
type CreateVTEXRequest struct {
	ProjectUUID  uuid.UUID `json:"project_uuid" validate:"required"`
	Domain       string    `json:"domain" validate:"required"`
	AppKey       string    `json:"app_key" validate:"required"`
	AppToken     string    `json:"app_token" validate:"required"`
	WppCloudUUID uuid.UUID `json:"wpp_cloud_uuid" validate:"required"`
	StoreName    string    `json:"store_name"`
}

// DebugTokenResponse is the account reached by a user token
type DebugTokenResponse struct {
	WABAID     string `json:"waba_id"`
	BusinessID string `json:"business_id"`
}

// UpdateWebhookRequest replaces the webhook of a cloud channel
type UpdateWebhookRequest struct {
	Config map[string]any `json:"config"`
}

// ReportRequest asks the orchestration backend for a sent-messages report
type ReportRequest struct {
	ProjectUUID string `form:"project_uuid" validate:"required"`
	StartDate   string `form:"start_date" validate:"required"`
	EndDate     string `form:"end_date" validate:"required"`
}
