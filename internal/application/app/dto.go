package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/integration"
)

// AppTypeResponse is the API view of an app type
type AppTypeResponse struct {
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Summary     string         `json:"summary"`
	Category    string         `json:"category"`
	Developer   string         `json:"developer"`
	BgColor     string         `json:"bg_color"`
	Platform    string         `json:"platform"`
	Deletable   bool           `json:"can_delete"`
	ChannelType string         `json:"channel_type,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// ToAppTypeResponse converts a descriptor to its response
func ToAppTypeResponse(d apptype.Descriptor) AppTypeResponse {
	return AppTypeResponse{
		Code:        d.Code.String(),
		Name:        d.Name,
		Description: d.Description,
		Summary:     d.Summary,
		Category:    string(d.Category),
		Developer:   d.Developer,
		BgColor:     d.BgColor,
		Platform:    string(d.Platform),
		Deletable:   d.Deletable,
		ChannelType: d.ChannelTypeCode,
	}
}

// ChannelTypeResponse is an entry of the orchestration channel-type catalogue
type ChannelTypeResponse struct {
	Code       string         `json:"code"`
	Name       string         `json:"name,omitempty"`
	Attributes map[string]any `json:"attributes"`
}

// ToChannelTypeResponse converts a catalogue entry to its response
func ToChannelTypeResponse(ct integration.ChannelType) ChannelTypeResponse {
	attrs := ct.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return ChannelTypeResponse{Code: ct.Code, Name: ct.Name, Attributes: attrs}
}

// AppResponse is the API view of an App
type AppResponse struct {
	ID             uuid.UUID      `json:"uuid"`
	Code           string         `json:"code"`
	ProjectUUID    uuid.UUID      `json:"project_uuid"`
	Platform       string         `json:"platform"`
	Config         map[string]any `json:"config"`
	FlowObjectUUID *uuid.UUID     `json:"flow_object_uuid"`
	Configured     bool           `json:"configured"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      time.Time      `json:"created_on"`
	UpdatedAt      time.Time      `json:"modified_on"`
}

// ToAppResponse converts an App to its response
func ToAppResponse(a *app.App) AppResponse {
	return AppResponse{
		ID:             a.ID,
		Code:           a.Code,
		ProjectUUID:    a.ProjectUUID,
		Platform:       string(a.Platform),
		Config:         a.Config.Clone(),
		FlowObjectUUID: a.FlowObjectUUID,
		Configured:     a.Configured,
		CreatedBy:      a.CreatedBy,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ToAppResponses converts a list of Apps
func ToAppResponses(apps []*app.App) []AppResponse {
	out := make([]AppResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, ToAppResponse(a))
	}
	return out
}
