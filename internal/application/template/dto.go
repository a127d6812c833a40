package template

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/template"
)

// CreateTemplateRequest creates a template message
type CreateTemplateRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required,template_category"`
}

// ListTemplatesRequest filters and pages template listings
type ListTemplatesRequest struct {
	Name     string `form:"name"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// HeaderRequest is the requested header of a translation
type HeaderRequest struct {
	HeaderType string `json:"header_type"`
	Text       string `json:"text"`
	Example    string `json:"example"`
}

// ButtonRequest is one requested translation button
type ButtonRequest struct {
	ButtonType    string `json:"button_type"`
	Text          string `json:"text"`
	CountryCode   string `json:"country_code"`
	PhoneNumber   string `json:"phone_number"`
	URL           string `json:"url"`
	OTPType       string `json:"otp_type"`
	PackageName   string `json:"package_name"`
	SignatureHash string `json:"signature_hash"`
	AutofillText  string `json:"autofill_text"`
}

// CreateTranslationRequest renders a template in one language
type CreateTranslationRequest struct {
	Language string          `json:"language" binding:"required"`
	Country  string          `json:"country"`
	Header   *HeaderRequest  `json:"header"`
	Body     map[string]any  `json:"body" binding:"required"`
	Footer   map[string]any  `json:"footer"`
	Buttons  []ButtonRequest `json:"buttons"`
}

func (r CreateTranslationRequest) toDomain() template.TranslationRequest {
	out := template.TranslationRequest{
		Language: r.Language,
		Country:  r.Country,
		Body:     r.Body,
		Footer:   r.Footer,
	}
	if r.Header != nil {
		out.Header = &template.HeaderInput{
			HeaderType: r.Header.HeaderType,
			Text:       r.Header.Text,
			Example:    r.Header.Example,
		}
	}
	for _, b := range r.Buttons {
		out.Buttons = append(out.Buttons, template.ButtonInput(b))
	}
	return out
}

// TemplateResponse is the API view of a template message
type TemplateResponse struct {
	ID           uuid.UUID             `json:"uuid"`
	AppID        uuid.UUID             `json:"app_uuid"`
	Name         string                `json:"name"`
	Category     string                `json:"category"`
	TemplateType string                `json:"template_type"`
	TextPreview  string                `json:"text_preview"`
	CreatedBy    string                `json:"created_by"`
	CreatedAt    time.Time             `json:"created_on"`
	Translations []TranslationResponse `json:"translations"`
}

// TranslationResponse is the API view of a translation
type TranslationResponse struct {
	ID                uuid.UUID        `json:"uuid"`
	Status            string           `json:"status"`
	Language          string           `json:"language"`
	Country           string           `json:"country"`
	Body              string           `json:"body"`
	Footer            string           `json:"footer"`
	VariableCount     int              `json:"variable_count"`
	MessageTemplateID string           `json:"message_template_id"`
	Header            *HeaderResponse  `json:"header,omitempty"`
	Buttons           []ButtonResponse `json:"buttons"`
}

// HeaderResponse is a stored header
type HeaderResponse struct {
	HeaderType string `json:"header_type"`
	Text       string `json:"text,omitempty"`
}

// ButtonResponse is a stored button
type ButtonResponse struct {
	ButtonType    string `json:"button_type"`
	Text          string `json:"text,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	URL           string `json:"url,omitempty"`
	OTPType       string `json:"otp_type,omitempty"`
	PackageName   string `json:"package_name,omitempty"`
	SignatureHash string `json:"signature_hash,omitempty"`
	AutofillText  string `json:"autofill_text,omitempty"`
}

// LanguageResponse is one supported template language
type LanguageResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ToTemplateResponse converts a template message
func ToTemplateResponse(m *template.Message) TemplateResponse {
	resp := TemplateResponse{
		ID:           m.ID,
		AppID:        m.AppID,
		Name:         m.Name,
		Category:     string(m.Category),
		TemplateType: m.TemplateType,
		TextPreview:  m.TextPreview(),
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		Translations: make([]TranslationResponse, 0, len(m.Translations)),
	}
	for _, tr := range m.Translations {
		resp.Translations = append(resp.Translations, ToTranslationResponse(tr))
	}
	return resp
}

// ToTranslationResponse converts a translation
func ToTranslationResponse(tr *template.Translation) TranslationResponse {
	resp := TranslationResponse{
		ID:                tr.ID,
		Status:            tr.Status,
		Language:          tr.Language,
		Country:           tr.Country,
		Body:              tr.Body,
		Footer:            tr.Footer,
		VariableCount:     tr.VariableCount,
		MessageTemplateID: tr.MessageTemplateID,
		Buttons:           make([]ButtonResponse, 0, len(tr.Buttons)),
	}
	if tr.Header != nil {
		resp.Header = &HeaderResponse{HeaderType: tr.Header.HeaderType, Text: tr.Header.Text}
	}
	for _, b := range tr.Buttons {
		resp.Buttons = append(resp.Buttons, ButtonResponse{
			ButtonType:    b.ButtonType,
			Text:          b.Text,
			CountryCode:   b.CountryCode,
			PhoneNumber:   b.PhoneNumber,
			URL:           b.URL,
			OTPType:       b.OTPType,
			PackageName:   b.PackageName,
			SignatureHash: b.SignatureHash,
			AutofillText:  b.AutofillText,
		})
	}
	return resp
}
