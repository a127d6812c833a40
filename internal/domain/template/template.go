// Package template models WhatsApp message templates and their per-language
// translations, and composes translations into the component list the
// Graph API expects.
package template

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// Category is the WhatsApp template category
type Category string

const (
	CategoryMarketing      Category = "MARKETING"
	CategoryUtility        Category = "UTILITY"
	CategoryAuthentication Category = "AUTHENTICATION"
)

// legacy categories still accepted by older WABAs
var legacyCategories = map[Category]struct{}{
	"TRANSACTIONAL":           {},
	"ACCOUNT_UPDATE":          {},
	"PAYMENT_UPDATE":          {},
	"PERSONAL_FINANCE_UPDATE": {},
	"SHIPPING_UPDATE":         {},
	"RESERVATION_UPDATE":      {},
	"ISSUE_RESOLUTION":        {},
	"APPOINTMENT_UPDATE":      {},
	"TRANSPORTATION_UPDATE":   {},
	"TICKET_UPDATE":           {},
	"ALERT_UPDATE":            {},
	"AUTO_REPLY":              {},
}

// IsValid reports whether c is accepted by the Graph API
func (c Category) IsValid() bool {
	switch c {
	case CategoryMarketing, CategoryUtility, CategoryAuthentication:
		return true
	}
	_, ok := legacyCategories[c]
	return ok
}

// TemplateTypeText is the only template type created by this service
const TemplateTypeText = "TEXT"

// StatusPending is the status of a translation until Facebook reviews it
const StatusPending = "PENDING"

// DefaultCountry is stored when a translation names no country
const DefaultCountry = "Brasil"

const maxNameLength = 512

var namePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Message is a reusable outbound template owned by one App
type Message struct {
	shared.BaseEntity
	AppID        uuid.UUID
	Name         string
	Category     Category
	TemplateType string
	CreatedBy    string
	Translations []*Translation
}

// NewMessage validates and creates a template. No external call is made.
func NewMessage(appID uuid.UUID, name string, category Category, createdBy string) (*Message, error) {
	if appID == uuid.Nil {
		return nil, shared.NewValidationError("app_uuid is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	if len(name) > maxNameLength || !namePattern.MatchString(name) {
		return nil, ErrInvalidName
	}
	category = Category(strings.ToUpper(strings.TrimSpace(string(category))))
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}
	return &Message{
		BaseEntity:   shared.NewBaseEntity(),
		AppID:        appID,
		Name:         name,
		Category:     category,
		TemplateType: TemplateTypeText,
		CreatedBy:    createdBy,
	}, nil
}

// TextPreview is the body of the first translation, if any
func (m *Message) TextPreview() string {
	if len(m.Translations) == 0 {
		return ""
	}
	return m.Translations[0].Body
}

// Translation is a template rendered in one language
type Translation struct {
	shared.BaseEntity
	TemplateID        uuid.UUID
	Status            string
	Language          string
	Country           string
	Body              string
	Footer            string
	VariableCount     int
	MessageTemplateID string
	Header            *Header
	Buttons           []*Button
}

// Header is the persisted header of a translation. Media examples are
// never stored.
type Header struct {
	shared.BaseEntity
	TranslationID uuid.UUID
	HeaderType    string
	Text          string
}

// Button is a persisted translation button
type Button struct {
	shared.BaseEntity
	TranslationID uuid.UUID
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

// NewTranslation builds the rows persisted after Facebook accepted the
// template. messageTemplateID is the identifier Facebook returned.
func NewTranslation(templateID uuid.UUID, req TranslationRequest, messageTemplateID string) *Translation {
	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = DefaultCountry
	}
	tr := &Translation{
		BaseEntity:        shared.NewBaseEntity(),
		TemplateID:        templateID,
		Status:            StatusPending,
		Language:          req.Language,
		Country:           country,
		Body:              textOf(req.Body),
		Footer:            textOf(req.Footer),
		VariableCount:     0,
		MessageTemplateID: messageTemplateID,
	}
	if req.Header != nil {
		headerType := req.Header.HeaderType
		if headerType == "" {
			headerType = HeaderText
		}
		tr.Header = &Header{
			BaseEntity:    shared.NewBaseEntity(),
			TranslationID: tr.ID,
			HeaderType:    headerType,
			Text:          req.Header.Text,
		}
	}
	for _, b := range req.Buttons {
		tr.Buttons = append(tr.Buttons, &Button{
			BaseEntity:    shared.NewBaseEntity(),
			TranslationID: tr.ID,
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
	return tr
}

func textOf(component map[string]any) string {
	if component == nil {
		return ""
	}
	s, _ := component["text"].(string)
	return s
}

var (
	ErrTemplateNotFound = shared.NewDomainError(shared.CodeNotFound, "Template not found")
	ErrMissingName      = shared.NewDomainError(shared.CodeInvalidInput, "name is required")
	ErrInvalidName      = shared.NewDomainError(shared.CodeInvalidInput, "name may only contain lowercase letters, digits and underscores")
	ErrInvalidCategory  = shared.NewDomainError(shared.CodeInvalidInput, "Unknown template category")
	ErrTemplateExists   = shared.NewDomainError(shared.CodeAlreadyExists, "A template with this name already exists for the app")
)
