package models

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/template"
)

// TemplateModel is the persistence model for a WhatsApp message template
type TemplateModel struct {
	BaseModel
	AppID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	Name         string             `gorm:"type:varchar(512);not null"`
	Category     template.Category  `gorm:"type:varchar(100);not null"`
	TemplateType string             `gorm:"type:varchar(100);not null;default:'TEXT'"`
	CreatedBy    string             `gorm:"type:varchar(254);index"`
	Translations []TranslationModel `gorm:"foreignKey:TemplateID"`
}

// TableName returns the table name for GORM
func (TemplateModel) TableName() string {
	return "templates"
}

// ToDomain converts the persistence model to a domain Message with any loaded translations
func (m *TemplateModel) ToDomain() *template.Message {
	msg := &template.Message{
		BaseEntity:   m.BaseModel.ToDomain(),
		AppID:        m.AppID,
		Name:         m.Name,
		Category:     m.Category,
		TemplateType: m.TemplateType,
		CreatedBy:    m.CreatedBy,
	}
	for i := range m.Translations {
		msg.Translations = append(msg.Translations, m.Translations[i].ToDomain())
	}
	return msg
}

// FromDomain populates the persistence model from a domain Message, without translations
func (m *TemplateModel) FromDomain(msg *template.Message) {
	m.FromDomainBaseEntity(msg.BaseEntity)
	m.AppID = msg.AppID
	m.Name = msg.Name
	m.Category = msg.Category
	m.TemplateType = msg.TemplateType
	m.CreatedBy = msg.CreatedBy
}

// TranslationModel is the persistence model for one language of a template
type TranslationModel struct {
	BaseModel
	TemplateID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status            string                `gorm:"type:varchar(30);not null"`
	Language          string                `gorm:"type:varchar(10);not null"`
	Country           string                `gorm:"type:varchar(60)"`
	Body              string                `gorm:"type:text"`
	Footer            string                `gorm:"type:text"`
	VariableCount     int                   `gorm:"not null;default:0"`
	MessageTemplateID string                `gorm:"type:varchar(50)"`
	Header            *TemplateHeaderModel  `gorm:"foreignKey:TranslationID"`
	Buttons           []TemplateButtonModel `gorm:"foreignKey:TranslationID"`
}

// TableName returns the table name for GORM
func (TranslationModel) TableName() string {
	return "template_translations"
}

// ToDomain converts the persistence model to a domain Translation
func (m *TranslationModel) ToDomain() *template.Translation {
	tr := &template.Translation{
		BaseEntity:        m.BaseModel.ToDomain(),
		TemplateID:        m.TemplateID,
		Status:            m.Status,
		Language:          m.Language,
		Country:           m.Country,
		Body:              m.Body,
		Footer:            m.Footer,
		VariableCount:     m.VariableCount,
		MessageTemplateID: m.MessageTemplateID,
	}
	if m.Header != nil {
		tr.Header = &template.Header{
			BaseEntity:    m.Header.BaseModel.ToDomain(),
			TranslationID: m.Header.TranslationID,
			HeaderType:    m.Header.HeaderType,
			Text:          m.Header.Text,
		}
	}
	for _, b := range m.Buttons {
		tr.Buttons = append(tr.Buttons, &template.Button{
			BaseEntity:    b.BaseModel.ToDomain(),
			TranslationID: b.TranslationID,
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

// TranslationModelFromDomain creates the persistence graph of a translation
func TranslationModelFromDomain(tr *template.Translation) *TranslationModel {
	m := &TranslationModel{
		TemplateID:        tr.TemplateID,
		Status:            tr.Status,
		Language:          tr.Language,
		Country:           tr.Country,
		Body:              tr.Body,
		Footer:            tr.Footer,
		VariableCount:     tr.VariableCount,
		MessageTemplateID: tr.MessageTemplateID,
	}
	m.FromDomainBaseEntity(tr.BaseEntity)
	if tr.Header != nil {
		h := &TemplateHeaderModel{
			TranslationID: tr.ID,
			HeaderType:    tr.Header.HeaderType,
			Text:          tr.Header.Text,
		}
		h.FromDomainBaseEntity(tr.Header.BaseEntity)
		m.Header = h
	}
	for _, b := range tr.Buttons {
		bm := TemplateButtonModel{
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
		}
		bm.FromDomainBaseEntity(b.BaseEntity)
		m.Buttons = append(m.Buttons, bm)
	}
	return m
}

// TemplateHeaderModel is the persistence model for a translation header
type TemplateHeaderModel struct {
	BaseModel
	TranslationID uuid.UUID `gorm:"type:uuid;not null;index"`
	HeaderType    string    `gorm:"type:varchar(20);not null"`
	Text          string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TemplateHeaderModel) TableName() string {
	return "template_headers"
}

// TemplateButtonModel is the persistence model for a translation button
type TemplateButtonModel struct {
	BaseModel
	TranslationID uuid.UUID `gorm:"type:uuid;not null;index"`
	ButtonType    string    `gorm:"type:varchar(20);not null"`
	Text          string    `gorm:"type:varchar(25)"`
	CountryCode   string    `gorm:"type:varchar(5)"`
	PhoneNumber   string    `gorm:"type:varchar(20)"`
	URL           string    `gorm:"type:text"`
	OTPType       string    `gorm:"column:otp_type;type:varchar(20)"`
	PackageName   string    `gorm:"type:varchar(255)"`
	SignatureHash string    `gorm:"type:varchar(50)"`
	AutofillText  string    `gorm:"type:varchar(25)"`
}

// TableName returns the table name for GORM
func (TemplateButtonModel) TableName() string {
	return "template_buttons"
}
