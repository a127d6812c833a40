// Package template manages WhatsApp message templates of channel Apps and
// publishes their translations to Facebook.
package template

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/app"
	"github.com/marketplace/backend/internal/domain/apptype"
	"github.com/marketplace/backend/internal/domain/integration"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/template"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Service handles template messages and their translations
type Service struct {
	apps      app.Repository
	templates template.Repository
	graph     integration.TemplateManager
	logger    *zap.Logger
}

// NewService creates a new template Service
func NewService(apps app.Repository, templates template.Repository, graph integration.TemplateManager, logger *zap.Logger) *Service {
	return &Service{
		apps:      apps,
		templates: templates,
		graph:     graph,
		logger:    logger,
	}
}

// Create stores a new template message. Nothing is sent to Facebook until
// a translation is added.
func (s *Service) Create(ctx context.Context, user string, appID uuid.UUID, req CreateTemplateRequest) (*TemplateResponse, error) {
	a, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	m, err := template.NewMessage(a.ID, req.Name, template.Category(req.Category), user)
	if err != nil {
		return nil, err
	}
	exists, err := s.templates.ExistsByName(ctx, a.ID, m.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, template.ErrTemplateExists
	}
	if err := s.templates.Create(ctx, m); err != nil {
		return nil, err
	}

	resp := ToTemplateResponse(m)
	return &resp, nil
}

// List returns one page of the App's templates
func (s *Service) List(ctx context.Context, appID uuid.UUID, req ListTemplatesRequest) (*shared.Paginated[TemplateResponse], error) {
	page := shared.PageRequest{Page: req.Page, PageSize: req.PageSize}.Normalize()
	filter := template.Filter{
		AppID:    appID,
		Name:     strings.TrimSpace(req.Name),
		Category: template.Category(strings.ToUpper(strings.TrimSpace(req.Category))),
	}
	messages, total, err := s.templates.FindAll(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	items := make([]TemplateResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, ToTemplateResponse(m))
	}
	result := shared.NewPaginated(items, total, page.Page, page.PageSize)
	return &result, nil
}

// Get returns a template with its translations
func (s *Service) Get(ctx context.Context, appID, id uuid.UUID) (*TemplateResponse, error) {
	m, err := s.templates.FindByID(ctx, appID, id)
	if err != nil {
		return nil, err
	}
	resp := ToTemplateResponse(m)
	return &resp, nil
}

// Destroy deletes the template on Facebook, then locally
func (s *Service) Destroy(ctx context.Context, appID, id uuid.UUID) error {
	a, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return err
	}
	m, err := s.templates.FindByID(ctx, a.ID, id)
	if err != nil {
		return err
	}
	wabaID := apptype.WABAID(a.Config)
	if wabaID == "" {
		return ErrMissingWABA
	}

	if err := s.graph.DeleteMessageTemplate(ctx, wabaID, m.Name); err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, m.ID); err != nil {
		return err
	}

	s.logger.Info("Template deleted",
		zap.String("app_uuid", a.ID.String()),
		zap.String("template", m.Name))
	return nil
}

// CreateTranslation composes the translation, creates it on Facebook and
// stores it. The whole request is validated before any external call and
// nothing is stored unless Facebook accepted the template.
func (s *Service) CreateTranslation(ctx context.Context, appID, templateID uuid.UUID, req CreateTranslationRequest) (*TranslationResponse, error) {
	a, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	m, err := s.templates.FindByID(ctx, a.ID, templateID)
	if err != nil {
		return nil, err
	}

	token, err := accessToken(a)
	if err != nil {
		return nil, err
	}
	wabaID := apptype.WABAID(a.Config)
	if wabaID == "" {
		return nil, ErrMissingWABA
	}

	translation := req.toDomain()
	composer := template.NewComposer(m.Category, tokenUploader{graph: s.graph, token: token})
	components, err := composer.Compose(ctx, translation)
	if err != nil {
		return nil, err
	}

	payload := make([]map[string]any, 0, len(components))
	for _, c := range components {
		payload = append(payload, map[string]any(c))
	}
	messageTemplateID, err := s.graph.CreateMessageTemplate(ctx, token, integration.CreateTemplateRequest{
		WABAID:     wabaID,
		Name:       m.Name,
		Category:   string(m.Category),
		Language:   translation.Language,
		Components: payload,
	})
	if err != nil {
		return nil, err
	}

	tr := template.NewTranslation(m.ID, translation, messageTemplateID)
	if err := s.templates.CreateTranslation(ctx, tr); err != nil {
		s.logger.Error("Template created on Facebook but translation could not be saved",
			zap.String("template_uuid", m.ID.String()),
			zap.String("message_template_id", messageTemplateID),
			zap.Error(err))
		return nil, err
	}

	resp := ToTranslationResponse(tr)
	return &resp, nil
}

// Languages lists the supported template languages with English names
func (s *Service) Languages() []LanguageResponse {
	namer := display.English.Tags()
	out := make([]LanguageResponse, 0, len(template.SupportedLanguages))
	for _, code := range template.SupportedLanguages {
		name := code
		if tag, err := language.Parse(strings.ReplaceAll(code, "_", "-")); err == nil {
			if n := namer.Name(tag); n != "" {
				name = n
			}
		}
		out = append(out, LanguageResponse{Code: code, Name: name})
	}
	return out
}

// accessToken picks the Graph token: on-premise WhatsApp Apps carry their
// own, every other App uses the system-user token (empty string)
func accessToken(a *app.App) (string, error) {
	if a.Code != apptype.CodeWhatsApp.String() {
		return "", nil
	}
	token := a.Config.GetString("fb_access_token")
	if token == "" {
		return "", shared.NewValidationError("This app does not have fb_access_token in settings")
	}
	return token, nil
}

// tokenUploader binds a Graph token to header media uploads
type tokenUploader struct {
	graph integration.TemplateManager
	token string
}

func (u tokenUploader) UploadHeaderMedia(ctx context.Context, mimeType string, data []byte) (string, error) {
	return u.graph.UploadHeaderMedia(ctx, u.token, mimeType, data)
}

var ErrMissingWABA = shared.NewDomainError(shared.CodeInvalidInput, "The app has no WhatsApp Business Account configured")
