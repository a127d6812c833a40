package router

import (
	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the endpoint groups of the marketplace API
type Handlers struct {
	Health         *handler.HealthHandler
	AppTypes       *handler.AppTypeHandler
	Apps           *handler.AppHandler
	Cloud          *handler.CloudHandler
	Catalogs       *handler.CatalogHandler
	Templates      *handler.TemplateHandler
	Authorizations *handler.AuthorizationHandler
}

// Options assemble the engine
type Options struct {
	HTTP        config.HTTPConfig
	Tracing     middleware.TracingConfig
	Logger      *zap.Logger
	Tokens      middleware.TokenValidator
	Authorizer  middleware.Authorizer
	RateLimiter *middleware.RateLimiter
	// Meter records request metrics; nil disables them
	Meter metric.Meter
	// PanicReporters receive every recovered panic after it is logged
	PanicReporters []logger.PanicReporter
}

// New builds the gin engine with the middleware chain and every route
func New(opts Options, h Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			opts.Logger.Warn("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(opts.Tracing),
		middleware.HTTPMetrics(opts.Meter),
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger, opts.PanicReporters...),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfigFromHTTP(opts.HTTP)),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
		middleware.JWTAuth(opts.Tokens, opts.Logger),
		middleware.SpanEnricher(),
		middleware.RateLimit(opts.RateLimiter),
	)

	engine.GET("/health", h.Health.Health)

	r := NewRouter(engine)
	r.Register(appTypeRoutes(h)).
		Register(myAppRoutes(h)).
		Register(templateRoutes(h)).
		Register(internalRoutes(h, opts))
	api := r.Setup()
	api.GET("/health", h.Health.Health)

	return engine
}

func appTypeRoutes(h Handlers) *DomainGroup {
	types := NewDomainGroup("apptypes", "/apptypes")
	types.GET("", h.AppTypes.List)
	types.GET("/:code", h.AppTypes.Get)
	types.GET("/generic/detail-channel", h.AppTypes.ChannelTypes)
	types.GET("/generic/detail-channel/:channel_code", h.AppTypes.ChannelType)

	apps := types.Group("apps", "/:code/apps")
	apps.GET("", h.Apps.List)
	apps.POST("", h.Apps.Create)
	apps.GET("/:uuid", h.Apps.Get)
	apps.DELETE("/:uuid", h.Apps.Delete)
	apps.PATCH("/:uuid/configure", h.Apps.Configure)

	// WhatsApp Cloud actions; the guard answers 404 for any other code
	cloud := types.Group("wpp-cloud", "/:code/apps").Use(handler.RequireCloudType())
	cloud.GET("/debug_token", h.Cloud.DebugToken)
	cloud.GET("/phone_numbers", h.Cloud.PhoneNumbers)
	cloud.PATCH("/:uuid/update_webhook", h.Cloud.UpdateWebhook)
	cloud.GET("/:uuid/report_sent_messages", h.Cloud.ReportSentMessages)

	catalogs := cloud.Group("catalogs", "/:uuid/catalogs")
	catalogs.GET("", h.Catalogs.ListCatalogs)
	catalogs.POST("", h.Catalogs.CreateCatalog)
	catalogs.GET("/:catalog_uuid", h.Catalogs.GetCatalog)
	catalogs.DELETE("/:catalog_uuid", h.Catalogs.DeleteCatalog)
	catalogs.GET("/:catalog_uuid/products", h.Catalogs.CatalogProducts)

	feeds := catalogs.Group("product_feeds", "/:catalog_uuid/product_feeds")
	feeds.GET("", h.Catalogs.ListFeeds)
	feeds.POST("", h.Catalogs.CreateFeed)
	feeds.GET("/:feed_uuid", h.Catalogs.GetFeed)
	feeds.DELETE("/:feed_uuid", h.Catalogs.DeleteFeed)
	feeds.GET("/:feed_uuid/products", h.Catalogs.FeedProducts)

	return types
}

func myAppRoutes(h Handlers) *DomainGroup {
	mine := NewDomainGroup("my-apps", "/my-apps")
	mine.GET("", h.Apps.ListMine)
	return mine
}

func templateRoutes(h Handlers) *DomainGroup {
	templates := NewDomainGroup("templates", "/apps/:app_uuid/templates")
	templates.GET("", h.Templates.List)
	templates.POST("", h.Templates.Create)
	templates.GET("/languages", h.Templates.Languages)
	templates.GET("/:uuid", h.Templates.Get)
	templates.DELETE("/:uuid", h.Templates.Destroy)
	templates.POST("/:uuid/translations", h.Templates.CreateTranslation)
	return templates
}

func internalRoutes(h Handlers, opts Options) *DomainGroup {
	internal := NewDomainGroup("internal", "/internal").
		Use(middleware.RequireInternalOperator(opts.Authorizer, opts.Logger))

	auths := internal.Group("authorizations", "/projects/:project_uuid/authorizations")
	auths.GET("", h.Authorizations.List)
	auths.PUT("", h.Authorizations.Put)
	auths.GET("/:email", h.Authorizations.Get)
	auths.DELETE("/:email", h.Authorizations.Delete)
	return internal
}
