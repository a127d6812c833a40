package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Auth      AuthConfig
	Flows     FlowsConfig
	WhatsApp  WhatsAppConfig
	VTEX      VTEXConfig
	Tasks     TasksConfig
	Scheduler SchedulerConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
	Profiling ProfilingConfig
	Sentry    SentryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	// RateLimit is the per-caller request rate in requests per second; 0 disables it
	RateLimit        float64
	RateBurst        int
}

// AuthConfig holds bearer token verification and the OIDC client used for
// service-to-service calls
type AuthConfig struct {
	JWTSecret         string
	JWTIssuer         string
	OIDCTokenEndpoint string
	OIDCClientID      string
	OIDCClientSecret  string
	AllowCRMAccess    bool
	CRMEmails         []string
}

// FlowsConfig holds the orchestration backend connection
type FlowsConfig struct {
	BaseURL          string
	UseV2Routes      bool
	Timeout          time.Duration
	ChannelTypeCache time.Duration
}

// WhatsAppConfig holds the Facebook Graph API settings
type WhatsAppConfig struct {
	APIURL          string
	APIVersion      string
	SystemUserToken string
	SystemUserID    string
	BusinessID      string
	AppID           string
	CreditLineID    string
	RateLimit       float64 // requests per second, 0 disables the limiter
	RateBurst       int
	Timeout         time.Duration
}

// VTEXConfig holds the commerce platform client settings
type VTEXConfig struct {
	Timeout time.Duration
}

// TasksConfig selects the task queue backend
type TasksConfig struct {
	Backend      string // memory, redis, kafka
	Workers      int
	RedisKey     string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

// SchedulerConfig holds the periodic job intervals
type SchedulerConfig struct {
	Enabled              bool
	SyncAppsInterval     time.Duration
	SyncWABAsInterval    time.Duration
	SyncPhonesInterval   time.Duration
	SystemUserEmail      string
	LockTTL              time.Duration
	RefreshConcurrency   int
	RunOnStart           bool
	EnqueueTimeout       time.Duration
	ShutdownGracePeriod  time.Duration
	MaxConsecutiveErrors int
}

// StorageConfig holds the feed file archive settings
type StorageConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)

	MetricsEnabled   bool          // Export request, outbound call and pool metrics
	MetricsInterval  time.Duration // Export period of the metric reader
	DBMetricsEnabled bool          // Count queries and sample pool stats
	LogsEnabled      bool          // Ship log entries to the collector through otelzap
}

// ProfilingConfig holds Pyroscope continuous profiling settings
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	// SpanProfiles labels CPU samples with the active span id
	SpanProfiles bool
}

// SentryConfig holds error reporting settings
type SentryConfig struct {
	Enabled          bool
	DSN              string
	TracesSampleRate float64
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with MARKETPLACE_ prefix (e.g., MARKETPLACE_DATABASE_PASSWORD)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			RateLimit:        v.GetFloat64("http.rate_limit"),
			RateBurst:        v.GetInt("http.rate_burst"),
		},
		Auth: AuthConfig{
			JWTSecret:         v.GetString("auth.jwt_secret"),
			JWTIssuer:         v.GetString("auth.jwt_issuer"),
			OIDCTokenEndpoint: v.GetString("auth.oidc_token_endpoint"),
			OIDCClientID:      v.GetString("auth.oidc_client_id"),
			OIDCClientSecret:  v.GetString("auth.oidc_client_secret"),
			AllowCRMAccess:    v.GetBool("auth.allow_crm_access"),
			CRMEmails:         v.GetStringSlice("auth.crm_emails"),
		},
		Flows: FlowsConfig{
			BaseURL:          v.GetString("flows.base_url"),
			UseV2Routes:      v.GetBool("flows.use_v2_routes"),
			Timeout:          v.GetDuration("flows.timeout"),
			ChannelTypeCache: v.GetDuration("flows.channel_type_cache"),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:          v.GetString("whatsapp.api_url"),
			APIVersion:      v.GetString("whatsapp.api_version"),
			SystemUserToken: v.GetString("whatsapp.system_user_token"),
			SystemUserID:    v.GetString("whatsapp.system_user_id"),
			BusinessID:      v.GetString("whatsapp.business_id"),
			AppID:           v.GetString("whatsapp.app_id"),
			CreditLineID:    v.GetString("whatsapp.credit_line_id"),
			RateLimit:       v.GetFloat64("whatsapp.rate_limit"),
			RateBurst:       v.GetInt("whatsapp.rate_burst"),
			Timeout:         v.GetDuration("whatsapp.timeout"),
		},
		VTEX: VTEXConfig{
			Timeout: v.GetDuration("vtex.timeout"),
		},
		Tasks: TasksConfig{
			Backend:      v.GetString("tasks.backend"),
			Workers:      v.GetInt("tasks.workers"),
			RedisKey:     v.GetString("tasks.redis_key"),
			KafkaBrokers: v.GetStringSlice("tasks.kafka_brokers"),
			KafkaTopic:   v.GetString("tasks.kafka_topic"),
			KafkaGroupID: v.GetString("tasks.kafka_group_id"),
		},
		Scheduler: SchedulerConfig{
			Enabled:              v.GetBool("scheduler.enabled"),
			SyncAppsInterval:     v.GetDuration("scheduler.sync_apps_interval"),
			SyncWABAsInterval:    v.GetDuration("scheduler.sync_wabas_interval"),
			SyncPhonesInterval:   v.GetDuration("scheduler.sync_phone_numbers_interval"),
			SystemUserEmail:      v.GetString("scheduler.system_user_email"),
			LockTTL:              v.GetDuration("scheduler.lock_ttl"),
			RefreshConcurrency:   v.GetInt("scheduler.refresh_concurrency"),
			RunOnStart:           v.GetBool("scheduler.run_on_start"),
			EnqueueTimeout:       v.GetDuration("scheduler.enqueue_timeout"),
			ShutdownGracePeriod:  v.GetDuration("scheduler.shutdown_grace_period"),
			MaxConsecutiveErrors: v.GetInt("scheduler.max_consecutive_errors"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBMetricsEnabled:  v.GetBool("telemetry.db_metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
		Profiling: ProfilingConfig{
			Enabled:           v.GetBool("profiling.enabled"),
			ServerAddress:     v.GetString("profiling.server_address"),
			ApplicationName:   v.GetString("profiling.application_name"),
			BasicAuthUser:     v.GetString("profiling.basic_auth_user"),
			BasicAuthPassword: v.GetString("profiling.basic_auth_password"),
			SpanProfiles:      v.GetBool("profiling.span_profiles"),
		},
		Sentry: SentryConfig{
			Enabled:          v.GetBool("sentry.enabled"),
			DSN:              v.GetString("sentry.dsn"),
			TracesSampleRate: v.GetFloat64("sentry.traces_sample_rate"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "marketplace"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "marketplace"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 32 << 20 // feed files
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst == 0 {
		cfg.HTTP.RateBurst = int(cfg.HTTP.RateLimit) * 2
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Project-Uuid"}
	}
	if cfg.Auth.JWTIssuer == "" {
		cfg.Auth.JWTIssuer = "marketplace"
	}
	if cfg.Flows.Timeout == 0 {
		cfg.Flows.Timeout = 60 * time.Second
	}
	if cfg.Flows.ChannelTypeCache == 0 {
		cfg.Flows.ChannelTypeCache = 10 * time.Minute
	}
	if cfg.WhatsApp.APIURL == "" {
		cfg.WhatsApp.APIURL = "https://graph.facebook.com"
	}
	if cfg.WhatsApp.APIVersion == "" {
		cfg.WhatsApp.APIVersion = "v18.0"
	}
	if cfg.WhatsApp.RateBurst == 0 {
		cfg.WhatsApp.RateBurst = 10
	}
	if cfg.WhatsApp.Timeout == 0 {
		cfg.WhatsApp.Timeout = 60 * time.Second
	}
	if cfg.VTEX.Timeout == 0 {
		cfg.VTEX.Timeout = 60 * time.Second
	}
	if cfg.Tasks.Backend == "" {
		cfg.Tasks.Backend = "memory"
	}
	if cfg.Tasks.Workers == 0 {
		cfg.Tasks.Workers = 4
	}
	if cfg.Tasks.RedisKey == "" {
		cfg.Tasks.RedisKey = "marketplace:tasks"
	}
	if cfg.Tasks.KafkaTopic == "" {
		cfg.Tasks.KafkaTopic = "marketplace.tasks"
	}
	if cfg.Tasks.KafkaGroupID == "" {
		cfg.Tasks.KafkaGroupID = "marketplace-worker"
	}
	if cfg.Scheduler.SyncAppsInterval == 0 {
		cfg.Scheduler.SyncAppsInterval = 2 * time.Hour
	}
	if cfg.Scheduler.SyncWABAsInterval == 0 {
		cfg.Scheduler.SyncWABAsInterval = 5 * time.Hour
	}
	if cfg.Scheduler.SyncPhonesInterval == 0 {
		cfg.Scheduler.SyncPhonesInterval = 5 * time.Hour
	}
	if cfg.Scheduler.SystemUserEmail == "" {
		cfg.Scheduler.SystemUserEmail = "marketplace@weni.ai"
	}
	if cfg.Scheduler.LockTTL == 0 {
		cfg.Scheduler.LockTTL = 30 * time.Minute
	}
	if cfg.Scheduler.RefreshConcurrency == 0 {
		cfg.Scheduler.RefreshConcurrency = 4
	}
	if cfg.Scheduler.EnqueueTimeout == 0 {
		cfg.Scheduler.EnqueueTimeout = 10 * time.Second
	}
	if cfg.Scheduler.ShutdownGracePeriod == 0 {
		cfg.Scheduler.ShutdownGracePeriod = 30 * time.Second
	}
	if cfg.Scheduler.MaxConsecutiveErrors == 0 {
		cfg.Scheduler.MaxConsecutiveErrors = 5
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "marketplace"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Profiling.ApplicationName == "" {
		cfg.Profiling.ApplicationName = cfg.Telemetry.ServiceName
	}
	if cfg.Sentry.TracesSampleRate == 0 {
		cfg.Sentry.TracesSampleRate = 0.1
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Tasks.Backend {
	case "memory", "redis":
	case "kafka":
		if len(c.Tasks.KafkaBrokers) == 0 {
			return fmt.Errorf("tasks.kafka_brokers is required with the kafka backend")
		}
	default:
		return fmt.Errorf("tasks.backend must be memory, redis or kafka, got %q", c.Tasks.Backend)
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn is required when sentry is enabled")
	}
	if c.Flows.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.Flows.BaseURL); err != nil {
			return fmt.Errorf("flows.base_url is invalid: %w", err)
		}
	}

	if c.App.Env == "production" {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("auth.jwt_secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Flows.BaseURL == "" {
			return fmt.Errorf("flows.base_url is required in production")
		}
		if c.WhatsApp.SystemUserToken == "" {
			return fmt.Errorf("whatsapp.system_user_token is required in production")
		}
		if c.Tasks.Backend == "memory" {
			return fmt.Errorf("tasks.backend cannot be 'memory' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Profiling.Enabled && c.Profiling.ServerAddress == "" {
		return fmt.Errorf("profiling.server_address is required when profiling is enabled")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GraphBaseURL returns the versioned Graph API root
func (w *WhatsAppConfig) GraphBaseURL() string {
	return strings.TrimRight(w.APIURL, "/") + "/" + w.APIVersion
}
