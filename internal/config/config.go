// Package config provides application configuration loaded from environment
// variables (and an optional config file) with defaults and validation. It
// centralizes server timeouts, logging, request storage, mail transport,
// decision links, admin access, rate limiting, and observability settings.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tbourn/resume-gate/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "resume-gate")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
	Environment string  // DEPLOYMENT_ENVIRONMENT (e.g. "production"); optional
}

// StoreConfig selects and locates the request store.
type StoreConfig struct {
	Driver       string // json|memory|sqlite|postgres
	RequestsFile string // JSON document path (json driver)
	DBPath       string // SQLite path (sqlite driver)
	DatabaseURL  string // PostgreSQL DSN (postgres driver)
}

// MailConfig holds SMTP credentials. The mail account is also the sender
// address of every outgoing message.
type MailConfig struct {
	User     string // EMAIL_USER
	Password string // EMAIL_PASS (app password)
	Host     string // SMTP_HOST
	Port     int    // SMTP_PORT
}

// Enabled reports whether both credentials are present.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.User) != "" && m.Password != ""
}

// OwnerConfig identifies the site owner who receives notifications.
type OwnerConfig struct {
	Email string // OWNER_EMAIL, defaults to EMAIL_USER
	Name  string // OWNER_NAME, used in visitor-facing emails
}

// ResumeConfig locates the protected resume file.
type ResumeConfig struct {
	Path     string // RESUME_PATH
	Filename string // RESUME_FILENAME, offered to the browser and used for attachments
}

// LinksConfig controls the decision links embedded in owner emails.
type LinksConfig struct {
	BaseURL string        // PUBLIC_BASE_URL (fallback NEXTAUTH_URL), no trailing slash
	Secret  string        // DECISION_LINK_SECRET; empty disables signed links
	TTL     time.Duration // DECISION_LINK_TTL
}

// Signed reports whether decision links carry a token.
func (l LinksConfig) Signed() bool { return l.Secret != "" }

// AdminConfig enables HTTP Basic auth on the request listing.
type AdminConfig struct {
	User         string // ADMIN_USER
	PasswordHash string // ADMIN_PASSWORD_HASH (bcrypt)
}

// Enabled reports whether both user and hash are configured.
func (a AdminConfig) Enabled() bool { return a.User != "" && a.PasswordHash != "" }

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	MaxBodyBytes      int64         // request body cap for JSON endpoints
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route

	// Workflow
	Store  StoreConfig
	Resume ResumeConfig
	Mail   MailConfig
	Owner  OwnerConfig
	Links  LinksConfig
	Admin  AdminConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, and from the file
// named by CONFIG_FILE when set (keys are the lower-cased variable names;
// the environment wins). It applies defaults, normalizes values, and
// validates the result.
func Load() (Config, error) {
	src, err := newSource()
	if err != nil {
		return Config{}, err
	}

	mailUser := src.getenv("EMAIL_USER", "")
	cfg := Config{
		// Server
		Port:              src.getenv("PORT", "8080"),
		ReadTimeout:       src.getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: src.getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      src.getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       src.getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    src.getint("MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      int64(src.getint("MAX_BODY_BYTES", 64<<10)),
		GinMode:           strings.ToLower(src.getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(src.getenv("LOG_LEVEL", "info")),
		LogPretty:      src.getbool("LOG_PRETTY", false),
		SwaggerEnabled: src.getbool("SWAGGER_ENABLED", false),

		// Workflow
		Store: StoreConfig{
			Driver:       strings.ToLower(strings.TrimSpace(src.getenv("STORE_DRIVER", "json"))),
			RequestsFile: src.getenv("REQUESTS_FILE", "download-requests.json"),
			DBPath:       src.getenv("DB_PATH", "resume-gate.db"),
			DatabaseURL:  src.getenv("DATABASE_URL", ""),
		},
		Resume: ResumeConfig{
			Path:     src.getenv("RESUME_PATH", "public/resume.pdf"),
			Filename: src.getenv("RESUME_FILENAME", "Resume.pdf"),
		},
		Mail: MailConfig{
			User:     mailUser,
			Password: src.getenv("EMAIL_PASS", ""),
			Host:     src.getenv("SMTP_HOST", "smtp.gmail.com"),
			Port:     src.getint("SMTP_PORT", 587),
		},
		Owner: OwnerConfig{
			Email: src.getenv("OWNER_EMAIL", mailUser),
			Name:  src.getenv("OWNER_NAME", "Portfolio Owner"),
		},
		Links: LinksConfig{
			BaseURL: normalizeBaseURL(sysutil.FirstNonEmpty(
				src.getenv("PUBLIC_BASE_URL", ""),
				src.getenv("NEXTAUTH_URL", ""),
				"http://localhost:3000",
			)),
			Secret: src.getenv("DECISION_LINK_SECRET", ""),
			TTL:    src.getdur("DECISION_LINK_TTL", 30*24*time.Hour),
		},
		Admin: AdminConfig{
			User:         src.getenv("ADMIN_USER", ""),
			PasswordHash: src.getenv("ADMIN_PASSWORD_HASH", ""),
		},

		// Rate limiting
		RateRPS:   src.getfloat("RATE_RPS", 5.0),
		RateBurst: src.getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(src.getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: src.getbool("ENABLE_HSTS", false),
			HSTSMaxAge: src.getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     src.getbool("OTEL_ENABLED", false),
			Endpoint:    src.getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    src.getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: src.getenv("OTEL_SERVICE_NAME", "resume-gate"),
			SampleRatio: src.getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
			Environment: src.getenv("DEPLOYMENT_ENVIRONMENT", ""),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.MaxBodyBytes <= 0 {
		return cfg, errors.New("MAX_BODY_BYTES must be > 0")
	}
	switch cfg.Store.Driver {
	case "json":
		if strings.TrimSpace(cfg.Store.RequestsFile) == "" {
			return cfg, errors.New("REQUESTS_FILE must not be empty")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.Store.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.Store.DatabaseURL) == "" {
			return cfg, errors.New("DATABASE_URL is required for STORE_DRIVER=postgres")
		}
	case "memory":
	default:
		return cfg, fmt.Errorf("STORE_DRIVER must be one of: json, memory, sqlite, postgres (got %q)", cfg.Store.Driver)
	}
	if strings.TrimSpace(cfg.Resume.Path) == "" {
		return cfg, errors.New("RESUME_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.Resume.Filename) == "" || strings.ContainsAny(cfg.Resume.Filename, "\"\r\n/\\") {
		return cfg, errors.New("RESUME_FILENAME must be a plain file name")
	}
	if cfg.Mail.Port <= 0 || cfg.Mail.Port > 65535 {
		return cfg, errors.New("SMTP_PORT must be in 1..65535")
	}
	if !strings.HasPrefix(cfg.Links.BaseURL, "http://") && !strings.HasPrefix(cfg.Links.BaseURL, "https://") {
		return cfg, errors.New("PUBLIC_BASE_URL must be an http(s) URL")
	}
	if cfg.Links.TTL <= 0 {
		return cfg, errors.New("DECISION_LINK_TTL must be > 0")
	}
	if (cfg.Admin.User == "") != (cfg.Admin.PasswordHash == "") {
		return cfg, errors.New("ADMIN_USER and ADMIN_PASSWORD_HASH must be set together")
	}
	if cfg.Admin.PasswordHash != "" && !strings.HasPrefix(cfg.Admin.PasswordHash, "$2") {
		return cfg, errors.New("ADMIN_PASSWORD_HASH must be a bcrypt hash")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

// source resolves keys from the environment first, then the optional file.
type source struct {
	v *viper.Viper
}

func newSource() (source, error) {
	v := viper.New()
	v.AutomaticEnv()
	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return source{}, fmt.Errorf("read CONFIG_FILE %s: %w", file, err)
		}
	}
	return source{v: v}, nil
}

func (s source) getenv(k, def string) string {
	if v := s.v.GetString(k); v != "" {
		return v
	}
	return def
}

func (s source) getfloat(k string, def float64) float64 {
	if v := s.v.GetString(k); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func (s source) getint(k string, def int) int {
	if v := s.v.GetString(k); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func (s source) getbool(k string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(s.v.GetString(k)))
	if v == "" {
		return def
	}
	if sysutil.IsTruthy(v) {
		return true
	}
	switch v {
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

func (s source) getdur(k string, def time.Duration) time.Duration {
	if v := s.v.GetString(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBaseURL trims whitespace and trailing slashes so links can be
// built by plain concatenation.
func normalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
