package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/roadmap-backend/internal/clients/redis"
	"github.com/yungbote/roadmap-backend/internal/data/db"
	"github.com/yungbote/roadmap-backend/internal/domain/content"
	httpMW "github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/platform/envutil"
	"github.com/yungbote/roadmap-backend/internal/platform/llm"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string

	DB       db.Config
	Redis    redis.Config
	GuestTTL time.Duration
	// GuestMemoryMaxGuests caps the in-process guest tier used without Redis.
	GuestMemoryMaxGuests int

	Session  services.SessionConfig
	Identity services.IdentityConfig
	Cookies  httpMW.Cookies

	LLM             llm.Config
	Generator       services.GeneratorConfig
	TopicCategories []services.TopicCategory

	CORSOrigins []string
}

// FileConfig is the optional YAML overlay named by CONFIG_FILE. Only the
// settings that are awkward as env vars live here.
type FileConfig struct {
	Generation struct {
		MinPerLevel    int `yaml:"min_per_level"`
		MaxPerLevel    int `yaml:"max_per_level"`
		InsightVersion int `yaml:"insight_version"`
	} `yaml:"generation"`
	TopicCategories []services.TopicCategory `yaml:"topic_categories"`
	CORSOrigins     []string                 `yaml:"cors_origins"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cookies := httpMW.DefaultCookies()
	cookies.Session = envutil.String("SESSION_COOKIE_NAME", cookies.Session)
	cookies.Secure = envutil.Bool("COOKIE_SECURE", cookies.Secure)

	gen := services.DefaultGeneratorConfig()
	gen.MinPerLevel = envutil.Int("ROADMAP_MIN_PER_LEVEL", gen.MinPerLevel)
	gen.MaxPerLevel = envutil.Int("ROADMAP_MAX_PER_LEVEL", gen.MaxPerLevel)

	guestTTL := envutil.Duration("GUEST_TTL", 30*24*time.Hour)
	cookies.GuestTTL = guestTTL

	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "roadmap-backend"),
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", "postgres"),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "roadmap"),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath: envutil.String("SQLITE_PATH", "roadmap.db"),
		},
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Prefix:   envutil.String("REDIS_PREFIX", ""),
		},
		GuestTTL:             guestTTL,
		GuestMemoryMaxGuests: envutil.Int("GUEST_MEMORY_MAX_GUESTS", 10000),
		Session: services.SessionConfig{
			Secret: envutil.String("SESSION_SECRET", ""),
			TTL:    envutil.Duration("SESSION_TTL", services.DefaultSessionTTL),
		},
		Identity: services.IdentityConfig{
			FirebaseProjectID: envutil.String("FIREBASE_PROJECT_ID", ""),
			IssuerURL:         envutil.String("OIDC_ISSUER_URL", ""),
			ClientID:          envutil.String("OIDC_CLIENT_ID", ""),
			JWKSURL:           envutil.String("OIDC_JWKS_URL", ""),
		},
		Cookies:     cookies,
		LLM:         llm.ConfigFromEnv(),
		Generator:   gen,
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
	}

	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		fc, err := ReadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.apply(fc)
		log.Info("config file loaded", "path", path, "topic_categories", len(cfg.TopicCategories))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if len(cfg.Session.Secret) > 0 && len(cfg.Session.Secret) < 32 {
		log.Warn("SESSION_SECRET is shorter than 32 bytes")
	}
	return cfg, nil
}

func ReadConfigFile(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// apply overlays the non-zero settings of fc.
func (c *Config) apply(fc *FileConfig) {
	if fc == nil {
		return
	}
	if v := fc.Generation.MinPerLevel; v > 0 {
		c.Generator.MinPerLevel = v
	}
	if v := fc.Generation.MaxPerLevel; v > 0 {
		c.Generator.MaxPerLevel = v
	}
	if v := fc.Generation.InsightVersion; v != 0 {
		c.Generator.InsightVersion = content.InsightVersion(v)
	}
	if len(fc.TopicCategories) > 0 {
		c.TopicCategories = fc.TopicCategories
	}
	if len(fc.CORSOrigins) > 0 && len(c.CORSOrigins) == 0 {
		c.CORSOrigins = fc.CORSOrigins
	}
}

func (c Config) validate() error {
	var errs []error
	g := c.Generator
	if g.MinPerLevel < 1 || g.MaxPerLevel < g.MinPerLevel {
		errs = append(errs, fmt.Errorf("per-level range %d..%d is invalid", g.MinPerLevel, g.MaxPerLevel))
	}
	switch g.InsightVersion {
	case content.InsightV1Version, content.InsightV2Version:
	default:
		errs = append(errs, fmt.Errorf("unknown insight version %d", g.InsightVersion))
	}
	switch strings.ToLower(c.DB.Driver) {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver))
	}
	return errors.Join(errs...)
}
