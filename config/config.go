package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/kataras/golog"
)

type Config struct {
	Port               string `env:"PORT" envDefault:"4000"`
	DBConnectionString string `env:"DB_CONNECTION_STRING,notEmpty"`
	RedisURL           string `env:"REDIS_URL" envDefault:"localhost:6379"`

	MapToken      string `env:"MAP_TOKEN"`
	MapboxBaseURL string `env:"MAPBOX_BASE_URL" envDefault:"https://api.mapbox.com"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER" envDefault:"PaSr"`
	CloudinaryBaseURL   string `env:"CLOUDINARY_BASE_URL" envDefault:"https://api.cloudinary.com"`

	// Identity handles allowed to use the admin verification views.
	AdminHandles []string `env:"ADMIN_HANDLES" envSeparator:","`

	DiscoveryTimeZone     string        `env:"DISCOVERY_TIME_ZONE" envDefault:"Asia/Kolkata"`
	LogLevel              string        `env:"LOG_LEVEL" envDefault:"info"`
	EnrichmentConcurrency int           `env:"ENRICHMENT_CONCURRENCY" envDefault:"2"`
	SessionTTL            time.Duration `env:"SESSION_TTL" envDefault:"336h"`

	// TrustProxy makes client addresses come from X-Forwarded-For. Only set
	// it behind a proxy that appends to that header.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// Load reads .env outside of the hosted environment and parses Config from
// the process environment.
func Load() (*Config, error) {
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			golog.Warn("could not load .env file (this is normal in production)")
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.EnrichmentConcurrency < 1 {
		return fmt.Errorf("ENRICHMENT_CONCURRENCY must be at least 1, got %d", c.EnrichmentConcurrency)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if _, err := time.LoadLocation(c.DiscoveryTimeZone); err != nil {
		return fmt.Errorf("DISCOVERY_TIME_ZONE: %w", err)
	}
	handles := c.AdminHandles[:0]
	for _, h := range c.AdminHandles {
		if h = strings.TrimSpace(h); h != "" {
			handles = append(handles, h)
		}
	}
	c.AdminHandles = handles
	return nil
}

// Location returns the discovery reference zone. validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DiscoveryTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
