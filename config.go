package psiweb

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "Vida Plena Psicologia")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr        string // Listen address (default ":3000")
	DatabaseURL string // Required: Postgres connection string

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	WhatsAppNumber string // Digits only, used for the contact deep link
	EmailAPIURL    string // Transactional email endpoint
	EmailAPIKey    string // Transactional email API key
	EmailFrom      string // From address for newsletter mail

	AnalyticsID  string // Injected into templates when set
	TagManagerID string // Injected into templates when set

	DevMode bool // Shorter cache intervals, verbose fallbacks

	Cache CacheConfig
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Vida Plena Psicologia"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.EmailFrom == "" {
		c.EmailFrom = "newsletter@vidaplena.example"
	}
	if c.Cache.TTL == nil {
		c.Cache = NewCacheConfig(c.DevMode)
	}
}

// LoadConfig reads configuration from the environment. A .env file is
// loaded first when present so local runs need no exported variables.
func LoadConfig() (SiteConfig, error) {
	_ = godotenv.Load()

	cfg := SiteConfig{
		Name:           EnvOr("SITE_NAME", ""),
		URL:            strings.TrimSuffix(EnvOr("SITE_URL", ""), "/"),
		Description:    EnvOr("SITE_DESCRIPTION", ""),
		Addr:           EnvOr("ADDR", ""),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		CookieSecure:   strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
		WhatsAppNumber: EnvOr("WHATSAPP_NUMBER", ""),
		EmailAPIURL:    EnvOr("EMAIL_API_URL", ""),
		EmailAPIKey:    EnvOr("EMAIL_API_KEY", ""),
		EmailFrom:      EnvOr("EMAIL_FROM", ""),
		AnalyticsID:    EnvOr("ANALYTICS_ID", ""),
		TagManagerID:   EnvOr("TAG_MANAGER_ID", ""),
		DevMode:        strings.EqualFold(os.Getenv("DEV_MODE"), "true"),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		return cfg, fmt.Errorf("SESSION_SECRET is required")
	}
	cfg.setDefaults()
	return cfg, nil
}

// ContentType names a cache bucket family. Each type carries its own
// revalidation interval and invalidation tag.
type ContentType string

const (
	ContentArticles   ContentType = "articles"
	ContentCategories ContentType = "categories"
	ContentTags       ContentType = "tags"
	ContentArticle    ContentType = "article"
	ContentCategory   ContentType = "category"
	ContentStatic     ContentType = "static"
)

// CacheConfig pairs content types with revalidation intervals and
// invalidation tags. It is passed explicitly into the cache layer so
// tests can run with alternate intervals.
type CacheConfig struct {
	TTL map[ContentType]time.Duration
	Tag map[ContentType]string
}

// NewCacheConfig returns the static revalidation table. Development mode
// uses short intervals so content edits show up quickly.
func NewCacheConfig(dev bool) CacheConfig {
	ttl := map[ContentType]time.Duration{
		ContentArticles:   30 * time.Minute,
		ContentCategories: time.Hour,
		ContentTags:       time.Hour,
		ContentArticle:    time.Hour,
		ContentCategory:   2 * time.Hour,
		ContentStatic:     24 * time.Hour,
	}
	if dev {
		for k := range ttl {
			ttl[k] = 10 * time.Second
		}
	}
	return CacheConfig{
		TTL: ttl,
		Tag: map[ContentType]string{
			ContentArticles:   "articles",
			ContentCategories: "categories",
			ContentTags:       "tags",
			ContentArticle:    "articles",
			ContentCategory:   "categories",
			ContentStatic:     "static",
		},
	}
}

// Interval returns the revalidation interval for a content type.
// Unknown types get the articles interval, the most conservative bucket.
func (c CacheConfig) Interval(t ContentType) time.Duration {
	if d, ok := c.TTL[t]; ok {
		return d
	}
	return c.TTL[ContentArticles]
}

// TagFor returns the invalidation tag for a content type.
func (c CacheConfig) TagFor(t ContentType) string {
	if tag, ok := c.Tag[t]; ok {
		return tag
	}
	return string(t)
}

// EnvOr returns the value of the environment variable key, or fallback
// if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally
// exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("psiweb: required environment variable %s is not set", key)
	}
	return v
}
