// Package psiweb is the marketing website and content blog of the
// Vida Plena psychology practice, built with Go, Echo, and templ.
// Content rows live in a managed Postgres database and are administered
// out-of-band; the site reads them through a tagged TTL cache. The only
// writes are the newsletter confirm/unsubscribe status flips.
//
// Templates are provided through the ViewFuncs struct so the views
// package owns all markup while this package owns handlers, middleware,
// store, and cache.
package psiweb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds the view components the handlers render. PageData
// carries site config, SEO metadata, the page-type classification and
// the breadcrumb trail into every view.
type ViewFuncs struct {
	Home        func(d PageData, latest []Article, cats []Category) templ.Component
	BlogIndex   func(d PageData, articles []Article, cats []Category, tags []Tag, pg Pagination) templ.Component
	Article     func(d PageData, a Article, related []Article) templ.Component
	Category    func(d PageData, cat Category, articles []Article, pg Pagination) templ.Component
	TagPage     func(d PageData, tag Tag, articles []Article, pg Pagination) templ.Component
	About       func(d PageData) templ.Component
	Contact     func(d PageData, whatsAppLink string) templ.Component
	Newsletter  func(d PageData, title, message string) templ.Component
	Unsubscribe func(d PageData, csrfToken string) templ.Component
	NotFound    func(d PageData) templ.Component
	ServerError func(d PageData) templ.Component
}

// PageData is the per-request bundle every view receives.
type PageData struct {
	Cfg    SiteConfig
	Meta   PageMeta
	Type   PageType
	Crumbs []Crumb
	CSRF   string // token for the POST forms in the shared layout
}

// App wires together store, cache, handlers, middleware and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ContentCache
	Views  ViewFuncs

	Subscribers SubscriberStore
	Suggestions SuggestionStore

	mailer           Mailer
	subscribeLimiter *RateLimiter
	staticDir        string
	customRoutes     []func(*App)
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance
// before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithMailer replaces the default transactional-email client.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// New creates the App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start connects the database, builds the cache, registers middleware
// and routes, and runs the server until it is closed.
func (a *App) Start() error {
	if a.Config.DatabaseURL == "" {
		return fmt.Errorf("psiweb: DatabaseURL is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("psiweb: SessionSecret is required")
	}

	store, err := NewStore(context.Background(), a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("psiweb: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewContentCache(store, a.Config.Cache)
	a.Subscribers = store
	a.Suggestions = store

	if a.mailer == nil {
		a.mailer = NewHTTPMailer(a.Config.EmailAPIURL, a.Config.EmailAPIKey, a.Config.EmailFrom)
	}
	a.subscribeLimiter = NewRateLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlogIndex)
	e.GET("/blog/categoria/:slug/", a.handleCategory)
	e.GET("/blog/tags/:slug/", a.handleTag)
	e.GET("/blog/:slug/", a.handleArticle)
	e.GET("/sobre/", a.handleAbout)
	e.GET("/contato/", a.handleContact)

	// Old article URLs carried the category segment at the site root.
	e.GET("/:categoria/:slug/", a.handleLegacyArticle)

	e.GET("/confirmar-newsletter", a.handleNewsletterConfirm)
	e.POST("/newsletter/", a.handleNewsletterSubscribe)
	e.GET("/cancelar-newsletter/", a.handleUnsubscribePage)
	e.POST("/cancelar-newsletter/", a.handleNewsletterUnsubscribe)

	e.GET("/api/search/suggestions", a.handleSuggestions)
}

// Close cleans up resources. Call when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	return nil
}
