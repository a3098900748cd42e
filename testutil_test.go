package psiweb

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
)

// stubContentStore is a manual stub of ContentStore with per-method
// function fields; unset methods return zero values.
type stubContentStore struct {
	listArticles           func(ctx context.Context, limit, offset int) ([]Article, error)
	countArticles          func(ctx context.Context) (int, error)
	listArticlesByCategory func(ctx context.Context, slug string, limit, offset int) ([]Article, error)
	countByCategory        func(ctx context.Context, slug string) (int, error)
	listArticlesByTag      func(ctx context.Context, slug string, limit, offset int) ([]Article, error)
	countByTag             func(ctx context.Context, slug string) (int, error)
	getArticle             func(ctx context.Context, slug string) (Article, error)
	listCategories         func(ctx context.Context) ([]Category, error)
	getCategory            func(ctx context.Context, slug string) (Category, error)
	listTags               func(ctx context.Context) ([]Tag, error)
	getTag                 func(ctx context.Context, slug string) (Tag, error)
	sitemapArticles        func(ctx context.Context) ([]Article, error)
}

func (s *stubContentStore) ListArticles(ctx context.Context, limit, offset int) ([]Article, error) {
	if s.listArticles != nil {
		return s.listArticles(ctx, limit, offset)
	}
	return nil, nil
}

func (s *stubContentStore) CountArticles(ctx context.Context) (int, error) {
	if s.countArticles != nil {
		return s.countArticles(ctx)
	}
	return 0, nil
}

func (s *stubContentStore) ListArticlesByCategory(ctx context.Context, slug string, limit, offset int) ([]Article, error) {
	if s.listArticlesByCategory != nil {
		return s.listArticlesByCategory(ctx, slug, limit, offset)
	}
	return nil, nil
}

func (s *stubContentStore) CountArticlesByCategory(ctx context.Context, slug string) (int, error) {
	if s.countByCategory != nil {
		return s.countByCategory(ctx, slug)
	}
	return 0, nil
}

func (s *stubContentStore) ListArticlesByTag(ctx context.Context, slug string, limit, offset int) ([]Article, error) {
	if s.listArticlesByTag != nil {
		return s.listArticlesByTag(ctx, slug, limit, offset)
	}
	return nil, nil
}

func (s *stubContentStore) CountArticlesByTag(ctx context.Context, slug string) (int, error) {
	if s.countByTag != nil {
		return s.countByTag(ctx, slug)
	}
	return 0, nil
}

func (s *stubContentStore) GetArticle(ctx context.Context, slug string) (Article, error) {
	if s.getArticle != nil {
		return s.getArticle(ctx, slug)
	}
	return Article{}, ErrNotFound
}

func (s *stubContentStore) ListCategories(ctx context.Context) ([]Category, error) {
	if s.listCategories != nil {
		return s.listCategories(ctx)
	}
	return nil, nil
}

func (s *stubContentStore) GetCategory(ctx context.Context, slug string) (Category, error) {
	if s.getCategory != nil {
		return s.getCategory(ctx, slug)
	}
	return Category{}, ErrNotFound
}

func (s *stubContentStore) ListTags(ctx context.Context) ([]Tag, error) {
	if s.listTags != nil {
		return s.listTags(ctx)
	}
	return nil, nil
}

func (s *stubContentStore) GetTag(ctx context.Context, slug string) (Tag, error) {
	if s.getTag != nil {
		return s.getTag(ctx, slug)
	}
	return Tag{}, ErrNotFound
}

func (s *stubContentStore) SitemapArticles(ctx context.Context) ([]Article, error) {
	if s.sitemapArticles != nil {
		return s.sitemapArticles(ctx)
	}
	return nil, nil
}

// stubSubscriberStore records mutation calls so tests can assert on
// write counts.
type stubSubscriberStore struct {
	getByToken func(ctx context.Context, token string) (Subscriber, error)
	getByEmail func(ctx context.Context, email string) (Subscriber, error)

	created   []string
	confirmed []int
	cancelled []int
}

func (s *stubSubscriberStore) CreateSubscriber(ctx context.Context, email, token string) error {
	s.created = append(s.created, email)
	return nil
}

func (s *stubSubscriberStore) GetSubscriberByToken(ctx context.Context, token string) (Subscriber, error) {
	if s.getByToken != nil {
		return s.getByToken(ctx, token)
	}
	return Subscriber{}, ErrNotFound
}

func (s *stubSubscriberStore) GetSubscriberByEmail(ctx context.Context, email string) (Subscriber, error) {
	if s.getByEmail != nil {
		return s.getByEmail(ctx, email)
	}
	return Subscriber{}, ErrNotFound
}

func (s *stubSubscriberStore) ConfirmSubscriber(ctx context.Context, id int) error {
	s.confirmed = append(s.confirmed, id)
	return nil
}

func (s *stubSubscriberStore) CancelSubscriber(ctx context.Context, id int) error {
	s.cancelled = append(s.cancelled, id)
	return nil
}

// stubSuggestionStore serves canned suggestion results per entity type.
type stubSuggestionStore struct {
	articles   []Suggestion
	categories []Suggestion
	tags       []Suggestion
	authors    []Suggestion

	articlesErr error
}

func (s *stubSuggestionStore) SearchArticles(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	if s.articlesErr != nil {
		return nil, s.articlesErr
	}
	return capSuggestions(s.articles, limit), nil
}

func (s *stubSuggestionStore) SearchCategories(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	return capSuggestions(s.categories, limit), nil
}

func (s *stubSuggestionStore) SearchTags(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	return capSuggestions(s.tags, limit), nil
}

func (s *stubSuggestionStore) SearchAuthors(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	return capSuggestions(s.authors, limit), nil
}

func capSuggestions(s []Suggestion, limit int) []Suggestion {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

// newTestApp assembles an App around the given stubs, skipping the
// database and server wiring Start does.
func newTestApp(content ContentStore, subs SubscriberStore, sugg SuggestionStore) *App {
	cfg := SiteConfig{
		Name:           "Vida Plena Psicologia",
		URL:            "https://vidaplena.example",
		Description:    "Psicologia e bem-estar.",
		SessionSecret:  "test-secret",
		WhatsAppNumber: "+55 (11) 91234-5678",
	}
	a := New(cfg, testViews())
	if content != nil {
		a.Cache = NewContentCache(content, a.Config.Cache)
	}
	a.Subscribers = subs
	a.Suggestions = sugg
	a.mailer = &noopMailer{}
	return a
}

// noopMailer satisfies Mailer for handler tests.
type noopMailer struct{ sent []string }

func (m *noopMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.sent = append(m.sent, to)
	return nil
}

// textComponent renders a marker string so handler tests can assert on
// which view was picked and with what message.
func textComponent(parts ...string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		for _, p := range parts {
			buf.WriteString(p)
			buf.WriteString("\n")
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// testViews returns a minimal ViewFuncs set that echoes its inputs.
func testViews() ViewFuncs {
	return ViewFuncs{
		Home: func(d PageData, latest []Article, cats []Category) templ.Component {
			return textComponent("home")
		},
		BlogIndex: func(d PageData, articles []Article, cats []Category, tags []Tag, pg Pagination) templ.Component {
			return textComponent("blog")
		},
		Article: func(d PageData, a Article, related []Article) templ.Component {
			return textComponent("article", a.Slug)
		},
		Category: func(d PageData, cat Category, articles []Article, pg Pagination) templ.Component {
			return textComponent("category", cat.Slug)
		},
		TagPage: func(d PageData, tag Tag, articles []Article, pg Pagination) templ.Component {
			return textComponent("tag", tag.Slug)
		},
		About:   func(d PageData) templ.Component { return textComponent("about") },
		Contact: func(d PageData, link string) templ.Component { return textComponent("contact", link) },
		Newsletter: func(d PageData, title, message string) templ.Component {
			return textComponent("newsletter", title, message)
		},
		Unsubscribe: func(d PageData, csrf string) templ.Component { return textComponent("unsubscribe") },
		NotFound:    func(d PageData) templ.Component { return textComponent("not found") },
		ServerError: func(d PageData) templ.Component { return textComponent("server error") },
	}
}
