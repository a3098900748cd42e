package psiweb

import "time"

// Article is a blog post row read from the managed database.
// Category and author columns are joined in by the store so templates
// can build URLs and bylines without extra queries.
type Article struct {
	ID           int
	Title        string
	Slug         string
	Summary      string
	BodyHTML     string
	CoverImage   *string
	Status       string
	PublishedAt  time.Time
	UpdatedAt    time.Time
	CategoryName string
	CategorySlug string
	AuthorName   string
	Author       *Author
	Tags         []Tag
}

// Link returns the canonical site-relative path for the article.
func (a Article) Link() string {
	return "/blog/" + a.Slug + "/"
}

// Category groups articles under a themed section of the blog.
type Category struct {
	ID          int
	Name        string
	Slug        string
	Description string
	Image       *string
}

// Tag is a free-form label attached to articles through a join table.
type Tag struct {
	ID   int
	Name string
	Slug string
}

// Author writes articles. Photo and profile URL may be absent.
type Author struct {
	ID         int
	Name       string
	Bio        string
	Photo      *string
	ProfileURL *string
}

// Subscriber is a newsletter signup. Status moves pending -> confirmed
// or pending/confirmed -> cancelled; the token is single-use and is
// cleared on confirmation.
type Subscriber struct {
	ID          int
	Email       string
	Status      string
	Token       *string
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

// Subscriber statuses.
const (
	SubscriberPending   = "pending"
	SubscriberConfirmed = "confirmed"
	SubscriberCancelled = "cancelled"
)

// Suggestion is one entry of the search suggestion endpoint payload.
type Suggestion struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Slug  string `json:"slug,omitempty"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, may be empty
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page    int
	PerPage int
	Total   int
}

// Pages returns the number of pages needed for Total items.
func (p Pagination) Pages() int {
	if p.PerPage <= 0 || p.Total <= 0 {
		return 1
	}
	n := p.Total / p.PerPage
	if p.Total%p.PerPage != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
