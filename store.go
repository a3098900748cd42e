package psiweb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = pgx.ErrNoRows

// Store reads content rows from the managed Postgres database. All
// content is administered out-of-band; the only writes the site performs
// are the newsletter status mutations.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at url and verifies the connection.
func NewStore(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// visibleArticle restricts queries to publicly visible articles.
const visibleArticle = `a.status = 'published' AND a.published_at <= now()`

const articleColumns = `
	a.id, a.title, a.slug, a.summary, a.cover_image,
	a.published_at, a.updated_at, c.name, c.slug, au.name`

const articleJoins = `
	FROM articles a
	JOIN categories c ON c.id = a.category_id
	JOIN authors au ON au.id = a.author_id`

func scanArticle(row pgx.Row) (Article, error) {
	var a Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Summary, &a.CoverImage,
		&a.PublishedAt, &a.UpdatedAt, &a.CategoryName, &a.CategorySlug, &a.AuthorName,
	)
	return a, err
}

func (s *Store) listArticles(ctx context.Context, where string, args []any, limit, offset int) ([]Article, error) {
	query := `SELECT` + articleColumns + articleJoins + `
	WHERE ` + visibleArticle + where + `
	ORDER BY a.published_at DESC
	LIMIT $` + fmt.Sprint(len(args)+1) + ` OFFSET $` + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

// ListArticles returns one page of published articles, newest first.
func (s *Store) ListArticles(ctx context.Context, limit, offset int) ([]Article, error) {
	return s.listArticles(ctx, "", nil, limit, offset)
}

// CountArticles returns the number of published articles.
func (s *Store) CountArticles(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM articles a WHERE `+visibleArticle).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// ListArticlesByCategory returns one page of published articles in the
// category, newest first.
func (s *Store) ListArticlesByCategory(ctx context.Context, slug string, limit, offset int) ([]Article, error) {
	return s.listArticles(ctx, ` AND c.slug = $1`, []any{slug}, limit, offset)
}

// CountArticlesByCategory returns the number of published articles in
// the category.
func (s *Store) CountArticlesByCategory(ctx context.Context, slug string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*)`+articleJoins+` WHERE `+visibleArticle+` AND c.slug = $1`, slug).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category articles: %w", err)
	}
	return n, nil
}

// ListArticlesByTag returns one page of published articles carrying the
// tag, newest first.
func (s *Store) ListArticlesByTag(ctx context.Context, slug string, limit, offset int) ([]Article, error) {
	where := ` AND a.id IN (SELECT at.article_id FROM article_tags at JOIN tags t ON t.id = at.tag_id WHERE t.slug = $1)`
	return s.listArticles(ctx, where, []any{slug}, limit, offset)
}

// CountArticlesByTag returns the number of published articles carrying
// the tag.
func (s *Store) CountArticlesByTag(ctx context.Context, slug string) (int, error) {
	var n int
	query := `SELECT count(*)` + articleJoins + `
	WHERE ` + visibleArticle + `
	AND a.id IN (SELECT at.article_id FROM article_tags at JOIN tags t ON t.id = at.tag_id WHERE t.slug = $1)`
	if err := s.pool.QueryRow(ctx, query, slug).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tag articles: %w", err)
	}
	return n, nil
}

// GetArticle returns a published article by slug with its body, full
// author and tags, or ErrNotFound.
func (s *Store) GetArticle(ctx context.Context, slug string) (Article, error) {
	query := `SELECT` + articleColumns + `,
	a.body_html, au.id, au.bio, au.photo, au.profile_url` + articleJoins + `
	WHERE ` + visibleArticle + ` AND a.slug = $1`

	var a Article
	var author Author
	err := s.pool.QueryRow(ctx, query, slug).Scan(
		&a.ID, &a.Title, &a.Slug, &a.Summary, &a.CoverImage,
		&a.PublishedAt, &a.UpdatedAt, &a.CategoryName, &a.CategorySlug, &a.AuthorName,
		&a.BodyHTML, &author.ID, &author.Bio, &author.Photo, &author.ProfileURL,
	)
	if err == pgx.ErrNoRows {
		return Article{}, ErrNotFound
	}
	if err != nil {
		return Article{}, fmt.Errorf("get article: %w", err)
	}
	author.Name = a.AuthorName
	a.Author = &author

	tags, err := s.articleTags(ctx, a.ID)
	if err != nil {
		return Article{}, err
	}
	a.Tags = tags
	return a, nil
}

func (s *Store) articleTags(ctx context.Context, articleID int) ([]Tag, error) {
	rows, err := s.pool.Query(ctx, `
	SELECT t.id, t.name, t.slug
	FROM tags t
	JOIN article_tags at ON at.tag_id = t.id
	WHERE at.article_id = $1
	ORDER BY t.name`, articleID)
	if err != nil {
		return nil, fmt.Errorf("query article tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, slug, description, image FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetCategory returns a category by slug, or ErrNotFound.
func (s *Store) GetCategory(ctx context.Context, slug string) (Category, error) {
	var c Category
	err := s.pool.QueryRow(ctx, `SELECT id, name, slug, description, image FROM categories WHERE slug = $1`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image)
	if err == pgx.ErrNoRows {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListTags returns all tags attached to at least one published article.
func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.pool.Query(ctx, `
	SELECT DISTINCT t.id, t.name, t.slug
	FROM tags t
	JOIN article_tags at ON at.tag_id = t.id
	JOIN articles a ON a.id = at.article_id
	WHERE `+visibleArticle+`
	ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetTag returns a tag by slug, or ErrNotFound.
func (s *Store) GetTag(ctx context.Context, slug string) (Tag, error) {
	var t Tag
	err := s.pool.QueryRow(ctx, `SELECT id, name, slug FROM tags WHERE slug = $1`, slug).
		Scan(&t.ID, &t.Name, &t.Slug)
	if err == pgx.ErrNoRows {
		return Tag{}, ErrNotFound
	}
	if err != nil {
		return Tag{}, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// --- Suggestion search sub-queries. Each is independently limited;
// the handler merges and de-duplicates the results. ---

// SearchArticles returns up to limit published articles whose title
// matches q, best (newest) first.
func (s *Store) SearchArticles(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	return s.searchRows(ctx, `
	SELECT a.title, a.slug FROM articles a
	WHERE `+visibleArticle+` AND a.title ILIKE '%' || $1 || '%'
	ORDER BY a.published_at DESC LIMIT $2`, "article", q, limit)
}

// SearchCategories returns up to limit categories whose name matches q.
func (s *Store) SearchCategories(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	return s.searchRows(ctx, `
	SELECT name, slug FROM categories
	WHERE name ILIKE '%' || $1 || '%'
	ORDER BY name LIMIT $2`, "category", q, limit)
}

// SearchTags returns up to limit tags whose name matches q.
func (s *Store) SearchTags(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	return s.searchRows(ctx, `
	SELECT name, slug FROM tags
	WHERE name ILIKE '%' || $1 || '%'
	ORDER BY name LIMIT $2`, "tag", q, limit)
}

// SearchAuthors returns up to limit authors whose name matches q.
// Authors have no public slug; only the name is suggested.
func (s *Store) SearchAuthors(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	rows, err := s.pool.Query(ctx, `
	SELECT name FROM authors
	WHERE name ILIKE '%' || $1 || '%'
	ORDER BY name LIMIT $2`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search authors: %w", err)
	}
	defer rows.Close()

	var out []Suggestion
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan author suggestion: %w", err)
		}
		out = append(out, Suggestion{Type: "author", Value: name})
	}
	return out, rows.Err()
}

func (s *Store) searchRows(ctx context.Context, query, typ, q string, limit int) ([]Suggestion, error) {
	rows, err := s.pool.Query(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("search %ss: %w", typ, err)
	}
	defer rows.Close()

	var out []Suggestion
	for rows.Next() {
		var value, slug string
		if err := rows.Scan(&value, &slug); err != nil {
			return nil, fmt.Errorf("scan %s suggestion: %w", typ, err)
		}
		out = append(out, Suggestion{Type: typ, Value: value, Slug: slug})
	}
	return out, rows.Err()
}

// --- Newsletter mutations, the only writes the site performs. ---

// CreateSubscriber inserts a pending subscriber with a fresh token.
// An existing pending row for the same email gets its token replaced so
// the confirmation mail can be re-sent.
func (s *Store) CreateSubscriber(ctx context.Context, email, token string) error {
	_, err := s.pool.Exec(ctx, `
	INSERT INTO newsletter_subscribers (email, status, token, created_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (email) DO UPDATE SET token = $3, status = $2
	WHERE newsletter_subscribers.status <> 'confirmed'`,
		email, SubscriberPending, token)
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

// GetSubscriberByToken returns the subscriber holding token, or
// ErrNotFound. Confirmed rows have a NULL token, so a spent token stops
// resolving here.
func (s *Store) GetSubscriberByToken(ctx context.Context, token string) (Subscriber, error) {
	var sub Subscriber
	err := s.pool.QueryRow(ctx, `
	SELECT id, email, status, token, confirmed_at, created_at
	FROM newsletter_subscribers WHERE token = $1`, token).
		Scan(&sub.ID, &sub.Email, &sub.Status, &sub.Token, &sub.ConfirmedAt, &sub.CreatedAt)
	if err == pgx.ErrNoRows {
		return Subscriber{}, ErrNotFound
	}
	if err != nil {
		return Subscriber{}, fmt.Errorf("get subscriber: %w", err)
	}
	return sub, nil
}

// GetSubscriberByEmail returns the subscriber row for email, or
// ErrNotFound.
func (s *Store) GetSubscriberByEmail(ctx context.Context, email string) (Subscriber, error) {
	var sub Subscriber
	err := s.pool.QueryRow(ctx, `
	SELECT id, email, status, token, confirmed_at, created_at
	FROM newsletter_subscribers WHERE email = $1`, email).
		Scan(&sub.ID, &sub.Email, &sub.Status, &sub.Token, &sub.ConfirmedAt, &sub.CreatedAt)
	if err == pgx.ErrNoRows {
		return Subscriber{}, ErrNotFound
	}
	if err != nil {
		return Subscriber{}, fmt.Errorf("get subscriber: %w", err)
	}
	return sub, nil
}

// ConfirmSubscriber flips a subscriber to confirmed, stamps the time and
// clears the single-use token.
func (s *Store) ConfirmSubscriber(ctx context.Context, id int) error {
	_, err := s.pool.Exec(ctx, `
	UPDATE newsletter_subscribers
	SET status = $2, confirmed_at = now(), token = NULL
	WHERE id = $1`, id, SubscriberConfirmed)
	if err != nil {
		return fmt.Errorf("confirm subscriber: %w", err)
	}
	return nil
}

// CancelSubscriber flips a subscriber to cancelled and clears the token.
func (s *Store) CancelSubscriber(ctx context.Context, id int) error {
	_, err := s.pool.Exec(ctx, `
	UPDATE newsletter_subscribers
	SET status = $2, token = NULL
	WHERE id = $1`, id, SubscriberCancelled)
	if err != nil {
		return fmt.Errorf("cancel subscriber: %w", err)
	}
	return nil
}

// SitemapArticles returns slug and update time of every published
// article for sitemap generation.
func (s *Store) SitemapArticles(ctx context.Context) ([]Article, error) {
	rows, err := s.pool.Query(ctx, `
	SELECT a.slug, a.updated_at, c.slug
	FROM articles a JOIN categories c ON c.id = a.category_id
	WHERE `+visibleArticle+`
	ORDER BY a.published_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sitemap articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.Slug, &a.UpdatedAt, &a.CategorySlug); err != nil {
			return nil, fmt.Errorf("scan sitemap article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
