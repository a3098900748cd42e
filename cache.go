package psiweb

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ContentStore is the read surface the cache sits in front of. *Store
// implements it; tests substitute stubs.
type ContentStore interface {
	ListArticles(ctx context.Context, limit, offset int) ([]Article, error)
	CountArticles(ctx context.Context) (int, error)
	ListArticlesByCategory(ctx context.Context, slug string, limit, offset int) ([]Article, error)
	CountArticlesByCategory(ctx context.Context, slug string) (int, error)
	ListArticlesByTag(ctx context.Context, slug string, limit, offset int) ([]Article, error)
	CountArticlesByTag(ctx context.Context, slug string) (int, error)
	GetArticle(ctx context.Context, slug string) (Article, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, slug string) (Category, error)
	ListTags(ctx context.Context) ([]Tag, error)
	GetTag(ctx context.Context, slug string) (Tag, error)
	SitemapArticles(ctx context.Context) ([]Article, error)
}

type cacheEntry struct {
	val     any
	tag     string
	fetched time.Time
	ttl     time.Duration
}

// ContentCache memoizes store reads per bucket key. Every bucket carries
// the revalidation interval and invalidation tag of its content type, so
// InvalidateTag("articles") expires only article buckets. Query errors
// are never cached; they propagate to the caller.
type ContentCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	store   ContentStore
	cfg     CacheConfig
}

// NewContentCache creates a ContentCache over the given store and
// revalidation table.
func NewContentCache(store ContentStore, cfg CacheConfig) *ContentCache {
	return &ContentCache{
		entries: make(map[string]cacheEntry),
		store:   store,
		cfg:     cfg,
	}
}

// fetch returns the bucket value for key, loading through the store when
// the bucket is absent or stale. It tries a read lock first and only
// takes the write lock on a miss.
func (c *ContentCache) fetch(ctx context.Context, key string, t ContentType, load func(context.Context) (any, error)) (any, error) {
	c.mu.RLock()
	if e, ok := c.entries[key]; ok && time.Since(e.fetched) < e.ttl {
		c.mu.RUnlock()
		return e.val, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && time.Since(e.fetched) < e.ttl {
		return e.val, nil
	}
	val, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{
		val:     val,
		tag:     c.cfg.TagFor(t),
		fetched: time.Now(),
		ttl:     c.cfg.Interval(t),
	}
	return val, nil
}

// InvalidateTag drops every bucket carrying the given tag.
func (c *ContentCache) InvalidateTag(tag string) {
	c.mu.Lock()
	for key, e := range c.entries {
		if e.tag == tag {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// InvalidateAll drops every bucket.
func (c *ContentCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Articles returns one cached page of published articles.
func (c *ContentCache) Articles(ctx context.Context, limit, offset int) ([]Article, error) {
	key := fmt.Sprintf("articles:%d:%d", limit, offset)
	v, err := c.fetch(ctx, key, ContentArticles, func(ctx context.Context) (any, error) {
		return c.store.ListArticles(ctx, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Article), nil
}

// ArticleCount returns the cached number of published articles.
func (c *ContentCache) ArticleCount(ctx context.Context) (int, error) {
	v, err := c.fetch(ctx, "articles:count", ContentArticles, func(ctx context.Context) (any, error) {
		return c.store.CountArticles(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// ArticlesByCategory returns one cached page of a category's articles.
func (c *ContentCache) ArticlesByCategory(ctx context.Context, slug string, limit, offset int) ([]Article, error) {
	key := fmt.Sprintf("articles:category:%s:%d:%d", slug, limit, offset)
	v, err := c.fetch(ctx, key, ContentArticles, func(ctx context.Context) (any, error) {
		return c.store.ListArticlesByCategory(ctx, slug, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Article), nil
}

// CategoryArticleCount returns the cached article count of a category.
func (c *ContentCache) CategoryArticleCount(ctx context.Context, slug string) (int, error) {
	v, err := c.fetch(ctx, "articles:category:count:"+slug, ContentArticles, func(ctx context.Context) (any, error) {
		return c.store.CountArticlesByCategory(ctx, slug)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// ArticlesByTag returns one cached page of a tag's articles.
func (c *ContentCache) ArticlesByTag(ctx context.Context, slug string, limit, offset int) ([]Article, error) {
	key := fmt.Sprintf("articles:tag:%s:%d:%d", slug, limit, offset)
	v, err := c.fetch(ctx, key, ContentArticles, func(ctx context.Context) (any, error) {
		return c.store.ListArticlesByTag(ctx, slug, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Article), nil
}

// TagArticleCount returns the cached article count of a tag.
func (c *ContentCache) TagArticleCount(ctx context.Context, slug string) (int, error) {
	v, err := c.fetch(ctx, "articles:tag:count:"+slug, ContentArticles, func(ctx context.Context) (any, error) {
		return c.store.CountArticlesByTag(ctx, slug)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Article returns one cached published article by slug.
func (c *ContentCache) Article(ctx context.Context, slug string) (Article, error) {
	v, err := c.fetch(ctx, "article:"+slug, ContentArticle, func(ctx context.Context) (any, error) {
		return c.store.GetArticle(ctx, slug)
	})
	if err != nil {
		return Article{}, err
	}
	return v.(Article), nil
}

// Categories returns the cached category list.
func (c *ContentCache) Categories(ctx context.Context) ([]Category, error) {
	v, err := c.fetch(ctx, "categories", ContentCategories, func(ctx context.Context) (any, error) {
		return c.store.ListCategories(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Category), nil
}

// Category returns one cached category by slug.
func (c *ContentCache) Category(ctx context.Context, slug string) (Category, error) {
	v, err := c.fetch(ctx, "category:"+slug, ContentCategory, func(ctx context.Context) (any, error) {
		return c.store.GetCategory(ctx, slug)
	})
	if err != nil {
		return Category{}, err
	}
	return v.(Category), nil
}

// Tags returns the cached tag list.
func (c *ContentCache) Tags(ctx context.Context) ([]Tag, error) {
	v, err := c.fetch(ctx, "tags", ContentTags, func(ctx context.Context) (any, error) {
		return c.store.ListTags(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Tag), nil
}

// Tag returns one cached tag by slug.
func (c *ContentCache) Tag(ctx context.Context, slug string) (Tag, error) {
	v, err := c.fetch(ctx, "tag:"+slug, ContentTags, func(ctx context.Context) (any, error) {
		return c.store.GetTag(ctx, slug)
	})
	if err != nil {
		return Tag{}, err
	}
	return v.(Tag), nil
}

// SitemapArticles returns the cached sitemap article list.
func (c *ContentCache) SitemapArticles(ctx context.Context) ([]Article, error) {
	v, err := c.fetch(ctx, "articles:sitemap", ContentArticles, func(ctx context.Context) (any, error) {
		return c.store.SitemapArticles(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Article), nil
}
