package psiweb

import (
	"encoding/json"
	"strings"
)

// Crumb is one element of a breadcrumb trail.
type Crumb struct {
	Name string
	Path string // site-relative, e.g. "/blog/"
}

// WebsiteJsonLD returns a JSON-LD string for the WebSite schema.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return marshalLD(data)
}

// BlogJsonLD returns a JSON-LD string for the Blog schema. The
// classifier suppresses this block on article pages so a post never
// also claims to be the blog index.
func BlogJsonLD(cfg SiteConfig) string {
	return marshalLD(map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Blog",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL, "blog"),
		"description": cfg.Description,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
	})
}

// ArticleJsonLD returns a JSON-LD string for the BlogPosting schema of
// an article.
func ArticleJsonLD(cfg SiteConfig, a Article) string {
	articleURL := BuildURL(cfg.URL, "blog", a.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      a.Title,
		"description":   a.Summary,
		"datePublished": a.PublishedAt.Format("2006-01-02"),
		"dateModified":  a.UpdatedAt.Format("2006-01-02"),
		"url":           articleURL,
		"image":         strings.TrimSuffix(cfg.URL, "/") + ImageURL(a.CoverImage, a.CategorySlug),
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   articleURL,
		},
	}
	if a.AuthorName != "" {
		author := map[string]string{
			"@type": "Person",
			"name":  a.AuthorName,
		}
		if a.Author != nil && a.Author.ProfileURL != nil {
			author["url"] = *a.Author.ProfileURL
		}
		data["author"] = author
	}
	if len(a.Tags) > 0 {
		names := make([]string, len(a.Tags))
		for i, t := range a.Tags {
			names[i] = t.Name
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	return marshalLD(data)
}

// BreadcrumbJsonLD returns a JSON-LD string for the BreadcrumbList
// schema. Every page emits one.
func BreadcrumbJsonLD(cfg SiteConfig, crumbs []Crumb) string {
	items := make([]map[string]interface{}, len(crumbs))
	for i, c := range crumbs {
		items[i] = map[string]interface{}{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     strings.TrimSuffix(cfg.URL, "/") + c.Path,
		}
	}
	return marshalLD(map[string]interface{}{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	})
}

func marshalLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
