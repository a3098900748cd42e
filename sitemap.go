package psiweb

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Fixed sitemap weights per content family.
const (
	sitemapHomePriority     = "1.0"
	sitemapArticlePriority  = "0.8"
	sitemapCategoryPriority = "0.6"
	sitemapStaticPriority   = "0.5"
	sitemapTagPriority      = "0.4"
)

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()

	articles, err := a.Cache.SitemapArticles(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Cache.Categories(ctx)
	if err != nil {
		return err
	}
	tags, err := a.Cache.Tags(ctx)
	if err != nil {
		return err
	}

	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base), ChangeFreq: "daily", Priority: sitemapHomePriority},
		{Loc: BuildURL(base, "blog"), ChangeFreq: "daily", Priority: sitemapHomePriority},
		{Loc: BuildURL(base, "sobre"), ChangeFreq: "monthly", Priority: sitemapStaticPriority},
		{Loc: BuildURL(base, "contato"), ChangeFreq: "monthly", Priority: sitemapStaticPriority},
	}
	for _, art := range articles {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", art.Slug),
			LastMod:    art.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   sitemapArticlePriority,
		})
	}
	for _, cat := range cats {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", "categoria", cat.Slug),
			ChangeFreq: "weekly",
			Priority:   sitemapCategoryPriority,
		})
	}
	for _, tag := range tags {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", "tags", tag.Slug),
			ChangeFreq: "monthly",
			Priority:   sitemapTagPriority,
		})
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
