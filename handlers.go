package psiweb

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) pageData(c echo.Context, meta PageMeta, crumbs []Crumb) PageData {
	pt := ClassifyPath(c.Request().URL.Path)
	if strings.Contains(pt.Reason, "rendering all schemas") {
		c.Logger().Infof("pagetype: %s: %s", c.Request().URL.Path, pt.Reason)
	}
	return PageData{Cfg: a.Config, Meta: meta, Type: pt, Crumbs: crumbs, CSRF: CsrfToken(c)}
}

// parsePage reads page/per_page query params with sane bounds.
func parsePage(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 50 {
		perPage = 50
	}
	return page, perPage
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()

	// Listing failures render as empty states, not error pages.
	latest, err := a.Cache.Articles(ctx, 6, 0)
	if err != nil {
		c.Logger().Errorf("home: list articles: %v", err)
	}
	cats, err := a.Cache.Categories(ctx)
	if err != nil {
		c.Logger().Errorf("home: list categories: %v", err)
	}

	d := a.pageData(c, PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL),
		OGType:      "website",
	}, []Crumb{{Name: "Início", Path: "/"}})
	return Render(c, a.Views.Home(d, latest, cats))
}

func (a *App) handleBlogIndex(c echo.Context) error {
	ctx := c.Request().Context()
	page, perPage := parsePage(c)

	articles, err := a.Cache.Articles(ctx, perPage, (page-1)*perPage)
	if err != nil {
		c.Logger().Errorf("blog: list articles: %v", err)
	}
	total, err := a.Cache.ArticleCount(ctx)
	if err != nil {
		c.Logger().Errorf("blog: count articles: %v", err)
	}
	cats, err := a.Cache.Categories(ctx)
	if err != nil {
		c.Logger().Errorf("blog: list categories: %v", err)
	}
	tags, err := a.Cache.Tags(ctx)
	if err != nil {
		c.Logger().Errorf("blog: list tags: %v", err)
	}

	d := a.pageData(c, PageMeta{
		Title:       "Blog — " + a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL, "blog"),
		OGType:      "website",
	}, []Crumb{{Name: "Início", Path: "/"}, {Name: "Blog", Path: "/blog/"}})
	return Render(c, a.Views.BlogIndex(d, articles, cats, tags, Pagination{Page: page, PerPage: perPage, Total: total}))
}

func (a *App) handleArticle(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	article, err := a.Cache.Article(ctx, slug)
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}

	related, err := a.Cache.ArticlesByCategory(ctx, article.CategorySlug, 4, 0)
	if err != nil {
		c.Logger().Errorf("article: related articles: %v", err)
	}
	related = filterRelated(article, related, 3)

	d := a.pageData(c, PageMeta{
		Title:       article.Title + " — " + a.Config.Name,
		Description: article.Summary,
		URL:         BuildURL(a.Config.URL, "blog", article.Slug),
		OGType:      "article",
		Image:       ImageURL(article.CoverImage, article.CategorySlug),
	}, []Crumb{
		{Name: "Início", Path: "/"},
		{Name: "Blog", Path: "/blog/"},
		{Name: article.CategoryName, Path: "/blog/categoria/" + article.CategorySlug + "/"},
		{Name: article.Title, Path: article.Link()},
	})
	return Render(c, a.Views.Article(d, article, related))
}

// handleLegacyArticle redirects the old /:categoria/:slug URLs to the
// canonical /blog/:slug form, 404ing when either side does not resolve.
func (a *App) handleLegacyArticle(c echo.Context) error {
	ctx := c.Request().Context()
	catSlug := c.Param("categoria")
	slug := c.Param("slug")

	article, err := a.Cache.Article(ctx, slug)
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}
	if article.CategorySlug != catSlug {
		return a.renderNotFound(c)
	}
	return c.Redirect(http.StatusMovedPermanently, article.Link())
}

func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	cat, err := a.Cache.Category(ctx, slug)
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}

	page, perPage := parsePage(c)
	articles, err := a.Cache.ArticlesByCategory(ctx, slug, perPage, (page-1)*perPage)
	if err != nil {
		c.Logger().Errorf("category %s: list articles: %v", slug, err)
	}
	total, err := a.Cache.CategoryArticleCount(ctx, slug)
	if err != nil {
		c.Logger().Errorf("category %s: count articles: %v", slug, err)
	}

	d := a.pageData(c, PageMeta{
		Title:       cat.Name + " — " + a.Config.Name,
		Description: cat.Description,
		URL:         BuildURL(a.Config.URL, "blog", "categoria", cat.Slug),
		OGType:      "website",
	}, []Crumb{
		{Name: "Início", Path: "/"},
		{Name: "Blog", Path: "/blog/"},
		{Name: cat.Name, Path: "/blog/categoria/" + cat.Slug + "/"},
	})
	return Render(c, a.Views.Category(d, cat, articles, Pagination{Page: page, PerPage: perPage, Total: total}))
}

func (a *App) handleTag(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	tag, err := a.Cache.Tag(ctx, slug)
	if err != nil {
		if err == ErrNotFound {
			return a.renderNotFound(c)
		}
		return err
	}

	page, perPage := parsePage(c)
	articles, err := a.Cache.ArticlesByTag(ctx, slug, perPage, (page-1)*perPage)
	if err != nil {
		c.Logger().Errorf("tag %s: list articles: %v", slug, err)
	}
	total, err := a.Cache.TagArticleCount(ctx, slug)
	if err != nil {
		c.Logger().Errorf("tag %s: count articles: %v", slug, err)
	}

	d := a.pageData(c, PageMeta{
		Title:       tag.Name + " — " + a.Config.Name,
		Description: fmt.Sprintf("Artigos sobre %s.", tag.Name),
		URL:         BuildURL(a.Config.URL, "blog", "tags", tag.Slug),
		OGType:      "website",
	}, []Crumb{
		{Name: "Início", Path: "/"},
		{Name: "Blog", Path: "/blog/"},
		{Name: tag.Name, Path: "/blog/tags/" + tag.Slug + "/"},
	})
	return Render(c, a.Views.TagPage(d, tag, articles, Pagination{Page: page, PerPage: perPage, Total: total}))
}

func (a *App) handleAbout(c echo.Context) error {
	d := a.pageData(c, PageMeta{
		Title:       "Sobre — " + a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL, "sobre"),
		OGType:      "website",
	}, []Crumb{{Name: "Início", Path: "/"}, {Name: "Sobre", Path: "/sobre/"}})
	return Render(c, a.Views.About(d))
}

func (a *App) handleContact(c echo.Context) error {
	link := WhatsAppLink(a.Config.WhatsAppNumber,
		fmt.Sprintf("Olá! Encontrei o site %s e gostaria de agendar uma conversa.", a.Config.Name))

	d := a.pageData(c, PageMeta{
		Title:       "Contato — " + a.Config.Name,
		Description: "Entre em contato e agende sua consulta.",
		URL:         BuildURL(a.Config.URL, "contato"),
		OGType:      "website",
	}, []Crumb{{Name: "Início", Path: "/"}, {Name: "Contato", Path: "/contato/"}})
	return Render(c, a.Views.Contact(d, link))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

// handleRobots generates robots.txt dynamically using the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) renderNotFound(c echo.Context) error {
	d := a.pageData(c, PageMeta{
		Title:       "Página não encontrada — " + a.Config.Name,
		Description: a.Config.Description,
		URL:         a.Config.URL + c.Request().URL.Path,
		OGType:      "website",
	}, []Crumb{{Name: "Início", Path: "/"}})
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(d))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		d := a.pageData(c, PageMeta{Title: a.Config.Name, URL: a.Config.URL, OGType: "website"}, nil)
		_ = RenderStatus(c, code, a.Views.ServerError(d))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// filterRelated drops the current article from candidates and caps the
// result at max.
func filterRelated(current Article, candidates []Article, max int) []Article {
	var related []Article
	for _, a := range candidates {
		if a.Slug == current.Slug {
			continue
		}
		related = append(related, a)
		if len(related) == max {
			break
		}
	}
	return related
}
