package views

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/vidaplena/psiweb"
)

// Funcs returns the component set the psiweb handlers render.
func Funcs() psiweb.ViewFuncs {
	return psiweb.ViewFuncs{
		Home:        Home,
		BlogIndex:   BlogIndex,
		Article:     Article,
		Category:    Category,
		TagPage:     TagPage,
		About:       About,
		Contact:     Contact,
		Newsletter:  Newsletter,
		Unsubscribe: Unsubscribe,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// Home is the marketing landing page with the latest articles.
func Home(d psiweb.PageData, latest []psiweb.Article, cats []psiweb.Category) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="hero">`)
		buf.WriteString(`<h1>` + esc(d.Cfg.Name) + `</h1>`)
		if d.Cfg.Description != "" {
			buf.WriteString(`<p class="lead">` + esc(d.Cfg.Description) + `</p>`)
		}
		buf.WriteString(`<a class="cta" href="/contato/">Agende uma conversa</a>`)
		buf.WriteString(`</section>`)

		if len(cats) > 0 {
			buf.WriteString(`<section class="categories"><h2>Temas</h2><ul>`)
			for _, cat := range cats {
				buf.WriteString(`<li><a href="/blog/categoria/` + esc(cat.Slug) + `/">` + esc(cat.Name) + `</a></li>`)
			}
			buf.WriteString(`</ul></section>`)
		}

		buf.WriteString(`<section class="latest"><h2>Últimos artigos</h2>`)
		writeArticleList(buf, latest, "Nenhum artigo publicado ainda.")
		buf.WriteString(`</section>`)
	})
}

// BlogIndex lists published articles with category and tag navigation.
func BlogIndex(d psiweb.PageData, articles []psiweb.Article, cats []psiweb.Category, tags []psiweb.Tag, pg psiweb.Pagination) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<h1>Blog</h1>`)
		if len(cats) > 0 {
			buf.WriteString(`<nav class="category-nav"><ul>`)
			for _, cat := range cats {
				buf.WriteString(`<li><a href="/blog/categoria/` + esc(cat.Slug) + `/">` + esc(cat.Name) + `</a></li>`)
			}
			buf.WriteString(`</ul></nav>`)
		}
		writeArticleList(buf, articles, "Nenhum artigo encontrado.")
		writePagination(buf, "/blog/", pg)
		if len(tags) > 0 {
			buf.WriteString(`<aside class="tag-cloud"><h2>Tags</h2><ul>`)
			for _, t := range tags {
				buf.WriteString(`<li><a href="/blog/tags/` + esc(t.Slug) + `/">` + esc(t.Name) + `</a></li>`)
			}
			buf.WriteString(`</ul></aside>`)
		}
	})
}

// Article renders one post with author box and related reading.
func Article(d psiweb.PageData, a psiweb.Article, related []psiweb.Article) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<script type="application/ld+json">` + psiweb.ArticleJsonLD(d.Cfg, a) + `</script>`)
		buf.WriteString(`<article class="post">`)
		buf.WriteString(`<header><h1>` + esc(a.Title) + `</h1>`)
		buf.WriteString(`<p class="byline">` + esc(a.AuthorName) + ` · <time datetime="` + a.PublishedAt.Format("2006-01-02") + `">` + a.PublishedAt.Format("02/01/2006") + `</time>`)
		buf.WriteString(` · <a href="/blog/categoria/` + esc(a.CategorySlug) + `/">` + esc(a.CategoryName) + `</a></p>`)
		writeCover(buf, a)
		buf.WriteString(`</header>`)

		// Body is stored as sanitized HTML in the database.
		buf.WriteString(`<div class="post-body">` + a.BodyHTML + `</div>`)

		if len(a.Tags) > 0 {
			buf.WriteString(`<ul class="post-tags">`)
			for _, t := range a.Tags {
				buf.WriteString(`<li><a href="/blog/tags/` + esc(t.Slug) + `/">` + esc(t.Name) + `</a></li>`)
			}
			buf.WriteString(`</ul>`)
		}
		buf.WriteString(`</article>`)

		writeAuthorBox(buf, a.Author)

		if len(related) > 0 {
			buf.WriteString(`<section class="related"><h2>Leia também</h2>`)
			writeArticleList(buf, related, "")
			buf.WriteString(`</section>`)
		}
	})
}

// Category lists one category's articles.
func Category(d psiweb.PageData, cat psiweb.Category, articles []psiweb.Article, pg psiweb.Pagination) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<h1>` + esc(cat.Name) + `</h1>`)
		if cat.Description != "" {
			buf.WriteString(`<p class="lead">` + esc(cat.Description) + `</p>`)
		}
		writeArticleList(buf, articles, "Nenhum artigo nesta categoria ainda.")
		writePagination(buf, "/blog/categoria/"+cat.Slug+"/", pg)
	})
}

// TagPage lists one tag's articles.
func TagPage(d psiweb.PageData, tag psiweb.Tag, articles []psiweb.Article, pg psiweb.Pagination) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<h1>Tag: ` + esc(tag.Name) + `</h1>`)
		writeArticleList(buf, articles, "Nenhum artigo com esta tag ainda.")
		writePagination(buf, "/blog/tags/"+tag.Slug+"/", pg)
	})
}

// About is the static practice page.
func About(d psiweb.PageData) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<h1>Sobre</h1>`)
		buf.WriteString(`<p>` + esc(d.Cfg.Description) + `</p>`)
		buf.WriteString(`<p>Atendimento psicológico individual, presencial e online, com foco em acolhimento e escuta qualificada.</p>`)
	})
}

// Contact shows the practice contact info and the WhatsApp deep link
// with a pre-filled message.
func Contact(d psiweb.PageData, whatsAppLink string) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<h1>Contato</h1>`)
		buf.WriteString(`<p>Agende sua consulta ou tire dúvidas pelos canais abaixo.</p>`)
		if whatsAppLink != "" {
			buf.WriteString(`<a class="cta whatsapp" href="` + esc(whatsAppLink) + `" target="_blank" rel="noopener noreferrer">Conversar no WhatsApp</a>`)
		}
	})
}

// Newsletter shows the outcome of a subscribe/confirm/unsubscribe step.
func Newsletter(d psiweb.PageData, title, message string) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="newsletter-result">`)
		buf.WriteString(`<h1>` + esc(title) + `</h1>`)
		buf.WriteString(`<p>` + esc(message) + `</p>`)
		buf.WriteString(`<a href="/blog/">Voltar ao blog</a>`)
		buf.WriteString(`</section>`)
	})
}

// Unsubscribe renders the cancel form; the outcome of a submit arrives
// through Newsletter via the session flash.
func Unsubscribe(d psiweb.PageData, csrfToken string) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<h1>Cancelar inscrição</h1>`)
		buf.WriteString(`<form method="post" action="/cancelar-newsletter/">`)
		buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `"/>`)
		buf.WriteString(`<label for="unsub-email">E-mail</label>`)
		buf.WriteString(`<input id="unsub-email" type="email" name="email" required/>`)
		buf.WriteString(`<label for="unsub-token">Código recebido por e-mail (apenas inscrições pendentes)</label>`)
		buf.WriteString(`<input id="unsub-token" type="text" name="token"/>`)
		buf.WriteString(`<button type="submit">Cancelar inscrição</button>`)
		buf.WriteString(`</form>`)
	})
}

// NotFound is the styled 404 page.
func NotFound(d psiweb.PageData) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="error-page"><h1>Página não encontrada</h1>`)
		buf.WriteString(`<p>O conteúdo que você procura não existe ou foi movido.</p>`)
		buf.WriteString(`<a href="/">Voltar ao início</a></section>`)
	})
}

// ServerError is the styled 500 page.
func ServerError(d psiweb.PageData) templ.Component {
	return page(d, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="error-page"><h1>Algo deu errado</h1>`)
		buf.WriteString(`<p>Tente novamente em instantes.</p>`)
		buf.WriteString(`<a href="/">Voltar ao início</a></section>`)
	})
}

// writeArticleList renders article cards, or the empty-state message.
func writeArticleList(buf *bytes.Buffer, articles []psiweb.Article, empty string) {
	if len(articles) == 0 {
		if empty != "" {
			buf.WriteString(`<p class="empty-state">` + esc(empty) + `</p>`)
		}
		return
	}
	buf.WriteString(`<ul class="article-list">`)
	for _, a := range articles {
		buf.WriteString(`<li class="article-card">`)
		writeCover(buf, a)
		buf.WriteString(`<h3><a href="` + esc(a.Link()) + `">` + esc(a.Title) + `</a></h3>`)
		if a.Summary != "" {
			buf.WriteString(`<p>` + esc(psiweb.Excerpt(a.Summary, 160)) + `</p>`)
		}
		buf.WriteString(`<p class="card-meta">` + esc(a.CategoryName) + ` · <time datetime="` + a.PublishedAt.Format("2006-01-02") + `">` + a.PublishedAt.Format("02/01/2006") + `</time></p>`)
		buf.WriteString(`</li>`)
	}
	buf.WriteString(`</ul>`)
}

// writeCover emits the cover image with the client-side onerror swap to
// the category fallback.
func writeCover(buf *bytes.Buffer, a psiweb.Article) {
	src := psiweb.ImageURL(a.CoverImage, a.CategorySlug)
	fallback := psiweb.CategoryFallbackURL(a.CategorySlug)
	buf.WriteString(`<img src="` + esc(src) + `" alt="` + esc(a.Title) + `" loading="lazy" onerror="this.onerror=null;this.src='` + esc(fallback) + `'"/>`)
}

func writeAuthorBox(buf *bytes.Buffer, author *psiweb.Author) {
	if author == nil {
		return
	}
	buf.WriteString(`<aside class="author-box">`)
	if author.Photo != nil && *author.Photo != "" {
		buf.WriteString(`<img src="` + esc(psiweb.ImageURL(author.Photo, "autores")) + `" alt="` + esc(author.Name) + `"/>`)
	}
	buf.WriteString(`<h2>` + esc(author.Name) + `</h2>`)
	if author.Bio != "" {
		buf.WriteString(`<p>` + esc(author.Bio) + `</p>`)
	}
	if author.ProfileURL != nil && *author.ProfileURL != "" {
		buf.WriteString(`<a href="` + esc(*author.ProfileURL) + `" target="_blank" rel="noopener noreferrer">Perfil profissional</a>`)
	}
	buf.WriteString(`</aside>`)
}

// writePagination renders prev/next links with page/per_page params.
func writePagination(buf *bytes.Buffer, basePath string, pg psiweb.Pagination) {
	pages := pg.Pages()
	if pages <= 1 {
		return
	}
	link := func(page int) string {
		return basePath + "?page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(pg.PerPage)
	}
	buf.WriteString(`<nav class="pagination">`)
	if pg.Page > 1 {
		buf.WriteString(`<a rel="prev" href="` + esc(link(pg.Page-1)) + `">Anterior</a>`)
	}
	buf.WriteString(fmt.Sprintf(`<span>Página %d de %d</span>`, pg.Page, pages))
	if pg.Page < pages {
		buf.WriteString(`<a rel="next" href="` + esc(link(pg.Page+1)) + `">Próxima</a>`)
	}
	buf.WriteString(`</nav>`)
}
