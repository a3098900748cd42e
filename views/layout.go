// Package views renders every page of the site as templ components
// built programmatically. The psiweb package calls into it through the
// ViewFuncs struct; nothing here touches the store or the cache.
package views

import (
	"bytes"
	"context"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/vidaplena/psiweb"
)

// esc escapes text for HTML output.
func esc(s string) string {
	return html.EscapeString(s)
}

// page wraps a body writer in the shared document shell: head metadata,
// JSON-LD blocks chosen by the page-type classification, navigation and
// footer.
func page(d psiweb.PageData, body func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeHead(&buf, d)
		writeNav(&buf, d)
		buf.WriteString(`<main id="conteudo">`)
		body(&buf)
		buf.WriteString(`</main>`)
		writeFooter(&buf, d)
		buf.WriteString(`</body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeHead(buf *bytes.Buffer, d psiweb.PageData) {
	m := d.Meta
	buf.WriteString(`<!DOCTYPE html><html lang="pt-BR"><head><meta charset="utf-8"/>`)
	buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	buf.WriteString(`<title>` + esc(m.Title) + `</title>`)
	if m.Description != "" {
		buf.WriteString(`<meta name="description" content="` + esc(m.Description) + `"/>`)
	}
	if m.URL != "" {
		buf.WriteString(`<link rel="canonical" href="` + esc(m.URL) + `"/>`)
		buf.WriteString(`<meta property="og:url" content="` + esc(m.URL) + `"/>`)
	}
	buf.WriteString(`<meta property="og:title" content="` + esc(m.Title) + `"/>`)
	if m.Description != "" {
		buf.WriteString(`<meta property="og:description" content="` + esc(m.Description) + `"/>`)
	}
	ogType := m.OGType
	if ogType == "" {
		ogType = "website"
	}
	buf.WriteString(`<meta property="og:type" content="` + esc(ogType) + `"/>`)
	if m.Image != "" {
		buf.WriteString(`<meta property="og:image" content="` + esc(m.Image) + `"/>`)
	}
	buf.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + esc(d.Cfg.Name) + `" href="/feed.xml"/>`)
	buf.WriteString(`<link rel="stylesheet" href="/public/site.css"/>`)

	writeJsonLD(buf, d)
	writeAnalytics(buf, d.Cfg)

	buf.WriteString(`</head><body>`)
}

// writeJsonLD emits the structured-data blocks the classifier selected.
// Article pages suppress the Blog block; the breadcrumb always renders.
func writeJsonLD(buf *bytes.Buffer, d psiweb.PageData) {
	buf.WriteString(`<script type="application/ld+json">` + psiweb.WebsiteJsonLD(d.Cfg) + `</script>`)
	if d.Type.EmitBlogSchema {
		buf.WriteString(`<script type="application/ld+json">` + psiweb.BlogJsonLD(d.Cfg) + `</script>`)
	}
	if d.Type.EmitBreadcrumb && len(d.Crumbs) > 0 {
		buf.WriteString(`<script type="application/ld+json">` + psiweb.BreadcrumbJsonLD(d.Cfg, d.Crumbs) + `</script>`)
	}
}

func writeAnalytics(buf *bytes.Buffer, cfg psiweb.SiteConfig) {
	if cfg.TagManagerID != "" {
		buf.WriteString(`<script async src="https://www.googletagmanager.com/gtm.js?id=` + esc(cfg.TagManagerID) + `"></script>`)
	}
	if cfg.AnalyticsID != "" {
		buf.WriteString(`<script async src="https://www.googletagmanager.com/gtag/js?id=` + esc(cfg.AnalyticsID) + `"></script>`)
		buf.WriteString(`<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config','` + esc(cfg.AnalyticsID) + `');</script>`)
	}
}

func writeNav(buf *bytes.Buffer, d psiweb.PageData) {
	buf.WriteString(`<header class="site-header"><nav>`)
	buf.WriteString(`<a class="brand" href="/">` + esc(d.Cfg.Name) + `</a>`)
	buf.WriteString(`<ul class="nav-links">`)
	buf.WriteString(`<li><a href="/blog/">Blog</a></li>`)
	buf.WriteString(`<li><a href="/sobre/">Sobre</a></li>`)
	buf.WriteString(`<li><a href="/contato/">Contato</a></li>`)
	buf.WriteString(`</ul></nav></header>`)
	writeBreadcrumbs(buf, d.Crumbs)
}

func writeBreadcrumbs(buf *bytes.Buffer, crumbs []psiweb.Crumb) {
	if len(crumbs) < 2 {
		return
	}
	buf.WriteString(`<nav class="breadcrumbs" aria-label="breadcrumb"><ol>`)
	for i, c := range crumbs {
		buf.WriteString(`<li>`)
		if i < len(crumbs)-1 {
			buf.WriteString(`<a href="` + esc(c.Path) + `">` + esc(c.Name) + `</a>`)
		} else {
			buf.WriteString(`<span aria-current="page">` + esc(c.Name) + `</span>`)
		}
		buf.WriteString(`</li>`)
	}
	buf.WriteString(`</ol></nav>`)
}

func writeFooter(buf *bytes.Buffer, d psiweb.PageData) {
	buf.WriteString(`<footer class="site-footer">`)
	buf.WriteString(`<p>` + esc(d.Cfg.Name) + `</p>`)
	writeNewsletterForm(buf, d.CSRF)
	buf.WriteString(`<p class="footer-links"><a href="/feed.xml">RSS</a> · <a href="/sitemap.xml">Sitemap</a></p>`)
	buf.WriteString(`</footer>`)
}

func writeNewsletterForm(buf *bytes.Buffer, csrf string) {
	buf.WriteString(`<form class="newsletter-form" method="post" action="/newsletter/">`)
	buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrf) + `"/>`)
	buf.WriteString(`<label for="newsletter-email">Receba nossos conteúdos por e-mail</label>`)
	buf.WriteString(`<input id="newsletter-email" type="email" name="email" required placeholder="seu@email.com"/>`)
	buf.WriteString(`<button type="submit">Inscrever</button>`)
	buf.WriteString(`</form>`)
}
