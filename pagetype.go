package psiweb

import "strings"

// BlogRoot is the path prefix under which all blog content is served.
const BlogRoot = "/blog"

// PageKind is the coarse classification of a rendered page.
type PageKind string

const (
	PageHome     PageKind = "home"
	PageArticle  PageKind = "article"
	PageCategory PageKind = "category"
	PageTag      PageKind = "tag"
	PageOther    PageKind = "other"
)

// PageType is the classifier result. EmitBlogSchema and EmitBreadcrumb
// tell the views which JSON-LD blocks a page should carry; Reason
// records which rule fired, for the request log.
type PageType struct {
	Kind           PageKind
	EmitBlogSchema bool
	EmitBreadcrumb bool
	Reason         string
}

// Sub-routes under the blog root that are not articles. Portuguese
// routes are canonical; English aliases are kept for old inbound links.
var nonArticleRoutes = []string{
	"busca", "search",
	"arquivo", "archive",
	"sobre", "about",
	"contato", "contact",
	"rss", "feed",
	"sitemap",
}

// ClassifyPath decides which structured-data blocks a page emits from
// its URL path alone. An article page suppresses the Blog block so it
// does not also claim to be the blog index; every page keeps the
// breadcrumb. Classification never fails: unrecognized shapes fall back
// to home semantics, which render every block.
func ClassifyPath(path string) PageType {
	p := strings.ToLower(strings.TrimSpace(path))
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSuffix(p, "/")

	if p == "" || p == BlogRoot {
		return PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true, Reason: "blog root"}
	}

	rest, ok := strings.CutPrefix(p, BlogRoot+"/")
	if !ok {
		return PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true, Reason: "path outside blog root, rendering all schemas"}
	}
	if rest == "" {
		return PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true, Reason: "empty segment under blog root, rendering all schemas"}
	}

	head, tail, nested := strings.Cut(rest, "/")
	for _, r := range nonArticleRoutes {
		if head == r {
			return PageType{Kind: PageOther, EmitBlogSchema: true, EmitBreadcrumb: true, Reason: "non-article sub-route " + head}
		}
	}

	switch head {
	case "categoria", "category":
		return PageType{Kind: PageCategory, EmitBlogSchema: true, EmitBreadcrumb: true, Reason: "category listing"}
	case "tags", "tag":
		return PageType{Kind: PageTag, EmitBlogSchema: true, EmitBreadcrumb: true, Reason: "tag listing"}
	}

	if !nested || tail == "" {
		return PageType{Kind: PageArticle, EmitBlogSchema: false, EmitBreadcrumb: true, Reason: "single segment under blog root"}
	}

	return PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true, Reason: "unrecognized path shape, rendering all schemas"}
}
