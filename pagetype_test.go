package psiweb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want PageType
	}{
		{
			name: "site root",
			path: "/",
			want: PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "blog root",
			path: "/blog",
			want: PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "blog root trailing slash",
			path: "/blog/",
			want: PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "article",
			path: "/blog/lidando-com-a-ansiedade/",
			want: PageType{Kind: PageArticle, EmitBlogSchema: false, EmitBreadcrumb: true},
		},
		{
			name: "article without trailing slash",
			path: "/blog/lidando-com-a-ansiedade",
			want: PageType{Kind: PageArticle, EmitBlogSchema: false, EmitBreadcrumb: true},
		},
		{
			name: "category",
			path: "/blog/categoria/ansiedade/",
			want: PageType{Kind: PageCategory, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "category english alias",
			path: "/blog/category/ansiedade/",
			want: PageType{Kind: PageCategory, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "tag",
			path: "/blog/tags/terapia/",
			want: PageType{Kind: PageTag, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "search sub-route is not an article",
			path: "/blog/busca/",
			want: PageType{Kind: PageOther, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "archive sub-route is not an article",
			path: "/blog/arquivo/",
			want: PageType{Kind: PageOther, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "feed sub-route is not an article",
			path: "/blog/feed",
			want: PageType{Kind: PageOther, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "path outside blog root falls back to home",
			path: "/sobre/",
			want: PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "unrecognized nested shape falls back to home",
			path: "/blog/foo/bar/baz/",
			want: PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "empty segment under blog root is not an article",
			path: "/blog//",
			want: PageType{Kind: PageHome, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
		{
			name: "query string is ignored",
			path: "/blog/lidando-com-a-ansiedade/?utm_source=news",
			want: PageType{Kind: PageArticle, EmitBlogSchema: false, EmitBreadcrumb: true},
		},
		{
			name: "uppercase path is normalized",
			path: "/Blog/Categoria/Ansiedade/",
			want: PageType{Kind: PageCategory, EmitBlogSchema: true, EmitBreadcrumb: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyPath(tt.path)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.EmitBlogSchema, got.EmitBlogSchema)
			assert.Equal(t, tt.want.EmitBreadcrumb, got.EmitBreadcrumb)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

// Every single segment directly under the blog root that is not a
// reserved sub-route classifies as an article.
func TestClassifyPathSingleSegmentIsArticle(t *testing.T) {
	for _, slug := range []string{"a", "terapia-de-casal", "10-sinais-de-burnout"} {
		got := ClassifyPath("/blog/" + slug + "/")
		assert.Equal(t, PageArticle, got.Kind, "slug %q", slug)
		assert.False(t, got.EmitBlogSchema, "slug %q", slug)
	}
}

func TestClassifyPathNeverPanicsOnOddInput(t *testing.T) {
	for _, p := range []string{"", "   ", "///", "/blog//", "?", "/blog/#frag"} {
		got := ClassifyPath(p)
		assert.NotEmpty(t, got.Kind, "path %q", p)
	}
}
