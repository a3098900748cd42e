package psiweb

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render streams a view component as a 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus streams a view component with the given status code. The
// component writes directly to the response, so the status must be
// decided before rendering starts.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	res.WriteHeader(code)
	return cmp.Render(c.Request().Context(), res.Writer)
}
