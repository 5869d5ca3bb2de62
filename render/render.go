// Package render builds the HTML fragments returned by the gateway.
package render

import (
	"fmt"
	"html"
	"net/http"
	"strings"
)

// RenderList wraps each item in <li> and the whole in <ul>, in input order.
// Items are written verbatim, markup included.
func RenderList(items []string) string {
	return renderList(items, false)
}

func renderList(items []string, escape bool) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		if escape {
			item = html.EscapeString(item)
		}
		b.WriteString("<li>")
		b.WriteString(item)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// Renderer renders list fragments with optional escaping of item text.
// EscapeItems false gives the legacy unescaped output of RenderList.
type Renderer struct {
	EscapeItems bool
}

// List renders items as an unordered list
func (r Renderer) List(items []string) string {
	return renderList(items, r.EscapeItems)
}

// FallbackNotFoundPage is served when the not-found page file is unreadable
const FallbackNotFoundPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Not Found</title></head>
<body><h1>Page not found</h1><p><a href="/">Back to search</a></p></body>
</html>
`

// ErrorPage is the generic page for 4xx/5xx outcomes. It never carries the
// underlying error text.
func ErrorPage(status int) string {
	text := http.StatusText(status)
	if text == "" {
		text = "Error"
	}
	var detail string
	switch {
	case status == http.StatusBadRequest:
		detail = "The request is missing a required query parameter."
	case status == http.StatusBadGateway:
		detail = "The drug information service could not be reached. Please try again later."
	case status >= 500:
		detail = "Something went wrong while handling the request."
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%d %s</title></head>
<body><h1>%d %s</h1><p>%s</p><p><a href="/">Back to search</a></p></body>
</html>
`, status, text, status, text, detail)
}
