package app

import (
	"fmt"
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var Template = `
<html>
  <head>
    <title>%s | HushMap</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <meta name="description" content="%s">
    <meta name="referrer" content="no-referrer"/>
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Montserrat:wght@300;400;600&display=swap" rel="stylesheet">
    <style>
      body { margin: 0; font-family: Montserrat, sans-serif; color: #222; }
      #head { padding: 12px 16px; border-bottom: 1px solid #e0e0e0; display: flex; justify-content: space-between; }
      #brand a { color: #2e7d32; font-weight: 600; text-decoration: none; }
      #nav a { color: #444; margin-left: 12px; text-decoration: none; }
      #content { padding: 16px; }
      .text-muted { color: #666; }
      .text-error { color: #c62828; }
    </style>
  </head>
  <body>
    <div id="head">
      <div id="brand">
        <a href="/">HushMap</a>
      </div>
      <div id="nav">
        <a href="/map">Map</a>
        <a href="/api">API</a>
      </div>
    </div>
    <div id="container">
      <div id="content">%s</div>
    </div>
  </body>
</html>
`

// Render a markdown document as html
func Render(md []byte) []byte {
	// create markdown parser with extensions
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(md)

	// create HTML renderer with extensions
	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}

// RenderHTML renders the given html in a template
func RenderHTML(title, desc, html string) string {
	return fmt.Sprintf(Template, title, desc, html)
}

// RenderString renders a markdown string as html
func RenderString(v string) string {
	return string(Render([]byte(v)))
}

// RenderTemplate renders a markdown string in a html template
func RenderTemplate(title string, desc, text string) string {
	return fmt.Sprintf(Template, title, desc, RenderString(text))
}

func ServeHTML(html string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	})
}
