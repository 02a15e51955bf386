package web

import (
	"html/template"

	"github.com/russross/blackfriday/v2"
)

// markdownFlags drop raw HTML and images from model output and keep links
// to safe schemes.
const markdownFlags = blackfriday.Safelink |
	blackfriday.SkipHTML |
	blackfriday.SkipImages |
	blackfriday.NofollowLinks |
	blackfriday.NoreferrerLinks |
	blackfriday.HrefTargetBlank

// renderMarkdown renders model text as HTML for the result panel.
func renderMarkdown(text string) template.HTML {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: markdownFlags})
	out := blackfriday.Run([]byte(text), blackfriday.WithRenderer(renderer))
	return template.HTML(out)
}
