// Package templates embeds the HTML views rendered by internal/handler.
package templates

import "embed"

// FS holds base.html, one file per page view, and netscape.html.
//
//go:embed *.html
var FS embed.FS
