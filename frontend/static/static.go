// Package static embeds the portal's script and stylesheet.
package static

import "embed"

//go:embed *.js *.css
var FS embed.FS
