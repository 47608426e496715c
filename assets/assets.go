// Package assets embeds the map viewer sources.
package assets

import _ "embed"

//go:embed index.html.tpl
var IndexTemplate string

//go:embed script.js
var Script string

//go:embed style.css
var Style string
