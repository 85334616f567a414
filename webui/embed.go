// Package webui holds a minimal skeleton of the game front end, compiled into
// the binary so `spellstacks serve --embedded` works without a checkout.
package webui

import (
	"embed"
	"io/fs"
)

//go:embed web
var FS embed.FS

// Root returns the skeleton with web/ stripped, ready to serve at "/".
func Root() (fs.FS, error) {
	return fs.Sub(FS, "web")
}
