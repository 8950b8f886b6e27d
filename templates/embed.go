// Package templates ships the built-in artifact template documents.
// Passing -templates replaces the whole set with a directory on disk.
package templates

import "embed"

//go:embed *.tmpl
var FS embed.FS
