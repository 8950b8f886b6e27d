// Package catalog ships the built-in artifact and asset catalogues.
// Both are HCL documents; a -catalog flag replaces the asset catalogue
// with a user-supplied file.
package catalog

import "embed"

//go:embed artifacts.hcl assets.hcl
var FS embed.FS

// Built-in catalogue file names.
const (
	ArtifactsFile = "artifacts.hcl"
	AssetsFile    = "assets.hcl"
)
