// Package artifact implements the generation pipeline: it renders the
// fixed catalogue of configuration artifacts from templates and commits
// them to their canonical paths atomically.
package artifact

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/bootforge/bootforge/catalog"
)

// Artifact is one entry of the artifact catalogue.
type Artifact struct {
	Name       string `hcl:"name,label"`
	Template   string `hcl:"template"`
	Dest       string `hcl:"dest"`
	Executable bool   `hcl:"executable,optional"`
}

// catalogFile is the top-level structure of the artifact catalogue document.
type catalogFile struct {
	Artifacts []*Artifact `hcl:"artifact,block"`
}

// Roots are the serving roots that catalogue destinations are evaluated
// against.
type Roots struct {
	TFTPRoot string
	HTTPRoot string
}

// LoadCatalog decodes the built-in artifact catalogue, evaluating the
// destination expressions against the given roots.
func LoadCatalog(roots Roots) ([]*Artifact, error) {
	src, err := catalog.FS.ReadFile(catalog.ArtifactsFile)
	if err != nil {
		return nil, fmt.Errorf("read built-in artifact catalogue: %w", err)
	}
	return decodeCatalog(src, catalog.ArtifactsFile, roots)
}

func decodeCatalog(src []byte, filename string, roots Roots) ([]*Artifact, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse artifact catalogue %s: %w", filename, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"tftp_root": cty.StringVal(roots.TFTPRoot),
			"http_root": cty.StringVal(roots.HTTPRoot),
		},
	}

	var cf catalogFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &cf); diags.HasErrors() {
		return nil, fmt.Errorf("decode artifact catalogue %s: %w", filename, diags)
	}
	if len(cf.Artifacts) == 0 {
		return nil, fmt.Errorf("artifact catalogue %s declares no artifacts", filename)
	}
	return cf.Artifacts, nil
}
