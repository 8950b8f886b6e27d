// Package assets implements the acquisition pipeline: it materializes the
// serving directory skeleton and downloads the catalogue of boot loader
// and OS assets with bounded concurrency.
package assets

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/bootforge/bootforge/catalog"
)

// Asset is one download task of the asset catalogue.
type Asset struct {
	Name        string `hcl:"name,label"`
	URL         string `hcl:"url"`
	Dest        string `hcl:"dest"`
	Required    bool   `hcl:"required,optional"`
	Executable  bool   `hcl:"executable,optional"`
	SHA256      string `hcl:"sha256,optional"`
	Extract     string `hcl:"extract,optional"`
	ExtractDest string `hcl:"extract_dest,optional"`
}

// Directory is a skeleton entry of the serving tree. A directory with a
// placeholder holds user-supplied media; the placeholder text is written
// as an instructions file instead of treating the missing media as an
// error.
type Directory struct {
	Name        string `hcl:"name,label"`
	Path        string `hcl:"path"`
	Placeholder string `hcl:"placeholder,optional"`
}

// Catalog is the decoded asset catalogue.
type Catalog struct {
	Assets      []*Asset
	Directories []*Directory
}

// catalogFile is the top-level structure of the catalogue document.
type catalogFile struct {
	Assets      []*Asset     `hcl:"asset,block"`
	Directories []*Directory `hcl:"directory,block"`
}

// Vars are the variables catalogue expressions are evaluated against.
type Vars struct {
	TFTPRoot     string
	HTTPRoot     string
	BootMirror   string
	DebianMirror string
	ServerIP     string
}

// Load decodes the asset catalogue at path, or the built-in default when
// path is empty.
func Load(path string, vars Vars) (*Catalog, error) {
	var (
		src      []byte
		filename string
		err      error
	)
	if path == "" {
		filename = catalog.AssetsFile
		src, err = catalog.FS.ReadFile(filename)
	} else {
		filename = path
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read asset catalogue: %w", err)
	}
	return decode(src, filename, vars)
}

func decode(src []byte, filename string, vars Vars) (*Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse asset catalogue %s: %w", filename, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"tftp_root":     cty.StringVal(vars.TFTPRoot),
			"http_root":     cty.StringVal(vars.HTTPRoot),
			"boot_mirror":   cty.StringVal(vars.BootMirror),
			"debian_mirror": cty.StringVal(vars.DebianMirror),
			"server_ip":     cty.StringVal(vars.ServerIP),
		},
	}

	var cf catalogFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &cf); diags.HasErrors() {
		return nil, fmt.Errorf("decode asset catalogue %s: %w", filename, diags)
	}

	for _, a := range cf.Assets {
		switch a.Extract {
		case "":
			// no post-processing
		case "gunzip":
			if a.ExtractDest == "" {
				return nil, fmt.Errorf("asset %s: extract requires extract_dest", a.Name)
			}
		default:
			return nil, fmt.Errorf("asset %s: unknown extract method %q", a.Name, a.Extract)
		}
	}
	if len(cf.Assets) == 0 {
		return nil, fmt.Errorf("asset catalogue %s declares no assets", filename)
	}

	return &Catalog{Assets: cf.Assets, Directories: cf.Directories}, nil
}
