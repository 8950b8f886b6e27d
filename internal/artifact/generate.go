package artifact

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/bootforge/bootforge/internal/ctxlog"
	"github.com/bootforge/bootforge/internal/fsutil"
	"github.com/bootforge/bootforge/internal/template"
)

// Permission profiles for committed artifacts.
const (
	configMode os.FileMode = 0o644
	scriptMode os.FileMode = 0o755
)

// Generator renders the artifact catalogue and commits the results.
type Generator struct {
	Templates fs.FS // template documents, addressed by file name
}

// Generate renders every artifact and commits all of them, or commits
// nothing if any render fails.
//
// Rendering is a pure function of the variable bindings, so the run is
// split into two phases: render everything in memory first, then commit
// each artifact with temp-file-and-rename. A render failure therefore
// aborts before a single byte reaches a destination path, and artifacts
// committed by prior runs stay untouched. Re-running with unchanged input
// produces byte-identical files.
func (g *Generator) Generate(ctx context.Context, artifacts []*Artifact, vars template.Vars) error {
	logger := ctxlog.FromContext(ctx)

	type rendered struct {
		artifact *Artifact
		data     []byte
	}

	out := make([]rendered, 0, len(artifacts))
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := fs.ReadFile(g.Templates, a.Template)
		if err != nil {
			return fmt.Errorf("read template for artifact %s: %w", a.Name, err)
		}
		text, err := template.Render(string(doc), vars)
		if err != nil {
			return fmt.Errorf("render artifact %s: %w", a.Name, err)
		}
		out = append(out, rendered{artifact: a, data: []byte(text)})
		logger.Debug("Artifact rendered.", "name", a.Name, "bytes", len(text))
	}

	for _, r := range out {
		if err := ctx.Err(); err != nil {
			return err
		}
		mode := configMode
		if r.artifact.Executable {
			mode = scriptMode
		}
		if err := fsutil.WriteFileAtomic(r.artifact.Dest, r.data, mode); err != nil {
			return fmt.Errorf("commit artifact %s: %w", r.artifact.Name, err)
		}
		logger.Info("Artifact written.", "name", r.artifact.Name, "dest", r.artifact.Dest)
	}

	return nil
}
