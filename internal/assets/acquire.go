package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bootforge/bootforge/internal/ctxlog"
	"github.com/bootforge/bootforge/internal/fetch"
	"github.com/bootforge/bootforge/internal/fsutil"
)

// placeholderName is the instructions file written into directories whose
// content must be supplied by the operator.
const placeholderName = "README-PLACE-MEDIA-HERE.txt"

// Orchestrator drives the acquisition pipeline over a bounded worker pool.
type Orchestrator struct {
	Fetcher *fetch.Fetcher
	Workers int
}

// result is the outcome of one asset task.
type result struct {
	asset   *Asset
	err     error
	skipped bool // never attempted: the pipeline aborted first
}

// Acquire builds the directory skeleton, runs every download task, and
// normalizes permissions over everything the pipeline owns.
//
// A required task failure cancels the run: workers stop picking up queued
// tasks and the aggregate error lists every required task that failed or
// was not attempted. Optional failures are logged and do not affect the
// outcome.
func (o *Orchestrator) Acquire(ctx context.Context, cat *Catalog) error {
	logger := ctxlog.FromContext(ctx)

	if err := o.buildSkeleton(ctx, cat); err != nil {
		return err
	}

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan *Asset, len(cat.Assets))
	results := make(chan result, len(cat.Assets))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			o.worker(runCtx, workerID, tasks, results, cancel)
		}(i)
	}
	for _, a := range cat.Assets {
		tasks <- a
	}
	close(tasks)
	wg.Wait()
	close(results)

	var failures []string
	succeeded := 0
	for r := range results {
		switch {
		case r.err == nil:
			succeeded++
		case !r.asset.Required:
			// already logged by the worker
		case r.skipped:
			failures = append(failures, fmt.Sprintf("%s: not attempted, pipeline aborted", r.asset.Name))
		default:
			failures = append(failures, fmt.Sprintf("%s: %v", r.asset.Name, r.err))
		}
	}

	if err := o.normalize(cat); err != nil {
		return err
	}

	if len(failures) > 0 {
		sort.Strings(failures)
		return fmt.Errorf("asset acquisition failed:\n  - %s", strings.Join(failures, "\n  - "))
	}
	logger.Info("Asset acquisition complete.", "fetched", succeeded, "total", len(cat.Assets))
	return nil
}

// worker is the processing loop for a single download worker.
func (o *Orchestrator) worker(ctx context.Context, workerID int, tasks <-chan *Asset, results chan<- result, cancel context.CancelFunc) {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)

	for a := range tasks {
		if ctx.Err() != nil {
			results <- result{asset: a, err: ctx.Err(), skipped: true}
			continue
		}

		logger.Debug("Worker picked up asset.", "name", a.Name)
		err := o.Fetcher.Fetch(ctx, taskFor(a))
		if err != nil {
			if a.Required {
				logger.Error("Required asset failed.", "name", a.Name, "error", err)
				cancel()
			} else {
				logger.Warn("Optional asset failed; continuing.", "name", a.Name, "error", err)
			}
			results <- result{asset: a, err: err}
			continue
		}

		if a.Extract != "" {
			// Extraction failure is a warning: the diagnostic tool is a
			// convenience, and the fetched archive stays on disk.
			if xerr := o.extract(a); xerr != nil {
				logger.Warn("Extraction failed; archive kept.", "name", a.Name, "error", xerr)
			}
		}
		results <- result{asset: a}
	}
}

// taskFor converts a catalogue entry into a download task.
func taskFor(a *Asset) fetch.Task {
	mode := os.FileMode(0o644)
	if a.Executable {
		mode = 0o755
	}
	return fetch.Task{
		Name:     a.Name,
		URL:      a.URL,
		Dest:     a.Dest,
		Required: a.Required,
		SHA256:   a.SHA256,
		Mode:     mode,
	}
}

// buildSkeleton materializes the directory tree and the instructions
// placeholders for user-supplied media.
func (o *Orchestrator) buildSkeleton(ctx context.Context, cat *Catalog) error {
	logger := ctxlog.FromContext(ctx)

	for _, d := range cat.Directories {
		if err := os.MkdirAll(d.Path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", d.Path, err)
		}
		if d.Placeholder == "" {
			continue
		}
		dest := filepath.Join(d.Path, placeholderName)
		if err := fsutil.WriteFileAtomic(dest, []byte(d.Placeholder), 0o644); err != nil {
			return fmt.Errorf("write placeholder for %s: %w", d.Name, err)
		}
		logger.Debug("Placeholder written.", "dir", d.Path)
	}
	for _, a := range cat.Assets {
		dir := filepath.Dir(a.Dest)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// normalize makes every directory of the skeleton traversable and
// re-asserts the file mode of every asset present on disk. Files owned by
// the generation pipeline are left alone.
func (o *Orchestrator) normalize(cat *Catalog) error {
	for _, d := range cat.Directories {
		if err := fsutil.NormalizeDirs(d.Path); err != nil {
			return err
		}
	}
	for _, a := range cat.Assets {
		if err := os.Chmod(filepath.Dir(a.Dest), 0o755); err != nil {
			return fmt.Errorf("chmod %s: %w", filepath.Dir(a.Dest), err)
		}
		mode := os.FileMode(0o644)
		if a.Executable {
			mode = 0o755
		}
		if err := os.Chmod(a.Dest, mode); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("chmod %s: %w", a.Dest, err)
		}
	}
	return nil
}
