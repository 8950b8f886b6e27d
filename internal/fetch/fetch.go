// Package fetch implements the download primitive of the acquisition
// pipeline: bounded-retry HTTP retrieval with optional integrity checking.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bootforge/bootforge/internal/ctxlog"
)

// Task describes one file to retrieve.
type Task struct {
	Name     string
	URL      string
	Dest     string
	Required bool
	SHA256   string      // expected hex digest; empty skips the check
	Mode     os.FileMode // final file mode; zero means 0644
}

// Retry policy. Failures are expected to be transient network blips, so a
// small fixed budget with a fixed delay is enough; sustained outages should
// fail fast rather than back off for minutes.
const (
	DefaultAttempts = 3
	DefaultDelay    = 2 * time.Second
)

// IntegrityError reports a checksum mismatch after an otherwise successful
// transfer. To the caller it is indistinguishable from a transfer failure:
// either way the asset is not usable.
type IntegrityError struct {
	URL  string
	Want string
	Got  string
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.URL, e.Want, e.Got)
}

// Fetcher retrieves files over HTTP with a fixed retry budget.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Delay    time.Duration
}

// New returns a Fetcher with the default retry policy.
func New() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 10 * time.Minute},
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Fetch retrieves the task's URL to its destination path. Each attempt
// streams to a scratch file next to the destination; the destination is
// only ever replaced atomically after a fully verified transfer, so an
// exhausted retry budget leaves no partial file behind.
func (f *Fetcher) Fetch(ctx context.Context, task Task) error {
	logger := ctxlog.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= f.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := f.attempt(ctx, task)
		if err == nil {
			if attempt > 1 {
				logger.Info("Download succeeded after retry.", "name", task.Name, "attempt", attempt)
			}
			return nil
		}
		lastErr = err
		logger.Warn("Download attempt failed.", "name", task.Name, "url", task.URL, "attempt", attempt, "error", err)

		if attempt < f.Attempts {
			if err := sleep(ctx, f.Delay); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("giving up on %s after %d attempts: %w", task.URL, f.Attempts, lastErr)
}

// attempt performs a single transfer to a scratch file and commits it on
// success.
func (f *Fetcher) attempt(ctx context.Context, task Task) error {
	dir := filepath.Dir(task.Dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", task.URL, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", task.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get %s: unexpected status %s", task.URL, resp.Status)
	}

	scratch, err := os.CreateTemp(dir, "."+filepath.Base(task.Dest)+".partial-")
	if err != nil {
		return fmt.Errorf("create scratch file in %s: %w", dir, err)
	}
	scratchName := scratch.Name()
	discard := func() {
		scratch.Close()
		os.Remove(scratchName)
	}

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(scratch, hasher), resp.Body); err != nil {
		discard()
		return fmt.Errorf("transfer %s: %w", task.URL, err)
	}

	if task.SHA256 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, task.SHA256) {
			discard()
			return &IntegrityError{URL: task.URL, Want: strings.ToLower(task.SHA256), Got: got}
		}
	}

	if err := scratch.Sync(); err != nil {
		discard()
		return fmt.Errorf("sync %s: %w", scratchName, err)
	}
	mode := task.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := scratch.Chmod(mode); err != nil {
		discard()
		return fmt.Errorf("chmod %s: %w", scratchName, err)
	}
	if err := scratch.Close(); err != nil {
		os.Remove(scratchName)
		return fmt.Errorf("close %s: %w", scratchName, err)
	}
	if err := os.Rename(scratchName, task.Dest); err != nil {
		os.Remove(scratchName)
		return fmt.Errorf("commit %s: %w", task.Dest, err)
	}
	return nil
}

// sleep waits for the inter-retry delay, honoring cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
