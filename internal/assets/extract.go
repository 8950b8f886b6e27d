package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// extract runs the post-download unpack step for an asset.
func (o *Orchestrator) extract(a *Asset) error {
	switch a.Extract {
	case "gunzip":
		return gunzipFile(a.Dest, a.ExtractDest)
	default:
		// Load rejects anything else.
		return fmt.Errorf("unknown extract method %q", a.Extract)
	}
}

// gunzipFile decompresses src into dest, going through a temporary file so
// dest never holds a truncated write.
func gunzipFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", src, err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("read gzip header of %s: %w", src, err)
	}
	defer zr.Close()

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	discard := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, zr); err != nil {
		discard()
		return fmt.Errorf("decompress %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		discard()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		discard()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit %s: %w", dest, err)
	}
	return nil
}
