// Package output delivers assembled mock headers to their
// destinations. File writes are idempotent: content is compared before
// writing so unchanged mocks do not touch timestamps that build
// systems track for recompilation.
package output

import (
	"io"
	"os"
	"path/filepath"

	"github.com/jordfras/mocksmith/internal/errs"
)

// Mode selects how rendered mocks map onto artifacts.
type Mode int

const (
	// ModeStdout prints one combined header to standard output.
	ModeStdout Mode = iota
	// ModePerHeader writes one file per source header into a directory.
	ModePerHeader
	// ModeCombined writes all mocks into a single file.
	ModeCombined
)

func (m Mode) String() string {
	switch m {
	case ModePerHeader:
		return "per-header"
	case ModeCombined:
		return "combined"
	default:
		return "stdout"
	}
}

// Artifact is one destination with its final assembled content. An
// empty Path means stdout.
type Artifact struct {
	Path    string
	Content string
}

// Writer delivers artifacts to disk or to the configured stream.
type Writer struct {
	// AlwaysWrite skips the content comparison and writes every file.
	AlwaysWrite bool

	// CreateDirs creates missing parent directories of target files.
	// When false a missing directory is an error.
	CreateDirs bool

	// Stdout receives artifacts with no path. Defaults to os.Stdout.
	Stdout io.Writer
}

// Write delivers one artifact and reports whether bytes went out. A
// file whose current content already matches is left untouched unless
// AlwaysWrite is set.
func (w *Writer) Write(a Artifact) (bool, error) {
	if a.Path == "" {
		out := w.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := io.WriteString(out, a.Content); err != nil {
			return false, errs.FileSystem(err, "Failed to write mocks to stdout")
		}
		return true, nil
	}
	return w.writeFile(a.Path, a.Content)
}

func (w *Writer) writeFile(path, content string) (bool, error) {
	dir := filepath.Dir(path)
	if w.CreateDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, errs.FileSystem(err, "Failed to create output directory %s", dir)
		}
	} else if _, err := os.Stat(dir); err != nil {
		return false, errs.FileSystem(err, "Output directory %s does not exist", dir)
	}

	if !w.AlwaysWrite {
		if existing, err := os.ReadFile(path); err == nil && string(existing) == content {
			return false, nil
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, errs.FileSystem(err, "Failed to write mock header file %s", path)
	}
	return true, nil
}
