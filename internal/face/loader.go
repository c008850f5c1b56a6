package face

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stem returns the identity name encoded in a reference file name: everything before the first dot.
func Stem(filename string) string {
	base := filepath.Base(filename)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// IdentityKey is the registry key for a reference file: its stem, normalized
// the same way enrolled names are, so "Bob.jpg" and an enrolled "bob" agree.
func IdentityKey(filename string) string {
	return NormalizeName(Stem(filename))
}

// Loader rebuilds a Registry from a directory of reference images.
type Loader struct {
	dir     string
	encoder Encoder
	logger  *slog.Logger

	// Progress, when set, is called once per reference file after it is processed.
	Progress func(path string)
}

func NewLoader(dir string, encoder Encoder, logger *slog.Logger) *Loader {
	return &Loader{
		dir:     dir,
		encoder: encoder,
		logger:  logger,
	}
}

func (l *Loader) Dir() string {
	return l.dir
}

// Files lists reference images in name order. A missing directory is created.
func (l *Loader) Files() ([]string, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating reference dir: %w", err)
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading reference dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsImageFile(entry.Name()) {
			continue
		}
		if IdentityKey(entry.Name()) == "" {
			continue
		}
		files = append(files, filepath.Join(l.dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Load reads every reference image and keys its first face embedding by
// IdentityKey. Images without a detectable face are skipped. When two files
// share a key the first in name order wins.
func (l *Loader) Load(ctx context.Context) (*Registry, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := l.loadOne(ctx, reg, path)
		if l.Progress != nil {
			l.Progress(path)
		}
		if err != nil {
			if errors.Is(err, ErrDimensionMismatch) {
				return nil, err
			}
			l.logger.Warn("skipping reference image", "path", path, "error", err)
		}
	}

	l.logger.Debug("registry loaded", "dir", l.dir, "identities", reg.Len(), "files", len(files))
	return reg, nil
}

func (l *Loader) loadOne(ctx context.Context, reg *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	data, err = ToJPEG(data)
	if err != nil {
		return err
	}

	faces, err := l.encoder.Encode(ctx, data)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if len(faces) == 0 {
		return errors.New("no face detected")
	}

	return reg.Add(IdentityKey(path), faces[0].Embedding)
}
