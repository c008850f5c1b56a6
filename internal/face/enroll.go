package face

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"voice-assistant/internal/domain"
)

var ErrInvalidName = errors.New("invalid identity name")

// RemoveDiacritics removes diacritical marks from a string (e.g., "Zoë" -> "Zoe").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName turns a spoken name into a file-safe identity key.
// Punctuation that speech-to-text tends to append ("Bob.") is dropped, so the
// result never contains dots or path separators.
func NormalizeName(name string) string {
	name = strings.ToLower(RemoveDiacritics(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '\'':
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, name)
	return strings.Join(strings.Fields(name), " ")
}

// Enroller stores reference images for new identities.
type Enroller struct {
	dir    string
	logger *slog.Logger
}

func NewEnroller(dir string, logger *slog.Logger) *Enroller {
	return &Enroller{dir: dir, logger: logger}
}

// Enroll saves frame as the reference image for name, replacing any previous
// image with the same stem, and releases the frame's scratch file.
// It returns the stored identity key.
func (e *Enroller) Enroll(name string, frame *domain.CapturedFrame) (string, error) {
	key := NormalizeName(name)
	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if frame == nil || len(frame.Data) == 0 {
		return "", errors.New("enrolling without a captured frame")
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("creating reference dir: %w", err)
	}

	target := filepath.Join(e.dir, key+ExtensionFor(frame.Format))
	if err := e.removeStale(key, target); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(e.dir, ".enroll-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(frame.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing reference image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing reference image: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return "", fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("storing reference image: %w", err)
	}

	if err := frame.Release(); err != nil {
		e.logger.Warn("removing scratch frame", "path", frame.Path, "error", err)
	}

	e.logger.Info("identity enrolled", "name", key, "path", target)
	return key, nil
}

// removeStale deletes other reference images whose IdentityKey equals key,
// including hand-placed ones such as "Bob.jpg".
func (e *Enroller) removeStale(key, keep string) error {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return fmt.Errorf("reading reference dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsImageFile(entry.Name()) || IdentityKey(entry.Name()) != key {
			continue
		}
		path := filepath.Join(e.dir, entry.Name())
		if path == keep {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing stale reference %s: %w", path, err)
		}
		e.logger.Debug("removed stale reference", "path", path)
	}
	return nil
}
