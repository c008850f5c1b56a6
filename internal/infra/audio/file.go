package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"voice-assistant/internal/domain"
)

const processedSuffix = ".processed"

// FileSource treats a directory as an inbox. Recordings and .txt commands
// dropped there are consumed in name order and renamed with a .processed
// suffix, which also keeps them out of later scans.
type FileSource struct {
	dir  string
	poll time.Duration
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir, poll: 500 * time.Millisecond}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating inbox %s: %w", f.dir, err)
	}
	return nil
}

func (f *FileSource) Stop() error { return nil }

// NextCommand blocks until a command file appears or ctx ends.
func (f *FileSource) NextCommand(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		data, err := f.take()
		if err != nil || data != nil {
			return data, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// take consumes the first usable inbox file. Blank text files are consumed
// and skipped.
func (f *FileSource) take() ([]byte, error) {
	names, err := f.inbox()
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		path := filepath.Join(f.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := os.Rename(path, path+processedSuffix); err != nil {
			return nil, fmt.Errorf("marking %s processed: %w", path, err)
		}

		if !isTextCommand(name) {
			return data, nil
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return []byte(domain.TextCommandPrefix + text), nil
		}
	}
	return nil, nil
}

func (f *FileSource) inbox() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading inbox %s: %w", f.dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && (isTextCommand(e.Name()) || isRecording(e.Name())) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func isTextCommand(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".txt")
}

func isRecording(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".mp3", ".m4a", ".webm", ".ogg":
		return true
	}
	return false
}
