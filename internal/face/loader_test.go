package face_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"voice-assistant/internal/face"
)

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice.jpg", "alice"},
		{"/faces/bob.png", "bob"},
		{"mary.jane.jpeg", "mary"},
		{"noext", "noext"},
		{".hidden.jpg", ""},
	}

	for _, tt := range tests {
		if got := face.Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "alice.jpg"), 8, 8, "jpeg")
	writeImage(t, filepath.Join(dir, "bob.png"), 16, 12, "png")
	writeImage(t, filepath.Join(dir, "ghost.jpg"), 2, 2, "jpeg") // no face
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	loader := face.NewLoader(dir, &sizeModel{}, testLogger())
	var progressed []string
	loader.Progress = func(path string) {
		progressed = append(progressed, filepath.Base(path))
	}

	reg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := reg.Names(), []string{"alice", "bob"}; !slices.Equal(got, want) {
		t.Errorf("names: got %v, want %v", got, want)
	}

	bob, _ := reg.Lookup("bob")
	if bob.At(0) != 16 || bob.At(1) != 12 {
		t.Errorf("bob embedding: got %v, want [16 12]", bob.Values())
	}

	if want := []string{"alice.jpg", "bob.png", "ghost.jpg"}; !slices.Equal(progressed, want) {
		t.Errorf("progress: got %v, want %v", progressed, want)
	}
}

func TestLoader_DuplicateStemFirstWins(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "bob.jpg"), 8, 8, "jpeg")
	writeImage(t, filepath.Join(dir, "bob.png"), 16, 16, "png")

	reg, err := face.NewLoader(dir, &sizeModel{}, testLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if reg.Len() != 1 {
		t.Fatalf("len: got %d, want 1", reg.Len())
	}
	bob, _ := reg.Lookup("bob")
	if bob.At(0) != 8 {
		t.Errorf("bob should come from bob.jpg, got %v", bob.Values())
	}
}

func TestLoader_NormalizesKeys(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "Zoë.jpg"), 8, 8, "jpeg")
	writeImage(t, filepath.Join(dir, "Mary Ann.png"), 16, 16, "png")

	reg, err := face.NewLoader(dir, &sizeModel{}, testLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := reg.Names(), []string{"mary ann", "zoe"}; !slices.Equal(got, want) {
		t.Errorf("names: got %v, want %v", got, want)
	}
}

func TestLoader_MissingDirIsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "faces")

	reg, err := face.NewLoader(dir, &sizeModel{}, testLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("len: got %d, want 0", reg.Len())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("reference dir not created: %v", err)
	}
}

func TestToJPEG(t *testing.T) {
	jpg := encodeImage(t, 4, 4, "jpeg")
	out, err := face.ToJPEG(jpg)
	if err != nil {
		t.Fatalf("ToJPEG(jpeg): %v", err)
	}
	if &out[0] != &jpg[0] {
		t.Error("jpeg input should be returned unchanged")
	}

	out, err = face.ToJPEG(encodeImage(t, 4, 4, "png"))
	if err != nil {
		t.Fatalf("ToJPEG(png): %v", err)
	}
	if len(out) < 2 || out[0] != 0xFF || out[1] != 0xD8 {
		t.Error("png input was not converted to jpeg")
	}

	if _, err := face.ToJPEG([]byte("garbage")); err == nil {
		t.Error("expected error for non-image input")
	}
}
