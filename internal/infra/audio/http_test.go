package audio_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/audio"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPSource_ReceiveAudio(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}
	defer source.Stop()

	testAudio := []byte("fake audio data for testing")

	go func() {
		time.Sleep(100 * time.Millisecond)
		source.InjectAudio(testAudio)
	}()

	received, err := source.NextCommand(ctx)
	if err != nil {
		t.Fatalf("receiving audio: %v", err)
	}

	if !bytes.Equal(received, testAudio) {
		t.Errorf("audio mismatch: got %d bytes, want %d bytes", len(received), len(testAudio))
	}
}

func TestHTTPSource_HandleAudioEndpoint(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", testLogger())
	handler := source.Handler()

	req := httptest.NewRequest(http.MethodPost, "/audio", bytes.NewReader([]byte("test audio content")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}

	req = httptest.NewRequest(http.MethodPost, "/audio", bytes.NewReader(nil))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status code: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHTTPSource_TextEndpoint(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantText    string
	}{
		{"plain text", "text/plain", "  what time is it  ", http.StatusAccepted, "what time is it"},
		{"json", "application/json; charset=utf-8", `{"text":"tell me a joke"}`, http.StatusAccepted, "tell me a joke"},
		{"invalid json", "application/json", `{"text":`, http.StatusBadRequest, ""},
		{"empty", "text/plain", "   ", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := audio.NewHTTPSource(":0", "", testLogger())

			req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			source.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusAccepted {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			data, err := source.NextCommand(ctx)
			if err != nil {
				t.Fatalf("NextCommand: %v", err)
			}
			if got := string(data); got != domain.TextCommandPrefix+tt.wantText {
				t.Errorf("queued: got %q, want %q", got, domain.TextCommandPrefix+tt.wantText)
			}
		})
	}
}

func TestHTTPSource_WebhookWithToken(t *testing.T) {
	authToken := "test-secret-token-123"
	source := audio.NewHTTPSource(":0", authToken, testLogger())
	handler := source.Handler()

	tests := []struct {
		name       string
		path       string
		token      string
		method     string
		wantStatus int
	}{
		{"valid token in header", "/webhook", authToken, "header", http.StatusAccepted},
		{"valid token in query", "/webhook", authToken, "query", http.StatusAccepted},
		{"invalid token", "/webhook", "wrong-token", "header", http.StatusUnauthorized},
		{"missing token", "/webhook", "", "header", http.StatusUnauthorized},
		{"text endpoint is guarded too", "/text", "", "header", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := bytes.NewReader([]byte("what time is it"))
			var req *http.Request

			if tt.method == "query" {
				req = httptest.NewRequest(http.MethodPost, tt.path+"?token="+tt.token, body)
			} else {
				req = httptest.NewRequest(http.MethodPost, tt.path, body)
				if tt.token != "" {
					req.Header.Set("X-Auth-Token", tt.token)
				}
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHTTPSource_Health(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status before start: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHTTPSource_ServesOnBoundAddr(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", testLogger())
	if err := source.Start(context.Background()); err != nil {
		t.Fatalf("starting source: %v", err)
	}
	defer source.Stop()

	resp, err := http.Get("http://" + source.Addr() + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status after start: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestHTTPSource_StopEndsNextCommand(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", testLogger())
	if err := source.Start(context.Background()); err != nil {
		t.Fatalf("starting source: %v", err)
	}
	if err := source.Stop(); err != nil {
		t.Fatalf("stopping source: %v", err)
	}

	if _, err := source.NextCommand(context.Background()); err == nil {
		t.Fatal("expected error after stop")
	}
}

func TestFileSource_LoadFromDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string][]byte{
		"command1.wav": []byte("RIFF....WAVEfmt audio data 1"),
		"command2.txt": []byte("  what time is it\n"),
		"notes.md":     []byte("ignored"),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), content, 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}
	}

	source := audio.NewFileSource(tmpDir)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	first, err := source.NextCommand(ctx)
	if err != nil {
		t.Fatalf("reading first command: %v", err)
	}
	if !bytes.Equal(first, files["command1.wav"]) {
		t.Errorf("first command: got %q", first)
	}

	second, err := source.NextCommand(ctx)
	if err != nil {
		t.Fatalf("reading second command: %v", err)
	}
	if got := string(second); got != domain.TextCommandPrefix+"what time is it" {
		t.Errorf("second command: got %q", got)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "command1.wav.processed")); err != nil {
		t.Errorf("processed marker missing: %v", err)
	}

	short, shortCancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer shortCancel()
	if _, err := source.NextCommand(short); err != context.DeadlineExceeded {
		t.Errorf("expected deadline with no new files, got %v", err)
	}
}
