package youtube_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"voice-assistant/internal/infra/youtube"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPlayer_PlaysFirstResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results" || r.URL.Query().Get("search_query") != "lofi hip hop" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<script>var ytInitialData = {"contents":[{"videoRenderer":{"videoId":"jfKfPfyJRdk"}},{"videoRenderer":{"videoId":"5qap5aO4i9A"}}]};</script>`))
	}))
	defer server.Close()

	var opened string
	player := youtube.NewPlayerWithURL(server.URL, func(_ context.Context, target string) error {
		opened = target
		return nil
	}, testLogger())

	if err := player.Play(context.Background(), "lofi hip hop"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if opened != server.URL+"/watch?v=jfKfPfyJRdk" {
		t.Errorf("opened %q", opened)
	}
}

func TestPlayer_FallsBackToSearchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>consent required</html>`))
	}))
	defer server.Close()

	var opened string
	player := youtube.NewPlayerWithURL(server.URL, func(_ context.Context, target string) error {
		opened = target
		return nil
	}, testLogger())

	if err := player.Play(context.Background(), "never gonna give you up"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if opened != server.URL+"/results?search_query=never+gonna+give+you+up" {
		t.Errorf("opened %q", opened)
	}
}

func TestPlayer_Errors(t *testing.T) {
	boom := errors.New("no browser")
	player := youtube.NewPlayerWithURL("http://127.0.0.1:0", func(context.Context, string) error { return boom }, testLogger())

	if err := player.Play(context.Background(), "  "); err == nil {
		t.Error("expected error for empty query")
	}
	if err := player.Play(context.Background(), "song"); !errors.Is(err, boom) {
		t.Errorf("expected opener error, got %v", err)
	}
}
