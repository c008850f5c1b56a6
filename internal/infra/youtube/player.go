// Package youtube starts video playback in the user's browser.
package youtube

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"
)

var videoIDPattern = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)

// URLOpener hands a URL to whatever the desktop uses to open links.
type URLOpener func(ctx context.Context, target string) error

// Player looks up the first search result and opens it. When the lookup
// fails it falls back to opening the search results page.
type Player struct {
	baseURL    string
	httpClient *http.Client
	open       URLOpener
	logger     *slog.Logger
}

func NewPlayer(logger *slog.Logger) *Player {
	return NewPlayerWithURL("https://www.youtube.com", OpenBrowser, logger)
}

func NewPlayerWithURL(baseURL string, open URLOpener, logger *slog.Logger) *Player {
	return &Player{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		open:       open,
		logger:     logger,
	}
}

func (p *Player) Play(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("nothing to play")
	}

	searchURL := p.baseURL + "/results?search_query=" + url.QueryEscape(query)
	target := searchURL

	id, err := p.firstVideo(ctx, searchURL)
	if err != nil {
		p.logger.Warn("youtube lookup failed, opening search page", "query", query, "error", err)
	} else {
		target = p.baseURL + "/watch?v=" + id
	}

	p.logger.Info("playing", "query", query, "url", target)
	if err := p.open(ctx, target); err != nil {
		return fmt.Errorf("opening %s: %w", target, err)
	}
	return nil
}

func (p *Player) firstVideo(ctx context.Context, searchURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	m := videoIDPattern.FindSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("no video in results")
	}
	return string(m[1]), nil
}

// OpenBrowser opens target with the platform's default handler and returns
// once the handler has been launched.
func OpenBrowser(_ context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
