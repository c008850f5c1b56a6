package audio

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"voice-assistant/internal/domain"
)

const (
	maxAudioBytes = 10 * 1024 * 1024
	maxTextBytes  = 4096
	queueSize     = 10
)

// HTTPSource accepts recorded utterances or typed commands over HTTP.
// Typed commands are queued with domain.TextCommandPrefix so they skip
// speech-to-text.
type HTTPSource struct {
	addr    string
	token   string
	logger  *slog.Logger
	mux     *http.ServeMux
	limiter *RateLimiter
	queue   chan []byte

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	closed   sync.Once
}

func NewHTTPSource(addr, token string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:    addr,
		token:   token,
		logger:  logger,
		mux:     http.NewServeMux(),
		limiter: NewRateLimiter(30, time.Minute),
		queue:   make(chan []byte, queueSize),
	}
	h.mux.HandleFunc("POST /audio", h.guard(h.postAudio))
	h.mux.HandleFunc("POST /text", h.guard(h.postText))
	// Phone shortcuts and chat bots post plain text here.
	h.mux.HandleFunc("POST /webhook", h.guard(h.postText))
	h.mux.HandleFunc("GET /health", h.health)
	return h
}

func (h *HTTPSource) Name() string { return "http" }

// Handler exposes the routes without a listener, for tests and embedding.
func (h *HTTPSource) Handler() http.Handler { return h.mux }

// Addr reports the bound address once started, or the configured one.
func (h *HTTPSource) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener != nil {
		return h.listener.Addr().String()
	}
	return h.addr
}

// Start binds the listener before returning so address conflicts surface
// here rather than in a background goroutine.
func (h *HTTPSource) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.server != nil {
		return nil
	}

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.addr, err)
	}

	srv := &http.Server{
		Handler:      h.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	h.server = srv
	h.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("command server stopped", "error", err)
		}
	}()

	h.logger.Info("command server listening", "addr", ln.Addr().String())
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	srv := h.server
	h.server = nil
	h.listener = nil
	h.mu.Unlock()

	var err error
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", shutdownErr)
			err = srv.Close()
		}
	}

	h.closed.Do(func() { close(h.queue) })
	return err
}

func (h *HTTPSource) NextCommand(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data, ok := <-h.queue:
		if !ok {
			return nil, errors.New("command source stopped")
		}
		return data, nil
	}
}

// InjectAudio queues data as if it had been posted. It is dropped when the
// queue is full.
func (h *HTTPSource) InjectAudio(data []byte) {
	select {
	case h.queue <- data:
	default:
		h.logger.Warn("command queue full, dropping injected audio", "bytes", len(data))
	}
}

func (h *HTTPSource) guard(next http.HandlerFunc) http.HandlerFunc {
	return h.limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			h.logger.Warn("unauthorized command request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	})
}

// authorized accepts the token from the X-Auth-Token header or the token
// query parameter.
func (h *HTTPSource) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	got := r.Header.Get("X-Auth-Token")
	if got == "" {
		got = r.URL.Query().Get("token")
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func (h *HTTPSource) postAudio(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		h.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	if !h.offer(w, data) {
		return
	}
	h.logger.Info("audio received", "bytes", len(data))
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "bytes": len(data)})
}

// postText accepts text/plain or a JSON object {"text": "..."}.
func (h *HTTPSource) postText(w http.ResponseWriter, r *http.Request) {
	text, err := readText(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.offer(w, []byte(domain.TextCommandPrefix+text)) {
		return
	}
	h.logger.Info("text command received", "path", r.URL.Path, "text", text)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "received", "text": text})
}

func (h *HTTPSource) offer(w http.ResponseWriter, data []byte) bool {
	select {
	case h.queue <- data:
		return true
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return false
	}
}

func (h *HTTPSource) health(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	running := h.server != nil
	h.mu.Unlock()

	status, code := "ok", http.StatusOK
	if !running {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"running":    running,
		"queue_size": len(h.queue),
	})
}

func readText(r *http.Request) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxTextBytes))
	if err != nil {
		return "", errors.New("failed to read body")
	}

	text := string(data)
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return "", errors.New("invalid json")
		}
		text = body.Text
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty text")
	}
	return text, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
