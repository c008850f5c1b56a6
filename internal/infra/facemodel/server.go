package facemodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra"
)

const defaultServerURL = "http://localhost:8000"

// ServerModel detects and embeds faces through an HTTP embedding server
// exposing POST /embed/face.
type ServerModel struct {
	baseURL   string
	client    *http.Client
	tolerance float64
	minScore  float64
	retry     infra.RetryConfig
}

type ServerConfig struct {
	URL       string
	Tolerance float64
	// MinScore drops detections the server is unsure about.
	MinScore float64
	Timeout  time.Duration
}

func NewServerModel(cfg ServerConfig) *ServerModel {
	if cfg.URL == "" {
		cfg.URL = defaultServerURL
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ServerModel{
		baseURL:   strings.TrimSuffix(cfg.URL, "/"),
		client:    &http.Client{Timeout: cfg.Timeout},
		tolerance: cfg.Tolerance,
		minScore:  cfg.MinScore,
		retry:     infra.DefaultRetryConfig(),
	}
}

func (m *ServerModel) Name() string {
	return "server"
}

func (m *ServerModel) Tolerance() float64 {
	return m.tolerance
}

type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

func (m *ServerModel) Detect(ctx context.Context, img []byte) ([]image.Rectangle, error) {
	faces, err := m.Encode(ctx, img)
	if err != nil {
		return nil, err
	}
	regions := make([]image.Rectangle, len(faces))
	for i, f := range faces {
		regions[i] = f.Region
	}
	return regions, nil
}

func (m *ServerModel) Encode(ctx context.Context, img []byte) ([]domain.Face, error) {
	var resp faceResponse
	err := infra.WithRetry(ctx, m.retry, func() error {
		body, err := m.post(ctx, "/embed/face", img)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return infra.Permanent(fmt.Errorf("parsing response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	faces := make([]domain.Face, 0, len(resp.Faces))
	for _, det := range resp.Faces {
		if len(det.Embedding) == 0 || det.DetScore < m.minScore {
			continue
		}
		faces = append(faces, domain.Face{
			Region:    bboxToRect(det.BBox),
			Embedding: domain.NewEmbedding(det.Embedding),
		})
	}
	return faces, nil
}

func (m *ServerModel) post(ctx context.Context, endpoint string, img []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", http.DetectContentType(img))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, infra.Permanent(fmt.Errorf("creating form file: %w", err))
	}
	if _, err := part.Write(img); err != nil {
		return nil, infra.Permanent(fmt.Errorf("writing image: %w", err))
	}
	if err := writer.Close(); err != nil {
		return nil, infra.Permanent(fmt.Errorf("closing writer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+endpoint, &buf)
	if err != nil {
		return nil, infra.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("embedding server error %d: %s", resp.StatusCode, string(body))
		if infra.IsRetryableHTTPStatus(resp.StatusCode) {
			return nil, apiErr
		}
		return nil, infra.Permanent(apiErr)
	}
	return body, nil
}

func bboxToRect(bbox []float64) image.Rectangle {
	if len(bbox) < 4 {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Round(bbox[0])), int(math.Round(bbox[1])),
		int(math.Round(bbox[2])), int(math.Round(bbox[3])),
	)
}
