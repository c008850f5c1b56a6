package face

import (
	"context"
	"fmt"
	"log/slog"

	"voice-assistant/internal/domain"
)

// Matcher decides which registered identity, if any, a captured face belongs to.
type Matcher struct {
	encoder   Encoder
	metric    Metric
	tolerance float64
	logger    *slog.Logger
}

func NewMatcher(encoder Encoder, metric Metric, tolerance float64, logger *slog.Logger) *Matcher {
	if metric == nil {
		metric = EuclideanDistance
	}
	return &Matcher{
		encoder:   encoder,
		metric:    metric,
		tolerance: tolerance,
		logger:    logger,
	}
}

// Match encodes the first face in frame and compares it against reg.
func (m *Matcher) Match(ctx context.Context, frame *domain.CapturedFrame, reg *Registry) (domain.MatchResult, error) {
	if reg.Len() == 0 {
		return domain.MatchResult{Kind: domain.MatchRegistryEmpty}, nil
	}

	faces, err := m.encoder.Encode(ctx, frame.Data)
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("encoding captured frame: %w", err)
	}
	if len(faces) == 0 {
		// Capture only hands out frames with a face, so this is a detector disagreement.
		m.logger.Warn("no face in captured frame", "camera", frame.CameraIndex)
		return domain.MatchResult{Kind: domain.MatchNoFaceDetected}, nil
	}
	if len(faces) > 1 {
		m.logger.Debug("several faces in frame, using the first", "faces", len(faces))
	}

	if faces[0].Embedding.Dim() != reg.Dim() {
		return domain.MatchResult{}, fmt.Errorf("%w: probe has %d, registry has %d",
			ErrDimensionMismatch, faces[0].Embedding.Dim(), reg.Dim())
	}

	result := m.MatchEmbedding(faces[0].Embedding, reg)
	m.logger.Info("match result", "kind", result.Kind, "name", result.Name, "distance", result.Distance)
	return result, nil
}

// MatchEmbedding returns the nearest registered identity provided at least one
// entry is within tolerance. Equal distances resolve to the first entry in
// registry order.
func (m *Matcher) MatchEmbedding(probe domain.Embedding, reg *Registry) domain.MatchResult {
	entries := reg.Entries()
	if len(entries) == 0 {
		return domain.MatchResult{Kind: domain.MatchRegistryEmpty}
	}

	distances := make([]float64, len(entries))
	plausible := false
	for i, e := range entries {
		distances[i] = m.metric(probe, e.Embedding)
		if distances[i] <= m.tolerance {
			plausible = true
		}
	}

	best := 0
	for i := 1; i < len(distances); i++ {
		if distances[i] < distances[best] {
			best = i
		}
	}

	if !plausible {
		return domain.MatchResult{Kind: domain.MatchNoMatch, Distance: distances[best]}
	}
	return domain.Identified(entries[best].Name, distances[best])
}
