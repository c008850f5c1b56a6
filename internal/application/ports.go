package application

import (
	"context"

	"voice-assistant/internal/domain"
)

type Speaker interface {
	Say(ctx context.Context, text string) error
}

// WeatherService returns current conditions for a city as speakable lines.
type WeatherService interface {
	Current(ctx context.Context, city string) ([]string, error)
}

// Encyclopedia returns a short summary for a topic, or domain.ErrNotFound.
type Encyclopedia interface {
	Summary(ctx context.Context, topic string) (string, error)
}

// VideoPlayer starts playback and returns without waiting for it to finish.
type VideoPlayer interface {
	Play(ctx context.Context, query string) error
}

type JokeTeller interface {
	Joke() string
}

type FaceIdentifier interface {
	// Probe returns the index of the first responsive camera or domain.ErrNoCamera.
	Probe(ctx context.Context) (int, error)
	Identify(ctx context.Context) (domain.MatchResult, *domain.CapturedFrame, error)
}

type FaceEnroller interface {
	Enroll(name string, frame *domain.CapturedFrame) (string, error)
}
