// Package llm holds what the language-model command parsers share: the
// routing prompt and the decoding of the model's JSON reply.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"voice-assistant/internal/domain"
)

const SystemPrompt = `You route spoken requests for a personal voice assistant.
The assistant can only do these things:
- play: play a video or song on YouTube (argument: what to play)
- time: tell the current time
- joke: tell a joke
- bye: end the conversation
- weather: report current weather (argument: city name)
- wiki: read a one sentence encyclopedia summary (argument: topic)

If the request fits none of them, use action "unknown".

Respond ONLY with valid JSON (no markdown, no backticks):
{"action": "play|time|joke|bye|weather|wiki|unknown", "argument": "text or empty"}`

var knownActions = map[domain.Action]bool{
	domain.ActionPlay:    true,
	domain.ActionTime:    true,
	domain.ActionJoke:    true,
	domain.ActionBye:     true,
	domain.ActionWeather: true,
	domain.ActionWiki:    true,
}

type parsedCommand struct {
	Action   string `json:"action"`
	Argument string `json:"argument"`
}

// DecodeCommand parses a model reply, tolerating markdown fences. Actions the
// assistant cannot perform become domain.ActionUnknown.
func DecodeCommand(reply, text string) (*domain.Command, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var parsed parsedCommand
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return nil, fmt.Errorf("parsing command JSON (%s): %w", reply, err)
	}

	action := domain.Action(strings.ToLower(strings.TrimSpace(parsed.Action)))
	if !knownActions[action] {
		action = domain.ActionUnknown
	}

	return &domain.Command{
		Action:   action,
		Argument: strings.TrimSpace(parsed.Argument),
		RawText:  text,
	}, nil
}

// Completer sends one system prompt and user message to a language model and
// returns the text of its reply.
type Completer interface {
	Complete(ctx context.Context, system, message string) (string, error)
}

// Parser routes free-form requests through a language model.
type Parser struct {
	model Completer
}

func NewParser(model Completer) *Parser {
	return &Parser{model: model}
}

func (p *Parser) Parse(ctx context.Context, text string) (*domain.Command, error) {
	reply, err := p.model.Complete(ctx, SystemPrompt, text)
	if err != nil {
		return nil, err
	}
	return DecodeCommand(reply, text)
}
