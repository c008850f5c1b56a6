package application

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"voice-assistant/internal/domain"
)

var (
	byeWords  = map[string]bool{"bye": true, "goodbye": true, "bye-bye": true}
	jokeWords = map[string]bool{"joke": true, "jokes": true}
	wikiWords = map[string]bool{"who": true, "what": true, "about": true}
)

// KeywordParser maps an utterance to an action by keyword.
// Keywords are checked in a fixed order: play, time, joke, bye, weather, then
// the encyclopedia triggers who, what, and about.
type KeywordParser struct {
	wakeName string
}

func NewKeywordParser(wakeName string) *KeywordParser {
	return &KeywordParser{wakeName: strings.ToLower(wakeName)}
}

func (p *KeywordParser) Parse(_ context.Context, text string) (*domain.Command, error) {
	return ParseCommand(text, p.wakeName), nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}

// ParseCommand applies the keyword rules. The wake name, when present, is ignored.
func ParseCommand(text, wakeName string) *domain.Command {
	cmd := &domain.Command{Action: domain.ActionUnknown, RawText: text}

	var words []string
	for _, w := range tokenize(text) {
		if wakeName != "" && w == wakeName {
			continue
		}
		words = append(words, w)
	}

	switch {
	case slices.Contains(words, "play"):
		cmd.Action = domain.ActionPlay
		cmd.Argument = strings.Join(without(words, "play"), " ")
	case slices.Contains(words, "time"):
		cmd.Action = domain.ActionTime
	case containsAny(words, jokeWords):
		cmd.Action = domain.ActionJoke
	case containsAny(words, byeWords):
		cmd.Action = domain.ActionBye
	case slices.Contains(words, "weather"):
		cmd.Action = domain.ActionWeather
		cmd.Argument = after(words, "in")
	case containsAny(words, wikiWords):
		cmd.Action = domain.ActionWiki
		cmd.Argument = wikiTopic(words)
	}

	return cmd
}

// wikiTopic extracts X from "who is X", "what are X" and "tell me about X".
func wikiTopic(words []string) string {
	if len(words) > 0 && (words[0] == "who" || words[0] == "what") {
		if len(words) <= 2 {
			return ""
		}
		return strings.Join(words[2:], " ")
	}
	return after(words, "about")
}

func containsAny(words []string, set map[string]bool) bool {
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}

func without(words []string, drop string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != drop {
			out = append(out, w)
		}
	}
	return out
}

// after joins the words following the last occurrence of marker.
func after(words []string, marker string) string {
	for i := len(words) - 1; i >= 0; i-- {
		if words[i] == marker {
			return strings.Join(words[i+1:], " ")
		}
	}
	return ""
}
