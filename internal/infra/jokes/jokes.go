// Package jokes tells jokes from an embedded joke book.
package jokes

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed jokes.yaml
var defaultBook []byte

type book struct {
	Jokes []string `yaml:"jokes"`
}

// Book picks a random joke, never repeating the previous one when it has a choice.
type Book struct {
	mu    sync.Mutex
	jokes []string
	last  int
	pick  func(n int) int
}

func NewBook() (*Book, error) {
	return Parse(defaultBook)
}

// Load reads a joke book from path, or returns the embedded one when path is empty.
func Load(path string) (*Book, error) {
	if path == "" {
		return NewBook()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading joke book: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Book, error) {
	var b book
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing joke book: %w", err)
	}

	jokes := make([]string, 0, len(b.Jokes))
	for _, j := range b.Jokes {
		if j = strings.TrimSpace(j); j != "" {
			jokes = append(jokes, j)
		}
	}
	if len(jokes) == 0 {
		return nil, errors.New("joke book is empty")
	}

	return &Book{jokes: jokes, last: -1, pick: rand.IntN}, nil
}

// WithPicker replaces the random source, for tests.
func (b *Book) WithPicker(pick func(n int) int) *Book {
	b.pick = pick
	return b
}

func (b *Book) Len() int {
	return len(b.jokes)
}

func (b *Book) Joke() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.pick(len(b.jokes))
	if i == b.last && len(b.jokes) > 1 {
		i = (i + 1) % len(b.jokes)
	}
	b.last = i
	return b.jokes[i]
}
