package face

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"voice-assistant/internal/domain"
)

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrEmptyEmbedding    = errors.New("empty embedding")
)

type Entry struct {
	Name      string
	Embedding domain.Embedding
}

// Registry maps identity names to reference embeddings.
// All embeddings share one dimension, fixed by the first entry.
// Iteration is in ascending name order.
type Registry struct {
	dim     int
	entries []Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(name string, emb domain.Embedding) error {
	if emb.Dim() == 0 {
		return fmt.Errorf("%w for %q", ErrEmptyEmbedding, name)
	}
	if r.dim != 0 && emb.Dim() != r.dim {
		return fmt.Errorf("%w: %q has %d, registry has %d", ErrDimensionMismatch, name, emb.Dim(), r.dim)
	}

	i, found := slices.BinarySearchFunc(r.entries, name, func(e Entry, target string) int {
		return strings.Compare(e.Name, target)
	})
	if found {
		return fmt.Errorf("%w: %q", ErrDuplicateIdentity, name)
	}

	r.entries = slices.Insert(r.entries, i, Entry{Name: name, Embedding: emb})
	r.dim = emb.Dim()
	return nil
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Dim is zero until the first entry is added.
func (r *Registry) Dim() int {
	return r.dim
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

func (r *Registry) Lookup(name string) (domain.Embedding, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e.Embedding, true
		}
	}
	return domain.Embedding{}, false
}

// Entries returns a copy of the entries in iteration order.
func (r *Registry) Entries() []Entry {
	return slices.Clone(r.entries)
}
