// Package preference extracts location and amenity preferences from free text.
package preference

import (
	"fmt"
	"strings"
)

// MatchMode selects how tokens are tested against the vocabulary.
type MatchMode string

const (
	// MatchToken tests each space-separated token on its own.
	// Multi-word entries such as "new york" can never match.
	MatchToken MatchMode = "token"
	// MatchPhrase also tests runs of consecutive tokens joined by a single space.
	MatchPhrase MatchMode = "phrase"
)

// ParseMatchMode validates a configured match mode. Empty means MatchPhrase.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case "":
		return MatchPhrase, nil
	case MatchToken, MatchPhrase:
		return MatchMode(s), nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Preferences holds matched vocabulary entries in first-seen order, without duplicates.
type Preferences struct {
	Locations []string
	Amenities []string
}

// Empty reports whether nothing matched.
func (p Preferences) Empty() bool {
	return len(p.Locations) == 0 && len(p.Amenities) == 0
}

// Extractor matches message tokens against a Vocabulary.
type Extractor struct {
	vocab *Vocabulary
	mode  MatchMode
}

// NewExtractor creates an Extractor. A nil vocab uses DefaultVocabulary.
func NewExtractor(vocab *Vocabulary, mode MatchMode) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if mode == "" {
		mode = MatchPhrase
	}
	return &Extractor{vocab: vocab, mode: mode}
}

// Mode returns the configured match mode.
func (e *Extractor) Mode() MatchMode { return e.mode }

// Extract lowercases message, splits it on single spaces and collects vocabulary hits.
// Punctuation is not stripped: "pool," does not match "pool".
func (e *Extractor) Extract(message string) Preferences {
	tokens := strings.Split(strings.ToLower(message), " ")

	maxWords := 1
	if e.mode == MatchPhrase {
		maxWords = e.vocab.MaxWords()
	}

	var p Preferences
	seenLoc := make(map[string]struct{})
	seenAm := make(map[string]struct{})

	for i := range tokens {
		for n := 1; n <= maxWords && i+n <= len(tokens); n++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if term == "" {
				continue
			}
			if e.vocab.IsLocation(term) {
				if _, ok := seenLoc[term]; !ok {
					seenLoc[term] = struct{}{}
					p.Locations = append(p.Locations, term)
				}
			}
			if e.vocab.IsAmenity(term) {
				if _, ok := seenAm[term]; !ok {
					seenAm[term] = struct{}{}
					p.Amenities = append(p.Amenities, term)
				}
			}
		}
	}
	return p
}
