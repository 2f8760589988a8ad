package preference

import "strings"

// Vocabulary is an immutable pair of lowercase token sets.
type Vocabulary struct {
	locations map[string]struct{}
	amenities map[string]struct{}
	maxWords  int
}

var defaultVocabulary = NewVocabulary(
	[]string{"new york", "london", "paris", "tokyo", "sydney", "rome", "dubai", "rio"},
	[]string{
		"wi-fi", "pool", "gym", "restaurant", "bar", "spa", "lounge",
		"conference room", "room service", "laundry",
	},
)

// DefaultVocabulary returns the process-wide location and amenity vocabulary.
func DefaultVocabulary() *Vocabulary { return defaultVocabulary }

// NewVocabulary builds a Vocabulary. Entries are lowercased; empty entries are skipped.
func NewVocabulary(locations, amenities []string) *Vocabulary {
	v := &Vocabulary{
		locations: make(map[string]struct{}, len(locations)),
		amenities: make(map[string]struct{}, len(amenities)),
		maxWords:  1,
	}
	v.add(v.locations, locations)
	v.add(v.amenities, amenities)
	return v
}

func (v *Vocabulary) add(set map[string]struct{}, entries []string) {
	for _, e := range entries {
		e = strings.ToLower(e)
		if e == "" {
			continue
		}
		set[e] = struct{}{}
		if n := len(strings.Split(e, " ")); n > v.maxWords {
			v.maxWords = n
		}
	}
}

// IsLocation reports whether term is a known location.
func (v *Vocabulary) IsLocation(term string) bool {
	_, ok := v.locations[term]
	return ok
}

// IsAmenity reports whether term is a known amenity.
func (v *Vocabulary) IsAmenity(term string) bool {
	_, ok := v.amenities[term]
	return ok
}

// MaxWords returns the word count of the longest entry.
func (v *Vocabulary) MaxWords() int { return v.maxWords }
