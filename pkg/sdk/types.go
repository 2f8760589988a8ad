package pilotprefs

import (
	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
)

// MatchMode selects how message tokens are matched against the vocabulary.
type MatchMode = preference.MatchMode

// Match modes.
const (
	MatchToken  = preference.MatchToken
	MatchPhrase = preference.MatchPhrase
)

// Preferences are the vocabulary terms found in one message.
type Preferences struct {
	Locations []string
	Amenities []string
}

// Profile is the preference view of one caller's profile document.
type Profile struct {
	AppID               string
	CallerID            string
	PreferredLocations  []string
	AmenitiesOfInterest []string
}
