package profile

import (
	"encoding/json"
	"fmt"

	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
)

type profileDoc struct {
	Preferences struct {
		PreferredLocations  []string `json:"preferred_locations"`
		AmenitiesOfInterest []string `json:"amenities_of_interest"`
	} `json:"preferences"`
}

// parseProfile decodes a JSON.GET "$" reply, which wraps the document in an array.
func parseProfile(ref domprofile.Ref, raw []byte) (domprofile.Profile, error) {
	var docs []profileDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domprofile.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	var d profileDoc
	if len(docs) > 0 {
		d = docs[0]
	}
	return domprofile.Profile{
		Ref:                 ref,
		PreferredLocations:  nonNil(d.Preferences.PreferredLocations),
		AmenitiesOfInterest: nonNil(d.Preferences.AmenitiesOfInterest),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
