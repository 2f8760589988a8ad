package profile

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pilotprefs/internal/domain"
)

// Field paths inside a profile document.
const (
	FieldPreferredLocations  = "preferences.preferred_locations"
	FieldAmenitiesOfInterest = "preferences.amenities_of_interest"
)

// Ref addresses one caller's profile inside one tenant.
type Ref struct {
	appID    string
	callerID string
}

// NewRef validates both path segments. A segment must be non-empty and free of "/".
func NewRef(appID, callerID string) (Ref, error) {
	if appID == "" || callerID == "" {
		return Ref{}, fmt.Errorf("appId and caller id are required: %w", domain.ErrInvalidArgument)
	}
	if strings.Contains(appID, "/") {
		return Ref{}, fmt.Errorf("appId %q contains a path separator: %w", appID, domain.ErrInvalidArgument)
	}
	if strings.Contains(callerID, "/") {
		return Ref{}, fmt.Errorf("caller id contains a path separator: %w", domain.ErrInvalidArgument)
	}
	return Ref{appID: appID, callerID: callerID}, nil
}

// AppID returns the tenant id.
func (r Ref) AppID() string { return r.appID }

// CallerID returns the profile owner.
func (r Ref) CallerID() string { return r.callerID }

// Path returns the hierarchical document path.
func (r Ref) Path() string {
	return "artifacts/" + r.appID + "/public/data/user_profiles/" + r.callerID
}

// Profile is the preference view of a user profile document.
type Profile struct {
	Ref                 Ref
	PreferredLocations  []string
	AmenitiesOfInterest []string
}
