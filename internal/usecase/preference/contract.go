package preference

import (
	"context"

	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
)

// ProfileRepository defines the document store contract for user profiles.
// UnionPreferences must be atomic and idempotent: values already present are not appended again.
type ProfileRepository interface {
	UnionPreferences(ctx context.Context, ref domprofile.Ref, prefs preference.Preferences) error
	Get(ctx context.Context, ref domprofile.Ref) (domprofile.Profile, error)
}

// Extractor derives preferences from a free-text message.
type Extractor interface {
	Extract(message string) preference.Preferences
}
