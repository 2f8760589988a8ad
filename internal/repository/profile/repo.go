package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/pilotprefs/internal/db"
	"github.com/kailas-cloud/pilotprefs/internal/domain"
	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
)

// store is the consumer interface for profiles (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONArrayUnion(ctx context.Context, key string, unions []db.ArrayUnion) (int64, error)
}

// Repo implements usecase/preference.ProfileRepository.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a profile repository. keyPrefix is prepended to every document path.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// UnionPreferences union-appends matched preferences onto the caller's profile in one write.
// Both array fields are always part of the update, as with a Firestore arrayUnion pair.
func (r *Repo) UnionPreferences(ctx context.Context, ref domprofile.Ref, prefs preference.Preferences) error {
	key := r.key(ref)
	_, err := r.store.JSONArrayUnion(ctx, key, []db.ArrayUnion{
		{Path: domprofile.FieldPreferredLocations, Values: prefs.Locations},
		{Path: domprofile.FieldAmenitiesOfInterest, Values: prefs.Amenities},
	})
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("update %s: %w", key, domain.ErrProfileNotFound)
		}
		return fmt.Errorf("update %s: %w", key, err)
	}
	return nil
}

// Get returns the preference view of the caller's profile.
func (r *Repo) Get(ctx context.Context, ref domprofile.Ref) (domprofile.Profile, error) {
	key := r.key(ref)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprofile.Profile{}, domain.ErrProfileNotFound
		}
		return domprofile.Profile{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseProfile(ref, raw)
}

func (r *Repo) key(ref domprofile.Ref) string {
	return r.keyPrefix + ref.Path()
}
