package profile

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/pilotprefs/internal/db"
	"github.com/kailas-cloud/pilotprefs/internal/domain"
	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
)

const testKey = "pilot:artifacts/hotelApp/public/data/user_profiles/u1"

func TestUnionPreferences_SingleWriteBothFields(t *testing.T) {
	repo, ms := newTestRepo(t)

	calls := 0
	var gotKey string
	var gotUnions []db.ArrayUnion
	ms.arrayUnionFn = func(_ context.Context, key string, unions []db.ArrayUnion) (int64, error) {
		calls++
		gotKey = key
		gotUnions = unions
		return 2, nil
	}

	err := repo.UnionPreferences(context.Background(), testRef(t), preference.Preferences{
		Amenities: []string{"wi-fi", "pool"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected one write, got %d", calls)
	}
	if gotKey != testKey {
		t.Errorf("key: got %q, want %q", gotKey, testKey)
	}
	want := []db.ArrayUnion{
		{Path: "preferences.preferred_locations"},
		{Path: "preferences.amenities_of_interest", Values: []string{"wi-fi", "pool"}},
	}
	if !reflect.DeepEqual(gotUnions, want) {
		t.Errorf("unions: got %+v, want %+v", gotUnions, want)
	}
}

func TestUnionPreferences_MissingProfile(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.arrayUnionFn = func(context.Context, string, []db.ArrayUnion) (int64, error) {
		return 0, db.ErrKeyNotFound
	}

	err := repo.UnionPreferences(context.Background(), testRef(t), preference.Preferences{
		Locations: []string{"rome"},
	})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUnionPreferences_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	storeErr := &db.Error{Op: db.OpEval, Err: errors.New("NOPERM")}
	ms.arrayUnionFn = func(context.Context, string, []db.ArrayUnion) (int64, error) {
		return 0, storeErr
	}

	err := repo.UnionPreferences(context.Background(), testRef(t), preference.Preferences{
		Locations: []string{"rome"},
	})
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
	if errors.Is(err, domain.ErrProfileNotFound) {
		t.Error("store error must not map to ErrProfileNotFound")
	}
}

func TestGet_Success(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, key string, paths ...string) ([]byte, error) {
		if key != testKey {
			t.Errorf("key: got %q", key)
		}
		if len(paths) != 1 || paths[0] != "$" {
			t.Errorf("paths: got %v", paths)
		}
		return []byte(`[{"name":"Ann","preferences":{"preferred_locations":["rome"],"amenities_of_interest":["spa","gym"]}}]`), nil
	}

	p, err := repo.Get(context.Background(), testRef(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p.PreferredLocations, []string{"rome"}) {
		t.Errorf("locations: got %v", p.PreferredLocations)
	}
	if !reflect.DeepEqual(p.AmenitiesOfInterest, []string{"spa", "gym"}) {
		t.Errorf("amenities: got %v", p.AmenitiesOfInterest)
	}
	if p.Ref.CallerID() != "u1" {
		t.Errorf("ref: got %+v", p.Ref)
	}
}

func TestGet_NoPreferences(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`[{"name":"Ann"}]`), nil
	}

	p, err := repo.Get(context.Background(), testRef(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PreferredLocations == nil || len(p.PreferredLocations) != 0 {
		t.Errorf("locations: got %#v, want empty slice", p.PreferredLocations)
	}
	if p.AmenitiesOfInterest == nil || len(p.AmenitiesOfInterest) != 0 {
		t.Errorf("amenities: got %#v, want empty slice", p.AmenitiesOfInterest)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), testRef(t))
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestGet_InvalidJSON(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`not json`), nil
	}

	if _, err := repo.Get(context.Background(), testRef(t)); err == nil {
		t.Fatal("expected decode error")
	}
}
