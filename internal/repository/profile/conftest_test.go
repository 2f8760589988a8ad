package profile

import (
	"context"
	"testing"

	"github.com/kailas-cloud/pilotprefs/internal/db"
	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonGetFn    func(ctx context.Context, key string, paths ...string) ([]byte, error)
	arrayUnionFn func(ctx context.Context, key string, unions []db.ArrayUnion) (int64, error)
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) JSONArrayUnion(ctx context.Context, key string, unions []db.ArrayUnion) (int64, error) {
	if m.arrayUnionFn != nil {
		return m.arrayUnionFn(ctx, key, unions)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "pilot:"), ms
}

func testRef(t *testing.T) domprofile.Ref {
	t.Helper()
	ref, err := domprofile.NewRef("hotelApp", "u1")
	if err != nil {
		t.Fatalf("NewRef: %v", err)
	}
	return ref
}
