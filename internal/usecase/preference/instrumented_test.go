package preference

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
	"github.com/kailas-cloud/pilotprefs/internal/metrics"
)

func TestInstrumentedRepository_RecordsWritten(t *testing.T) {
	ref := mustRef(t, "hotelApp", "u1")
	repo := NewInstrumentedRepository(newMemoryProfiles(ref), zap.NewNop())

	before := testutil.ToFloat64(metrics.ProfileWritesTotal.WithLabelValues("written"))
	err := repo.UnionPreferences(context.Background(), ref, preference.Preferences{Amenities: []string{"spa"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := testutil.ToFloat64(metrics.ProfileWritesTotal.WithLabelValues("written"))
	if after != before+1 {
		t.Errorf("written: got %f, want %f", after, before+1)
	}
}

func TestInstrumentedRepository_RecordsError(t *testing.T) {
	ref := mustRef(t, "hotelApp", "u1")
	inner := newMemoryProfiles(ref)
	inner.err = errors.New("boom")
	repo := NewInstrumentedRepository(inner, zap.NewNop())

	before := testutil.ToFloat64(metrics.ProfileWritesTotal.WithLabelValues("error"))
	err := repo.UnionPreferences(context.Background(), ref, preference.Preferences{Amenities: []string{"spa"}})
	if !errors.Is(err, inner.err) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	after := testutil.ToFloat64(metrics.ProfileWritesTotal.WithLabelValues("error"))
	if after != before+1 {
		t.Errorf("error: got %f, want %f", after, before+1)
	}
}

func TestInstrumentedRepository_GetPassesThrough(t *testing.T) {
	ref := mustRef(t, "hotelApp", "u1")
	repo := NewInstrumentedRepository(newMemoryProfiles(ref), zap.NewNop())

	p, err := repo.Get(context.Background(), ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Ref.Path() != ref.Path() {
		t.Errorf("ref: got %q", p.Ref.Path())
	}
}
