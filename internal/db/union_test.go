package db

import (
	"reflect"
	"strings"
	"testing"
)

func TestArrayUnionArgs(t *testing.T) {
	args, err := ArrayUnionArgs([]ArrayUnion{
		{Path: "preferences.preferred_locations"},
		{Path: "preferences.amenities_of_interest", Values: []string{"wi-fi", "pool"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"2",
		"$.preferences.preferred_locations", "0",
		"$.preferences.amenities_of_interest", "2", `"wi-fi"`, `"pool"`,
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("got %q, want %q", args, want)
	}
}

func TestArrayUnionArgs_EscapesValues(t *testing.T) {
	args, err := ArrayUnionArgs([]ArrayUnion{{Path: "tags", Values: []string{`say "hi"`}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args[3] != `"say \"hi\""` {
		t.Errorf("got %q", args[3])
	}
}

func TestArrayUnionArgs_InvalidPath(t *testing.T) {
	for _, p := range []string{"", "preferences.", ".x", "a..b"} {
		if _, err := ArrayUnionArgs([]ArrayUnion{{Path: p}}); err == nil {
			t.Errorf("path %q: expected error", p)
		}
	}
}

// Behavior against a live server is covered by the integration-tagged tests in goredis.
func TestArrayUnionScript_ReplacesWrongTypes(t *testing.T) {
	for _, guard := range []string{
		"root[1] ~= 'object'",
		"t[1] ~= 'object' then\n        redis.call('JSON.SET', KEYS[1], prefix, '{}')",
		"t[1] ~= 'array' then\n    redis.call('JSON.SET', KEYS[1], path, '[]')",
	} {
		if !strings.Contains(ArrayUnionScript, guard) {
			t.Errorf("script lacks %q", guard)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpEval, Err: ErrKeyNotFound}
	if err.Error() != "EVAL: db: key not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if err.Unwrap() != ErrKeyNotFound {
		t.Error("expected Unwrap to return wrapped error")
	}
}
