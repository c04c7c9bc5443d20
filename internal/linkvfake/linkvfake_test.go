package linkvfake_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/lattice-systems/distnode/internal/linkvfake"
)

func TestReadMissingKey(t *testing.T) {
	s := linkvfake.New()
	if _, ok := s.Read("root"); ok {
		t.Fatal("expected missing key")
	}
}

func TestCASCreatesWhenAbsent(t *testing.T) {
	s := linkvfake.New()
	to := json.RawMessage(`{"1":[100]}`)
	if err := s.CAS("root", json.RawMessage(`{}`), to, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := s.Read("root")
	if !ok || string(got) != string(to) {
		t.Fatalf("expected %s, got %s (ok=%v)", to, got, ok)
	}
}

func TestCASRejectsMissingKeyWithoutCreate(t *testing.T) {
	s := linkvfake.New()
	err := s.CAS("root", json.RawMessage(`{}`), json.RawMessage(`{}`), false)
	if !errors.Is(err, linkvfake.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestCASRejectsStaleFrom(t *testing.T) {
	s := linkvfake.New()
	if err := s.CAS("root", json.RawMessage(`{}`), json.RawMessage(`{"1":[1]}`), true); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	// A conflicting writer commits {"1":[1,2]} based on the same base value.
	if err := s.CAS("root", json.RawMessage(`{"1":[1]}`), json.RawMessage(`{"1":[1,2]}`), false); err != nil {
		t.Fatalf("first writer: %v", err)
	}
	// A second writer still holding the stale base must be refused.
	err := s.CAS("root", json.RawMessage(`{"1":[1]}`), json.RawMessage(`{"1":[1,3]}`), false)
	if !errors.Is(err, linkvfake.ErrCasMismatch) {
		t.Fatalf("expected ErrCasMismatch, got %v", err)
	}
	got, _ := s.Read("root")
	if string(got) != `{"1":[1,2]}` {
		t.Fatalf("expected winner's value to stick, got %s", got)
	}
}

func TestCASToleratesKeyOrderingDifferences(t *testing.T) {
	s := linkvfake.New()
	if err := s.CAS("root", json.RawMessage(`{}`), json.RawMessage(`{"1":[1],"2":[2]}`), true); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	// Same value, different key order: compare-and-swap compares by
	// decoded structure, not raw bytes.
	reordered := json.RawMessage(`{"2":[2],"1":[1]}`)
	if err := s.CAS("root", reordered, json.RawMessage(`{"1":[1],"2":[2],"3":[3]}`), false); err != nil {
		t.Fatalf("expected reordered-key match to succeed: %v", err)
	}
}
