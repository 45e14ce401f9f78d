package importer

import (
	"errors"
	"fmt"
	"testing"
)

func TestKeySet(t *testing.T) {
	s := newKeySet("a", "b")

	if !s.has("a") || !s.has("b") {
		t.Error("seeded keys missing")
	}
	if s.has("c") {
		t.Error("unexpected key present")
	}

	s.addAll([]string{"c", "d"})
	if !s.hasAny([]string{"x", "d"}) {
		t.Error("hasAny should match on any key")
	}
	if s.hasAny([]string{"x", "y"}) {
		t.Error("hasAny matched nothing")
	}
	if s.hasAny(nil) {
		t.Error("hasAny(nil) should be false")
	}
}

func TestIdentityKeys(t *testing.T) {
	if emailKey(" Jane@Acme.COM ") != emailKey("jane@acme.com") {
		t.Error("email keys should be case and whitespace insensitive")
	}
	if nameKey("Copper Pipe") != nameKey("  copper pipe  ") {
		t.Error("name keys should be case and whitespace insensitive")
	}
	if nameZipKey("Acme", "94110") == nameZipKey("Acme", "94111") {
		t.Error("different zips must produce different keys")
	}
	if nameZipKey("Acme", "") != nameZipKey("ACME", "") {
		t.Error("name+zip keys should fold case")
	}
}

func TestCustomerKeys(t *testing.T) {
	withEmail := customerKeys(Customer{Name: "Acme", Email: "x@y.com", Zip: "94110"})
	if len(withEmail) != 2 {
		t.Fatalf("expected 2 keys with email, got %v", withEmail)
	}
	if withEmail[0] != emailKey("x@y.com") || withEmail[1] != nameZipKey("Acme", "94110") {
		t.Errorf("unexpected keys: %v", withEmail)
	}

	withoutEmail := customerKeys(Customer{Name: "Acme", Zip: "94110"})
	if len(withoutEmail) != 1 || withoutEmail[0] != nameZipKey("Acme", "94110") {
		t.Errorf("expected name+zip key only, got %v", withoutEmail)
	}
}

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrDuplicate, true},
		{"wrapped sentinel", fmt.Errorf("insert invitation: %w", ErrDuplicate), true},
		{"legacy already exists text", errors.New("user already exists"), true},
		{"legacy duplicate text", errors.New("ERROR: duplicate key value violates unique constraint"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicate(tt.err); got != tt.want {
				t.Errorf("IsDuplicate(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
