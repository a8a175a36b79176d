package table

import (
	"testing"
)

func TestSanitizeIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name passes through", "users", "users"},
		{"dash becomes underscore", "my-data", "my_data"},
		{"dots and spaces become underscores", "a.b c", "a_b_c"},
		{"leading digit gets prefixed", "2024report", "t_2024report"},
		{"empty name gets placeholder", "", "t"},
		{"unicode becomes underscores", "café", "caf_"},
		{"mixed case preserved", "MyTable", "MyTable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SanitizeIdentifier(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdentifierIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"users", "my-data", "2024report", "", "café", "t_2024report"}
	for _, input := range inputs {
		once := SanitizeIdentifier(input)
		twice := SanitizeIdentifier(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestDisambiguateName(t *testing.T) {
	t.Parallel()

	taken := map[string]bool{"users": true, "users_2": true}
	pred := func(name string) bool { return taken[name] }

	if got := DisambiguateName("orders", pred); got != "orders" {
		t.Errorf("expected free name unchanged, got %q", got)
	}
	if got := DisambiguateName("users", pred); got != "users_3" {
		t.Errorf("expected users_3, got %q", got)
	}
}
