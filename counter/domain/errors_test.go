package domain

import (
	"errors"
	"testing"
)

func TestNormalizeCode_Canonicalizes(t *testing.T) {
	cases := map[string]string{
		"US":    "us",
		"fr":    "fr",
		" Br ":  "br",
		"\tDE":  "de",
		"gb\n":  "gb",
	}
	for raw, want := range cases {
		got, err := NormalizeCode(raw)
		if err != nil {
			t.Fatalf("NormalizeCode(%q): unexpected error %v", raw, err)
		}
		if got != want {
			t.Fatalf("NormalizeCode(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeCode_RejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "u", "usa", "u1", "1s", "u s", "é!", "--"} {
		if _, err := NormalizeCode(raw); !errors.Is(err, ErrInvalidCountryCode) {
			t.Fatalf("NormalizeCode(%q): expected ErrInvalidCountryCode, got %v", raw, err)
		}
	}
}
