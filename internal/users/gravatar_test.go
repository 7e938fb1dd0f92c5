package users

import (
	"strings"
	"testing"
)

func TestGravatarURL(t *testing.T) {
	got := GravatarURL("MyEmailAddress@example.com ", 200)
	// known md5 of "myemailaddress@example.com" from the gravatar docs
	want := "https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&d=identicon&r=pg"
	if got != want {
		t.Fatalf("GravatarURL = %q, want %q", got, want)
	}
}

func TestGravatarURL_Normalization(t *testing.T) {
	a := GravatarURL("User@Example.com", 80)
	b := GravatarURL("  user@example.com", 80)
	if a != b {
		t.Fatalf("expected identical URLs for equivalent addresses: %q vs %q", a, b)
	}
	if !strings.Contains(a, "s=80") {
		t.Fatalf("size parameter missing: %q", a)
	}
}

func TestGravatarURL_DefaultSize(t *testing.T) {
	got := GravatarURL("x@example.com", 0)
	if !strings.Contains(got, "s=200") {
		t.Fatalf("expected default size 200, got %q", got)
	}
}
