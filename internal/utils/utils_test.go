package utils

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Top 10: Cabins in  Tatras!  ", "top-10-cabins-in-tatras"},
		{"a -- b", "a-b"},
		{"Čierny Balog", "ierny-balog"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "user-1", "HOST", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !tok.Exp.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}
	claims, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" || claims.Role != "HOST" {
		t.Fatalf("claims = %+v", claims)
	}
	if _, err := ParseAccessToken("other", tok.Token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("pa55word", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(h, "pa55word") || VerifyPassword(h, "nope") {
		t.Fatal("bcrypt verification mismatch")
	}
}

func TestPasswordHashClampsCost(t *testing.T) {
	h, err := HashPassword("pa55word", 1)
	if err != nil {
		t.Fatal(err)
	}
	if cost, _ := bcrypt.Cost([]byte(h)); cost != bcrypt.MinCost {
		t.Fatalf("cost = %d; want %d", cost, bcrypt.MinCost)
	}
	if _, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost); err == nil {
		t.Fatal("passwords over 72 bytes must be rejected")
	}
}

func TestRefreshTokenHash(t *testing.T) {
	rt, err := NewRefreshToken(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rt.Raw) != 96 || len(HashRefreshRaw(rt.Raw)) != 64 {
		t.Fatalf("unexpected lengths raw=%d", len(rt.Raw))
	}
}
