package services

import (
	"strings"
	"testing"
)

func TestActivationTokenRoundTrip(t *testing.T) {
	svc := NewActivationTokenService("supersecret")

	code, err := svc.Issue(42, "Yamada Taro")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	studentID, studentName, err := svc.Verify(code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if studentID != 42 {
		t.Errorf("expected student id 42, got %d", studentID)
	}
	if studentName != "Yamada Taro" {
		t.Errorf("expected student name to round-trip, got %q", studentName)
	}
}

func TestActivationTokenWrongSecret(t *testing.T) {
	code, err := NewActivationTokenService("secret-a").Issue(7, "A")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, _, err := NewActivationTokenService("secret-b").Verify(code); err != ErrInvalidActivationCode {
		t.Fatalf("expected ErrInvalidActivationCode, got %v", err)
	}
}

func TestActivationTokenTamperedPayload(t *testing.T) {
	svc := NewActivationTokenService("supersecret")
	code, err := svc.Issue(7, "A")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(code, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three-part token, got %d parts", len(parts))
	}
	tampered := parts[0] + ".eyJzdWIiOiI5OTkifQ." + parts[2]

	if _, _, err := svc.Verify(tampered); err != ErrInvalidActivationCode {
		t.Fatalf("expected ErrInvalidActivationCode, got %v", err)
	}
}

func TestActivationTokenMalformed(t *testing.T) {
	svc := NewActivationTokenService("supersecret")

	for _, code := range []string{"", "not-a-token", "a.b.c"} {
		if _, _, err := svc.Verify(code); err != ErrInvalidActivationCode {
			t.Errorf("Verify(%q): expected ErrInvalidActivationCode, got %v", code, err)
		}
	}
}

func TestActivationTokenReusableAcrossIdentities(t *testing.T) {
	svc := NewActivationTokenService("supersecret")
	code, err := svc.Issue(42, "Yamada Taro")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// The same code is redeemable any number of times.
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Verify(code); err != nil {
			t.Fatalf("Verify attempt %d: %v", i+1, err)
		}
	}
}
