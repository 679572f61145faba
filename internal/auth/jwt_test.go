package auth

import (
	"errors"
	"testing"
	"time"

	"edunova-platform/internal/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:      "secret",
		JWTIssuer:      "issuer",
		JWTAudience:    "aud",
		AccessTokenTTL: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t)

	now := time.Unix(1700000000, 0).UTC()
	token, err := m.Issue(now, 42, "teacher", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token string")
	}

	claims, err := m.Verify(token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "teacher" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := newTestManager(t)

	now := time.Unix(1700000000, 0).UTC()
	token, err := m.Issue(now, 1, "student", -time.Second)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = m.Verify(token, now)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyPastExpiry(t *testing.T) {
	m := newTestManager(t)

	now := time.Unix(1700000000, 0).UTC()
	token, err := m.Issue(now, 1, "student", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = m.Verify(token, now.Add(time.Hour))
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Verify("not-a-token", time.Now()); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(config.AuthConfig{JWTSecret: "other", JWTIssuer: "issuer", JWTAudience: "aud", AccessTokenTTL: time.Minute})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	now := time.Now()
	token, err := other.Issue(now, 1, "student", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(token, now); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken for wrong signature, got %v", err)
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
