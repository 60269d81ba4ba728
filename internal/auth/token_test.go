package auth

import (
	"testing"

	"github.com/spec-kit/incident-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("tech-1", domain.SubjectTypeTechnician)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatalf("expected expiry to be set")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != "tech-1" || claims.Subject != domain.SubjectTypeTechnician {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issued, _, err := NewTokenManager("secret-a", 60).GenerateToken("user-1", domain.SubjectTypeUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 60).ParseToken(issued); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}
