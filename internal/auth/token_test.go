package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"live-quiz-service/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("secret")
	token, err := svc.Issue("host-7", "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.HostID() != "host-7" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	svc := NewTokenService("secret")

	if _, err := svc.Verify(""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}
	if _, err := svc.Verify("not-a-jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token for garbage, got %v", err)
	}

	other, err := NewTokenService("other").Issue("host-7", "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(other); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token for foreign signature, got %v", err)
	}

	expired, err := svc.Issue("host-7", "alice", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(expired); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token when expired, got %v", err)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	svc := NewTokenService("secret")
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "host-7"},
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Verify(unsigned); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected unsigned token rejected, got %v", err)
	}
}
