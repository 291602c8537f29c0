package ordergate

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signHS256(t *testing.T, secret []byte, claims AccessClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestResolveCredential(t *testing.T) {
	secret := []byte("test-secret")
	v := NewHMACVerifier(secret)

	token := signHS256(t, secret, AccessClaims{
		Email:     "m1@dealer.example",
		IsManager: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "m1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	actor, err := v.Resolve(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if actor.UID != "m1" || actor.Email != "m1@dealer.example" || !actor.ClaimedManager {
		t.Fatalf("actor mismatch: %+v", actor)
	}

	// Bearer prefix is stripped.
	actor, err = v.Resolve("Bearer " + token)
	if err != nil || actor.UID != "m1" {
		t.Fatalf("bearer resolve failed: %v %+v", err, actor)
	}
}

func TestResolveAnonymous(t *testing.T) {
	v := NewHMACVerifier([]byte("test-secret"))

	for _, raw := range []string{"", "Bearer ", "   "} {
		actor, err := v.Resolve(raw)
		if err != nil {
			t.Fatalf("empty credential must not error: %v", err)
		}
		if !actor.IsAnonymous() {
			t.Fatalf("expected anonymous actor, got %+v", actor)
		}
	}
}

func TestResolveRejectsBadCredential(t *testing.T) {
	v := NewHMACVerifier([]byte("test-secret"))

	token := signHS256(t, []byte("wrong-secret"), AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "m1"},
	})
	if _, err := v.Resolve(token); err == nil {
		t.Fatalf("expected error for wrong signing key")
	}

	if _, err := v.Resolve("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}

	expired := signHS256(t, []byte("test-secret"), AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "m1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	if _, err := v.Resolve(expired); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseRSAPublicKeyRejectsGarbage(t *testing.T) {
	if _, err := ParseRSAPublicKey(nil); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := ParseRSAPublicKey([]byte("not a pem block")); err == nil {
		t.Fatalf("expected error for invalid pem")
	}
}
