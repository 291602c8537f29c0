package ordergate

import (
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the shape of the verified credential issued by the
// identity provider. The uid travels in the registered "sub" claim; email
// and the optional isManager custom claim are flattened alongside it.
type AccessClaims struct {
	Email     string `json:"email"`
	IsManager bool   `json:"isManager"`
	jwt.RegisteredClaims
}

// CredentialVerifier turns an inbound bearer credential into an
// ActorContext. It has no failure modes of its own: a missing credential
// resolves to the anonymous context, which every downstream gate rejects.
type CredentialVerifier struct {
	keyFunc jwt.Keyfunc
	methods []string
}

// NewHMACVerifier verifies HS256 credentials with a shared secret.
func NewHMACVerifier(secret []byte) *CredentialVerifier {
	return &CredentialVerifier{
		keyFunc: func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		methods: []string{"HS256", "HS384", "HS512"},
	}
}

// NewRSAVerifier verifies RS256 credentials with the provider's public key.
func NewRSAVerifier(pub *rsa.PublicKey) *CredentialVerifier {
	return &CredentialVerifier{
		keyFunc: func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return pub, nil
		},
		methods: []string{"RS256", "RS384", "RS512"},
	}
}

// Resolve extracts the actor context from a bearer token. An empty token
// yields the anonymous context (nil) without error; a malformed or badly
// signed token is an error, never a fallback to anonymous.
func (v *CredentialVerifier) Resolve(tokenStr string) (*ActorContext, error) {
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, nil
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, v.keyFunc, jwt.WithValidMethods(v.methods))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid credential: %w", err)
	}
	return &ActorContext{
		UID:            claims.Subject,
		Email:          claims.Email,
		ClaimedManager: claims.IsManager,
	}, nil
}

// ParseRSAPublicKey parses a PEM-encoded verification key.
func ParseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("public key data is empty")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return key, nil
}
