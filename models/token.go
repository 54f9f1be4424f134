package models

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT token with convenience accessors for authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [jwt.RegisteredClaims] for standard claim access (subject, expiry, etc.).
//
// RequesterID is a cached copy of the "sub" claim: the chat or web identity
// the request is made on behalf of. It is compared with group owners by the
// access gateway.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// RequesterID is the identifier extracted from the "sub" claim.
	RequesterID string `json:"-"`
}

// GetRequesterID extracts the requester identifier from the "sub" claim.
func (t *Token) GetRequesterID() (string, error) {
	subject, err := t.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("empty subject claim")
	}

	return subject, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}
