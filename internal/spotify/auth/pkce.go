package auth

import (
	"crypto/rand"

	"golang.org/x/oauth2"
)

// PKCE holds the code verifier, its S256 challenge and the CSRF state for
// one authorization attempt.
type PKCE struct {
	Verifier  string
	Challenge string
	State     string
}

// NewPKCE generates a fresh verifier, challenge and state.
func NewPKCE() (*PKCE, error) {
	verifier := oauth2.GenerateVerifier()
	return &PKCE{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
		State:     rand.Text(),
	}, nil
}
