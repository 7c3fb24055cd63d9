// Package authflow implements the interactive OAuth2/OIDC authorization
// request protocol for desktop sign-in: planning the authorization request
// (PKCE, state, nonce, response_type handling), dispatching it directly or
// via a pushed authorization request endpoint, classifying browser
// navigation events for flow completion, and parsing the terminal redirect
// into a structured result.
package authflow

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// randomAlphabet holds 64 URL-safe characters so a byte modulo carries no
// bias.
const randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// GenerateRandomString produces a cryptographically random string of exactly
// length characters drawn from a URL-safe alphabet. Every call consumes
// fresh entropy; there is no shared seed state.
func GenerateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", &ValidationError{Field: "length", Reason: fmt.Sprintf("must be positive, got %d", length)}
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = randomAlphabet[int(b)%len(randomAlphabet)]
	}
	return string(buf), nil
}

// randomLength picks a uniform length in [min, max]. Falls back to min if
// the entropy source fails; GenerateRandomString will surface that failure.
func randomLength(min, max int) int {
	if max <= min {
		return min
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return min
	}
	return min + int(n.Int64())
}
