package authflow

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCE challenge methods accepted by DeriveChallenge.
const (
	ChallengeMethodS256  = "S256"
	ChallengeMethodPlain = "plain"
)

// RFC 7636 bounds for a code verifier.
const (
	minVerifierLength = 43
	maxVerifierLength = 128
)

// PKCECodes holds a PKCE verifier/challenge pair. CodeVerifier may be empty
// when the caller delegated PKCE by supplying only a pre-computed challenge;
// in that case the verifier is the caller's to manage at token exchange.
type PKCECodes struct {
	CodeVerifier        string
	CodeChallenge       string
	CodeChallengeMethod string
}

// GeneratePKCECodes generates a new pair of PKCE (Proof Key for Code
// Exchange) codes as specified in RFC 7636: a cryptographically random code
// verifier and its S256 code challenge. The verifier length is chosen
// uniformly within the RFC's 43-128 character range.
func GeneratePKCECodes() (*PKCECodes, error) {
	verifier, err := GenerateRandomString(randomLength(minVerifierLength, maxVerifierLength))
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	challenge, err := DeriveChallenge(verifier, ChallengeMethodS256)
	if err != nil {
		return nil, err
	}
	return &PKCECodes{
		CodeVerifier:        verifier,
		CodeChallenge:       challenge,
		CodeChallengeMethod: ChallengeMethodS256,
	}, nil
}

// DeriveChallenge computes the code challenge for a verifier. S256 is the
// base64url-encoded (no padding) SHA-256 digest of the verifier; plain
// returns the verifier unchanged. Any other method is rejected.
func DeriveChallenge(verifier, method string) (string, error) {
	switch method {
	case ChallengeMethodS256:
		hash := sha256.Sum256([]byte(verifier))
		return base64.RawURLEncoding.EncodeToString(hash[:]), nil
	case ChallengeMethodPlain:
		return verifier, nil
	default:
		return "", &ValidationError{Field: "code_challenge_method", Reason: fmt.Sprintf("unsupported method %q", method)}
	}
}
