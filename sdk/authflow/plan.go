package authflow

import (
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ProtocolMode distinguishes plain OAuth2 flows from OIDC flows. It is
// derived from the planned response_type and scope, never set directly.
type ProtocolMode string

const (
	ModeOAuth2 ProtocolMode = "oauth2"
	ModeOIDC   ProtocolMode = "oidc"
)

// ResponseMode selects how the identity provider returns the authorization
// response.
type ResponseMode string

const (
	ResponseModeQuery    ResponseMode = "query"
	ResponseModeFragment ResponseMode = "fragment"
	ResponseModeFormPost ResponseMode = "form_post"
)

// responseTypeTokens is the grammar for response_type: any space-separated
// combination of these.
var responseTypeTokens = map[string]struct{}{
	"code":     {},
	"id_token": {},
	"token":    {},
	"none":     {},
}

// SecurityOverrides lets a caller pre-seed the security-critical request
// parameters instead of having them generated. Supplying CodeChallenge
// without CodeVerifier delegates PKCE entirely to the caller.
type SecurityOverrides struct {
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
	CodeVerifier        string
}

// Options describes one interactive authorization flow. Extra carries
// opaque passthrough parameters; keys that collide with the reserved
// security parameters are stripped before merging so they cannot be applied
// twice.
type Options struct {
	AuthorizationURL string
	ClientID         string
	RedirectURL      string
	ResponseType     string
	Scope            string
	UsePKCE          bool
	ResponseMode     ResponseMode
	// UserAgent is handed to the authorization surface; it never appears
	// in the request itself.
	UserAgent string
	Security  SecurityOverrides
	Extra     map[string]string
}

// NewOptions returns Options with the defaults applied: authorization code
// response type and PKCE enabled.
func NewOptions(authorizationURL, clientID string) *Options {
	return &Options{
		AuthorizationURL: authorizationURL,
		ClientID:         clientID,
		ResponseType:     "code",
		UsePKCE:          true,
	}
}

// PlannedRequest is the immutable outcome of planning. Values holds every
// outgoing parameter; State, Nonce, and PKCE expose the generated security
// material so the caller can validate the terminal redirect echo and run
// the token exchange. The code verifier is never placed in Values.
type PlannedRequest struct {
	Mode   ProtocolMode
	Values url.Values
	State  string
	Nonce  string
	PKCE   *PKCECodes
}

// reservedParams are merged from SecurityOverrides only, never from Extra.
var reservedParams = map[string]struct{}{
	"state":                 {},
	"nonce":                 {},
	"code_challenge":        {},
	"code_challenge_method": {},
	"code_verifier":         {},
}

// Plan validates the flow options and assembles the authorization request
// parameters: it decides OAuth2 vs OIDC mode, generates or adopts state and
// nonce, plans PKCE material, and merges opaque extras. No network I/O
// happens here.
func Plan(opts *Options) (*PlannedRequest, error) {
	if opts == nil || opts.ClientID == "" {
		return nil, &ValidationError{Field: "client_id", Reason: "must not be empty"}
	}
	responseType := strings.TrimSpace(opts.ResponseType)
	if responseType == "" {
		responseType = "code"
	}
	if err := validateResponseType(responseType); err != nil {
		return nil, err
	}
	if err := validateResponseMode(opts.ResponseMode); err != nil {
		return nil, err
	}

	scope := strings.TrimSpace(opts.Scope)
	mode := ModeOIDC
	if responseType == "token" || (responseType == "code" && !scopeContains(scope, "openid")) {
		mode = ModeOAuth2
	}

	nonce := ""
	if mode == ModeOIDC {
		if !scopeContains(scope, "openid") {
			log.Warnf("scope %q lacks openid for an OIDC request; appending it", scope)
			scope = strings.TrimSpace(scope + " openid")
		}
		nonce = opts.Security.Nonce
		if nonce == "" {
			generated, err := GenerateRandomString(randomLength(32, 64))
			if err != nil {
				return nil, err
			}
			nonce = generated
		}
	}

	state := opts.Security.State
	if state == "" {
		generated, err := GenerateRandomString(randomLength(16, 21))
		if err != nil {
			return nil, err
		}
		state = generated
	}

	values := url.Values{}
	values.Set("response_type", responseType)
	values.Set("client_id", opts.ClientID)
	values.Set("state", state)
	if opts.RedirectURL != "" {
		values.Set("redirect_uri", opts.RedirectURL)
	}
	if scope != "" {
		values.Set("scope", scope)
	}
	if nonce != "" {
		values.Set("nonce", nonce)
	}
	if opts.ResponseMode != "" {
		values.Set("response_mode", string(opts.ResponseMode))
	}

	pkce, err := planPKCE(opts, responseType)
	if err != nil {
		return nil, err
	}
	if pkce != nil {
		values.Set("code_challenge", pkce.CodeChallenge)
		values.Set("code_challenge_method", pkce.CodeChallengeMethod)
	}

	for key, value := range opts.Extra {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		values.Set(key, value)
	}

	return &PlannedRequest{
		Mode:   mode,
		Values: values,
		State:  state,
		Nonce:  nonce,
		PKCE:   pkce,
	}, nil
}

// planPKCE decides the PKCE material for the request. PKCE is skipped for
// response types that cannot carry an authorization code; a caller-supplied
// challenge is adopted verbatim with the method defaulting to S256.
func planPKCE(opts *Options, responseType string) (*PKCECodes, error) {
	if !opts.UsePKCE {
		return nil, nil
	}
	if !responseTypeContains(responseType, "code") {
		log.Warnf("PKCE requested but response_type %q carries no authorization code; skipping PKCE", responseType)
		return nil, nil
	}
	if opts.Security.CodeChallenge != "" {
		method := opts.Security.CodeChallengeMethod
		if method == "" {
			log.Warn("code_challenge supplied without code_challenge_method; defaulting to S256")
			method = ChallengeMethodS256
		} else if method != ChallengeMethodS256 && method != ChallengeMethodPlain {
			return nil, &ValidationError{Field: "code_challenge_method", Reason: fmt.Sprintf("unsupported method %q", method)}
		}
		return &PKCECodes{
			CodeVerifier:        opts.Security.CodeVerifier,
			CodeChallenge:       opts.Security.CodeChallenge,
			CodeChallengeMethod: method,
		}, nil
	}
	return GeneratePKCECodes()
}

// validateResponseType checks the grammar: one or more of code, id_token,
// token, none, space separated, combined freely.
func validateResponseType(responseType string) error {
	parts := strings.Fields(responseType)
	if len(parts) == 0 {
		return &ValidationError{Field: "response_type", Reason: "must not be empty"}
	}
	for _, part := range parts {
		if _, ok := responseTypeTokens[part]; !ok {
			return &ValidationError{Field: "response_type", Reason: fmt.Sprintf("unknown token %q", part)}
		}
	}
	return nil
}

func validateResponseMode(mode ResponseMode) error {
	switch mode {
	case "", ResponseModeQuery, ResponseModeFragment, ResponseModeFormPost:
		return nil
	default:
		return &ValidationError{Field: "response_mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
}

func responseTypeContains(responseType, token string) bool {
	for _, part := range strings.Fields(responseType) {
		if part == token {
			return true
		}
	}
	return false
}

func scopeContains(scope, want string) bool {
	for _, part := range strings.Fields(scope) {
		if part == want {
			return true
		}
	}
	return false
}
