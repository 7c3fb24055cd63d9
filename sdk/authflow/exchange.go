package authflow

import (
	"context"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// TokenRequest describes an authorization-code token exchange. CodeVerifier
// must be the verifier retained from planning when the request carried a
// PKCE challenge.
type TokenRequest struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Code         string
	CodeVerifier string
}

// Exchange swaps an authorization code for tokens at the token endpoint.
// The response is returned flattened, with Expiry computed from expires_in
// when present. Transport failures and non-2xx responses surface as
// TransportError and HTTPStatusError respectively.
func Exchange(ctx context.Context, poster FormPoster, req *TokenRequest) (*Result, error) {
	if req == nil || req.Code == "" {
		return nil, &ValidationError{Field: "code", Reason: "must not be empty"}
	}
	if req.TokenURL == "" {
		return nil, &ValidationError{Field: "token_url", Reason: "must not be empty"}
	}
	if poster == nil {
		poster = NewHTTPPoster(nil)
	}

	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", req.Code)
	values.Set("client_id", req.ClientID)
	if req.ClientSecret != "" {
		values.Set("client_secret", req.ClientSecret)
	}
	if req.RedirectURL != "" {
		values.Set("redirect_uri", req.RedirectURL)
	}
	if req.CodeVerifier != "" {
		values.Set("code_verifier", req.CodeVerifier)
	}

	status, body, err := poster.PostForm(ctx, req.TokenURL, values)
	if err != nil {
		return nil, &TransportError{Endpoint: req.TokenURL, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &HTTPStatusError{StatusCode: status, Body: flattenJSON(body)}
	}

	result := &Result{Params: flattenJSON(body)}
	if expires := gjson.GetBytes(body, "expires_in"); expires.Exists() {
		result.Expiry = time.Now().Add(time.Duration(expires.Int()) * time.Second)
	}
	log.Debug("token exchange completed")
	return result, nil
}
