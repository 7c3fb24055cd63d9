package authflow

import (
	"context"
	"fmt"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// FormPoster is the external HTTP collaborator for pushed authorization and
// token endpoints: it POSTs a form-encoded body and returns the response
// status and raw body.
type FormPoster interface {
	PostForm(ctx context.Context, endpoint string, values url.Values) (int, []byte, error)
}

// BuildAuthorizationURL appends the planned request parameters to the
// authorization endpoint as query parameters, producing the URL the
// authorization surface should navigate to. No network I/O is performed.
func BuildAuthorizationURL(endpoint string, planned *PlannedRequest) (string, error) {
	if planned == nil {
		return "", &ValidationError{Field: "request", Reason: "nothing planned"}
	}
	return appendQuery(endpoint, planned.Values)
}

// PushAuthorization POSTs the planned parameters to a pushed authorization
// request endpoint (RFC 9126) and returns the flattened response, augmented
// with an expiry_datetime computed from expires_in. Composing the follow-up
// authorization URL from request_uri is the caller's responsibility; see
// BuildRequestURIAuthorizationURL.
func PushAuthorization(ctx context.Context, poster FormPoster, endpoint string, planned *PlannedRequest) (map[string]string, error) {
	if planned == nil {
		return nil, &ValidationError{Field: "request", Reason: "nothing planned"}
	}
	status, body, err := poster.PostForm(ctx, endpoint, planned.Values)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &HTTPStatusError{StatusCode: status, Body: flattenJSON(body)}
	}

	result := flattenJSON(body)
	if expires := gjson.GetBytes(body, "expires_in"); expires.Exists() {
		result["expiry_datetime"] = time.Now().Add(time.Duration(expires.Int()) * time.Second).Format(time.RFC3339)
	}
	if result["request_uri"] == "" {
		log.Warn("pushed authorization response carried no request_uri")
	}
	log.Debugf("pushed authorization accepted, request_uri %s", result["request_uri"])
	return result, nil
}

// BuildRequestURIAuthorizationURL composes the authorization URL for a flow
// whose parameters were pushed: only client_id and the returned request_uri
// travel in the query.
func BuildRequestURIAuthorizationURL(endpoint, clientID, requestURI string) (string, error) {
	if requestURI == "" {
		return "", &ValidationError{Field: "request_uri", Reason: "must not be empty"}
	}
	values := url.Values{}
	values.Set("client_id", clientID)
	values.Set("request_uri", requestURI)
	return appendQuery(endpoint, values)
}

// appendQuery merges values into the endpoint's existing query string.
func appendQuery(endpoint string, values url.Values) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", &ValidationError{Field: "authorization_url", Reason: fmt.Sprintf("unparseable endpoint: %v", err)}
	}
	query := parsed.Query()
	for key, vals := range values {
		for _, val := range vals {
			query.Set(key, val)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// flattenJSON converts a flat JSON object body into a string map. Nested
// values are kept as their raw JSON text.
func flattenJSON(body []byte) map[string]string {
	out := make(map[string]string)
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = value.String()
		return true
	})
	return out
}
