package authflow

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Result is the structured outcome of a completed flow. Params holds every
// parameter of the terminal redirect verbatim, including any error and
// error_description the identity provider sent; provider errors are data
// here, not Go errors. Expiry is non-zero only when the terminal parameters
// carried a numeric expires_in.
type Result struct {
	Params map[string]string
	Expiry time.Time
}

// Get returns the named terminal parameter, or empty when absent.
func (r *Result) Get(key string) string {
	if r == nil {
		return ""
	}
	return r.Params[key]
}

// ProviderError returns the error and error_description parameters when the
// terminal redirect reported a failure.
func (r *Result) ProviderError() (code, description string, ok bool) {
	code = r.Get("error")
	return code, r.Get("error_description"), code != ""
}

// ParseTerminal converts the captured terminal navigation into a Result.
// The response_mode selects which component carries the parameters: the
// query string by default, the URL fragment for fragment mode, and the
// posted body for form_post mode.
func ParseTerminal(nav Navigation, mode ResponseMode) (*Result, error) {
	var raw string
	switch mode {
	case ResponseModeFragment:
		parsed, err := url.Parse(nav.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse terminal URL: %w", err)
		}
		raw = parsed.Fragment
	case ResponseModeFormPost:
		raw = nav.Body
	default:
		parsed, err := url.Parse(nav.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse terminal URL: %w", err)
		}
		raw = parsed.RawQuery
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse terminal parameters: %w", err)
	}

	params := make(map[string]string, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}

	result := &Result{Params: params}
	if rawExpires, ok := params["expires_in"]; ok {
		if seconds, errParse := strconv.ParseInt(rawExpires, 10, 64); errParse == nil {
			result.Expiry = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}
	return result, nil
}
