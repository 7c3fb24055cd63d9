package authflow

import (
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"
)

// DefaultCompletionPattern matches an error parameter in the query or
// fragment of a navigation URL. With this default only error redirects are
// detected; callers that also want success detection should use
// RedirectPattern or supply their own pattern.
const DefaultCompletionPattern = `[?&#]error=`

// RedirectPattern builds a completion pattern matching either a navigation
// to the redirect URL or an error redirect anywhere.
func RedirectPattern(redirectURL string) string {
	return fmt.Sprintf(`^%s|%s`, regexp.QuoteMeta(redirectURL), DefaultCompletionPattern)
}

// Classifier decides whether a navigation event terminates the flow. It is
// a two-state machine: in flight until a navigation URL matches the
// completion pattern, then complete. Events observed after completion are
// ignored and the first terminal capture is retained.
type Classifier struct {
	pattern  *regexp.Regexp
	complete bool
	terminal Navigation
}

// NewClassifier compiles the completion pattern; an empty pattern selects
// DefaultCompletionPattern. The pattern is matched against the full
// absolute navigation URL.
func NewClassifier(pattern string) (*Classifier, error) {
	if pattern == "" {
		pattern = DefaultCompletionPattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &ValidationError{Field: "completion_pattern", Reason: fmt.Sprintf("unparseable pattern: %v", err)}
	}
	return &Classifier{pattern: compiled}, nil
}

// Observe feeds one navigation event to the classifier and reports whether
// the flow is complete afterwards.
func (c *Classifier) Observe(nav Navigation) bool {
	if c.complete {
		return true
	}
	if !c.pattern.MatchString(nav.URL) {
		return false
	}
	c.complete = true
	c.terminal = nav
	log.Debugf("terminal navigation captured: %s", nav.URL)
	return true
}

// Complete reports whether a terminal navigation has been captured.
func (c *Classifier) Complete() bool {
	return c.complete
}

// Terminal returns the captured terminal navigation, if any.
func (c *Classifier) Terminal() (Navigation, bool) {
	return c.terminal, c.complete
}
