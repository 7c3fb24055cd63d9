package authflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Run drives one interactive authorization flow to completion. It navigates
// the surface to the authorization URL, consumes navigation events in order,
// and blocks until the classifier captures a terminal navigation, the user
// dismisses the surface, or the context is cancelled. Completion closes the
// surface; dismissal and cancellation both yield ErrUserCancelled, since an
// externally forced close is indistinguishable from the user giving up.
func Run(ctx context.Context, surface Surface, authorizationURL string, classifier *Classifier, mode ResponseMode) (*Result, error) {
	if classifier == nil {
		var err error
		classifier, err = NewClassifier("")
		if err != nil {
			return nil, err
		}
	}

	logger := log.WithField("flow", uuid.NewString()[:8])
	logger.Debug("starting interactive authorization flow")

	if err := surface.Navigate(authorizationURL); err != nil {
		return nil, fmt.Errorf("failed to open authorization page: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Warn("authorization flow cancelled by caller")
			if errClose := surface.Close(); errClose != nil {
				logger.Debugf("failed to close authorization surface: %v", errClose)
			}
			return nil, ErrUserCancelled
		case <-surface.Dismissed():
			logger.Warn("authorization surface dismissed before completion")
			return nil, ErrUserCancelled
		case nav, ok := <-surface.Events():
			if !ok {
				logger.Warn("navigation stream closed before completion")
				return nil, ErrUserCancelled
			}
			if !classifier.Observe(nav) {
				logger.Debugf("navigation in flight: %s", nav.URL)
				continue
			}
			if errClose := surface.Close(); errClose != nil {
				logger.Warnf("failed to close authorization surface: %v", errClose)
			}
			terminal, _ := classifier.Terminal()
			return ParseTerminal(terminal, mode)
		}
	}
}

// Client bundles the pieces of one flow configuration: the planner options,
// the HTTP collaborator for pushed requests, and the completion pattern.
type Client struct {
	Options *Options
	// Poster is used only when PAREndpoint is set.
	Poster FormPoster
	// PAREndpoint switches dispatch from a direct authorization URL to a
	// pushed authorization request.
	PAREndpoint string
	// CompletionPattern overrides DefaultCompletionPattern when non-empty.
	CompletionPattern string
}

// Authorize plans the request, dispatches it (directly or via PAR), runs the
// interactive flow on the surface, and returns both the planned request
// (carrying the generated state, nonce, and PKCE verifier for later
// validation and token exchange) and the terminal result.
func (c *Client) Authorize(ctx context.Context, surface Surface) (*PlannedRequest, *Result, error) {
	planned, err := Plan(c.Options)
	if err != nil {
		return nil, nil, err
	}

	var authorizationURL string
	if c.PAREndpoint != "" {
		poster := c.Poster
		if poster == nil {
			poster = NewHTTPPoster(nil)
		}
		pushed, errPush := PushAuthorization(ctx, poster, c.PAREndpoint, planned)
		if errPush != nil {
			return planned, nil, errPush
		}
		authorizationURL, err = BuildRequestURIAuthorizationURL(c.Options.AuthorizationURL, c.Options.ClientID, pushed["request_uri"])
	} else {
		authorizationURL, err = BuildAuthorizationURL(c.Options.AuthorizationURL, planned)
	}
	if err != nil {
		return planned, nil, err
	}

	classifier, err := NewClassifier(c.CompletionPattern)
	if err != nil {
		return planned, nil, err
	}

	result, err := Run(ctx, surface, authorizationURL, classifier, c.Options.ResponseMode)
	if err != nil {
		return planned, nil, err
	}
	return planned, result, nil
}
