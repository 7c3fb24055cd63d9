package authflow

// Navigation describes a single navigation event produced by the
// authorization surface. Body carries the posted form body for form_post
// response mode and is empty otherwise.
type Navigation struct {
	URL  string
	Body string
}

// SurfaceConfig customizes an authorization surface before it is shown.
// OSAccountSSO is a per-surface field rather than process-wide state so
// concurrent flows with different SSO settings cannot interfere.
type SurfaceConfig struct {
	// UserAgent overrides the surface's user agent string when non-empty.
	UserAgent string
	// ProfileDir is the cookie/profile storage directory for embedded
	// surfaces that support one.
	ProfileDir string
	// OSAccountSSO enables transparent operating-system account single
	// sign-on for the surface.
	OSAccountSSO bool
	// NoBrowser suppresses automatic browser launch; the surface reports
	// the authorization URL for the user to open manually.
	NoBrowser bool
}

// Surface is the external interactive browser collaborator. The host must
// deliver navigation events exactly once, in the order the browser produced
// them. Dismissed is closed when the user abandons the surface before the
// flow completes.
type Surface interface {
	// Navigate points the surface at the authorization URL.
	Navigate(url string) error
	// Events yields browser navigation events for classification.
	Events() <-chan Navigation
	// Dismissed is closed when the user closes the surface.
	Dismissed() <-chan struct{}
	// Close tears the surface down once the flow is terminal.
	Close() error
}
