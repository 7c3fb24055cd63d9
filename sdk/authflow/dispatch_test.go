package authflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestBuildAuthorizationURL(t *testing.T) {
	t.Parallel()

	opts := NewOptions("https://idp.example/authorize?tenant=acme", "client-1")
	opts.Scope = "read"
	opts.UsePKCE = false
	planned, err := Plan(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	built, err := BuildAuthorizationURL(opts.AuthorizationURL, planned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, err := url.Parse(built)
	if err != nil {
		t.Fatalf("built URL unparseable: %v", err)
	}
	query := parsed.Query()
	if got := query.Get("tenant"); got != "acme" {
		t.Fatalf("existing query parameter lost, tenant = %q", got)
	}
	if got := query.Get("client_id"); got != "client-1" {
		t.Fatalf("client_id = %q", got)
	}
	if got := query.Get("state"); got != planned.State {
		t.Fatalf("state = %q, want %q", got, planned.State)
	}
}

func TestBuildRequestURIAuthorizationURL(t *testing.T) {
	t.Parallel()

	built, err := BuildRequestURIAuthorizationURL("https://idp.example/authorize", "client-1", "urn:ietf:params:oauth:request_uri:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, _ := url.Parse(built)
	if got := parsed.Query().Get("request_uri"); got != "urn:ietf:params:oauth:request_uri:abc" {
		t.Fatalf("request_uri = %q", got)
	}

	if _, err = BuildRequestURIAuthorizationURL("https://idp.example/authorize", "client-1", ""); err == nil {
		t.Fatal("expected an error for an empty request_uri")
	}
}

func TestPushAuthorization(t *testing.T) {
	t.Parallel()

	opts := NewOptions("https://idp.example/authorize", "client-1")
	opts.Scope = "read"
	planned, err := Plan(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
				t.Errorf("content type = %q", got)
			}
			if err := r.ParseForm(); err != nil {
				t.Errorf("unparseable form: %v", err)
			}
			if got := r.PostForm.Get("client_id"); got != "client-1" {
				t.Errorf("client_id = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"request_uri":"urn:ietf:params:oauth:request_uri:abc","expires_in":90}`))
		}))
		defer srv.Close()

		before := time.Now()
		pushed, err := PushAuthorization(context.Background(), NewHTTPPoster(srv.Client()), srv.URL, planned)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := pushed["request_uri"]; got != "urn:ietf:params:oauth:request_uri:abc" {
			t.Fatalf("request_uri = %q", got)
		}
		expiry, errParse := time.Parse(time.RFC3339, pushed["expiry_datetime"])
		if errParse != nil {
			t.Fatalf("expiry_datetime unparseable: %v", errParse)
		}
		if expiry.Before(before.Add(80*time.Second)) || expiry.After(time.Now().Add(100*time.Second)) {
			t.Fatalf("expiry_datetime %v not about 90s out", expiry)
		}
	})

	t.Run("http status error preserves body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_request","error_description":"missing redirect_uri"}`))
		}))
		defer srv.Close()

		_, err := PushAuthorization(context.Background(), NewHTTPPoster(srv.Client()), srv.URL, planned)
		var statusErr *HTTPStatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected HTTPStatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d", statusErr.StatusCode)
		}
		if got := statusErr.Body["error_description"]; got != "missing redirect_uri" {
			t.Fatalf("error_description = %q", got)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := PushAuthorization(context.Background(), NewHTTPPoster(nil), srv.URL, planned)
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected TransportError, got %v", err)
		}
		if transportErr.Unwrap() == nil {
			t.Fatal("underlying error must be preserved")
		}
	})
}
