package authflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExchange(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("unparseable form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code_verifier"); got != "retained-verifier" {
			t.Errorf("code_verifier = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","refresh_token":"ref","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	result, err := Exchange(context.Background(), NewHTTPPoster(srv.Client()), &TokenRequest{
		TokenURL:     srv.URL,
		ClientID:     "client-1",
		RedirectURL:  "https://app.example/cb",
		Code:         "ABC",
		CodeVerifier: "retained-verifier",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Get("access_token"); got != "tok" {
		t.Fatalf("access_token = %q", got)
	}
	if result.Expiry.Before(time.Now().Add(59 * time.Minute)) {
		t.Fatalf("expiry %v not about an hour out", result.Expiry)
	}
}

func TestExchangeRejection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	_, err := Exchange(context.Background(), NewHTTPPoster(srv.Client()), &TokenRequest{
		TokenURL: srv.URL,
		ClientID: "client-1",
		Code:     "stale",
	})
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if got := statusErr.Body["error"]; got != "invalid_grant" {
		t.Fatalf("error body = %q", got)
	}
}

func TestExchangeValidation(t *testing.T) {
	t.Parallel()

	if _, err := Exchange(context.Background(), nil, &TokenRequest{TokenURL: "https://idp.example/token"}); err == nil {
		t.Fatal("expected an error for a missing code")
	}
	if _, err := Exchange(context.Background(), nil, &TokenRequest{Code: "ABC"}); err == nil {
		t.Fatal("expected an error for a missing token URL")
	}
}
