package callback

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/websignin/websignin/sdk/authflow"
)

func TestHandleCallbackGet(t *testing.T) {
	t.Parallel()

	srv := New(0, "/auth/callback", authflow.SurfaceConfig{})
	req := httptest.NewRequest("GET", "http://localhost:8085/auth/callback?code=ABC&state=XYZ", nil)
	rec := httptest.NewRecorder()

	srv.handleCallback(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sign-in complete") {
		t.Fatal("expected the completion page")
	}

	select {
	case nav := <-srv.Events():
		if !strings.Contains(nav.URL, "code=ABC") {
			t.Fatalf("navigation URL = %q", nav.URL)
		}
		if nav.Body != "" {
			t.Fatalf("unexpected body %q for a GET callback", nav.Body)
		}
	default:
		t.Fatal("no navigation event queued")
	}
}

func TestHandleCallbackFormPost(t *testing.T) {
	t.Parallel()

	srv := New(0, "/auth/callback", authflow.SurfaceConfig{})
	req := httptest.NewRequest("POST", "http://localhost:8085/auth/callback", strings.NewReader("id_token=J.W.T&state=S"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	srv.handleCallback(rec, req)

	select {
	case nav := <-srv.Events():
		if nav.Body != "id_token=J.W.T&state=S" {
			t.Fatalf("navigation body = %q", nav.Body)
		}
	default:
		t.Fatal("no navigation event queued")
	}
}

func TestHandleCallbackErrorRedirect(t *testing.T) {
	t.Parallel()

	srv := New(0, "/auth/callback", authflow.SurfaceConfig{})
	req := httptest.NewRequest("GET", "http://localhost:8085/auth/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()

	srv.handleCallback(rec, req)

	if !strings.Contains(rec.Body.String(), "Sign-in failed") {
		t.Fatal("expected the failure page for an error redirect")
	}
	select {
	case nav := <-srv.Events():
		if !strings.Contains(nav.URL, "error=access_denied") {
			t.Fatalf("navigation URL = %q", nav.URL)
		}
	default:
		t.Fatal("error redirects must still produce a navigation event")
	}
}

func TestHandleCallbackMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := New(0, "/auth/callback", authflow.SurfaceConfig{})
	req := httptest.NewRequest("DELETE", "http://localhost:8085/auth/callback", nil)
	rec := httptest.NewRecorder()

	srv.handleCallback(rec, req)

	if rec.Code != 405 {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	select {
	case <-srv.Events():
		t.Fatal("no event expected for a rejected method")
	default:
	}
}

func TestCancelClosesDismissed(t *testing.T) {
	t.Parallel()

	srv := New(0, "", authflow.SurfaceConfig{})
	srv.Cancel()
	srv.Cancel() // idempotent

	select {
	case <-srv.Dismissed():
	default:
		t.Fatal("Dismissed must be closed after Cancel")
	}
}
