package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *Cloudinary {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewCloudinary("demo", "key", "secret", "PaSr", srv.URL)
	if err != nil {
		t.Fatalf("NewCloudinary: %v", err)
	}
	return c
}

func TestCloudinaryUploadSignsRequest(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1_1/demo/") || !strings.HasSuffix(r.URL.Path, "/upload") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.FormValue("public_id"); got != "PaSr/truck-abc" {
			t.Errorf("expected qualified public id, got %q", got)
		}
		if r.FormValue("api_key") != "key" || r.FormValue("signature") == "" || r.FormValue("timestamp") == "" {
			t.Errorf("expected a signed request, got api_key=%q signature=%q", r.FormValue("api_key"), r.FormValue("signature"))
		}
		if got := r.FormValue("file"); got != "data:image/jpeg;base64,AAAA" {
			t.Errorf("expected bare payload wrapped as data url, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"secure_url":"https://res.cloudinary.com/demo/PaSr/truck-abc.jpg","public_id":"PaSr/truck-abc"}`)
	})

	img, err := c.Upload(context.Background(), "AAAA", "truck-abc")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if img.Filename != "PaSr/truck-abc" || img.URL == "" {
		t.Fatalf("unexpected image %+v", img)
	}
}

func TestCloudinaryUploadReportsAPIError(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Invalid Signature"}}`)
	})

	if _, err := c.Upload(context.Background(), "data:image/png;base64,AAAA", "x"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestCloudinaryDestroy(t *testing.T) {
	results := map[string]string{"gone": "not found", "ok": "ok", "bad": "error"}
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/destroy") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"result":%q}`, results[r.FormValue("public_id")])
	})

	if err := c.Destroy(context.Background(), "ok"); err != nil {
		t.Errorf("ok: %v", err)
	}
	if err := c.Destroy(context.Background(), "gone"); err != nil {
		t.Errorf("missing image should not fail: %v", err)
	}
	if err := c.Destroy(context.Background(), "bad"); err == nil {
		t.Error("expected error for unexpected result")
	}
	if err := c.Destroy(context.Background(), ""); err != nil {
		t.Errorf("empty filename: %v", err)
	}
}
