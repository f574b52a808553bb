package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func TestNormalizeHandle(t *testing.T) {
	tests := map[string]string{
		"98765 43210":     "9876543210",
		"+91 98765-43210": "9876543210",
		"09876543210":     "9876543210",
		"12345":           "12345",
	}
	for in, want := range tests {
		if got := NormalizeHandle(in); got != want {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", in, got, want)
		}
	}
	if ValidHandle("12345") || !ValidHandle("9876543210") {
		t.Error("ValidHandle misclassified")
	}
	if got := DisplayHandle("9876543210"); got != "+91 98765 43210" {
		t.Errorf("DisplayHandle = %q", got)
	}
}

type hoursInput struct {
	Opening string `validate:"omitempty,hhmm"`
	Handle  string `validate:"required,handle"`
}

func TestCustomValidators(t *testing.T) {
	if err := Validate(hoursInput{Opening: "09:30", Handle: "9876543210"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	if err := Validate(hoursInput{Handle: "9876543210"}); err != nil {
		t.Fatalf("hours are optional, got %v", err)
	}
	for _, bad := range []hoursInput{
		{Opening: "9:30", Handle: "9876543210"},
		{Opening: "24:00", Handle: "9876543210"},
		{Opening: "09:30", Handle: "98765"},
	} {
		if err := Validate(bad); err == nil {
			t.Errorf("expected %+v to be rejected", bad)
		}
	}
}

func TestMustRegisterPanicsOnBadTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unregistrable tag")
		}
	}()
	mustRegister(validator.New(), "", func(fl validator.FieldLevel) bool { return true })
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("expected burst of two")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("expected third immediate request to be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other clients must have their own bucket")
	}

	now = now.Add(4 * time.Minute)
	rl.evict()
	if len(rl.clients) != 0 {
		t.Fatalf("expected idle clients to be evicted, got %d", len(rl.clients))
	}
}

func limitedApp(t *testing.T, rl *RateLimiter, configure ...iris.Configurator) *iris.Application {
	t.Helper()
	app := iris.New()
	app.Configure(configure...)
	app.Post("/login", rl.Handler(), func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusNoContent)
	})
	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func limitedRequest(app *iris.Application, remote, forwarded string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remote
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	app := limitedApp(t, NewRateLimiter(0.001, 1))

	if code := limitedRequest(app, "198.51.100.4:5000", "1.1.1.1"); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := limitedRequest(app, "198.51.100.4:5001", "1.1.1.2"); code != http.StatusTooManyRequests {
		t.Fatalf("expected a new X-Forwarded-For value to share the bucket, got %d", code)
	}
	if code := limitedRequest(app, "198.51.100.5:5000", ""); code != http.StatusNoContent {
		t.Fatalf("expected another address to have its own bucket, got %d", code)
	}
}

func TestRateLimiterBehindTrustedProxy(t *testing.T) {
	app := limitedApp(t, NewRateLimiter(0.001, 1), iris.WithRemoteAddrHeader("X-Forwarded-For"))

	// The proxy appends the real client; leading entries come from the client.
	if code := limitedRequest(app, "10.0.0.2:5000", "1.1.1.1, 203.0.113.7"); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := limitedRequest(app, "10.0.0.2:5000", "1.1.1.2, 203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("expected spoofed leading entries to share the bucket, got %d", code)
	}
	if code := limitedRequest(app, "10.0.0.2:5000", "203.0.113.8"); code != http.StatusNoContent {
		t.Fatalf("expected a different client behind the proxy to pass, got %d", code)
	}
}
