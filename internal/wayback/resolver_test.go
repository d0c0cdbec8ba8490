package wayback

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"goWayback/internal/config"
)

func testResolver(availabilityURL string) *Resolver {
	cfg := config.Default()
	cfg.BaseURL = "https://wiki.example"
	cfg.AvailabilityURL = availabilityURL
	return NewResolver(cfg, zap.NewNop())
}

func TestResolveReturnsVerbatimReplayURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("timestamp"); got != "20230302" {
			t.Errorf("timestamp query = %q, want %q", got, "20230302")
		}
		if got := r.URL.Query().Get("url"); got != "https://wiki.example/commands/builtin/echo" {
			t.Errorf("url query = %q", got)
		}
		_, _ = io.WriteString(w, `{"archived_snapshots":{"closest":{
			"available":true,"status":"200","timestamp":"20230302123456",
			"url":"http://web.archive.org/web/20230302123456/https://wiki.example/commands/builtin/echo"}}}`)
	}))
	defer ts.Close()

	r := testResolver(ts.URL)
	got, err := r.Resolve("commands/builtin/echo", "")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := "http://web.archive.org/web/20230302123456id_/https://wiki.example/commands/builtin/echo"
	if got != want {
		t.Errorf("Resolve got %q, want %q", got, want)
	}
}

func TestResolveAppendsURLSuffix(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://wiki.example/start?do=edit" {
			t.Errorf("url query = %q", got)
		}
		_, _ = io.WriteString(w, `{"archived_snapshots":{"closest":{
			"available":true,"status":"200","timestamp":"20230302000000",
			"url":"http://web.archive.org/web/20230302000000/https://wiki.example/start?do=edit"}}}`)
	}))
	defer ts.Close()

	r := testResolver(ts.URL)
	got, err := r.Resolve("start", "?do=edit")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !strings.Contains(got, "20230302000000id_") {
		t.Errorf("expected id_ marker in %q", got)
	}
}

func TestResolveNoSnapshot(t *testing.T) {
	cases := map[string]string{
		"empty":      `{"archived_snapshots":{}}`,
		"no closest": `{}`,
		"non-200":    `{"archived_snapshots":{"closest":{"available":true,"status":"404","timestamp":"20230302000000","url":"http://web.archive.org/web/20230302000000/x"}}}`,
		"no flag":    `{"archived_snapshots":{"closest":{"available":false,"status":"200","timestamp":"20230302000000","url":"http://web.archive.org/web/20230302000000/x"}}}`,
		"bad json":   `not json`,
	}
	for name, body := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))
		r := testResolver(ts.URL)
		_, err := r.Resolve("start", "")
		if !errors.Is(err, ErrNoSnapshot) {
			t.Errorf("%s: expected ErrNoSnapshot, got %v", name, err)
		}
		ts.Close()
	}
}

func TestResolveTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // сервер уже погашен

	r := testResolver(ts.URL)
	_, err := r.Resolve("start", "")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot on transport failure, got %v", err)
	}
}

func TestResolveAvailabilityHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	r := testResolver(ts.URL)
	_, err := r.Resolve("start", "")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot on HTTP 500, got %v", err)
	}
}

func TestInsertID(t *testing.T) {
	cases := map[string]string{
		"http://web.archive.org/web/20230302123456/https://wiki.example/start": "http://web.archive.org/web/20230302123456id_/https://wiki.example/start",
		"too/short": "too/short",
	}
	for in, want := range cases {
		if got := insertID(in); got != want {
			t.Errorf("insertID(%q) = %q, want %q", in, got, want)
		}
	}
}
