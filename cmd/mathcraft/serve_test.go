package main

// Notes:
// - newServeMux: we test routing, CORS preflight and the JSON protocol with
//   a fake converter; pandoc itself is covered in the remote package.
// - serve: we test that a canceled context shuts the server down cleanly.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/noirdeleroi/math-problem-craft/internal/remote"
)

// fakeConverter wraps its input in a paragraph.
type fakeConverter struct {
	err error
}

func (f fakeConverter) Convert(_ context.Context, latex string, _ remote.Options) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "<p>" + latex + "</p>", nil
}

func newTestServer(t *testing.T, conv remote.Converter) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	srv := httptest.NewServer(newServeMux(conv, logger))
	t.Cleanup(srv.Close)
	return srv, &logs
}

// ---------------------------------------------------------------------------
// TestServeMux - Routing and protocol
// ---------------------------------------------------------------------------

func TestServeMux_Convert(t *testing.T) {
	t.Parallel()

	srv, logs := newTestServer(t, fakeConverter{})

	resp, err := http.Post(srv.URL+convertLatexPath, "application/json", strings.NewReader(`{"latex":"$x$"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q", got)
	}

	var body remote.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(remote.Response{HTML: "<p>$x$</p>", Success: true}, body); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "path="+convertLatexPath) || !strings.Contains(logs.String(), "status=200") {
		t.Errorf("request not logged: %q", logs.String())
	}
}

func TestServeMux_Statuses(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, fakeConverter{err: io.ErrUnexpectedEOF})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"preflight", http.MethodOptions, convertLatexPath, "", http.StatusOK},
		{"wrong method", http.MethodGet, convertLatexPath, "", http.StatusMethodNotAllowed},
		{"empty latex", http.MethodPost, convertLatexPath, `{"latex":""}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, convertLatexPath, `{`, http.StatusBadRequest},
		{"bad format", http.MethodPost, convertLatexPath, `{"latex":"x","options":{"from":"latex; rm"}}`, http.StatusBadRequest},
		{"converter failure", http.MethodPost, convertLatexPath, `{"latex":"x"}`, http.StatusInternalServerError},
		{"health", http.MethodGet, healthPath, "", http.StatusNoContent},
		{"unknown path", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("%s %s: %v", tt.method, tt.path, err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestServeMux_ClientRoundTrip(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, fakeConverter{})
	client := remote.NewClient(srv.URL + convertLatexPath)

	html, err := client.Convert(context.Background(), `\frac{1}{2}`, remote.Options{})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if html != `<p>\frac{1}{2}</p>` {
		t.Errorf("Convert() = %q", html)
	}
}

// ---------------------------------------------------------------------------
// TestServe - Lifecycle
// ---------------------------------------------------------------------------

func TestServe_ShutdownOnCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	srv := &http.Server{Handler: newServeMux(fakeConverter{}, logger), ReadHeaderTimeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln, logger) }()

	resp, err := http.Get("http://" + ln.Addr().String() + healthPath)
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
	if !strings.Contains(logs.String(), "shutting down") {
		t.Errorf("logs = %q", logs.String())
	}
}

func TestRunServe_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(nil)
	if err := runServe(context.Background(), []string{"extra"}, env.Environment); exitCodeFor(err) != ExitUsage {
		t.Errorf("extra args error = %v, want usage", err)
	}
	if err := runServe(context.Background(), []string{"--addr", "256.0.0.1:bad"}, env.Environment); err == nil {
		t.Error("expected listen error")
	}
}
