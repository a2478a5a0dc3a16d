package apihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mpvremote/internal/domain"
	"mpvremote/internal/usecase"
)

type fakeStartPlayback struct {
	called int
	req    domain.PlayRequest
	err    error
}

func (f *fakeStartPlayback) Execute(ctx context.Context, req domain.PlayRequest) error {
	f.called++
	f.req = req
	return f.err
}

type fakeTogglePlayback struct {
	called int
	err    error
}

func (f *fakeTogglePlayback) Execute(ctx context.Context) error {
	f.called++
	return f.err
}

type fakeHealth struct {
	snapshot domain.PlayerHealth
}

func (f *fakeHealth) Snapshot() domain.PlayerHealth {
	return f.snapshot
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(start StartPlaybackUseCase, opts ...ServerOption) *Server {
	opts = append([]ServerOption{WithLogger(quietLogger())}, opts...)
	return NewServer(start, opts...)
}

func postPlay(t *testing.T, server http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/play", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func assertBody(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error.Code
}

func TestIndexServesControlPage(t *testing.T) {
	server := newTestServer(&fakeStartPlayback{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, needle := range []string{"<form", "'/play'", "'/pause'", "'/unpause'", "application/json"} {
		if !strings.Contains(body, needle) {
			t.Fatalf("control page missing %q", needle)
		}
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	server := newTestServer(&fakeStartPlayback{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "not_found" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestPlaySuccess(t *testing.T) {
	start := &fakeStartPlayback{}
	server := newTestServer(start)

	rec := postPlay(t, server, `{"url":" https://example.com/movie.mkv ","state":"paused"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertBody(t, rec, `{"status":"success","data":"Playback started."}`)
	if start.called != 1 {
		t.Fatalf("expected use case called once, got %d", start.called)
	}
	if start.req.URL != "https://example.com/movie.mkv" {
		t.Fatalf("unexpected url %q", start.req.URL)
	}
	if !start.req.StartPaused() {
		t.Fatal("expected paused start")
	}
}

func TestPlayIgnoresUnknownFields(t *testing.T) {
	start := &fakeStartPlayback{}
	server := newTestServer(start)

	rec := postPlay(t, server, `{"url":"a.mkv","state":"playing","volume":50}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if start.req.StartPaused() {
		t.Fatal("expected playing start")
	}
}

func TestPlayAcceptsTrailingWhitespace(t *testing.T) {
	start := &fakeStartPlayback{}
	server := newTestServer(start)

	rec := postPlay(t, server, "{\"url\":\"a.mkv\",\"state\":\"playing\"}\n  ")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if start.called != 1 {
		t.Fatalf("expected one call, got %d", start.called)
	}
}

func TestPlayPlayerFailure(t *testing.T) {
	start := &fakeStartPlayback{err: errors.New("player error: mpv: loadfile: error running command")}
	server := newTestServer(start)

	rec := postPlay(t, server, `{"url":"a.mkv","state":"playing"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertBody(t, rec, `{"status":"error","data":"player error: mpv: loadfile: error running command"}`)
}

func TestPlayRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bogus state", body: `{"url":"a.mkv","state":"stopped"}`},
		{name: "state wrong type", body: `{"url":"a.mkv","state":1}`},
		{name: "missing state", body: `{"url":"a.mkv"}`},
		{name: "missing url", body: `{"state":"playing"}`},
		{name: "blank url", body: `{"url":"   ","state":"playing"}`},
		{name: "malformed json", body: `{"url":`},
		{name: "empty body", body: ``},
		{name: "trailing garbage", body: `{"url":"a.mkv","state":"playing"}garbage`},
		{name: "second object", body: `{"url":"a.mkv","state":"playing"}{"url":"b.mkv","state":"paused"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := &fakeStartPlayback{}
			server := newTestServer(start)

			rec := postPlay(t, server, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if code := decodeErrorCode(t, rec); code != "invalid_request" {
				t.Fatalf("unexpected error code %q", code)
			}
			if start.called != 0 {
				t.Fatal("use case must not be called for a rejected request")
			}
		})
	}
}

func TestPlayBogusStateMessage(t *testing.T) {
	server := newTestServer(&fakeStartPlayback{})

	rec := postPlay(t, server, `{"url":"a.mkv","state":"stopped"}`)

	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != `invalid state: expected "playing" or "paused"` {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
}

func TestPlayRequiresJSONContentType(t *testing.T) {
	start := &fakeStartPlayback{}
	server := newTestServer(start)

	req := httptest.NewRequest(http.MethodPost, "/play", bytes.NewBufferString(`{"url":"a","state":"playing"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
	if start.called != 0 {
		t.Fatal("use case must not be called")
	}
}

func TestPlayAcceptsJSONWithCharset(t *testing.T) {
	start := &fakeStartPlayback{}
	server := newTestServer(start)

	req := httptest.NewRequest(http.MethodPost, "/play", bytes.NewBufferString(`{"url":"a","state":"playing"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || start.called != 1 {
		t.Fatalf("expected accepted request, got %d (called %d)", rec.Code, start.called)
	}
}

func TestPlayBodyTooLarge(t *testing.T) {
	start := &fakeStartPlayback{}
	server := newTestServer(start)

	huge := `{"url":"` + strings.Repeat("a", maxPlayRequestBytes) + `","state":"playing"}`
	rec := postPlay(t, server, huge)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if start.called != 0 {
		t.Fatal("use case must not be called")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(&fakeStartPlayback{},
		WithPausePlayback(&fakeTogglePlayback{}),
		WithResumePlayback(&fakeTogglePlayback{}),
	)

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/play"},
		{method: http.MethodPost, path: "/pause"},
		{method: http.MethodPost, path: "/unpause"},
		{method: http.MethodDelete, path: "/"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tt.method, tt.path, rec.Code)
		}
	}
}

func TestPauseAndUnpause(t *testing.T) {
	pause := &fakeTogglePlayback{}
	resume := &fakeTogglePlayback{}
	server := newTestServer(&fakeStartPlayback{},
		WithPausePlayback(pause),
		WithResumePlayback(resume),
	)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pause", nil))
	assertBody(t, rec, `{"status":"success","data":"Paused playback."}`)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unpause", nil))
	assertBody(t, rec, `{"status":"success","data":"Playback resumed."}`)

	if pause.called != 1 || resume.called != 1 {
		t.Fatalf("unexpected calls pause=%d resume=%d", pause.called, resume.called)
	}
}

func TestPauseConflictReportsCurrentState(t *testing.T) {
	pause := &fakeTogglePlayback{err: &usecase.StateConflictError{State: domain.Paused()}}
	resume := &fakeTogglePlayback{err: &usecase.StateConflictError{State: domain.Playing()}}
	server := newTestServer(&fakeStartPlayback{},
		WithPausePlayback(pause),
		WithResumePlayback(resume),
	)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pause", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assertBody(t, rec, `{"status":"error","data":"paused"}`)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unpause", nil))
	assertBody(t, rec, `{"status":"error","data":"playing"}`)
}

func TestPausePlayerFailure(t *testing.T) {
	pause := &fakeTogglePlayback{err: errors.New("player error: player spawn failed: binary not found")}
	server := newTestServer(&fakeStartPlayback{}, WithPausePlayback(pause))

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pause", nil))

	assertBody(t, rec, `{"status":"error","data":"player error: player spawn failed: binary not found"}`)
}

func TestUnconfiguredUseCases(t *testing.T) {
	server := newTestServer(nil)

	for _, path := range []string{"/pause", "/unpause"} {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("%s: expected 501, got %d", path, rec.Code)
		}
	}

	rec := postPlay(t, server, `{"url":"a","state":"playing"}`)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("/play: expected 501, got %d", rec.Code)
	}
}

func TestPlayerHealth(t *testing.T) {
	now := time.Now().UTC()
	health := &fakeHealth{snapshot: domain.PlayerHealth{
		Connected:   true,
		SocketPath:  "/tmp/mpvsocket",
		Spawns:      1,
		LastSpawnAt: &now,
	}}
	server := newTestServer(&fakeStartPlayback{}, WithPlayerHealth(health))

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/health/player", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp playerHealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || !resp.Connected || resp.Spawns != 1 || resp.SocketPath != "/tmp/mpvsocket" {
		t.Fatalf("unexpected health response: %+v", resp)
	}
}

func TestPlayerHealthDegraded(t *testing.T) {
	recent := time.Now().Add(-30 * time.Second)
	old := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		server   *Server
		degraded bool
	}{
		{
			name:     "not configured",
			server:   newTestServer(&fakeStartPlayback{}),
			degraded: true,
		},
		{
			name: "recent failure while disconnected",
			server: newTestServer(&fakeStartPlayback{}, WithPlayerHealth(&fakeHealth{snapshot: domain.PlayerHealth{
				LastError:   "player unavailable",
				LastErrorAt: &recent,
			}})),
			degraded: true,
		},
		{
			name: "old failure",
			server: newTestServer(&fakeStartPlayback{}, WithPlayerHealth(&fakeHealth{snapshot: domain.PlayerHealth{
				LastError:   "player unavailable",
				LastErrorAt: &old,
			}})),
		},
		{
			name:   "never connected",
			server: newTestServer(&fakeStartPlayback{}, WithPlayerHealth(&fakeHealth{})),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.server.BuildPlayerHealth()
			if got := resp.Status == "degraded"; got != tt.degraded {
				t.Fatalf("degraded = %v, want %v (%+v)", got, tt.degraded, resp)
			}
			if tt.degraded && len(resp.Issues) == 0 {
				t.Fatal("degraded response must list issues")
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(&fakeStartPlayback{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPreflightRequest(t *testing.T) {
	start := &fakeStartPlayback{}
	server := newTestServer(start, WithAllowedOrigins([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodOptions, "/play", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if start.called != 0 {
		t.Fatal("preflight must not reach the handler")
	}
}

func TestPreflightWithoutWhitelistSendsNoCORSHeaders(t *testing.T) {
	start := &fakeStartPlayback{}
	server := newTestServer(start)

	req := httptest.NewRequest(http.MethodOptions, "/play", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin, got %q", got)
	}
	if start.called != 0 {
		t.Fatal("preflight must not reach the handler")
	}
}
