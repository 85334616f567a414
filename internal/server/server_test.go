package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/vesaa/spellstacks/internal/config"
)

func testRoot() fstest.MapFS {
	return fstest.MapFS{
		"index.html":     {Data: []byte("<h1>Spellstacks</h1>")},
		"css/style.css":  {Data: []byte("body{}")},
		"js/game.js":     {Data: []byte("let x = 1;")},
		"data/words.txt": {Data: []byte("ant\ncat\ndog\n")},
		"logo.webp":      {Data: []byte("RIFF")},
		"fonts/a.woff2":  {Data: []byte("wOF2")},
		"blob.xyz":       {Data: []byte{0, 1, 2}},
		"docs/readme.md": {Data: []byte("# docs")},
	}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func assertDevHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestStaticFilesContentTypesAndHeaders(t *testing.T) {
	h := NewEngine(testRoot(), io.Discard)

	tests := []struct {
		path string
		ct   string
		body string
	}{
		{"/", "text/html", "<h1>Spellstacks</h1>"},
		{"/index.html", "text/html", "<h1>Spellstacks</h1>"},
		{"/css/style.css", "text/css", "body{}"},
		{"/js/game.js", "application/javascript", "let x = 1;"},
		{"/data/words.txt", "text/plain", "ant\ncat\ndog\n"},
		{"/logo.webp", "image/webp", "RIFF"},
		{"/fonts/a.woff2", "font/woff2", "wOF2"},
		{"/blob.xyz", "application/octet-stream", "\x00\x01\x02"},
		{"/data/words.txt?v=41", "text/plain", "ant\ncat\ndog\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.ct {
				t.Errorf("Content-Type = %q, want %q", got, tt.ct)
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q", rec.Body.String())
			}
			assertDevHeaders(t, rec)
		})
	}
}

func TestStaticNotFound(t *testing.T) {
	h := NewEngine(testRoot(), io.Discard)
	for _, p := range []string{"/missing.js", "/docs/", "/../etc/passwd", "/js/../../secret", "/data/../../index.html"} {
		rec := do(t, h, http.MethodGet, p)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", p, rec.Code)
		}
		assertDevHeaders(t, rec)
	}
}

func TestDotSegmentsInsideRoot(t *testing.T) {
	h := NewEngine(testRoot(), io.Discard)
	for p, want := range map[string]string{
		"/data/../index.html":        "<h1>Spellstacks</h1>",
		"/js/./game.js":              "let x = 1;",
		"/css/../data/../js/game.js": "let x = 1;",
	} {
		rec := do(t, h, http.MethodGet, p)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Errorf("%s: status = %d body = %q", p, rec.Code, rec.Body.String())
		}
		assertDevHeaders(t, rec)
	}
}

func TestResolve(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
		ok   bool
	}{
		{"/", ".", true},
		{"/index.html", "index.html", true},
		{"/data/../index.html", "index.html", true},
		{"/js//game.js", "js/game.js", true},
		{"/..", "", false},
		{"/../etc/passwd", "", false},
		{"/js/../../secret", "", false},
	} {
		got, ok := resolve(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("resolve(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDirectoryWithoutSlashRedirects(t *testing.T) {
	h := NewEngine(testRoot(), io.Discard)
	rec := do(t, h, http.MethodGet, "/css")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/css/" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	assertDevHeaders(t, rec)
}

func TestHeadAndMethodNotAllowed(t *testing.T) {
	h := NewEngine(testRoot(), io.Discard)

	rec := do(t, h, http.MethodHead, "/js/game.js")
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("HEAD: status = %d body = %q", rec.Code, rec.Body.String())
	}
	assertDevHeaders(t, rec)

	rec = do(t, h, http.MethodPost, "/index.html")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST: status = %d", rec.Code)
	}
	if rec.Header().Get("Allow") != "GET, HEAD" {
		t.Errorf("Allow = %q", rec.Header().Get("Allow"))
	}
	assertDevHeaders(t, rec)
}

func TestRequestLogLine(t *testing.T) {
	var logBuf bytes.Buffer
	h := NewEngine(testRoot(), &logBuf)
	do(t, h, http.MethodGet, "/js/game.js")

	line := logBuf.String()
	if !strings.HasPrefix(line, "[") || !strings.Contains(line, "] GET /js/game.js HTTP/1.1 200") {
		t.Fatalf("log line = %q", line)
	}
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", line)
	}
}

func TestContentType(t *testing.T) {
	for name, want := range map[string]string{
		"a.HTML":        "text/html",
		"a.jpg":         "image/jpeg",
		"a.svg":         "image/svg+xml",
		"favicon.ico":   "image/x-icon",
		"a.json":        "application/json",
		"a.gif":         "image/gif",
		"a.png":         "image/png",
		"f.woff":        "font/woff",
		"noextension":   "application/octet-stream",
		"archive.tar.x": "application/octet-stream",
	} {
		if got := ContentType(name); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestServeOnDiskRootAndStop(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{ServerHost: "127.0.0.1", RootDir: dir}
	root, _, err := RootFS(cfg)
	if err != nil {
		t.Fatalf("RootFS: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, ln, NewEngine(root, io.Discard)) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		cancel()
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "hello" || resp.Header.Get("Cache-Control") != CacheControl {
		t.Fatalf("body = %q headers = %v", body, resp.Header)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ServeListener returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServePortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	cfg := &config.Config{ServerHost: "127.0.0.1", Port: port, RootDir: t.TempDir()}
	err = Serve(context.Background(), cfg, io.Discard, func(string) {
		t.Error("ready called despite bind failure")
	})

	var inUse *PortInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("err = %v, want *PortInUseError", err)
	}
	if inUse.Port != port || !strings.Contains(inUse.Error(), "already in use") {
		t.Fatalf("unexpected error: %v", inUse)
	}
}

func TestRootFSErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{file, filepath.Join(t.TempDir(), "missing")} {
		if _, _, err := RootFS(&config.Config{RootDir: dir}); err == nil {
			t.Errorf("RootFS(%s): expected error", dir)
		}
	}
}

func TestEmbeddedRoot(t *testing.T) {
	root, label, err := RootFS(&config.Config{EmbeddedUI: true})
	if err != nil {
		t.Fatalf("RootFS: %v", err)
	}
	if label == "" {
		t.Error("empty label")
	}
	rec := do(t, NewEngine(root, io.Discard), http.MethodGet, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Spellstacks") {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}
