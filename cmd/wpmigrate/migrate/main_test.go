package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	wpmigrate "github.com/polything/go-wpmigrate"
	"github.com/polything/go-wpmigrate/cmd/wpmigrate/internal/bootstrap"
)

const postsJSON = `[{"id":1,"date_gmt":"2024-03-05T10:15:00","modified_gmt":"2024-03-05T10:15:00","slug":"hello-world","link":"https://old.example.com/hello-world/","title":{"rendered":"Hello world"},"content":{"rendered":"<p>Hello from WordPress.</p>"},"categories":[1],"tags":[],"meta":[]}]`

func wordpressServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WP-TotalPages", "1")
		switch r.URL.Path {
		case "/wp-json/wp/v2/posts":
			_, _ = w.Write([]byte(postsJSON))
		case "/wp-json/wp/v2/media":
			_, _ = w.Write([]byte("[]"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func useServer(t *testing.T, srv *httptest.Server) {
	t.Helper()
	previous := moduleBuilder
	moduleBuilder = func(opts bootstrap.Options) (*bootstrap.Module, error) {
		opts.Configure = func(cfg *wpmigrate.Config) {
			cfg.Logging.Provider = "none"
			cfg.WordPress.APIURL = srv.URL + "/wp-json/wp/v2"
		}
		return bootstrap.BuildModule(opts)
	}
	t.Cleanup(func() { moduleBuilder = previous })
}

func TestRunMigratesAndWritesRedirects(t *testing.T) {
	useServer(t, wordpressServer(t))
	out := t.TempDir()
	redirects := filepath.Join(t.TempDir(), "redirects.json")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-out", out, "-types", "post", "-redirects", redirects}, &stdout)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "Export: 1 written") {
		t.Fatalf("unexpected report %s", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(out, "posts", "hello-world.mdx")); err != nil {
		t.Fatalf("expected exported file: %v", err)
	}

	data, err := os.ReadFile(redirects)
	if err != nil {
		t.Fatalf("read redirects: %v", err)
	}
	var got []wpmigrate.Redirect
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode redirects: %v", err)
	}
	if len(got) != 1 || got[0].To != "/blog/hello-world" {
		t.Fatalf("unexpected redirects %+v", got)
	}
}

func TestRunDryRunWritesReportFile(t *testing.T) {
	useServer(t, wordpressServer(t))
	out := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	err := run(context.Background(), []string{"-out", out, "-types", "post", "-dry-run", "-format", "json", "-report", reportPath}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), `"dryRun": true`) {
		t.Fatalf("expected dry run report, got %s", data)
	}
	if entries, _ := os.ReadDir(out); len(entries) != 0 {
		t.Fatalf("dry run wrote %d entries", len(entries))
	}
}

func TestRunRejectsUnknownTypes(t *testing.T) {
	useServer(t, wordpressServer(t))
	err := run(context.Background(), []string{"-out", t.TempDir(), "-types", "product"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}
