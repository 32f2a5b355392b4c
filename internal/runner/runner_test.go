package runner

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"pixelfin/internal/artwork"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// newTestServer serves a minimal media server: one user, one movie
// library with two items, and image bytes for every tagged slot.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	small := pngBytes(t, 100, 150)
	large := pngBytes(t, 600, 900)

	mux := http.NewServeMux()
	mux.HandleFunc("/Users", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{ //nolint:errcheck
			{"Id": "u1", "Name": "admin", "IsHidden": false},
		})
	})
	mux.HandleFunc("/Users/u1/Views", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"Items": []map[string]interface{}{
				{"Id": "lib1", "Name": "Movies", "Type": "CollectionFolder", "CollectionType": "movie"},
			},
		})
	})
	mux.HandleFunc("/Users/u1/Items", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"Items": []map[string]interface{}{
				{
					"Id": "m1", "Name": "Alpha", "Type": "Movie", "ProductionYear": 2001,
					"ImageTags":         map[string]string{"Primary": "tag-p"},
					"BackdropImageTags": []string{"tag-b0", "tag-b1"},
				},
				{
					"Id": "m2", "Name": "Beta", "Type": "Movie", "ProductionYear": 1999,
					"ImageTags": map[string]string{"Primary": "tag-p2"},
				},
			},
		})
	})
	mux.HandleFunc("/Items/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if strings.Contains(r.URL.Path, "/m1/Images/Primary") {
			w.Write(small) //nolint:errcheck
			return
		}
		w.Write(large) //nolint:errcheck
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(server string) Config {
	return Config{
		Server:  server,
		APIKey:  "key",
		Library: "Movies",
		Types:   []artwork.Type{artwork.TypePrimary, artwork.TypeBackdrop},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing server", func(c *Config) { c.Server = "" }, true},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"missing library", func(c *Config) { c.Library = "" }, true},
		{"no tracked types", func(c *Config) { c.Types = nil }, true},
		{"negative width threshold", func(c *Config) { c.Thresholds.MinWidth = -1 }, true},
		{"negative height threshold", func(c *Config) { c.Thresholds.MinHeight = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("http://example.test")
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestExecuteHTML(t *testing.T) {
	srv := newTestServer(t)
	outputDir := t.TempDir()
	r := New(nil, outputDir)

	cfg := testConfig(srv.URL)
	cfg.Thresholds = artwork.Thresholds{MinWidth: 300}

	res, err := r.Execute(context.Background(), KindHTML, cfg)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Summary.Items != 2 {
		t.Errorf("summary items = %d, want 2", res.Summary.Items)
	}
	if res.Summary.LowRes != 1 {
		t.Errorf("summary low-res = %d, want 1 (Alpha's small primary)", res.Summary.LowRes)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}

	if !strings.HasPrefix(res.ArtifactPath, "Movies"+string(filepath.Separator)) {
		t.Errorf("artifact path %q not under library folder", res.ArtifactPath)
	}
	if !strings.HasSuffix(res.ArtifactPath, " - Movies.html") {
		t.Errorf("artifact path %q missing library suffix", res.ArtifactPath)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, res.ArtifactPath))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	html := string(data)
	for _, want := range []string{"Alpha (2001)", "Beta (1999)", "100x150", "600x900"} {
		if !strings.Contains(html, want) {
			t.Errorf("artifact missing %q", want)
		}
	}

	// No leftover temp files from the atomic write.
	entries, err := os.ReadDir(filepath.Join(outputDir, "Movies"))
	if err != nil {
		t.Fatalf("failed to list output: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one artifact, found %d entries", len(entries))
	}
}

func TestExecuteZip(t *testing.T) {
	srv := newTestServer(t)
	outputDir := t.TempDir()
	r := New(nil, outputDir)

	cfg := testConfig(srv.URL)
	cfg.ZipBaseNames = map[artwork.Type]string{artwork.TypeBackdrop: "bg"}

	res, err := r.Execute(context.Background(), KindZIP, cfg)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasSuffix(res.ArtifactPath, " - Movies.zip") {
		t.Errorf("artifact path %q missing zip suffix", res.ArtifactPath)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, res.ArtifactPath))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("artifact is not a valid zip: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"Alpha (2001)/cover.png",
		"Alpha (2001)/bg01.png",
		"Alpha (2001)/bg02.png",
		"Beta (1999)/cover.png",
	} {
		if !names[want] {
			t.Errorf("archive missing entry %q (have %v)", want, names)
		}
	}
}

func TestExecuteRejectsConcurrentRun(t *testing.T) {
	outputDir := t.TempDir()
	r := New(nil, outputDir)

	other := flock.New(filepath.Join(outputDir, ".pixelfin.lock"))
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("failed to take competing lock: %v (locked=%v)", err, locked)
	}
	defer other.Unlock() //nolint:errcheck

	_, err = r.Execute(context.Background(), KindHTML, testConfig("http://example.test"))
	if !errors.Is(err, ErrRunActive) {
		t.Errorf("Execute() with held lock = %v, want ErrRunActive", err)
	}
}

func TestExecuteUnknownLibrary(t *testing.T) {
	srv := newTestServer(t)
	r := New(nil, t.TempDir())

	cfg := testConfig(srv.URL)
	cfg.Library = "Cartoons"

	if _, err := r.Execute(context.Background(), KindHTML, cfg); err == nil {
		t.Error("expected error for unknown library")
	}
}
