// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/lambelambe/internal/httputil"
	"github.com/pdiddy/lambelambe/pkg/types"
)

var fakeJPEG = []byte("\xff\xd8\xff\xe0fake-jpeg-bytes")

// newProfileServer serves cpj-style people pages under /people/<slug>/ and
// their photos under /img/.
func newProfileServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/people/rami-ayyad/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Rami Ayyad</h1><img id="photoUrl" src="/img/rami.jpg"></body></html>`)
	})
	mux.HandleFunc("/people/mona-png/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><img id="photoUrl" src="../../img/mona.png?w=300"></body></html>`)
	})
	mux.HandleFunc("/people/no-photo/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><img id="photoUrl" src=""></body></html>`)
	})
	mux.HandleFunc("/people/broken-photo/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><img id="photoUrl" src="/img/missing.jpg"></body></html>`)
	})
	mux.HandleFunc("/img/rami.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write(fakeJPEG)
	})
	mux.HandleFunc("/img/mona.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\x89PNG fake"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func testDeps(ts *httptest.Server) Deps {
	c := httputil.NewClient(ts.Client(), "lambelambe-test/0.1", 0)
	return Deps{
		Client:   c,
		Renderer: StaticRenderer{Client: c},
		Now:      func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

func testConfig(dir string) types.AcquisitionConfig {
	return types.AcquisitionConfig{
		CacheDir: filepath.Join(dir, "profile_pictures"),
		Selector: DefaultSelector,
		Render:   types.RenderStatic,
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestAcquireImage(t *testing.T) {
	ts := newProfileServer(t)
	defer ts.Close()

	tests := []struct {
		name       string
		journalist types.Journalist
		wantStatus types.AcquireStatus
		wantFile   string
		wantErr    bool
	}{
		{
			name:       "downloads jpg",
			journalist: types.Journalist{Name: "Rami Ayyad", ProfileURL: ts.URL + "/people/rami-ayyad/"},
			wantStatus: types.StatusDownloaded,
			wantFile:   "Rami Ayyad.jpg",
		},
		{
			name:       "extension from relative url path",
			journalist: types.Journalist{Name: "Mona", ProfileURL: ts.URL + "/people/mona-png/"},
			wantStatus: types.StatusDownloaded,
			wantFile:   "Mona.png",
		},
		{
			name:       "unsafe characters stripped",
			journalist: types.Journalist{Name: `Ali "Abu" Sami?`, ProfileURL: ts.URL + "/people/rami-ayyad/"},
			wantStatus: types.StatusDownloaded,
			wantFile:   "Ali Abu Sami.jpg",
		},
		{
			name:       "no profile url",
			journalist: types.Journalist{Name: "Anonymous"},
			wantStatus: types.StatusNoSource,
		},
		{
			name:       "empty photo src",
			journalist: types.Journalist{Name: "No Photo", ProfileURL: ts.URL + "/people/no-photo/"},
			wantStatus: types.StatusNoImage,
		},
		{
			name:       "page not found",
			journalist: types.Journalist{Name: "Gone", ProfileURL: ts.URL + "/people/gone/"},
			wantStatus: types.StatusFailed,
			wantErr:    true,
		},
		{
			name:       "image not found",
			journalist: types.Journalist{Name: "Broken", ProfileURL: ts.URL + "/people/broken-photo/"},
			wantStatus: types.StatusFailed,
			wantErr:    true,
		},
		{
			name:       "malformed profile url",
			journalist: types.Journalist{Name: "Bad URL", ProfileURL: "cpj.org/people/bad"},
			wantStatus: types.StatusFailed,
			wantErr:    true,
		},
		{
			name:       "name with no usable characters",
			journalist: types.Journalist{Name: `???`, ProfileURL: ts.URL + "/people/rami-ayyad/"},
			wantStatus: types.StatusFailed,
			wantErr:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t.TempDir())
			a, err := AcquireImage(context.Background(), testDeps(ts), tt.journalist, cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if a.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", a.Status, tt.wantStatus)
			}
			if tt.wantErr && a.Error == "" {
				t.Error("failed attempt should carry an error message")
			}
			if a.Name != tt.journalist.Name {
				t.Errorf("Name = %q, want %q", a.Name, tt.journalist.Name)
			}
			if tt.wantFile == "" {
				if _, err := os.Stat(cfg.CacheDir); err == nil && len(listDir(t, cfg.CacheDir)) > 0 {
					t.Errorf("cache should be empty, got %v", listDir(t, cfg.CacheDir))
				}
				return
			}
			want := filepath.Join(cfg.CacheDir, tt.wantFile)
			if a.FilePath != want {
				t.Errorf("FilePath = %q, want %q", a.FilePath, want)
			}
			if _, err := os.Stat(want); err != nil {
				t.Errorf("expected file %s: %v", want, err)
			}
		})
	}
}

func TestAcquireImageReplacesOtherExtension(t *testing.T) {
	ts := newProfileServer(t)
	defer ts.Close()

	cfg := testConfig(t.TempDir())
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(cfg.CacheDir, "Rami Ayyad.webp")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	j := types.Journalist{Name: "Rami Ayyad", ProfileURL: ts.URL + "/people/rami-ayyad/"}
	if _, err := AcquireImage(context.Background(), testDeps(ts), j, cfg); err != nil {
		t.Fatalf("AcquireImage: %v", err)
	}

	got := listDir(t, cfg.CacheDir)
	if len(got) != 1 || got[0] != "Rami Ayyad.jpg" {
		t.Errorf("cache = %v, want [Rami Ayyad.jpg]", got)
	}
}

type recorded struct {
	mu       sync.Mutex
	attempts []types.Attempt
	err      error
}

func (r *recorded) Record(_ context.Context, a types.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
	return r.err
}

func TestAcquireBatch(t *testing.T) {
	ts := newProfileServer(t)
	defer ts.Close()

	records := []types.Journalist{
		{Name: "Rami Ayyad", ProfileURL: ts.URL + "/people/rami-ayyad/", Row: 2},
		{Name: "Gone", ProfileURL: ts.URL + "/people/gone/", Row: 3},
		{Name: "No Photo", ProfileURL: ts.URL + "/people/no-photo/", Row: 4},
		{Name: "Anonymous", Row: 5},
		{Name: "Mona", ProfileURL: ts.URL + "/people/mona-png/", Row: 6},
	}

	rec := &recorded{err: errors.New("disk full")}
	d := testDeps(ts)
	d.Recorder = rec
	cfg := testConfig(t.TempDir())
	var buf bytes.Buffer

	result := AcquireBatch(context.Background(), d, records, cfg, &buf)

	if result.Downloaded != 2 {
		t.Errorf("Downloaded = %d, want 2", result.Downloaded)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if result.NoImage != 1 {
		t.Errorf("NoImage = %d, want 1", result.NoImage)
	}
	if result.NoSource != 1 {
		t.Errorf("NoSource = %d, want 1", result.NoSource)
	}
	if result.Total() != len(records) {
		t.Errorf("Total = %d, want %d", result.Total(), len(records))
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}

	// Recorder errors are logged, not fatal.
	if len(rec.attempts) != len(records) {
		t.Fatalf("recorded %d attempts, want %d", len(rec.attempts), len(records))
	}
	for i, a := range rec.attempts {
		if a.Row != records[i].Row {
			t.Errorf("attempt %d row = %d, want %d", i, a.Row, records[i].Row)
		}
	}

	out := buf.String()
	for _, want := range []string{"[1/5] Rami Ayyad", "[5/5] Mona", "failed:", "no image found", "no profile URL", "Batch summary:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	got := listDir(t, cfg.CacheDir)
	want := []string{"Mona.png", "Rami Ayyad.jpg"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("cache = %v, want %v", got, want)
	}
}

func TestAcquireBatchIdempotent(t *testing.T) {
	ts := newProfileServer(t)
	defer ts.Close()

	records := []types.Journalist{
		{Name: "Rami Ayyad", ProfileURL: ts.URL + "/people/rami-ayyad/"},
		{Name: "Mona", ProfileURL: ts.URL + "/people/mona-png/"},
	}
	cfg := testConfig(t.TempDir())

	var buf bytes.Buffer
	AcquireBatch(context.Background(), testDeps(ts), records, cfg, &buf)
	first := listDir(t, cfg.CacheDir)

	AcquireBatch(context.Background(), testDeps(ts), records, cfg, &buf)
	second := listDir(t, cfg.CacheDir)

	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Errorf("second run changed cache: %v then %v", first, second)
	}
	data, err := os.ReadFile(filepath.Join(cfg.CacheDir, "Rami Ayyad.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, fakeJPEG) {
		t.Error("cached image content changed")
	}
}

func TestAcquireBatchCancelled(t *testing.T) {
	ts := newProfileServer(t)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []types.Journalist{
		{Name: "Rami Ayyad", ProfileURL: ts.URL + "/people/rami-ayyad/"},
		{Name: "Mona", ProfileURL: ts.URL + "/people/mona-png/"},
	}
	var buf bytes.Buffer
	result := AcquireBatch(ctx, testDeps(ts), records, testConfig(t.TempDir()), &buf)

	if result.Total() != 0 {
		t.Errorf("Total = %d, want 0", result.Total())
	}
	if !strings.Contains(buf.String(), "stopped: 2 record(s) not processed") {
		t.Errorf("output = %q", buf.String())
	}
}

type countingRenderer struct {
	calls int
	html  string
}

func (c *countingRenderer) Render(context.Context, string) (string, error) {
	c.calls++
	return c.html, nil
}

func TestPacedRenderer(t *testing.T) {
	inner := &countingRenderer{html: "<html></html>"}
	c := httputil.NewClient(http.DefaultClient, "", 40*time.Millisecond)
	r := Paced(inner, c)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := r.Render(context.Background(), "https://cpj.org/data/people/x/"); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Errorf("three paced renders took %v, want at least 80ms spacing", elapsed)
	}
}
