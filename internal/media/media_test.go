package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"creative.jpg", "creative.jpg"},
		{`ad<1>:"final".jpg`, "ad_1___final_.jpg"},
		{"spaced name.png", "spaced name.png"},
		{"CON.txt", "safe_CON.txt"},
		{"com3", "safe_com3"},
		{"lpt10.bin", "lpt10.bin"},
		{"...", "unnamed"},
		{"", "unnamed"},
		{"trailing dots...", "trailing dots"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFilenameTruncation(t *testing.T) {
	long := strings.Repeat("a", 300) + ".webp"
	got := SanitizeFilename(long)
	if len(got) > maxFilenameLen {
		t.Fatalf("len = %d", len(got))
	}
	if !strings.HasSuffix(got, ".webp") {
		t.Fatalf("extension lost: %q", got)
	}
}

func TestDownloadAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing.jpg") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	d := NewDownloader(Options{Dir: t.TempDir(), Concurrency: 2}, zerolog.Nop())

	urls := []string{
		srv.URL + "/a/creative.jpg",
		srv.URL + "/b/creative.jpg",
		srv.URL + "/missing.jpg",
		srv.URL + "/a/creative.jpg", // duplicate, fetched once
	}
	res, err := d.DownloadAll(context.Background(), urls)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Saved) != 2 {
		t.Fatalf("saved = %v", res.Saved)
	}
	if res.Saved[urls[0]] == res.Saved[urls[1]] {
		t.Error("same-named files from different paths collided")
	}
	if len(res.Failed) != 1 || !strings.HasSuffix(res.Failed[0], "missing.jpg") {
		t.Fatalf("failed = %v", res.Failed)
	}
}

func TestDownloadRetryPass(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fail the first attempt, succeed on retry.
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	d := NewDownloader(Options{Dir: t.TempDir(), RetryPasses: 1}, zerolog.Nop())

	res, err := d.DownloadAll(context.Background(), []string{srv.URL + "/flaky.png"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Failed) != 0 || len(res.Saved) != 1 {
		t.Fatalf("saved=%v failed=%v", res.Saved, res.Failed)
	}
}
