package sources

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/hrshadhin/hosts/internal/config"
	"github.com/hrshadhin/hosts/internal/hashing"
	"github.com/hrshadhin/hosts/internal/log"
)

func init() {
	log.DisableLogs()
}

func newSourceServer(body string, getCount *int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			return
		}
		*getCount++
		_, _ = w.Write([]byte(body))
	}))
}

func TestIsRemoteFileChanged(t *testing.T) {
	var getCount int
	server := newSourceServer("0123456789", &getCount)
	defer server.Close()

	tests := []struct {
		name        string
		currentSize int64
		expected    bool
	}{
		{"Remote grew", 5, true},
		{"Remote same size", 10, false},
		{"Remote shrank", 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRemoteFileChanged(tt.currentSize, server.URL); got != tt.expected {
				t.Errorf("IsRemoteFileChanged(%d) = %v, expected %v", tt.currentSize, got, tt.expected)
			}
		})
	}
}

func TestIsRemoteFileChangedToleratesBrokenSource(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	if IsRemoteFileChanged(0, notFound.URL) {
		t.Error("a 404 must report the remote file as unchanged")
	}

	unreachable := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	unreachable.Close()

	if IsRemoteFileChanged(0, unreachable.URL) {
		t.Error("a request error must report the remote file as unchanged")
	}
}

func TestFetchFile(t *testing.T) {
	body := "0.0.0.0 ɢoogle.com\r\n  127.0.0.1 example.com  \r\n"
	var getCount int
	server := newSourceServer(body, &getCount)
	defer server.Close()

	content, size, checksum, err := FetchFile(server.URL)
	if err != nil {
		t.Fatalf("FetchFile() failed: %v", err)
	}

	expected := "0.0.0.0 xn--oogle-wmc.com\n127.0.0.1 example.com\n"
	if string(content) != expected {
		t.Errorf("content = %q, expected %q", content, expected)
	}
	if size != int64(len(body)) {
		t.Errorf("size = %d, expected %d", size, len(body))
	}

	// The checksum hashes the raw response body, before line processing.
	sum, err := checksum.GetChecksum()
	if err != nil {
		t.Fatalf("GetChecksum() failed: %v", err)
	}
	if sum != hashing.ChecksumOf([]byte(body)) {
		t.Errorf("checksum = %s, expected the hash of the raw body", sum)
	}
}

func TestFetchFileErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"Not found", http.StatusNotFound},
		{"Server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			if _, _, _, err := FetchFile(server.URL); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestUpdateAll(t *testing.T) {
	body := "0.0.0.0 ɢoogle.com\r\n0.0.0.0 example.com\n"
	var getCount int
	server := newSourceServer(body, &getCount)
	defer server.Close()

	dir := t.TempDir()
	cfg := config.Default(dir)

	sourceDir := filepath.Join(dir, "sources", "some-provider")
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		t.Fatal(err)
	}
	infoPath := filepath.Join(sourceDir, "info.json")
	if err := SaveInfo(infoPath, &Info{Name: "some-provider", URL: server.URL}); err != nil {
		t.Fatal(err)
	}

	if err := UpdateAll(cfg); err != nil {
		t.Fatalf("UpdateAll() failed: %v", err)
	}

	cachePath := filepath.Join(sourceDir, "hosts")
	content, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("cache file was not written: %v", err)
	}
	expected := "0.0.0.0 xn--oogle-wmc.com\n0.0.0.0 example.com\n"
	if string(content) != expected {
		t.Errorf("cache content = %q, expected %q", content, expected)
	}

	if _, err := os.Stat(cachePath + ".md5"); err != nil {
		t.Errorf("checksum file was not written: %v", err)
	}

	info, err := LoadInfo(infoPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.FileSize != int64(len(body)) {
		t.Errorf("FileSize = %d, expected %d", info.FileSize, len(body))
	}
	if getCount != 1 {
		t.Fatalf("got %d fetches, expected 1", getCount)
	}

	// A second run sees an unchanged remote size and keeps the cache.
	if err := UpdateAll(cfg); err != nil {
		t.Fatalf("second UpdateAll() failed: %v", err)
	}
	if getCount != 1 {
		t.Errorf("got %d fetches after second run, expected the cache to be reused", getCount)
	}
}

func TestUpdateAllSkipsBrokenSource(t *testing.T) {
	body := "0.0.0.0 example.com\n"
	var getCount int
	server := newSourceServer(body, &getCount)
	defer server.Close()

	dir := t.TempDir()
	cfg := config.Default(dir)

	brokenDir := filepath.Join(dir, "sources", "a-broken")
	goodDir := filepath.Join(dir, "sources", "b-good")
	for _, sub := range []string{brokenDir, goodDir} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(brokenDir, "info.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := SaveInfo(filepath.Join(goodDir, "info.json"), &Info{Name: "b-good", URL: server.URL}); err != nil {
		t.Fatal(err)
	}

	if err := UpdateAll(cfg); err != nil {
		t.Fatalf("UpdateAll() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(goodDir, "hosts")); err != nil {
		t.Errorf("healthy source was not updated: %v", err)
	}
}

func TestIsFileChanged(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "hosts")
	content := []byte("0.0.0.0 example.com\n")

	// Feed the data through the proxy the way a download would.
	proxyFor := func(data []byte) hashing.ChecksumProvider {
		proxy := hashing.NewMD5ReaderProxy(bytes.NewReader(data))
		if _, err := io.ReadAll(proxy); err != nil {
			t.Fatal(err)
		}
		return proxy
	}

	// No cache file yet: always changed.
	if changed, err := IsFileChanged(proxyFor(content), cachePath); err != nil || !changed {
		t.Errorf("IsFileChanged() = (%v, %v), expected a missing cache to count as changed", changed, err)
	}

	if err := os.WriteFile(cachePath, content, 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteChecksum(proxyFor(content), cachePath); err != nil {
		t.Fatalf("WriteChecksum() failed: %v", err)
	}

	if changed, err := IsFileChanged(proxyFor(content), cachePath); err != nil || changed {
		t.Errorf("IsFileChanged() = (%v, %v), expected identical content to count as unchanged", changed, err)
	}

	if changed, err := IsFileChanged(proxyFor([]byte("0.0.0.0 other.com\n")), cachePath); err != nil || !changed {
		t.Errorf("IsFileChanged() = (%v, %v), expected new content to count as changed", changed, err)
	}
}
