package sources

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSortSources(t *testing.T) {
	sources := []string{
		"sources/Zeta_List/info.json",
		"sources/some-provider/info.json",
		"sources/hrshadhin-base/info.json",
		"sources/alpha list/info.json",
	}

	got := SortSources(sources)

	expected := []string{
		"sources/hrshadhin-base/info.json",
		"sources/alpha list/info.json",
		"sources/some-provider/info.json",
		"sources/Zeta_List/info.json",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("SortSources() = %v, expected %v", got, expected)
	}
}

func TestSortSourcesDoesNotMutateInput(t *testing.T) {
	sources := []string{"b/info.json", "a/info.json"}
	SortSources(sources)

	if sources[0] != "b/info.json" {
		t.Error("SortSources() mutated its input slice")
	}
}

func TestInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "info.json")

	info := &Info{
		Name:        "some-provider",
		Description: "Ad and tracker domains",
		HomeURL:     "https://example.com",
		URL:         "https://example.com/hosts.txt",
		Frequency:   "daily",
		License:     "MIT",
		Issues:      "https://example.com/issues",
		FileSize:    12345,
	}

	if err := SaveInfo(path, info); err != nil {
		t.Fatalf("SaveInfo() failed: %v", err)
	}

	loaded, err := LoadInfo(path)
	if err != nil {
		t.Fatalf("LoadInfo() failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, info) {
		t.Errorf("LoadInfo() = %+v, expected %+v", loaded, info)
	}
}

func TestLoadInfoRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "info.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadInfo(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"foo", "bar"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, sub, "info.json"), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Files with other names must be ignored.
	if err := os.WriteFile(filepath.Join(dir, "foo", "hosts"), []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	matches, err := FindFiles(dir, "info.json")
	if err != nil {
		t.Fatalf("FindFiles() failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("FindFiles() returned %d matches, expected 2: %v", len(matches), matches)
	}
	for _, match := range matches {
		if filepath.Base(match) != "info.json" {
			t.Errorf("unexpected match %q", match)
		}
	}
}

func TestCacheFilePath(t *testing.T) {
	got := CacheFilePath(filepath.Join("sources", "foo", "info.json"), "hosts")
	expected := filepath.Join("sources", "foo", "hosts")
	if got != expected {
		t.Errorf("CacheFilePath() = %q, expected %q", got, expected)
	}
}
