package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hrshadhin/hosts/internal/sources"
)

func writeSourceInfo(t *testing.T, dir, name string, info *sources.Info) {
	t.Helper()
	sourceDir := filepath.Join(dir, "sources", name)
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := sources.SaveInfo(filepath.Join(sourceDir, "info.json"), info); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateReadme(t *testing.T) {
	dir := t.TempDir()

	writeSourceInfo(t, dir, "some-provider", &sources.Info{
		Name:        "some-provider",
		Description: "Ad domains",
		HomeURL:     "https://example.com",
		URL:         "https://example.com/hosts.txt",
		Frequency:   "daily",
		License:     "MIT",
		Issues:      "https://example.com/issues",
	})
	writeSourceInfo(t, dir, "hrshadhin-base", &sources.Info{
		Name:    "hrshadhin-base",
		HomeURL: "https://github.com/hrshadhin/hosts",
	})

	templateFile := filepath.Join(dir, "readme_template.md")
	template := strings.Join([]string{
		"# Hosts",
		"Generated: @GEN_DATE@",
		"Entries: @NUM_ENTRIES@",
		"",
		"@SOURCEROWS@",
	}, "\n")
	if err := os.WriteFile(templateFile, []byte(template), 0644); err != nil {
		t.Fatal(err)
	}

	readmeFile := filepath.Join(dir, "readme.md")
	err := UpdateReadme(ReadmeOptions{
		ReadmeFile:         readmeFile,
		TemplateFile:       templateFile,
		SourcePath:         filepath.Join(dir, "sources"),
		SourceInfoFileName: "info.json",
		NumberOfRules:      56789,
		Now:                testNow,
	})
	if err != nil {
		t.Fatalf("UpdateReadme() failed: %v", err)
	}

	content, err := os.ReadFile(readmeFile)
	if err != nil {
		t.Fatal(err)
	}
	readme := string(content)

	if !strings.Contains(readme, "Generated: August 31 2026") {
		t.Errorf("readme is missing the generation date: %q", readme)
	}
	if !strings.Contains(readme, "Entries: 56,789") {
		t.Errorf("readme is missing the formatted entry count: %q", readme)
	}

	expectedRow := "some-provider | Ad domains |[link](https://example.com) | [raw](https://example.com/hosts.txt) | daily | MIT | [issues](https://example.com/issues)\n"
	if !strings.Contains(readme, expectedRow) {
		t.Errorf("readme is missing the source row %q", readme)
	}

	// The project's own list must come before third-party providers.
	if strings.Index(readme, "hrshadhin-base") > strings.Index(readme, "some-provider") {
		t.Error("expected hrshadhin sources to be listed first")
	}
}

func TestUpdateReadmeKeepsUnknownTags(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sources"), 0755); err != nil {
		t.Fatal(err)
	}

	templateFile := filepath.Join(dir, "readme_template.md")
	if err := os.WriteFile(templateFile, []byte("Badge: @BUILD_STATUS@\n"), 0644); err != nil {
		t.Fatal(err)
	}

	readmeFile := filepath.Join(dir, "readme.md")
	err := UpdateReadme(ReadmeOptions{
		ReadmeFile:         readmeFile,
		TemplateFile:       templateFile,
		SourcePath:         filepath.Join(dir, "sources"),
		SourceInfoFileName: "info.json",
		Now:                testNow,
	})
	if err != nil {
		t.Fatalf("UpdateReadme() failed: %v", err)
	}

	content, err := os.ReadFile(readmeFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "Badge: @BUILD_STATUS@\n" {
		t.Errorf("readme = %q, expected unknown tags to survive", content)
	}
}
