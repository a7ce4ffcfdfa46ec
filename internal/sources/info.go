// Package sources manages the upstream blocklist providers: their metadata
// files, the on-disk cache of their raw hosts files, and the staging stream
// the merge pipeline consumes.
package sources

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Info mirrors one per-source metadata file (info.json).
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HomeURL     string `json:"home_url"`
	URL         string `json:"url"`
	Frequency   string `json:"frequency"`
	License     string `json:"license"`
	Issues      string `json:"issues"`
	// FileSize is the remote size recorded at the last fetch, compared
	// against the remote Content-Length to decide whether to refetch.
	FileSize int64 `json:"file_size"`
}

// FindFiles recursively collects all files named fileName under root.
func FindFiles(root, fileName string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == fileName {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sources directory '%s': %v", root, err)
	}
	return matches, nil
}

// LoadInfo reads one source metadata file.
func LoadInfo(path string) (*Info, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source info '%s': %v", path, err)
	}

	var info Info
	if err := json.Unmarshal(content, &info); err != nil {
		return nil, fmt.Errorf("failed to parse source info '%s': %v", path, err)
	}
	return &info, nil
}

// SaveInfo writes a source metadata file back, indented like the originals.
func SaveInfo(path string, info *Info) error {
	content, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// LoadAllInfo loads the metadata of every source under the sources
// directory, in SortSources order.
func LoadAllInfo(sourcePath, infoFileName string) ([]*Info, error) {
	infoFiles, err := FindFiles(sourcePath, infoFileName)
	if err != nil {
		return nil, err
	}

	var infos []*Info
	for _, path := range SortSources(infoFiles) {
		info, err := LoadInfo(path)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SortSources sorts source paths alphabetically, ignoring case and the
// separators "-", "_" and " ". Entries containing "hrshadhin" are promoted
// to the front: the project's own lists go on top.
func SortSources(sources []string) []string {
	result := append([]string(nil), sources...)

	key := func(s string) string {
		s = strings.ToLower(s)
		for _, sep := range []string{"-", "_", " "} {
			s = strings.ReplaceAll(s, sep, "")
		}
		return s
	}
	sort.SliceStable(result, func(i, j int) bool {
		return key(result[i]) < key(result[j])
	})

	promoted := make([]string, 0, len(result))
	rest := make([]string, 0, len(result))
	for _, source := range result {
		if strings.Contains(strings.ToLower(source), "hrshadhin") {
			promoted = append(promoted, source)
		} else {
			rest = append(rest, source)
		}
	}
	return append(promoted, rest...)
}

// CacheFilePath returns the path of the cached hosts file belonging to a
// source metadata file.
func CacheFilePath(infoPath, hostsFileName string) string {
	return filepath.Join(filepath.Dir(infoPath), hostsFileName)
}
