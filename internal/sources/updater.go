package sources

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/hrshadhin/hosts/internal/config"
	"github.com/hrshadhin/hosts/internal/hashing"
	"github.com/hrshadhin/hosts/internal/idn"
	"github.com/hrshadhin/hosts/internal/log"
	"github.com/hrshadhin/hosts/internal/utils"
)

// IsRemoteFileChanged compares the cached size of a source with the remote
// Content-Length. Request errors and 404 report the file as unchanged, so a
// broken source keeps its existing cache.
func IsRemoteFileChanged(currentSize int64, url string) bool {
	resp, err := http.Head(url)
	if err != nil {
		log.Errorf("Error retrieving meta data from %s", url)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Errorf("404: %s", url)
		return false
	}

	remoteSize := contentLength(resp)
	return remoteSize > currentSize
}

// FetchFile retrieves a source's raw hosts file. Carriage returns are
// dropped and every line is trimmed and IDNA-encoded, so the cache only
// ever contains ASCII-safe domains. The returned checksum provider hashes
// the raw response body; size is the remote Content-Length (0 when absent).
func FetchFile(url string) (content []byte, size int64, checksum hashing.ChecksumProvider, err error) {
	client := &http.Client{}
	resp, err := client.Get(url)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("error retrieving data from %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, 0, nil, fmt.Errorf("404: %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, nil, fmt.Errorf("error retrieving data from %s: %s", url, resp.Status)
	}

	bodyProxy := hashing.NewMD5ReaderProxy(resp.Body)
	body, err := io.ReadAll(bodyProxy)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("error reading data from %s: %v", url, err)
	}

	text := strings.ReplaceAll(string(body), "\r", "")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = idn.EncodeLine(strings.TrimSpace(line))
	}

	return []byte(strings.Join(lines, "\n")), contentLength(resp), bodyProxy, nil
}

// UpdateAll refreshes the cache of every source whose remote file grew or
// whose cache file is missing. Per-source failures are logged and skipped.
func UpdateAll(cfg *config.Config) error {
	infoFiles, err := FindFiles(cfg.GetAbsSourcePath(), cfg.General.SourceInfoFileName)
	if err != nil {
		return err
	}

	for _, infoPath := range infoFiles {
		info, err := LoadInfo(infoPath)
		if err != nil {
			log.Errorf("%v", err)
			continue
		}

		cachePath := CacheFilePath(infoPath, cfg.General.HostsFileName)
		cacheExists := utils.FileExists(cachePath)

		log.Infof("Checking updates for source %s", info.Name)
		if cacheExists && !IsRemoteFileChanged(info.FileSize, info.URL) {
			continue
		}

		log.Infof("Updating source %s", info.Name)
		if err := updateSource(infoPath, cachePath, info); err != nil {
			log.Errorf("Error in updating source %s. Error: %v", info.Name, err)
		}
	}

	return nil
}

func updateSource(infoPath, cachePath string, info *Info) error {
	content, size, checksum, err := FetchFile(info.URL)
	if err != nil {
		return err
	}

	if changed, err := IsFileChanged(checksum, cachePath); err != nil {
		log.Errorf("Failed to calculate source \"%s\" checksum: %v", info.Name, err)
	} else if !changed {
		log.Infof("Source \"%s\" is not changed, skipping write to disk", info.Name)
		return nil
	}

	if err := os.WriteFile(cachePath, content, 0644); err != nil {
		return fmt.Errorf("failed to write cache file to %s: %v", cachePath, err)
	}
	if err := WriteChecksum(checksum, cachePath); err != nil {
		return fmt.Errorf("failed to write cache checksum: %v", err)
	}

	info.FileSize = size
	if err := SaveInfo(infoPath, info); err != nil {
		return fmt.Errorf("failed to update source info %s: %v", infoPath, err)
	}

	return nil
}

func contentLength(resp *http.Response) int64 {
	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return 0
	}
	return size
}
