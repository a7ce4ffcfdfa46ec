package sources

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hrshadhin/hosts/internal/config"
	"github.com/hrshadhin/hosts/internal/utils"
)

// CreateStagingFile concatenates all cached source files into one temporary
// staging file for the merge pass. Each source is framed with start/end
// markers carrying its directory name, so source attribution survives a
// non-minimised merge. The blacklist file, when present, is appended raw.
//
// The returned file is positioned at the start; the caller owns it and
// should remove it when done.
func CreateStagingFile(cfg *config.Config, blackListFile string) (*os.File, error) {
	staging, err := os.CreateTemp("", "hosts-staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %v", err)
	}

	cacheFiles, err := FindFiles(cfg.GetAbsSourcePath(), cfg.General.HostsFileName)
	if err != nil {
		cleanupStagingFile(staging)
		return nil, err
	}

	for _, cachePath := range cacheFiles {
		sourceName := filepath.Base(filepath.Dir(cachePath))

		content, err := os.ReadFile(cachePath)
		if err != nil {
			cleanupStagingFile(staging)
			return nil, fmt.Errorf("failed to read source file '%s': %v", cachePath, err)
		}

		framed := fmt.Sprintf("# Start %s\n\n%s\n# End %s\n\n", sourceName, content, sourceName)
		if _, err := staging.WriteString(framed); err != nil {
			cleanupStagingFile(staging)
			return nil, fmt.Errorf("failed to write staging file: %v", err)
		}
	}

	if utils.FileExists(blackListFile) {
		content, err := os.ReadFile(blackListFile)
		if err != nil {
			cleanupStagingFile(staging)
			return nil, fmt.Errorf("failed to read blacklist file '%s': %v", blackListFile, err)
		}
		if _, err := staging.Write(content); err != nil {
			cleanupStagingFile(staging)
			return nil, fmt.Errorf("failed to write staging file: %v", err)
		}
	}

	if _, err := staging.Seek(0, io.SeekStart); err != nil {
		cleanupStagingFile(staging)
		return nil, fmt.Errorf("failed to rewind staging file: %v", err)
	}

	return staging, nil
}

func cleanupStagingFile(staging *os.File) {
	name := staging.Name()
	_ = staging.Close()
	_ = os.Remove(name)
}
