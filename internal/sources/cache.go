package sources

import (
	"errors"
	"io"
	"os"

	"github.com/hrshadhin/hosts/internal/hashing"
	"github.com/hrshadhin/hosts/internal/log"
	"github.com/hrshadhin/hosts/internal/utils"
)

// IsFileChanged compares the checksum of freshly fetched content with the
// checksum recorded next to the cache file. A missing cache or checksum
// file counts as changed.
func IsFileChanged(checksumProxy hashing.ChecksumProvider, filePath string) (bool, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return true, nil
	}

	md5, err := checksumProxy.GetChecksum()
	if err != nil {
		return false, err
	}

	checksumFilePath := filePath + ".md5"
	checksum, err := readChecksum(checksumFilePath)
	if err != nil {
		log.Debugf("Failed to read checksum file '%s', assuming it's changed: %v", checksumFilePath, err)
		return true, nil
	}
	return string(checksum) != md5, nil
}

func readChecksum(checksumFilePath string) ([]byte, error) {
	checksumFile, err := os.Open(checksumFilePath)
	if err != nil {
		return nil, err
	}
	defer utils.CloseOrWarn(checksumFile)

	return io.ReadAll(checksumFile)
}

// WriteChecksum records the checksum of the fetched content next to the
// cache file.
func WriteChecksum(checksumProxy hashing.ChecksumProvider, filePath string) error {
	checksum, err := checksumProxy.GetChecksum()
	if err != nil {
		return err
	}
	return os.WriteFile(filePath+".md5", []byte(checksum), 0644)
}
