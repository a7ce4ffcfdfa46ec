package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/hrshadhin/hosts/internal/log"
	"github.com/hrshadhin/hosts/internal/utils"
)

// LoadConfig reads the TOML configuration at configPath. A missing file is
// not an error: the defaults apply, anchored at the file's directory.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Debugf("Configuration file not found, using defaults: %s", configFile)
		return Default(filepath.Dir(configFile)), nil
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	config := Default(filepath.Dir(configFile))
	if err := toml.Unmarshal(content, config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf(derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file")
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	config._absConfigFilePath = configFile

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Sources directory: %s", config.GetAbsSourcePath())

	return config, nil
}

// LoadWhiteList reads the whitelist file and returns its entries as
// exclusion words. A missing file means no exclusions.
func LoadWhiteList(path string) ([]string, error) {
	if !utils.FileExists(path) {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read whitelist file '%s': %v", path, err)
	}
	defer utils.CloseOrWarn(file)

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.Trim(scanner.Text(), " \t\n\r")
		if line != "" && !strings.HasPrefix(line, "#") {
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read whitelist file '%s': %v", path, err)
	}

	return words, nil
}
