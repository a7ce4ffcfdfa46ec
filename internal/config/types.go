package config

import (
	"path/filepath"

	"github.com/hrshadhin/hosts/internal/utils"
)

type Config struct {
	// General holds general configuration.
	General *GeneralConfig `toml:"general"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// TargetIP is the IP address substituted for every kept rule. Empty means hostname-only output.
	TargetIP string `toml:"target_ip" json:"target_ip" validate:"omitempty,ip"`
	// HostsFileName is the name of the cached hosts file inside each source directory, and the default output file name.
	HostsFileName string `toml:"hosts_file_name" json:"hosts_file_name" validate:"required"`
	// SourcePath is the directory containing one sub-directory per source.
	SourcePath string `toml:"source_path" json:"source_path" validate:"required"`
	// SourceInfoFileName is the per-source metadata file name.
	SourceInfoFileName string `toml:"source_info_file_name" json:"source_info_file_name" validate:"required"`
	// WhiteListFile lists hostnames that must never be blocked, one per line.
	WhiteListFile string `toml:"white_list_file" json:"white_list_file"`
	// BlackListFile holds extra raw rules appended after all sources.
	BlackListFile string `toml:"black_list_file" json:"black_list_file"`
	// CustomHostsFile is a preamble file copied verbatim into the output header.
	CustomHostsFile string `toml:"custom_hosts_file" json:"custom_hosts_file"`
	// ReadmeFile is the readme to regenerate after a run.
	ReadmeFile string `toml:"readme_file" json:"readme_file" validate:"required"`
	// ReadmeTemplate is the template the readme is generated from.
	ReadmeTemplate string `toml:"readme_template" json:"readme_template" validate:"required"`
	// CommonExclusions are domains excluded from blocking, compiled into the exclusion regex set.
	CommonExclusions []string `toml:"common_exclusions" json:"common_exclusions"`
}

// Default returns the configuration used when no config file is present,
// with all relative paths anchored at baseDir.
func Default(baseDir string) *Config {
	return &Config{
		General: &GeneralConfig{
			TargetIP:           "0.0.0.0",
			HostsFileName:      "hosts",
			SourcePath:         "sources",
			SourceInfoFileName: "info.json",
			WhiteListFile:      "white_list",
			BlackListFile:      "black_list",
			CustomHostsFile:    "custom_hosts",
			ReadmeFile:         "readme.md",
			ReadmeTemplate:     "readme_template.md",
		},
		_absConfigFilePath: filepath.Join(baseDir, "hosts.toml"),
	}
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// GetAbsSourcePath returns the absolute path of the sources directory.
func (c *Config) GetAbsSourcePath() string {
	return utils.GetAbsolutePath(c.General.SourcePath, c.GetConfigDir())
}

// GetAbsPath resolves a config-relative path against the config directory.
func (c *Config) GetAbsPath(path string) string {
	return utils.GetAbsolutePath(path, c.GetConfigDir())
}
