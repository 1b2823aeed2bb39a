// Package config holds the calreader configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type ImageConfig struct {
	Path        string `yaml:"path,omitempty"`
	BaseAddress uint32 `yaml:"baseAddress"`
}

type ServerConfig struct {
	Address string `yaml:"address,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// Addr is the host:port the server listens on, or the remote is reached at
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

type Config struct {
	LogLevel    string        `yaml:"logLevel,omitempty"`
	Image       *ImageConfig  `yaml:"image,omitempty"`
	SymbolsPath string        `yaml:"symbols,omitempty"`
	Encoding    string        `yaml:"encoding,omitempty"`
	Parallel    int           `yaml:"parallel,omitempty"`
	SnapshotDB  string        `yaml:"snapshotDB,omitempty"`
	ExportDir   string        `yaml:"exportDir,omitempty"`
	Server      *ServerConfig `yaml:"server,omitempty"`
	Remote      *ServerConfig `yaml:"remote,omitempty"`
	filepath    string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.filepath), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.filepath, data, 0644)
}

// Load merges the file into c. A missing file keeps the defaults.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) Path() string {
	return c.filepath
}

// SetPath selects the file Load and Persist work on
func (c *Config) SetPath(path string) {
	c.filepath = path
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

// DefaultDataPath places a file next to the default config file
func DefaultDataPath(name string) string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), name)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Image: &ImageConfig{
			BaseAddress: DefaultImageBaseAddr,
		},
		Encoding:   DefaultEncoding,
		Parallel:   DefaultParallel,
		SnapshotDB: DefaultDataPath(DefaultSnapshotDB),
		ExportDir:  DefaultExportDir,
		Server: &ServerConfig{
			Address: DefaultServerAddress,
			Port:    DefaultServerPort,
		},
		Remote: &ServerConfig{
			Address: DefaultRemoteAddress,
			Port:    DefaultRemotePort,
		},
		filepath: DefaultConfigPath(),
	}
}
