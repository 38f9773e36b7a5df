package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ProtocolSFTP = "sftp"
	ProtocolFTP  = "ftp"
	ProtocolFTPS = "ftps"
	ProtocolS3   = "s3"
)

// ServerConfig describes one remote endpoint. For S3, User and Password
// carry the access key pair and Host an optional custom endpoint.
type ServerConfig struct {
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	KeyPath  string `json:"key_path,omitempty"`
	Bucket   string `json:"bucket,omitempty"`
	Region   string `json:"region,omitempty"`
	UseSSL   bool   `json:"use_ssl,omitempty"`
	// Insecure skips TLS certificate checks for FTPS.
	Insecure bool `json:"insecure,omitempty"`
}

// TransferConfig holds the transfer preferences. Actions are one of
// ask, overwrite, resume, rename, rename-existing, skip.
type TransferConfig struct {
	DownloadAction string `json:"download_action"`
	UploadAction   string `json:"upload_action"`
	ShowHidden     bool   `json:"show_hidden"`
	SkipPattern    string `json:"skip_pattern,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

type Config struct {
	Servers  []ServerConfig `json:"servers"`
	Transfer TransferConfig `json:"transfer"`
	Log      LogConfig      `json:"log"`
	QueueDir string         `json:"queue_dir"`
}

// Dir returns the directory holding the config file, log and queue.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cyberduck")
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Default returns a config with defaults applied and no servers.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFrom reads the config at path. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	c := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.applyDefaults()
			return c, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

func SaveTo(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// Passwords live in here.
	return os.WriteFile(path, data, 0600)
}

// Server looks up a server by name.
func (c *Config) Server(name string) (ServerConfig, bool) {
	for _, s := range c.Servers {
		if s.Name == name {
			return s, true
		}
	}
	return ServerConfig{}, false
}

func (c *Config) applyDefaults() {
	if c.Transfer.DownloadAction == "" {
		c.Transfer.DownloadAction = "ask"
	}
	if c.Transfer.UploadAction == "" {
		c.Transfer.UploadAction = "ask"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(Dir(), "cyberduck.log")
	}
	if c.QueueDir == "" {
		c.QueueDir = filepath.Join(Dir(), "queue")
	}
	for i := range c.Servers {
		if c.Servers[i].Protocol == "" {
			c.Servers[i].Protocol = ProtocolSFTP
		}
	}
}
