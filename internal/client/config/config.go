package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediashare/internal/flagx"
)

// Upload backends.
const (
	UploadHTTP = "http"
	UploadS3   = "s3"
)

// Config holds runtime settings for the mediashare CLI.
type Config struct {
	// Base URLs of the auth, media and upload services.
	AuthAPI   string
	MediaAPI  string
	UploadAPI string

	RequestTimeout    time.Duration
	RequestsPerSecond float64

	// DataDir holds the local SQLite store. StorePassphrase unlocks the
	// secrets kept in it; when empty the CLI prompts for it.
	DataDir         string
	StorePassphrase string

	LogLevel   string
	LogBackend string

	UploadBackend     string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3KeyPrefix       string

	DedupeOwnerLookups bool
	OptimisticLikes    bool
}

// LoadDefaults populates c with defaults suitable for a local backend.
func (c *Config) LoadDefaults() {
	c.AuthAPI = "http://localhost:3001/api/v1"
	c.MediaAPI = "http://localhost:3000/api/v1"
	c.UploadAPI = "http://localhost:3002/api/v1"
	c.RequestTimeout = 15 * time.Second
	c.RequestsPerSecond = 0
	c.DataDir = defaultDataDir()
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.UploadBackend = UploadHTTP
	c.S3Region = "us-east-1"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "mediashare"
	}
	return ".mediashare"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AuthAPI) == "" {
		errs = append(errs, errors.New("auth api url is required"))
	}
	if strings.TrimSpace(c.MediaAPI) == "" {
		errs = append(errs, errors.New("media api url is required"))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests per second must not be negative"))
	}
	switch c.UploadBackend {
	case UploadHTTP:
		if strings.TrimSpace(c.UploadAPI) == "" {
			errs = append(errs, errors.New("upload api url is required for the http upload backend"))
		}
	case UploadS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			errs = append(errs, errors.New("s3 bucket is required for the s3 upload backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown upload backend %q", c.UploadBackend))
	}
	return errors.Join(errs...)
}

// Load builds a Config from defaults, then the .env file and environment,
// then the JSON file, then flags. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	jsonPath, envPath := flagx.ConfigFileFlags(args)

	lookup, err := envLookup(envPath)
	if err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, jsonPath); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
