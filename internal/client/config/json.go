package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mediashare/internal/timex"
)

// JsonConfig is a DTO used only for unmarshalling. Pointer fields tell
// "absent" from "zero" so a partial file only overrides what it names.
// Intervals use timex.Duration, accepting "15s" or integer nanoseconds.
type JsonConfig struct {
	AuthAPI            *string         `json:"auth_api"`
	MediaAPI           *string         `json:"media_api"`
	UploadAPI          *string         `json:"upload_api"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	RequestsPerSecond  *float64        `json:"requests_per_second"`
	DataDir            *string         `json:"data_dir"`
	LogLevel           *string         `json:"log_level"`
	LogBackend         *string         `json:"log_backend"`
	UploadBackend      *string         `json:"upload_backend"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3Endpoint         *string         `json:"s3_endpoint"`
	S3KeyPrefix        *string         `json:"s3_key_prefix"`
	DedupeOwnerLookups *bool           `json:"dedupe_owner_lookups"`
	OptimisticLikes    *bool           `json:"optimistic_likes"`
}

// parseJSON overlays cfg with the JSON file at path. An empty path is a
// no-op. Secrets (passphrase, S3 keys) are deliberately not read from JSON.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	set(&cfg.AuthAPI, jc.AuthAPI)
	set(&cfg.MediaAPI, jc.MediaAPI)
	set(&cfg.UploadAPI, jc.UploadAPI)
	set(&cfg.RequestsPerSecond, jc.RequestsPerSecond)
	set(&cfg.DataDir, jc.DataDir)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogBackend, jc.LogBackend)
	set(&cfg.UploadBackend, jc.UploadBackend)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3Endpoint, jc.S3Endpoint)
	set(&cfg.S3KeyPrefix, jc.S3KeyPrefix)
	set(&cfg.DedupeOwnerLookups, jc.DedupeOwnerLookups)
	set(&cfg.OptimisticLikes, jc.OptimisticLikes)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
