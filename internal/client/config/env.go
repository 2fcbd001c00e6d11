package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "MEDIASHARE_"

type lookupFunc func(key string) (string, bool)

// envLookup merges the dotenv file with the process environment; the
// process environment wins. With no explicit path a ./.env file is used if
// present.
func envLookup(path string) (lookupFunc, error) {
	file := map[string]string{}

	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	vars, err := godotenv.Read(path)
	switch {
	case err == nil:
		file = vars
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}, nil
}

func parseEnv(cfg *Config, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	str("AUTH_API", &cfg.AuthAPI)
	str("MEDIA_API", &cfg.MediaAPI)
	str("UPLOAD_API", &cfg.UploadAPI)
	str("DATA_DIR", &cfg.DataDir)
	str("STORE_PASSPHRASE", &cfg.StorePassphrase)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_BACKEND", &cfg.LogBackend)
	str("UPLOAD_BACKEND", &cfg.UploadBackend)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("S3_ACCESS_KEY_ID", &cfg.S3AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &cfg.S3SecretAccessKey)
	str("S3_KEY_PREFIX", &cfg.S3KeyPrefix)

	if v, ok := lookup(envPrefix + "REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookup(envPrefix + "REQUESTS_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sREQUESTS_PER_SECOND: %w", envPrefix, err)
		}
		cfg.RequestsPerSecond = f
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"DEDUPE_OWNER_LOOKUPS", &cfg.DedupeOwnerLookups},
		{"OPTIMISTIC_LIKES", &cfg.OptimisticLikes},
	}
	for _, b := range bools {
		v, ok := lookup(envPrefix + b.name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, b.name, err)
		}
		*b.dst = parsed
	}

	return nil
}
