// Package config loads runtime configuration for the mediashare CLI.
//
// # Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (-e / -env, else ./.env if present) merged with the
//     process environment, which wins. Variables are prefixed MEDIASHARE_,
//     e.g. MEDIASHARE_AUTH_API, MEDIASHARE_REQUEST_TIMEOUT=10s.
//  3. An optional JSON file selected with -c or -config.
//  4. Command-line flags (see parseFlags).
//
// # JSON schema
//
//	{
//	  "auth_api": "https://auth.example.com/api/v1",
//	  "media_api": "https://media.example.com/api/v1",
//	  "upload_api": "https://upload.example.com/api/v1",
//	  "request_timeout": "15s",
//	  "requests_per_second": 10,
//	  "upload_backend": "s3",
//	  "s3_bucket": "media"
//	}
//
// Secrets (the store passphrase and S3 keys) are read from the environment
// only.
package config
