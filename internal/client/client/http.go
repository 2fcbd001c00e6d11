package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/dmitrijs2005/mediashare/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxResponseBody = 8 << 20

// Config configures an HTTPClient.
type Config struct {
	// AuthAPI and MediaAPI are the base URLs of the two backend services.
	AuthAPI  string
	MediaAPI string

	// Timeout bounds a single request. Zero leaves requests unbounded
	// beyond their context.
	Timeout time.Duration

	// RequestsPerSecond paces outbound requests; zero means unlimited.
	RequestsPerSecond float64

	HTTPClient *http.Client
	Logger     logging.Logger
}

// HTTPClient talks JSON to the auth and media services.
type HTTPClient struct {
	authURL  string
	mediaURL string
	http     *http.Client
	limiter  *rate.Limiter
	logger   logging.Logger
}

// New validates cfg and builds an HTTPClient.
func New(cfg Config) (*HTTPClient, error) {
	authURL, err := normalizeBaseURL(cfg.AuthAPI)
	if err != nil {
		return nil, fmt.Errorf("auth api: %w", err)
	}
	mediaURL, err := normalizeBaseURL(cfg.MediaAPI)
	if err != nil {
		return nil, fmt.Errorf("media api: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	burst := 0
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &HTTPClient{
		authURL:  authURL,
		mediaURL: mediaURL,
		http:     hc,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logger.With("component", "http-client"),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}

// Send executes req, attaching token (if non-empty) and a request ID, and
// decodes a 2xx JSON body into out (if non-nil). Non-2xx responses become
// *APIError; transport failures wrap ErrUnavailable.
func (c *HTTPClient) Send(ctx context.Context, req *http.Request, token string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Debug(ctx, "request failed", "method", req.Method, "url", req.URL.String(), "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "request", "method", req.Method, "url", req.URL.String(),
		"status", resp.StatusCode, "request_id", requestID, "duration", time.Since(started))

	return DecodeResponse(resp, out)
}

// DecodeResponse consumes and closes resp.Body. A 2xx body is unmarshalled
// into out; any other status yields *APIError.
func DecodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read response body: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.Send(ctx, req, token, out)
}
