package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/thumbsmith/thumbsmith/internal/config"
)

// ErrNotConfigured is returned before any network call when no API key is set.
var ErrNotConfigured = errors.New("image generation is not configured")

const (
	maxAttempts       = 3
	defaultRetryDelay = 10 * time.Second
	defaultDimension  = 1024
)

// Client calls the Hugging Face inference API. A cold model answers 503 with
// an estimated warm-up time; Generate waits that long (or a default) and
// retries up to maxAttempts total calls. Any other failure aborts immediately.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	retryDelay time.Duration
	log        *slog.Logger
}

type GenerateOptions struct {
	Width          int
	Height         int
	NegativePrompt string
}

// Image is a successfully generated picture: raw PNG bytes plus the
// "WxH" label of the requested dimensions.
type Image struct {
	Data []byte
	Size string
}

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		apiKey:     cfg.HFAPIKey,
		baseURL:    strings.TrimRight(cfg.HFBaseURL, "/"),
		model:      cfg.HFModel,
		httpClient: &http.Client{Timeout: timeout},
		retryDelay: defaultRetryDelay,
		log:        log,
	}
}

func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Image, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	width := opts.Width
	if width <= 0 {
		width = defaultDimension
	}
	height := opts.Height
	if height <= 0 {
		height = defaultDimension
	}

	parameters := map[string]any{
		"width":  width,
		"height": height,
	}
	if opts.NegativePrompt != "" {
		parameters["negative_prompt"] = opts.NegativePrompt
	}
	payload := map[string]any{
		"inputs":     prompt,
		"parameters": parameters,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := c.baseURL + "/" + c.model

	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("post inference: %w", err)
		}

		rawBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if len(rawBody) == 0 {
				return nil, errors.New("empty image response")
			}
			return &Image{
				Data: rawBody,
				Size: fmt.Sprintf("%dx%d", width, height),
			}, nil
		}

		if resp.StatusCode == http.StatusServiceUnavailable {
			wait := c.loadingDelay(rawBody)
			c.log.Warn("image model loading, retrying",
				"wait", wait, "attempt", attempt+1, "max_attempts", maxAttempts)
			if attempt < maxAttempts-1 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(wait):
				}
			}
			continue
		}

		c.log.Error("image generation request failed",
			"status", resp.StatusCode, "body", truncateBody(rawBody))
		return nil, fmt.Errorf("inference error: status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("image generation failed after %d attempts", maxAttempts)
}

// loadingDelay extracts the provider's warm-up estimate from a 503 body,
// falling back to the default delay when none is given.
func (c *Client) loadingDelay(body []byte) time.Duration {
	var loading struct {
		EstimatedTime float64 `json:"estimated_time"`
	}
	if err := json.Unmarshal(body, &loading); err == nil && loading.EstimatedTime > 0 {
		return time.Duration(loading.EstimatedTime * float64(time.Second))
	}
	return c.retryDelay
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
