package gemini

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
var ErrNotConfigured = errors.New("prompt enhancement is not configured")

const systemPrompt = "You are an expert at creating compelling YouTube thumbnail prompts. " +
	"Given a simple description, expand it into a detailed, visually striking prompt optimized for AI image generation. " +
	"Focus on: vivid colors, dramatic lighting, facial expressions, composition.%s " +
	"Keep the response to 1-2 sentences, suitable for Stable Diffusion / image AI. " +
	"Do not include any intro or explanation, just the enhanced prompt."

// Client rewrites terse prompts via the Gemini text-generation API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	return &Client{
		apiKey:     cfg.GeminiAPIKey,
		baseURL:    strings.TrimRight(cfg.GeminiBaseURL, "/"),
		model:      cfg.GeminiModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Enhance asks the model for a 1-2 sentence visually descriptive rewrite of
// prompt. A non-default style is folded into the instruction as a
// natural-language hint. The caller decides whether a failure is fatal.
func (c *Client) Enhance(ctx context.Context, prompt, style string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	styleHint := ""
	if style != "" && style != "default" {
		styleHint = fmt.Sprintf(" Apply a %s visual style.", strings.ReplaceAll(style, "-", " "))
	}
	instruction := fmt.Sprintf(systemPrompt, styleHint)
	userPrompt := fmt.Sprintf("Enhance this thumbnail idea into an AI image generation prompt: %q", prompt)

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"text": instruction + "\n\n" + userPrompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": 200,
			"temperature":     0.8,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post gemini: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("gemini request failed", "status", resp.StatusCode)
		return "", fmt.Errorf("gemini error: status %d", resp.StatusCode)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(rawBody, &result); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return prompt, nil
	}
	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return prompt, nil
	}
	return text, nil
}
