package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Qwen3Client talks to the DashScope text-generation endpoint.
type Qwen3Client struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewQwen3Client(config *Config, log Logger) *Qwen3Client {
	return &Qwen3Client{
		config: config,
		client: &http.Client{
			// No client timeout, the request context bounds each call
		},
		logger: log.With(map[string]interface{}{
			"provider": "qwen3",
		}),
	}
}

func (c *Qwen3Client) Name() string { return "qwen3" }

func (c *Qwen3Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestBody := map[string]interface{}{
		"model": c.config.Model,
		"input": map[string]interface{}{
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt},
				{"role": "user", "content": prompt},
			},
		},
		"parameters": map[string]interface{}{
			"max_tokens":  c.config.MaxTokens,
			"temperature": c.config.Temperature,
			"top_p":       0.8,
		},
	}
	body, _ := json.Marshal(requestBody)

	resp, err := doWithRetries(ctx, c.client, c.config, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL, bytes.NewBuffer(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		c.logger.Error("qwen3 request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", err
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Output struct {
			Text string `json:"text"`
		} `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrProviderFailed, err)
	}

	text := strings.TrimSpace(apiResponse.Output.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrProviderFailed)
	}

	c.logger.Info("qwen3 completion received", map[string]interface{}{
		"chars": len(text),
	})
	return text, nil
}

// doWithRetries runs the request with exponential backoff, retrying on
// transport errors and non-200 status codes. The caller owns the body of the
// returned response.
func doWithRetries(ctx context.Context, client *http.Client, config *Config, build func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrProviderTimeout
			}
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
		}

		resp, lastErr = client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				return resp, nil
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrProviderTimeout
		}
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, ErrProviderTimeout
	}
	return nil, fmt.Errorf("%w: %v", ErrProviderFailed, lastErr)
}
