package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient is the fallback provider using the chat completions API.
type OpenAIClient struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewOpenAIClient(config *Config, log Logger) *OpenAIClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenAIURL
	}
	return &OpenAIClient{
		config: config,
		client: &http.Client{},
		logger: log.With(map[string]interface{}{
			"provider": "openai",
		}),
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestBody := map[string]interface{}{
		"model": c.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
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
		c.logger.Error("openai request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", err
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrProviderFailed, err)
	}
	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrProviderFailed)
	}

	text := strings.TrimSpace(apiResponse.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrProviderFailed)
	}

	c.logger.Info("openai completion received", map[string]interface{}{
		"chars": len(text),
	})
	return text, nil
}
