// Package ai holds the language-model provider clients. Providers share one
// interface so the chat service stays agnostic of which backend generates
// the conversational text.
package ai

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProviderTimeout = errors.New("AI_PROVIDER_TIMEOUT")
	ErrProviderFailed  = errors.New("AI_PROVIDER_FAILED")
)

// Provider generates a conversational reply for a fully-built prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "qwen-turbo",
		MaxTokens:   2000,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
	}
}
