// Package llm is the single outbound path to the chat-completion provider.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/taqdeer/taqdeer-api/internal/logger"
)

// Client produces one completion for a system/user prompt pair.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ChatClient mirrors the subset of the OpenAI client we call, for testability.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float32
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = openai.GPT4o
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	return c
}

type OpenAI struct {
	chat    ChatClient
	cfg     Config
	log     *logger.Logger
	backoff func() backoff.BackOff
}

// NewOpenAI builds a client against the OpenAI API. A missing key is not an
// error here: every Complete call then fails with ErrMissingCredential so the
// rest of the service can still start.
func NewOpenAI(cfg Config, log *logger.Logger) *OpenAI {
	cfg = cfg.withDefaults()
	var chat ChatClient
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		oc := openai.DefaultConfig(key)
		if cfg.BaseURL != "" {
			oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout + 5*time.Second}
		chat = openai.NewClientWithConfig(oc)
	}
	return NewWithChatClient(chat, cfg, log)
}

func NewWithChatClient(chat ChatClient, cfg Config, log *logger.Logger) *OpenAI {
	if log == nil {
		log = logger.Nop()
	}
	return &OpenAI{
		chat: chat,
		cfg:  cfg.withDefaults(),
		log:  log,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(500*time.Millisecond),
				backoff.WithMaxInterval(4*time.Second),
			)
		},
	}
}

func (c *OpenAI) Model() string { return c.cfg.Model }

// Complete sends one chat completion, retrying only 5xx and transport
// failures, all within the configured timeout.
func (c *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	if c.chat == nil {
		return "", ErrMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	attempt := 0
	op := func() (string, error) {
		attempt++
		resp, err := c.chat.CreateChatCompletion(ctx, req)
		if err != nil {
			err = classify(err)
			if ctx.Err() != nil && !errors.Is(err, ErrTimeout) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = errors.Join(ErrTimeout, err)
			}
			if !retryable(err) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", backoff.Permanent(ErrEmptyCompletion)
		}
		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			return "", backoff.Permanent(ErrEmptyCompletion)
		}
		return text, nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.backoff(), uint64(c.cfg.MaxRetries)), ctx)
	text, err := backoff.RetryNotifyWithData(op, policy, func(err error, wait time.Duration) {
		c.log.Warn("LLM request retrying",
			"model", c.cfg.Model,
			"attempt", attempt,
			"max_retries", c.cfg.MaxRetries,
			"sleep", wait.String(),
			"error", err.Error(),
		)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = errors.Join(ErrTimeout, err)
		}
		return "", err
	}
	return text, nil
}
