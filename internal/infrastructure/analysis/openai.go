package analysis

import (
	"context"
	"os"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"constellation-backend/internal/config"
	apperrors "constellation-backend/internal/errors"
)

// OpenAIDescriber calls a chat-completion endpoint to describe node
// connections, behind a circuit breaker so a flapping service stops
// consuming request budget.
type OpenAIDescriber struct {
	client  *openai.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger

	mu           sync.RWMutex
	model        string
	maxTextChars int
	timeout      time.Duration
}

// NewOpenAIDescriber builds the client from configuration. The API key
// comes from OPENAI_API_KEY; BaseURL overrides allow pointing at a
// compatible local service.
func NewOpenAIDescriber(cfg config.Analysis, logger *zap.Logger) (*OpenAIDescriber, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, apperrors.NewValidation("OPENAI_API_KEY is not set")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "analysis",
		Timeout: cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("analysis breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &OpenAIDescriber{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		maxTextChars: cfg.MaxTextChars,
		timeout:      cfg.Timeout,
		breaker:      breaker,
		logger:       logger,
	}, nil
}

// Apply takes over reloaded tuning values. The API key, base URL, and
// breaker thresholds are fixed at construction.
func (d *OpenAIDescriber) Apply(cfg config.Analysis) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.model = cfg.Model
	d.maxTextChars = cfg.MaxTextChars
	d.timeout = cfg.Timeout
}

// Describe sends the connection context and returns the normalized
// analysis text.
func (d *OpenAIDescriber) Describe(ctx context.Context, req Request) (string, error) {
	if len(req.Items) < 2 {
		return "", apperrors.NewValidation("analysis needs at least two nodes")
	}

	d.mu.RLock()
	model, maxTextChars, timeout := d.model, d.maxTextChars, d.timeout
	d.mu.RUnlock()

	body, err := payload(req, maxTextChars)
	if err != nil {
		return "", apperrors.NewInternal("encoding analysis payload", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := d.breaker.Execute(func() (interface{}, error) {
		resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: instructions(req.Category)},
				{Role: openai.ChatMessageRoleUser, Content: body},
			},
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		d.logger.Error("analysis call failed",
			zap.String("category", string(req.Category)),
			zap.Int("nodes", len(req.Items)),
			zap.Error(err),
		)
		return "", apperrors.NewExternal("analysis service", err)
	}

	return Normalize(result.(string)), nil
}
