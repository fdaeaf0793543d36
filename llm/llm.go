// Package llm provides model access for trailhead: the ChatTransport
// implementations and the token-accounted conversation memory.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/providers"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

// Client is a ChatTransport that speaks HTTP through a providers.Provider codec.
type Client struct {
	Provider   providers.Provider
	client     *http.Client
	logger     utils.Logger
	MaxRetries int
	RetryDelay time.Duration
}

// NewClient builds a Client for cfg.Provider out of registry.
func NewClient(cfg *config.Config, logger utils.Logger, registry *providers.ProviderRegistry) (*Client, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	provider, err := registry.Build(cfg, logger)
	if err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to create provider", err)
	}

	return &Client{
		Provider:   provider,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}, nil
}

func (l *Client) Chat(ctx context.Context, messages []types.Message, opts ...ChatOption) (string, error) {
	o := applyChatOptions(opts)
	req := &providers.Request{Messages: types.CloneMessages(messages)}
	if o.format != nil && l.Provider.SupportsStructuredResponse() {
		req.Format = o.format
	}

	var lastErr error
	for attempt := 0; attempt <= l.MaxRetries; attempt++ {
		l.logger.Debug("Sending chat", "provider", l.Provider.Name(), "messages", len(messages), "attempt", attempt+1)

		result, err := l.attemptChat(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		fields := []any{"attempt", attempt + 1}
		var llmErr *LLMError
		if errors.As(err, &llmErr) {
			fields = append(fields, llmErr.LoggableFields()...)
		} else {
			fields = append(fields, "error", err)
		}
		l.logger.Warn("Chat attempt failed", fields...)
		if !retryable(err) {
			return "", err
		}

		if attempt < l.MaxRetries {
			l.logger.Debug("Retrying", "delay", l.RetryDelay)
			if err := l.wait(ctx); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("failed to chat after %d attempts: %w", l.MaxRetries+1, lastErr)
}

func (l *Client) wait(ctx context.Context) error {
	timer := time.NewTimer(l.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (l *Client) attemptChat(ctx context.Context, request *providers.Request) (string, error) {
	reqBody, err := l.Provider.PrepareRequest(request)
	if err != nil {
		return "", NewLLMError(ErrorTypeInvalidInput, "failed to prepare request", err)
	}
	l.logger.Debug("Request body", "provider", l.Provider.Name(), "body", string(reqBody))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.Provider.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return "", NewLLMError(ErrorTypeRequest, "failed to create request", err)
	}
	for k, v := range l.Provider.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", ctxErr
		}
		return "", NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewLLMError(ErrorTypeResponse, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		l.logger.Error("API error", "provider", l.Provider.Name(), "status", resp.StatusCode, "body", string(body))
		return "", NewLLMError(errorTypeForStatus(resp.StatusCode), fmt.Sprintf("API error: status code %d", resp.StatusCode), nil)
	}

	result, err := l.Provider.ParseResponse(body)
	if err != nil {
		return "", NewLLMError(ErrorTypeResponse, "failed to parse response", err)
	}
	if result.Usage != nil {
		l.logger.Debug("Token usage", "input", result.Usage.InputTokens, "output", result.Usage.OutputTokens)
	}

	return strings.TrimSpace(result.Content), nil
}
