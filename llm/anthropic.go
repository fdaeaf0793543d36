package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

// AnthropicTransport is a ChatTransport backed by the Anthropic Messages API.
// System messages are lifted into the request's System parameter. WithFormat
// is ignored; gate replies are parsed leniently either way.
type AnthropicTransport struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	logger      utils.Logger
}

// NewAnthropicTransport builds a transport from cfg. Extra request options
// (base URL, HTTP client) are appended after the ones derived from cfg.
func NewAnthropicTransport(cfg *config.Config, logger utils.Logger, opts ...option.RequestOption) *AnthropicTransport {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey("anthropic")),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	return &AnthropicTransport{
		client:      anthropic.NewClient(append(base, opts...)...),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

func (a *AnthropicTransport) Chat(ctx context.Context, messages []types.Message, opts ...ChatOption) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
	}
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})
		case types.RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case types.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			return "", NewLLMError(ErrorTypeInvalidInput, "unsupported message role "+msg.Role.String(), nil)
		}
	}
	if len(params.Messages) == 0 {
		return "", NewLLMError(ErrorTypeInvalidInput, "conversation has no user or assistant messages", nil)
	}

	a.logger.Debug("Sending chat", "provider", "anthropic", "model", a.model, "messages", len(params.Messages))
	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", NewLLMError(errorTypeForStatus(apiErr.StatusCode), "anthropic API error", err)
		}
		return "", NewLLMError(ErrorTypeRequest, "failed to send request", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	a.logger.Debug("Token usage", "input", resp.Usage.InputTokens, "output", resp.Usage.OutputTokens)
	return strings.TrimSpace(text.String()), nil
}
