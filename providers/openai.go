package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/utils"
)

// OpenAIProvider encodes requests for any OpenAI-compatible
// /chat/completions endpoint (OpenAI itself, Ollama's /v1, vLLM, LM Studio).
type OpenAIProvider struct {
	apiKey       string
	model        string
	endpoint     string
	extraHeaders map[string]string
	options      map[string]any
	logger       utils.Logger
}

func NewOpenAIProvider(apiKey, model string, extraHeaders map[string]string) *OpenAIProvider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &OpenAIProvider{
		apiKey:       apiKey,
		model:        model,
		endpoint:     "https://api.openai.com/v1",
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewNopLogger(),
	}
}

func (p *OpenAIProvider) SetOption(key string, value any) {
	p.options[key] = value
	p.logger.Debug("Option set", "key", key, "value", value)
}

func (p *OpenAIProvider) SetDefaultOptions(cfg *config.Config) {
	p.SetOption("temperature", cfg.Temperature)
	p.SetOption("max_tokens", cfg.MaxTokens)
	if cfg.Seed != nil {
		p.SetOption("seed", *cfg.Seed)
	}
	if cfg.OpenAIEndpoint != "" {
		p.endpoint = cfg.OpenAIEndpoint
	}
	p.logger.Debug("Default options set", "temperature", cfg.Temperature, "max_tokens", cfg.MaxTokens)
}

func (p *OpenAIProvider) SetLogger(logger utils.Logger) {
	p.logger = logger
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Endpoint() string {
	return strings.TrimSuffix(p.endpoint, "/") + "/chat/completions"
}

func (p *OpenAIProvider) SupportsStructuredResponse() bool {
	return true
}

// Headers returns the request headers. Local servers run without a key, so
// Authorization is only sent when one is configured.
func (p *OpenAIProvider) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}
	for key, value := range p.extraHeaders {
		headers[key] = value
	}
	return headers
}

func (p *OpenAIProvider) PrepareRequest(req *Request) ([]byte, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("openai request needs at least one message")
	}

	request := map[string]any{
		"model":    p.model,
		"messages": toWire(req.Messages),
	}
	for k, v := range p.options {
		request[k] = v
	}
	if req.Format != nil {
		request["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "response",
				"schema": req.Format,
				"strict": true,
			},
		}
	}

	reqJSON, err := json.Marshal(request)
	if err != nil {
		p.logger.Error("Failed to marshal request", "error", err)
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return reqJSON, nil
}

func (p *OpenAIProvider) ParseResponse(body []byte) (*Response, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage *struct {
			PromptTokens     int64 `json:"prompt_tokens"`
			CompletionTokens int64 `json:"completion_tokens"`
		} `json:"usage"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing OpenAI response: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("openai error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("empty response from API")
	}

	resp := &Response{Content: response.Choices[0].Message.Content}
	if response.Usage != nil {
		resp.Usage = NewUsage(response.Usage.PromptTokens, response.Usage.CompletionTokens)
	}
	return resp, nil
}
