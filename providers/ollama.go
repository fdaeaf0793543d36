package providers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/utils"
)

// OllamaProvider encodes requests for Ollama's /api/chat endpoint.
// Ollama needs no API key; the apiKey argument is ignored.
type OllamaProvider struct {
	logger       utils.Logger
	extraHeaders map[string]string
	options      map[string]any
	endpoint     string
	model        string
}

func NewOllamaProvider(_ string, model string, extraHeaders map[string]string) *OllamaProvider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &OllamaProvider{
		endpoint:     "http://localhost:11434",
		model:        model,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewNopLogger(),
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Endpoint returns the chat URL, e.g. http://localhost:11434/api/chat.
func (p *OllamaProvider) Endpoint() string {
	return strings.TrimSuffix(p.endpoint, "/") + "/api/chat"
}

func (p *OllamaProvider) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	for k, v := range p.extraHeaders {
		headers[k] = v
	}
	return headers
}

// SetDefaultOptions copies sampling settings and the server address from cfg.
func (p *OllamaProvider) SetDefaultOptions(cfg *config.Config) {
	p.SetOption("temperature", cfg.Temperature)
	p.SetOption("num_predict", cfg.MaxTokens)
	if cfg.Seed != nil {
		p.SetOption("seed", *cfg.Seed)
	}
	if cfg.OllamaEndpoint != "" {
		p.endpoint = cfg.OllamaEndpoint
	}
}

// SetOption sets a model option sent under "options" (temperature, num_predict, seed, top_p...).
func (p *OllamaProvider) SetOption(key string, value any) {
	p.options[key] = value
	p.logger.Debug("Setting option for Ollama", "key", key, "value", value)
}

func (p *OllamaProvider) SetLogger(logger utils.Logger) {
	p.logger = logger
}

func (p *OllamaProvider) PrepareRequest(req *Request) ([]byte, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("ollama request needs at least one message")
	}

	requestBody := map[string]any{
		"model":    p.model,
		"messages": toWire(req.Messages),
		"stream":   false,
	}
	if len(p.options) > 0 {
		requestBody["options"] = p.options
	}
	if req.Format != nil {
		requestBody["format"] = req.Format
	}

	data, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

// ParseResponse reads a single reply object or, when a server streams
// anyway, concatenates the newline-delimited chunks until done.
func (p *OllamaProvider) ParseResponse(body []byte) (*Response, error) {
	var fullText strings.Builder
	var promptEvalCount, evalCount int64

	decoder := json.NewDecoder(bytes.NewReader(body))
	for decoder.More() {
		var chunk struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Error           string `json:"error"`
			Done            bool   `json:"done"`
			PromptEvalCount int64  `json:"prompt_eval_count"`
			EvalCount       int64  `json:"eval_count"`
		}
		if err := decoder.Decode(&chunk); err != nil {
			return nil, fmt.Errorf("error parsing Ollama response: %w", err)
		}
		if chunk.Error != "" {
			return nil, fmt.Errorf("ollama error: %s", chunk.Error)
		}
		fullText.WriteString(chunk.Message.Content)
		if chunk.PromptEvalCount > 0 {
			promptEvalCount = chunk.PromptEvalCount
		}
		if chunk.EvalCount > 0 {
			evalCount = chunk.EvalCount
		}
		if chunk.Done {
			break
		}
	}

	resp := &Response{Content: fullText.String()}
	if promptEvalCount > 0 || evalCount > 0 {
		resp.Usage = NewUsage(promptEvalCount, evalCount)
	}
	return resp, nil
}

// SupportsStructuredResponse is true: Ollama accepts a JSON schema in "format".
func (p *OllamaProvider) SupportsStructuredResponse() bool {
	return true
}
