package providers

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/utils"
)

// MockProvider is a codec for tests. Its request body is a plain JSON dump of
// the messages and its replies come from a queue, so ParseResponse ignores the
// body it is given.
type MockProvider struct {
	mu           sync.Mutex
	endpoint     string
	model        string
	extraHeaders map[string]string
	options      map[string]any
	logger       utils.Logger

	responses    []string
	currentIndex int
	shouldError  bool
	errorMsg     string
	requests     []*Request
}

func NewMockProvider(endpoint, model string, extraHeaders map[string]string) *MockProvider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &MockProvider{
		endpoint:     endpoint,
		model:        model,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewNopLogger(),
	}
}

// SetResponses queues replies returned in order by ParseResponse.
func (p *MockProvider) SetResponses(responses ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = responses
	p.currentIndex = 0
}

// SetMockError makes ParseResponse fail with errorMsg.
func (p *MockProvider) SetMockError(shouldError bool, errorMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shouldError = shouldError
	p.errorMsg = errorMsg
}

// Requests returns every request seen by PrepareRequest.
func (p *MockProvider) Requests() []*Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Request(nil), p.requests...)
}

func (p *MockProvider) Name() string                         { return "mock" }
func (p *MockProvider) Endpoint() string                     { return p.endpoint }
func (p *MockProvider) SetLogger(logger utils.Logger)        { p.logger = logger }
func (p *MockProvider) SetDefaultOptions(cfg *config.Config) {}
func (p *MockProvider) SupportsStructuredResponse() bool     { return true }

func (p *MockProvider) SetOption(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options[key] = value
}

func (p *MockProvider) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	for k, v := range p.extraHeaders {
		headers[k] = v
	}
	return headers
}

func (p *MockProvider) PrepareRequest(req *Request) ([]byte, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	return json.Marshal(map[string]any{
		"model":    p.model,
		"messages": toWire(req.Messages),
	})
}

func (p *MockProvider) ParseResponse(body []byte) (*Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shouldError {
		return nil, errors.New(p.errorMsg)
	}
	if p.currentIndex >= len(p.responses) {
		return nil, errors.New("mock responses exhausted")
	}
	content := p.responses[p.currentIndex]
	p.currentIndex++
	return &Response{Content: content}, nil
}
