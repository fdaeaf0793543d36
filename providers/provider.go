// Package providers holds the wire codecs for the chat backends trailhead
// can talk to over plain HTTP. A Provider only builds request bodies and
// parses response bodies; sending them is the job of the llm package.
package providers

import (
	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/utils"
)

// Provider defines the codec every HTTP chat backend implements.
type Provider interface {
	Name() string
	Endpoint() string
	Headers() map[string]string
	SetDefaultOptions(cfg *config.Config)
	SetOption(key string, value any)
	SetLogger(logger utils.Logger)

	// PrepareRequest encodes a full conversation into a request body.
	PrepareRequest(req *Request) ([]byte, error)
	// ParseResponse extracts the assistant reply from a response body.
	ParseResponse(body []byte) (*Response, error)

	// SupportsStructuredResponse reports whether Request.Format is honoured.
	SupportsStructuredResponse() bool
}

// ProviderConstructor creates a provider instance.
type ProviderConstructor func(apiKey, model string, extraHeaders map[string]string) Provider
