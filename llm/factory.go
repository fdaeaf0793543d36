package llm

import (
	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/providers"
	"github.com/teilomillet/trailhead/utils"
)

// NewTransport returns the ChatTransport selected by cfg.Provider:
// "anthropic" uses the SDK, everything else goes through the HTTP codec registry.
func NewTransport(cfg *config.Config, logger utils.Logger) (ChatTransport, error) {
	if cfg.Provider == "anthropic" {
		if cfg.HasPlaceholderKey("anthropic") {
			return nil, NewLLMError(ErrorTypeAuthentication, "ANTHROPIC_API_KEY is not set", nil)
		}
		return NewAnthropicTransport(cfg, logger), nil
	}
	client, err := NewClient(cfg, logger, providers.GetDefaultRegistry())
	if err != nil {
		return nil, err
	}
	return client, nil
}
