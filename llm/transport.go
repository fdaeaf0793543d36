package llm

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/teilomillet/trailhead/types"
)

// ChatTransport sends an ordered conversation to a language model and
// returns the generated text. Implementations hold no conversation state.
type ChatTransport interface {
	Chat(ctx context.Context, messages []types.Message, opts ...ChatOption) (string, error)
}

// ChatOption adjusts a single Chat call.
type ChatOption func(*chatOptions)

type chatOptions struct {
	format *jsonschema.Schema
}

// WithFormat asks the backend to constrain its reply to schema. Backends
// that cannot do this ignore it.
func WithFormat(schema *jsonschema.Schema) ChatOption {
	return func(o *chatOptions) {
		o.format = schema
	}
}

func applyChatOptions(opts []ChatOption) chatOptions {
	var o chatOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
