package providers

import (
	"github.com/invopop/jsonschema"
	"github.com/teilomillet/trailhead/types"
)

// Request is the backend-neutral description of one chat call.
type Request struct {
	Messages []types.Message
	// Format, when set, asks the backend to constrain the reply to this schema.
	Format *jsonschema.Schema
}

// Response is the parsed reply of one chat call.
type Response struct {
	Content string
	Usage   *Usage
}

func (r Response) String() string {
	return r.Content
}

// Usage represents the token usage reported by a backend.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

func NewUsage(inputTokens, outputTokens int64) *Usage {
	return &Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
	}
}

// wireMessage is the role/content pair both Ollama and OpenAI-style APIs accept.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toWire(messages []types.Message) []wireMessage {
	out := make([]wireMessage, len(messages))
	for i, msg := range messages {
		out[i] = wireMessage{Role: msg.Role.String(), Content: msg.Content}
	}
	return out
}
