package agent

import (
	"context"

	"github.com/google/uuid"
	"github.com/teilomillet/trailhead/llm"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

// Session is one run of the agent. It owns its Memory; nothing is shared
// between sessions.
type Session struct {
	ID        string
	Memory    *llm.Memory
	transport llm.ChatTransport
	logger    utils.Logger
}

// NewSession starts a session over a fresh memory.
func NewSession(transport llm.ChatTransport, memory *llm.Memory, logger utils.Logger) *Session {
	id := uuid.NewString()
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Session{
		ID:        id,
		Memory:    memory,
		transport: transport,
		logger:    logger.With("session_id", id),
	}
}

// Ask sends userPrompt with the whole conversation as context and records
// both turns. A non-empty systemPrompt is placed first unless the log already
// has one. When the transport fails, the user turn is removed again and a
// types.KindTransportFault error is returned.
func (s *Session) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "session.ask"

	if systemPrompt != "" {
		s.Memory.EnsureSystemPrompt(systemPrompt)
	}
	mark := s.Memory.Len()
	if err := s.Memory.Append(types.UserMessage(userPrompt)); err != nil {
		return "", err
	}

	s.logger.Info("Asking model", "messages", mark+1)
	reply, err := s.transport.Chat(ctx, s.Memory.Messages())
	if err != nil {
		s.Memory.Rewind(mark)
		s.logger.Error("Chat failed, turn rolled back", "error", err, "messages", s.Memory.Len())
		return "", types.NewError(types.KindTransportFault, op, err)
	}

	if err := s.Memory.Append(types.AssistantMessage(reply)); err != nil {
		s.Memory.Rewind(mark)
		return "", err
	}
	s.logger.Debug("Model replied", "chars", len(reply), "total_tokens", s.Memory.TotalTokens())
	return reply, nil
}
