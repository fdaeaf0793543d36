package llm

import (
	"fmt"
	"sync"

	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

type memoryEntry struct {
	message types.Message
	tokens  int
}

// Memory is the ordered message log of one session. It only grows, except
// for Rewind, which drops a failed turn. Token counts are tracked per
// message; going over the budget is logged but never truncates the log.
type Memory struct {
	entries     []memoryEntry
	mutex       sync.Mutex
	totalTokens int
	budget      int
	counter     TokenCounter
	logger      utils.Logger
	warned      bool
}

// NewMemory creates an empty Memory. A budget of 0 disables the warning.
func NewMemory(budget int, counter TokenCounter, logger utils.Logger) *Memory {
	if counter == nil {
		counter = HeuristicCounter{}
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Memory{
		budget:  budget,
		counter: counter,
		logger:  logger,
	}
}

// Append adds msg to the end of the log. Unknown roles are rejected, and a
// system message is accepted only as the first entry.
func (m *Memory) Append(msg types.Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("invalid message role: %q", msg.Role)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if msg.Role == types.RoleSystem && len(m.entries) > 0 {
		return fmt.Errorf("system message must be the first message, log already has %d", len(m.entries))
	}
	m.insert(len(m.entries), msg)
	return nil
}

// EnsureSystemPrompt puts a system message at position 0 unless the log
// already has one. It reports whether a message was inserted.
func (m *Memory) EnsureSystemPrompt(text string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, e := range m.entries {
		if e.message.Role == types.RoleSystem {
			return false
		}
	}
	m.insert(0, types.SystemMessage(text))
	return true
}

func (m *Memory) insert(pos int, msg types.Message) {
	entry := memoryEntry{message: msg, tokens: m.counter.Count(msg.Content)}
	m.entries = append(m.entries, memoryEntry{})
	copy(m.entries[pos+1:], m.entries[pos:])
	m.entries[pos] = entry
	m.totalTokens += entry.tokens

	m.logger.Debug("Added message to memory", "role", msg.Role, "tokens", entry.tokens, "total_tokens", m.totalTokens)
	if m.budget > 0 && m.totalTokens > m.budget && !m.warned {
		m.warned = true
		m.logger.Warn("Conversation exceeds token budget", "total_tokens", m.totalTokens, "budget", m.budget)
	}
}

// Messages returns a copy of the log in order.
func (m *Memory) Messages() []types.Message {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]types.Message, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.message
	}
	return out
}

func (m *Memory) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.entries)
}

// Rewind truncates the log back to n messages. It is a no-op when the log
// is not longer than n.
func (m *Memory) Rewind(n int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if n < 0 {
		n = 0
	}
	for len(m.entries) > n {
		removed := m.entries[len(m.entries)-1]
		m.entries = m.entries[:len(m.entries)-1]
		m.totalTokens -= removed.tokens
		m.logger.Debug("Removed message from memory", "role", removed.message.Role, "tokens", removed.tokens, "total_tokens", m.totalTokens)
	}
	if m.totalTokens <= m.budget {
		m.warned = false
	}
}

// TotalTokens returns the summed token estimate of every message.
func (m *Memory) TotalTokens() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.totalTokens
}
