package llm

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

func newTestMemory(budget int) *Memory {
	return NewMemory(budget, HeuristicCounter{}, utils.NewNopLogger())
}

func systemCount(msgs []types.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == types.RoleSystem {
			n++
		}
	}
	return n
}

func TestMemory(t *testing.T) {
	logger := &utils.MockLogger{}
	logger.On("Debug", "Added message to memory", mock.Anything).Return()
	logger.On("Debug", "Removed message from memory", mock.Anything).Return()

	t.Run("Append preserves order", func(t *testing.T) {
		memory := NewMemory(0, HeuristicCounter{}, logger)
		require.NoError(t, memory.Append(types.UserMessage("Hello")))
		require.NoError(t, memory.Append(types.AssistantMessage("Hi there!")))
		require.NoError(t, memory.Append(types.UserMessage("Which trail?")))

		msgs := memory.Messages()
		require.Len(t, msgs, 3)
		assert.Equal(t, "Hello", msgs[0].Content)
		assert.Equal(t, types.RoleAssistant, msgs[1].Role)
		assert.Equal(t, "Which trail?", msgs[2].Content)
		assert.Equal(t, 3, memory.Len())
	})

	t.Run("Messages returns a copy", func(t *testing.T) {
		memory := NewMemory(0, HeuristicCounter{}, logger)
		require.NoError(t, memory.Append(types.UserMessage("original")))

		msgs := memory.Messages()
		msgs[0].Content = "changed"
		_ = append(msgs, types.UserMessage("extra"))

		assert.Equal(t, "original", memory.Messages()[0].Content)
		assert.Equal(t, 1, memory.Len())
	})

	t.Run("Rewind drops the tail", func(t *testing.T) {
		memory := NewMemory(0, HeuristicCounter{}, logger)
		require.NoError(t, memory.Append(types.UserMessage("keep")))
		before := memory.TotalTokens()
		mark := memory.Len()
		require.NoError(t, memory.Append(types.UserMessage("orphaned question")))

		memory.Rewind(mark)
		assert.Equal(t, mark, memory.Len())
		assert.Equal(t, before, memory.TotalTokens())

		memory.Rewind(10)
		assert.Equal(t, mark, memory.Len())
	})

	logger.AssertExpectations(t)
}

func TestMemoryRejectsBadMessages(t *testing.T) {
	memory := newTestMemory(0)

	err := memory.Append(types.Message{Role: "tool", Content: "x"})
	assert.Error(t, err)

	require.NoError(t, memory.Append(types.SystemMessage("guide")))
	assert.Error(t, memory.Append(types.SystemMessage("second guide")))
	require.NoError(t, memory.Append(types.UserMessage("hi")))
	assert.Error(t, memory.Append(types.SystemMessage("late guide")))
	assert.Equal(t, 2, memory.Len())
}

func TestEnsureSystemPrompt(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		memory := newTestMemory(0)
		assert.True(t, memory.EnsureSystemPrompt("You are an expert hiking guide."))
		assert.False(t, memory.EnsureSystemPrompt("You are an expert hiking guide."))

		msgs := memory.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, 1, systemCount(msgs))
	})

	t.Run("inserts at position zero", func(t *testing.T) {
		memory := newTestMemory(0)
		require.NoError(t, memory.Append(types.UserMessage("parks")))
		require.NoError(t, memory.Append(types.AssistantMessage("Zion")))

		assert.True(t, memory.EnsureSystemPrompt("guide"))
		msgs := memory.Messages()
		require.Len(t, msgs, 3)
		assert.Equal(t, types.SystemMessage("guide"), msgs[0])
		assert.Equal(t, "parks", msgs[1].Content)
		assert.Equal(t, "Zion", msgs[2].Content)
	})

	t.Run("keeps existing prompt", func(t *testing.T) {
		memory := newTestMemory(0)
		require.NoError(t, memory.Append(types.SystemMessage("first")))
		assert.False(t, memory.EnsureSystemPrompt("second"))
		assert.Equal(t, "first", memory.Messages()[0].Content)
	})
}

func TestMemorySystemMessageStaysFirst(t *testing.T) {
	memory := newTestMemory(0)
	ops := []func(){
		func() { _ = memory.Append(types.UserMessage("u")) },
		func() { memory.EnsureSystemPrompt("s") },
		func() { _ = memory.Append(types.SystemMessage("s2")) },
		func() { _ = memory.Append(types.AssistantMessage("a")) },
		func() { memory.EnsureSystemPrompt("s3") },
		func() { memory.Rewind(memory.Len() - 1) },
	}
	for round := 0; round < 5; round++ {
		for _, op := range ops {
			op()
			msgs := memory.Messages()
			assert.LessOrEqual(t, systemCount(msgs), 1)
			for i, m := range msgs {
				if m.Role == types.RoleSystem {
					assert.Equal(t, 0, i)
				}
			}
		}
	}
}

func TestMemoryBudgetWarnsOnce(t *testing.T) {
	logger := &utils.MockLogger{}
	logger.On("Debug", mock.Anything, mock.Anything).Return()
	logger.On("Warn", "Conversation exceeds token budget", mock.Anything).Return().Once()

	memory := NewMemory(2, HeuristicCounter{}, logger)
	require.NoError(t, memory.Append(types.UserMessage("this message is long enough to pass the budget")))
	require.NoError(t, memory.Append(types.AssistantMessage("and so is this one, still no truncation")))

	assert.Equal(t, 2, memory.Len())
	logger.AssertNumberOfCalls(t, "Warn", 1)
}

func TestMemoryConcurrentAppend(t *testing.T) {
	memory := newTestMemory(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = memory.Append(types.UserMessage(fmt.Sprintf("message %d", i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, memory.Len())
}

func TestHeuristicCounter(t *testing.T) {
	var c HeuristicCounter
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 1, c.Count("abc"))
	assert.Equal(t, 1, c.Count("abcd"))
	assert.Equal(t, 2, c.Count("abcde"))
	assert.Equal(t, 1, c.Count("°C°C"))
}
