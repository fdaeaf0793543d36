package agent

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teilomillet/trailhead/types"
)

// seededSession returns a session holding a finished recommendation.
func seededSession(t *testing.T, transport *scriptedTransport) *Session {
	t.Helper()
	session := newTestSession(transport)
	require.NoError(t, session.Memory.Append(types.SystemMessage("guide")))
	require.NoError(t, session.Memory.Append(types.UserMessage("parks")))
	require.NoError(t, session.Memory.Append(types.AssistantMessage("Zion")))
	return session
}

func runLoop(t *testing.T, transport *scriptedTransport, reflect bool, input string) (*FollowUpLoop, *Session, string) {
	t.Helper()
	session := seededSession(t, transport)
	var out bytes.Buffer
	gates := NewGateEvaluator(transport, false, nil)
	loop := NewFollowUpLoop(session, gates, reflect, NewWriterReporter(&out), strings.NewReader(input), &out, nil)

	require.NoError(t, loop.Run(context.Background()))
	return loop, session, out.String()
}

func TestFollowUpExitIsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"exit\n", "EXIT\n", "  Exit  \n"} {
		transport := newScriptedTransport()
		loop, session, out := runLoop(t, transport, true, input)

		assert.Equal(t, Terminated, loop.State())
		assert.Equal(t, 0, transport.callCount())
		assert.Equal(t, 3, session.Memory.Len())
		assert.Equal(t, 1, strings.Count(out, followUpPrompt))
	}
}

func TestFollowUpEOFTerminates(t *testing.T) {
	transport := newScriptedTransport()
	loop, _, _ := runLoop(t, transport, false, "")

	assert.Equal(t, Terminated, loop.State())
	assert.Equal(t, 0, transport.callCount())
}

func TestFollowUpIgnoresBlankLines(t *testing.T) {
	transport := newScriptedTransport()
	_, session, out := runLoop(t, transport, false, "\n   \n\nexit\n")

	assert.Equal(t, 0, transport.callCount())
	assert.Equal(t, 3, session.Memory.Len())
	assert.Equal(t, 4, strings.Count(out, followUpPrompt))
}

func TestFollowUpTurnWithReflection(t *testing.T) {
	transport := newScriptedTransport(say("Angels Landing has shade early."), say("Yes"))
	_, session, out := runLoop(t, transport, true, "which one has shade?\nexit\n")

	require.Equal(t, 2, transport.callCount())
	// The question goes out with the whole conversation and no new system message.
	assert.Len(t, transport.call(0), 4)
	assert.Equal(t, types.UserMessage("which one has shade?"), transport.call(0)[3])

	reflection := transport.call(1)
	require.Len(t, reflection, 6)
	assert.Equal(t, types.UserMessage(reflectionPrompt), reflection[5])

	assert.Equal(t, 5, session.Memory.Len())
	assert.Contains(t, out, "\nAgent: Angels Landing has shade early.\n")
	assert.Contains(t, out, msgReflectFinal)
}

func TestFollowUpReflectionIsAdvisory(t *testing.T) {
	transport := newScriptedTransport(say("Maybe."), say("no"), say("Sure."), fail(errTransport))
	loop, session, out := runLoop(t, transport, true, "one\ntwo\nexit\n")

	assert.Equal(t, Terminated, loop.State())
	assert.Equal(t, 4, transport.callCount())
	assert.Equal(t, 7, session.Memory.Len())
	assert.Equal(t, 2, strings.Count(out, msgReflectUnsure))
}

func TestFollowUpWithoutReflection(t *testing.T) {
	transport := newScriptedTransport(say("Sure."))
	_, _, out := runLoop(t, transport, false, "one\nexit\n")

	assert.Equal(t, 1, transport.callCount())
	assert.NotContains(t, out, "Agent reflects")
}

func TestFollowUpRollsBackFailedTurn(t *testing.T) {
	transport := newScriptedTransport(fail(errTransport), say("Second try works."))
	_, session, out := runLoop(t, transport, false, "first\nsecond\nexit\n")

	assert.Contains(t, out, msgFollowUpFailed)
	assert.Equal(t, []types.Message{
		types.SystemMessage("guide"),
		types.UserMessage("parks"),
		types.AssistantMessage("Zion"),
		types.UserMessage("second"),
		types.AssistantMessage("Second try works."),
	}, session.Memory.Messages())
}

func TestFollowUpStopsOnCancel(t *testing.T) {
	transport := newScriptedTransport()
	session := seededSession(t, transport)
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	loop := NewFollowUpLoop(session, nil, true, NewWriterReporter(io.Discard), pr, io.Discard, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	assert.Equal(t, Terminated, loop.State())
	assert.Equal(t, 0, transport.callCount())
}

func TestFollowUpAcceptsLongLines(t *testing.T) {
	long := strings.Repeat("a", 70*1024)
	transport := newScriptedTransport(say("x"), say("y"))
	loop, session, _ := runLoop(t, transport, false, long+"\nsecond question\nexit\n")

	assert.Equal(t, Terminated, loop.State())
	require.Equal(t, 2, transport.callCount())
	assert.Equal(t, types.UserMessage(long), transport.call(0)[3])
	assert.Equal(t, 7, session.Memory.Len())
}

func TestFollowUpReportsUnreadableInput(t *testing.T) {
	transport := newScriptedTransport()
	session := seededSession(t, transport)
	var out bytes.Buffer
	input := strings.NewReader(strings.Repeat("a", maxInputLine+1) + "\nexit\n")
	loop := NewFollowUpLoop(session, nil, false, NewWriterReporter(&out), input, &out, nil)

	err := loop.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input")
	assert.Contains(t, out.String(), msgInputFailed)
	assert.Equal(t, Terminated, loop.State())
	assert.Equal(t, 0, transport.callCount())
	assert.Equal(t, 3, session.Memory.Len())
}

func TestFollowUpExitDoesNotWaitForReader(t *testing.T) {
	transport := newScriptedTransport()
	session := seededSession(t, transport)
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	loop := NewFollowUpLoop(session, nil, false, NewWriterReporter(io.Discard), pr, io.Discard, nil)
	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	_, err := io.WriteString(pw, "exit\n")
	require.NoError(t, err)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not return after exit")
	}
	assert.Equal(t, Terminated, loop.State())
}
