package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/teilomillet/trailhead/utils"
)

type LoopState int

const (
	AwaitingInput LoopState = iota
	Terminated
)

func (s LoopState) String() string {
	if s == Terminated {
		return "Terminated"
	}
	return "AwaitingInput"
}

// FollowUpLoop answers free-form questions against a session until the user
// types "exit" or input ends.
type FollowUpLoop struct {
	session  *Session
	gates    *GateEvaluator
	reflect  bool
	reporter Reporter
	in       io.Reader
	out      io.Writer
	logger   utils.Logger
	state    LoopState
}

// NewFollowUpLoop returns a loop in the AwaitingInput state. gates may be nil
// when reflect is false.
func NewFollowUpLoop(session *Session, gates *GateEvaluator, reflect bool, reporter Reporter, in io.Reader, out io.Writer, logger utils.Logger) *FollowUpLoop {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &FollowUpLoop{
		session:  session,
		gates:    gates,
		reflect:  reflect && gates != nil,
		reporter: reporter,
		in:       in,
		out:      out,
		logger:   logger,
		state:    AwaitingInput,
	}
}

func (l *FollowUpLoop) State() LoopState {
	return l.state
}

// maxInputLine bounds a single line of user input.
const maxInputLine = 1 << 20

type inputLine struct {
	text string
	err  error
}

// Run drives the loop. It returns nil when the user exits or input ends,
// ctx.Err() when ctx is canceled while waiting for input, and a wrapped error
// when reading input fails.
//
// Input is read on a separate goroutine. After Run returns, whether on exit or
// on cancellation, that goroutine stays blocked on the reader until the next
// line or EOF arrives. Callers that embed the loop should close the reader.
func (l *FollowUpLoop) Run(ctx context.Context) error {
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines := readLines(readCtx, l.in)
	defer func() { l.state = Terminated }()

	for {
		fmt.Fprint(l.out, followUpPrompt)

		var line inputLine
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out)
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(l.out)
			l.logger.Debug("Input closed, leaving follow-up loop")
			return nil
		}
		if line.err != nil {
			l.logger.Error("Failed to read input", "error", line.err)
			l.reporter.Warn(msgInputFailed)
			return fmt.Errorf("failed to read input: %w", line.err)
		}

		input := strings.TrimSpace(line.text)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, exitCommand) {
			l.logger.Debug("User exited follow-up loop")
			return nil
		}
		l.turn(ctx, input)
	}
}

func (l *FollowUpLoop) turn(ctx context.Context, input string) {
	reply, err := l.session.Ask(ctx, "", input)
	if err != nil {
		l.reporter.Warn(msgFollowUpFailed)
		return
	}
	fmt.Fprintf(l.out, "\nAgent: %s\n", reply)

	if !l.reflect {
		return
	}
	// Advisory only; the answer never ends the loop.
	if l.gates.Reflect(ctx, l.session.Memory.Messages()).Yes {
		l.reporter.Notice(msgReflectFinal)
	} else {
		l.reporter.Notice(msgReflectUnsure)
	}
}

// readLines scans r on its own goroutine so that waiting for input can be
// abandoned when ctx ends. The channel is closed at EOF.
func readLines(ctx context.Context, r io.Reader) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)
		for scanner.Scan() {
			select {
			case lines <- inputLine{text: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- inputLine{err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return lines
}
