package agent

import (
	"context"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/teilomillet/trailhead/llm"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

// GateQuery is a one-off yes/no question. It is never stored in a session.
type GateQuery struct {
	SystemPrompt string
	UserPrompt   string
}

// Decision is the outcome of a gate. Yes is false whenever the answer could
// not be obtained or parsed.
type Decision struct {
	Yes   bool
	Reply string

	// Kind is KindTransportFault or KindUnparseableOutput when the gate
	// fell back to "no", KindUnknown otherwise.
	Kind types.ErrorKind
}

// Failed reports whether the model could not be asked at all.
func (d Decision) Failed() bool {
	return d.Kind == types.KindTransportFault
}

type verdict struct {
	Answer string `json:"answer" jsonschema:"enum=yes,enum=no" validate:"required,oneof=yes no"`
}

var verdictSchema = (&jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}).Reflect(&verdict{})

// GateEvaluator asks binary questions and reduces the reply to a boolean.
type GateEvaluator struct {
	transport  llm.ChatTransport
	structured bool
	logger     utils.Logger
}

// NewGateEvaluator returns an evaluator. With structured set, queries carry
// a {"answer": "yes"|"no"} JSON schema.
func NewGateEvaluator(transport llm.ChatTransport, structured bool, logger utils.Logger) *GateEvaluator {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &GateEvaluator{transport: transport, structured: structured, logger: logger}
}

// Ask runs q against its own two-message conversation.
func (g *GateEvaluator) Ask(ctx context.Context, q GateQuery) Decision {
	return g.decide(ctx, "yes_no", []types.Message{
		types.SystemMessage(q.SystemPrompt),
		types.UserMessage(q.UserPrompt),
	})
}

// Reflect asks whether the last reply in conversation fully answers the
// user. It works on a copy; conversation is not modified.
func (g *GateEvaluator) Reflect(ctx context.Context, conversation []types.Message) Decision {
	messages := make([]types.Message, 0, len(conversation)+1)
	messages = append(messages, conversation...)
	messages = append(messages, types.UserMessage(reflectionPrompt))
	return g.decide(ctx, "final_answer", messages)
}

// EvaluateYesNo is Ask reduced to its boolean.
func (g *GateEvaluator) EvaluateYesNo(ctx context.Context, systemPrompt, userPrompt string) bool {
	return g.Ask(ctx, GateQuery{SystemPrompt: systemPrompt, UserPrompt: userPrompt}).Yes
}

// EvaluateFinalAnswer is Reflect reduced to its boolean.
func (g *GateEvaluator) EvaluateFinalAnswer(ctx context.Context, conversation []types.Message) bool {
	return g.Reflect(ctx, conversation).Yes
}

func (g *GateEvaluator) decide(ctx context.Context, gate string, messages []types.Message) Decision {
	var opts []llm.ChatOption
	if g.structured {
		opts = append(opts, llm.WithFormat(verdictSchema))
	}

	reply, err := g.transport.Chat(ctx, messages, opts...)
	if err != nil {
		g.logger.Warn("Gate query failed, answering no", "gate", gate, "error", err)
		return Decision{Kind: types.KindTransportFault}
	}

	if g.structured {
		var v verdict
		err := llm.DecodeStructured(reply, &v)
		if err == nil {
			g.logger.Debug("Gate decided", "gate", gate, "answer", v.Answer)
			return Decision{Yes: v.Answer == "yes", Reply: reply}
		}
		g.logger.Debug("Structured gate reply rejected, parsing as text", "gate", gate, "error", err)
	}

	d := Decision{Yes: ParseYesNo(reply), Reply: reply}
	if !d.Yes && !strings.Contains(strings.ToLower(reply), "no") {
		d.Kind = types.KindUnparseableOutput
		g.logger.Warn("Gate reply holds neither yes nor no, answering no", "gate", gate, "reply", reply)
	}
	g.logger.Debug("Gate decided", "gate", gate, "yes", d.Yes)
	return d
}

// ParseYesNo reports whether reply contains "yes" in any case. Anything
// else, including unparseable text, is a no.
func ParseYesNo(reply string) bool {
	return strings.Contains(strings.ToLower(reply), "yes")
}
