// Package agent runs the hiking recommendation pipeline: location, weather,
// a weather gate, park and trail lookup, one recommendation and then a
// follow-up conversation.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/llm"
	"github.com/teilomillet/trailhead/location"
	"github.com/teilomillet/trailhead/parks"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
	"github.com/teilomillet/trailhead/weather"
)

type LocationResolver interface {
	Resolve(ctx context.Context) (location.Location, error)
}

type ForecastSource interface {
	Forecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error)
}

type ParkDirectory interface {
	Parks(ctx context.Context, stateCode string) ([]parks.Park, error)
	ThingsToDo(ctx context.Context, parkCode string) ([]parks.Activity, error)
}

// Stage names the step a run ended at.
type Stage int

const (
	StageConfig Stage = iota
	StageLocation
	StageWeather
	StageWeatherGate
	StageParks
	StageTrails
	StageRecommendation
	StageFollowUp
	StageDone
)

func (s Stage) String() string {
	names := [...]string{"config", "location", "weather", "weather-gate", "parks", "trails", "recommendation", "follow-up", "done"}
	if s < StageConfig || int(s) >= len(names) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return names[s]
}

// Outcome is the result of a run. A run that stopped early carries the
// stage it stopped at, the error kind and the message shown to the user.
type Outcome struct {
	Stage          Stage
	Kind           types.ErrorKind
	Message        string
	Recommendation string
	Session        *Session
}

// Completed reports whether the run got through the follow-up loop.
func (o Outcome) Completed() bool {
	return o.Stage == StageDone
}

// Deps are the collaborators of an Orchestrator. Reporter, Logger, In, Out,
// Now and Counter have defaults.
type Deps struct {
	Locator   LocationResolver
	Forecasts ForecastSource
	Parks     ParkDirectory
	Transport llm.ChatTransport
	Reporter  Reporter
	Logger    utils.Logger
	In        io.Reader
	Out       io.Writer
	Now       func() time.Time
	Counter   llm.TokenCounter
}

type Orchestrator struct {
	cfg  *config.Config
	deps Deps
}

func NewOrchestrator(cfg *config.Config, deps Deps) *Orchestrator {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.In == nil {
		deps.In = os.Stdin
	}
	if deps.Reporter == nil {
		deps.Reporter = NewWriterReporter(deps.Out)
	}
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{cfg: cfg, deps: deps}
}

// Run executes one session. Every failure is turned into an Outcome and a
// message on the Reporter; Run never panics on upstream or model errors.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	r := o.deps.Reporter
	logger := o.deps.Logger

	if err := o.cfg.ValidateKey("nps"); err != nil {
		logger.Error("Pre-flight check failed", "error", err)
		return o.stop(StageConfig, types.KindUnknown, msgMissingKey)
	}

	r.Progress(msgDetectingLocation)
	loc, err := o.deps.Locator.Resolve(ctx)
	if err != nil {
		logger.Error("Failed to resolve location", "error", err)
		return o.stop(StageLocation, types.KindOf(err), msgNoLocation)
	}
	logger.Info("Resolved location", "location", loc.String())

	r.Progress(msgCheckingWeather)
	forecast, err := o.deps.Forecasts.Forecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		logger.Error("Failed to fetch forecast", "error", err)
		return o.stop(StageWeather, types.KindOf(err), msgNoWeather)
	}
	window := weather.HourWindow{Start: o.cfg.DaylightStart, End: o.cfg.DaylightEnd}
	summary := weather.Summarize(forecast, o.deps.Now(), window)
	if weather.IsInsufficient(summary) {
		logger.Warn("Weather summary is unusable", "summary", summary)
		r.Notice(summary)
		return o.stop(StageWeather, types.KindInsufficientData, msgBadSummary)
	}
	r.Notice(summary)

	gates := NewGateEvaluator(o.deps.Transport, o.cfg.StructuredGates, logger)
	decision := gates.Ask(ctx, GateQuery{
		SystemPrompt: weatherGateSystemPrompt,
		UserPrompt:   fmt.Sprintf(weatherGateUserPrompt, summary),
	})
	goodWeather := decision.Yes
	if decision.Failed() {
		r.Warn(msgGateFailed)
	}
	if !goodWeather && o.cfg.WeatherPolicy == config.PolicyAbort {
		kind := decision.Kind
		if !decision.Failed() {
			kind = types.KindUnknown
		}
		return o.stop(StageWeatherGate, kind, msgWeatherUnsuitable)
	}

	r.Progress(msgSearchingParks)
	list, err := o.deps.Parks.Parks(ctx, loc.Region)
	if err != nil || len(list) == 0 {
		if err != nil {
			logger.Error("Failed to list parks", "state", loc.Region, "error", err)
		}
		kind := types.KindInsufficientData
		if err != nil {
			kind = types.KindOf(err)
		}
		return o.stop(StageParks, kind, fmt.Sprintf(msgNoParks, loc.Region))
	}
	logger.Info("Found parks", "state", loc.Region, "count", len(list))

	index := BuildIndex(ctx, o.deps.Parks, list, logger)
	if index.Len() == 0 {
		return o.stop(StageTrails, types.KindInsufficientData, msgNoTrails)
	}

	if goodWeather {
		r.Notice(msgGoodWeather)
	} else {
		r.Notice(msgFutureTrip)
	}

	memory := llm.NewMemory(o.cfg.MemoryTokenBudget, o.deps.Counter, logger)
	session := NewSession(o.deps.Transport, memory, logger)
	recommendation, err := Composer{}.Recommend(ctx, session, index, goodWeather)
	if err != nil {
		logger.Error("Recommendation failed", "error", err)
		msg := msgRecommendFailed
		if errors.Is(err, types.ErrInsufficientData) {
			msg = msgNoRecommendations
		}
		out := o.stop(StageRecommendation, types.KindOf(err), msg)
		out.Session = session
		return out
	}
	r.Show(recommendationsTitle, recommendation)

	loop := NewFollowUpLoop(session, gates, o.cfg.Reflect, r, o.deps.In, o.deps.Out, logger)
	if err := loop.Run(ctx); err != nil {
		out := Outcome{Stage: StageFollowUp, Recommendation: recommendation, Session: session}
		if ctx.Err() == nil {
			logger.Error("Follow-up loop failed", "error", err)
			out.Message = msgInputFailed
			return out
		}
		logger.Info("Follow-up loop interrupted", "error", err)
		return out
	}
	return Outcome{Stage: StageDone, Recommendation: recommendation, Session: session}
}

func (o *Orchestrator) stop(stage Stage, kind types.ErrorKind, msg string) Outcome {
	o.deps.Reporter.Notice(msg)
	o.deps.Logger.Debug("Run stopped", "stage", stage.String(), "kind", kind.String())
	return Outcome{Stage: stage, Kind: kind, Message: msg}
}
