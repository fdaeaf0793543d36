package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/spf13/cobra"
	"github.com/teilomillet/trailhead/agent"
	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/llm"
	"github.com/teilomillet/trailhead/types"
)

var (
	policy          string
	noReflect       bool
	structuredGates bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent and answer follow-up questions",
	Long: `Run the full pipeline: location, weather, weather gate, parks and trails,
one recommendation and then follow-up questions on stdin.

Examples:
  # Keep recommending even when the weather is bad (default)
  trailhead run --policy reframe

  # Skip the completeness check after every answer
  trailhead run --no-reflect`,
	Args: cobra.NoArgs,
	RunE: runAgent,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&policy, "policy", config.PolicyReframe, "what a bad weather verdict does (abort, reframe)")
	cmd.Flags().BoolVar(&noReflect, "no-reflect", false, "do not check whether follow-up answers are complete")
	cmd.Flags().BoolVar(&structuredGates, "structured-gates", false, "ask for yes/no verdicts as JSON")
}

func runAgent(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	transport, err := llm.NewTransport(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up %s: %w", cfg.Provider, err)
	}
	c := newClients(cfg, logger)

	out := agent.NewOrchestrator(cfg, agent.Deps{
		Locator:   c.locator,
		Forecasts: c.forecasts,
		Parks:     c.parks,
		Transport: transport,
		Reporter:  ancliReporter{},
		Logger:    logger,
		In:        os.Stdin,
		Out:       os.Stdout,
		Counter:   llm.NewTokenCounter(cfg.Model, logger),
	}).Run(cmd.Context())

	logger.Info("Run finished", "stage", out.Stage.String(), "kind", out.Kind.String())
	return outcomeErr(out)
}

var errStopped = errors.New("trailhead stopped early")

// outcomeErr maps a run outcome to the process result. A bad weather verdict
// and an interrupted follow-up are normal endings.
func outcomeErr(out agent.Outcome) error {
	switch {
	case out.Completed():
		return nil
	case out.Stage == agent.StageFollowUp && out.Message == "":
		return nil
	case out.Stage == agent.StageWeatherGate && out.Kind == types.KindUnknown:
		return nil
	default:
		return fmt.Errorf("%w at %s", errStopped, out.Stage)
	}
}

// ancliReporter prints agent progress with ancli's colored prefixes.
type ancliReporter struct{}

func (ancliReporter) Progress(msg string) { ancli.PrintOK(msg + "\n") }
func (ancliReporter) Notice(msg string)   { fmt.Println(msg) }
func (ancliReporter) Warn(msg string)     { ancli.PrintWarn(msg + "\n") }

func (ancliReporter) Show(title, body string) {
	fmt.Println(ancli.ColoredMessage(ancli.CYAN, title))
	fmt.Println(body)
}
