// Package main implements the trailhead CLI: a hiking recommendation agent
// that checks local weather, looks up nearby national parks and trails and
// talks the options over with a language model.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath       string
	provider         string
	model            string
	logLevel         string
	temperature      float64
	timeout          time.Duration
	memoryTokens     int
	locationEndpoint string
	parksEndpoint    string
	fetchRate        float64
	fetchBurst       int
)

var rootCmd = &cobra.Command{
	Use:   "trailhead",
	Short: "Hiking recommendations for today's weather near you",
	Long: `trailhead finds your location, summarizes today's daylight weather,
asks a language model whether it is a good day for a hike and recommends
trails from the national parks in your state. Follow-up questions are
answered in the same conversation until you type 'exit'.

Examples:
  # Run the agent with a local Ollama model
  NPS_API_KEY=... trailhead

  # Use Anthropic and stop when the weather is bad
  trailhead run --provider anthropic --model claude-sonnet-4-5 --policy abort`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAgent,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $TRAILHEAD_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider (ollama, openai, anthropic)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "LLM model")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level (off, error, warn, info, debug)")
	rootCmd.PersistentFlags().Float64Var(&temperature, "temperature", 0, "sampling temperature")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "LLM request timeout")
	rootCmd.PersistentFlags().IntVar(&memoryTokens, "memory-tokens", 0, "conversation token budget before old turns are dropped")
	rootCmd.PersistentFlags().StringVar(&locationEndpoint, "location-endpoint", "", "IP geolocation endpoint")
	rootCmd.PersistentFlags().StringVar(&parksEndpoint, "parks-endpoint", "", "NPS API base URL")
	rootCmd.PersistentFlags().Float64Var(&fetchRate, "fetch-rate", 0, "upstream requests per second")
	rootCmd.PersistentFlags().IntVar(&fetchBurst, "fetch-burst", 0, "upstream request burst")

	addRunFlags(rootCmd)
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(parksCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ancli.PrintErr(fmt.Sprintf("%v\n", err))
		stop()
		os.Exit(1)
	}
}
