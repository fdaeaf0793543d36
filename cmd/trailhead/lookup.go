package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/teilomillet/trailhead/agent"
	"github.com/teilomillet/trailhead/location"
	"github.com/teilomillet/trailhead/weather"
)

var (
	latitude  float64
	longitude float64
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Print the location trailhead detects for you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		loc, err := newClients(cfg, cfg.NewLogger()).locator.Resolve(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s, %s)\n", loc, loc.City, loc.Country)
		return nil
	},
}

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Summarize today's daylight weather",
	Long: `Summarize today's weather between the configured daylight hours.
Without --lat and --lon the location is detected first.

Examples:
  trailhead weather
  trailhead weather --lat 37.3 --lon -113.0`,
	Args: cobra.NoArgs,
	RunE: runWeather,
}

var parksCmd = &cobra.Command{
	Use:   "parks <STATE>",
	Short: "List national parks and hiking trails in a state",
	Long: `List the national parks of a state and the hiking trails found in their
things-to-do listings. STATE is a two letter code or a full state name.

Examples:
  trailhead parks UT
  trailhead parks "New Mexico"`,
	Args: cobra.ExactArgs(1),
	RunE: runParks,
}

func init() {
	weatherCmd.Flags().Float64Var(&latitude, "lat", 0, "latitude")
	weatherCmd.Flags().Float64Var(&longitude, "lon", 0, "longitude")
	weatherCmd.MarkFlagsRequiredTogether("lat", "lon")
}

func runWeather(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c := newClients(cfg, cfg.NewLogger())

	loc := location.Location{Latitude: latitude, Longitude: longitude}
	if !cmd.Flags().Changed("lat") {
		if loc, err = c.locator.Resolve(cmd.Context()); err != nil {
			return err
		}
	}

	forecast, err := c.forecasts.Forecast(cmd.Context(), loc.Latitude, loc.Longitude)
	if err != nil {
		return err
	}
	window := weather.HourWindow{Start: cfg.DaylightStart, End: cfg.DaylightEnd}
	fmt.Println(weather.Summarize(forecast, time.Now(), window))
	return nil
}

func runParks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateKey("nps"); err != nil {
		return err
	}
	logger := cfg.NewLogger()
	c := newClients(cfg, logger)

	state := location.StateCode(args[0])
	list, err := c.parks.Parks(cmd.Context(), state)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Printf("No national parks found in %s.\n", state)
		return nil
	}

	index := agent.BuildIndex(cmd.Context(), c.parks, list, logger)
	fmt.Print(agent.FormatPrompt(index))
	return nil
}
