package main

import (
	"github.com/spf13/cobra"
	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/internal/fetch"
	"github.com/teilomillet/trailhead/location"
	"github.com/teilomillet/trailhead/parks"
	"github.com/teilomillet/trailhead/utils"
	"github.com/teilomillet/trailhead/weather"
)

// loadConfig layers the command line flags over the file and environment
// configuration and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	opts, err := flagOptions(cmd)
	if err != nil {
		return nil, err
	}
	config.ApplyOptions(cfg, opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagOptions turns the flags that were set explicitly into config options.
func flagOptions(cmd *cobra.Command) ([]config.ConfigOption, error) {
	var opts []config.ConfigOption
	flags := cmd.Flags()

	if flags.Changed("provider") {
		opts = append(opts, config.SetProvider(provider))
	}
	if flags.Changed("model") {
		opts = append(opts, config.SetModel(model))
	}
	if flags.Changed("log-level") {
		var level utils.LogLevel
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return nil, err
		}
		opts = append(opts, config.SetLogLevel(level))
	}
	if flags.Changed("temperature") {
		opts = append(opts, config.SetTemperature(temperature))
	}
	if flags.Changed("timeout") {
		opts = append(opts, config.SetTimeout(timeout))
	}
	if flags.Changed("memory-tokens") {
		opts = append(opts, config.SetMemoryTokenBudget(memoryTokens))
	}
	if flags.Changed("location-endpoint") {
		opts = append(opts, config.SetLocationEndpoint(locationEndpoint))
	}
	if flags.Changed("parks-endpoint") {
		opts = append(opts, config.SetParksEndpoint(parksEndpoint))
	}
	if flags.Changed("fetch-rate") {
		opts = append(opts, config.SetFetchRate(fetchRate))
	}
	if flags.Changed("fetch-burst") {
		opts = append(opts, config.SetFetchBurst(fetchBurst))
	}
	if flags.Changed("policy") {
		opts = append(opts, config.SetWeatherPolicy(policy))
	}
	if flags.Changed("no-reflect") {
		opts = append(opts, config.SetReflect(!noReflect))
	}
	if flags.Changed("structured-gates") {
		opts = append(opts, config.SetStructuredGates(structuredGates))
	}
	return opts, nil
}

// clients holds the upstream collaborators, all sharing one rate-limited
// fetch client.
type clients struct {
	locator   *location.Resolver
	forecasts *weather.Client
	parks     *parks.Client
}

func newClients(cfg *config.Config, logger utils.Logger) clients {
	fc := fetch.NewClient(cfg.FetchTimeout, cfg.FetchRate, cfg.FetchBurst, logger)
	return clients{
		locator:   location.NewResolver(fc, cfg.LocationEndpoint, logger),
		forecasts: weather.NewClient(fc, cfg.WeatherEndpoint, logger),
		parks:     parks.NewClient(fc, cfg.ParksEndpoint, cfg.APIKey("nps"), logger),
	}
}
