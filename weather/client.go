// Package weather fetches hourly forecasts from Open-Meteo and reduces them
// to a one-sentence summary of today's daylight hours.
package weather

import (
	"context"
	"net/url"
	"strconv"

	"github.com/teilomillet/trailhead/internal/fetch"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

// Forecast is the subset of the Open-Meteo response trailhead reads.
type Forecast struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Hourly           *Hourly `json:"hourly"`
}

// Hourly holds parallel series; entry i of each belongs to Time[i].
// Open-Meteo sends null for missing values.
type Hourly struct {
	Time                     []string   `json:"time"`
	Temperature              []*float64 `json:"temperature_2m"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	WeatherCode              []*int     `json:"weathercode"`
}

type Client struct {
	client   *fetch.Client
	endpoint string
	logger   utils.Logger
}

func NewClient(client *fetch.Client, endpoint string, logger utils.Logger) *Client {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Client{client: client, endpoint: endpoint, logger: logger}
}

// Forecast fetches the hourly forecast for a position. Times come back in
// the position's local timezone. Failures are types.KindUpstreamUnavailable.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	query := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
		"hourly":    {"temperature_2m,precipitation_probability,weathercode"},
		"timezone":  {"auto"},
	}

	var forecast Forecast
	if err := c.client.GetJSON(ctx, c.endpoint, query, nil, &forecast); err != nil {
		c.logger.Warn("Weather fetch failed", "error", err)
		return nil, types.NewError(types.KindUpstreamUnavailable, "weather.forecast", err)
	}
	c.logger.Debug("Fetched forecast", "timezone", forecast.Timezone, "hours", hoursIn(&forecast))
	return &forecast, nil
}

func hoursIn(f *Forecast) int {
	if f.Hourly == nil {
		return 0
	}
	return len(f.Hourly.Time)
}
