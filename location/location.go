// Package location resolves the caller's approximate position from their
// public IP address.
package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/teilomillet/trailhead/internal/fetch"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

// Location is a resolved position. Region is a two-letter code for US states.
type Location struct {
	Latitude  float64
	Longitude float64
	Region    string
	City      string
	Country   string
}

func (l Location) String() string {
	return fmt.Sprintf("%.4f,%.4f (%s)", l.Latitude, l.Longitude, l.Region)
}

// Resolver looks up the location of the current public IP against an
// ipinfo-style JSON endpoint.
type Resolver struct {
	client   *fetch.Client
	endpoint string
	logger   utils.Logger
}

func NewResolver(client *fetch.Client, endpoint string, logger utils.Logger) *Resolver {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Resolver{client: client, endpoint: endpoint, logger: logger}
}

type ipInfo struct {
	Loc     string `json:"loc"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Resolve returns the caller's location. Every failure is reported as
// types.KindUpstreamUnavailable.
func (r *Resolver) Resolve(ctx context.Context) (Location, error) {
	const op = "location.resolve"

	var info ipInfo
	if err := r.client.GetJSON(ctx, r.endpoint, nil, nil, &info); err != nil {
		r.logger.Warn("Location lookup failed", "error", err)
		return Location{}, types.NewError(types.KindUpstreamUnavailable, op, err)
	}

	lat, lon, err := parseLoc(info.Loc)
	if err != nil {
		return Location{}, types.NewError(types.KindUpstreamUnavailable, op, err)
	}
	if strings.TrimSpace(info.Region) == "" {
		return Location{}, types.NewError(types.KindUpstreamUnavailable, op, errors.New("no region in location response"))
	}

	loc := Location{
		Latitude:  lat,
		Longitude: lon,
		Region:    StateCode(info.Region),
		City:      info.City,
		Country:   info.Country,
	}
	r.logger.Debug("Resolved location", "location", loc.String(), "city", loc.City)
	return loc, nil
}

// parseLoc parses "lat,lon".
func parseLoc(loc string) (float64, float64, error) {
	latText, lonText, ok := strings.Cut(loc, ",")
	if !ok {
		return 0, 0, fmt.Errorf("malformed loc %q", loc)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed latitude in %q: %w", loc, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed longitude in %q: %w", loc, err)
	}
	return lat, lon, nil
}
