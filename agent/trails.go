package agent

import (
	"context"
	"strings"

	"github.com/teilomillet/trailhead/parks"
	"github.com/teilomillet/trailhead/utils"
)

// IsHikingActivity reports whether an activity counts as a trail: it is
// tagged exactly "hiking" or its title mentions "trail" in any case.
func IsHikingActivity(a parks.Activity) bool {
	for _, tag := range a.Tags {
		if tag == "hiking" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(a.Title), "trail")
}

// HikingTrails returns the titles of the hiking activities, in order.
func HikingTrails(activities []parks.Activity) []string {
	trails := []string{}
	for _, a := range activities {
		if IsHikingActivity(a) {
			trails = append(trails, a.Title)
		}
	}
	return trails
}

// BuildIndex fetches the activities of every park and keeps the hiking ones.
// A park whose fetch fails or whose list is empty is left out; a park with
// activities but no hiking ones is kept with no trails.
func BuildIndex(ctx context.Context, dir ParkDirectory, list []parks.Park, logger utils.Logger) *ParkTrailIndex {
	index := NewParkTrailIndex()
	for _, park := range list {
		if ctx.Err() != nil {
			break
		}
		activities, err := dir.ThingsToDo(ctx, park.Code)
		if err != nil {
			logger.Warn("Skipping park, activities unavailable", "park", park.Name, "error", err)
			continue
		}
		if len(activities) == 0 {
			logger.Debug("Skipping park without activities", "park", park.Name)
			continue
		}
		index.Add(park.Name, HikingTrails(activities))
	}
	return index
}
