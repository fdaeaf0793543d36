package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// InsufficientDataMarker appears in every summary that could not be built.
const InsufficientDataMarker = "Could not get"

// HourWindow is an inclusive range of local hours.
type HourWindow struct {
	Start int
	End   int
}

// DaylightWindow is 8:00 through 17:00.
var DaylightWindow = HourWindow{Start: 8, End: 17}

func (w HourWindow) contains(hour int) bool {
	return hour >= w.Start && hour <= w.End
}

// IsInsufficient reports whether summary is a failure message.
func IsInsufficient(summary string) bool {
	return strings.Contains(summary, InsufficientDataMarker)
}

// Summarize describes the forecast for the hours of today that fall inside
// window, with "today" taken in the forecast's own UTC offset. When nothing
// usable is left the result contains InsufficientDataMarker.
func Summarize(f *Forecast, now time.Time, window HourWindow) string {
	if f == nil || f.Hourly == nil {
		return InsufficientDataMarker + " a weather summary: weather data is incomplete."
	}
	h := f.Hourly
	series := []struct {
		name string
		size int
	}{
		{"time", len(h.Time)},
		{"temperature_2m", len(h.Temperature)},
		{"precipitation_probability", len(h.PrecipitationProbability)},
		{"weathercode", len(h.WeatherCode)},
	}
	for _, s := range series {
		if s.size == 0 {
			return fmt.Sprintf("%s a weather summary: missing or empty weather data for '%s'.", InsufficientDataMarker, s.name)
		}
	}

	loc := time.FixedZone(f.Timezone, f.UTCOffsetSeconds)
	today := now.In(loc)
	year, month, day := today.Date()

	var temps, precips []float64
	var codes []int
	for i, stamp := range h.Time {
		if i >= len(h.Temperature) || i >= len(h.PrecipitationProbability) || i >= len(h.WeatherCode) {
			break
		}
		t, err := time.ParseInLocation("2006-01-02T15:04", stamp, loc)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		if y != year || m != month || d != day || !window.contains(t.Hour()) {
			continue
		}
		if h.Temperature[i] == nil || h.PrecipitationProbability[i] == nil || h.WeatherCode[i] == nil {
			continue
		}
		temps = append(temps, *h.Temperature[i])
		precips = append(precips, *h.PrecipitationProbability[i])
		codes = append(codes, *h.WeatherCode[i])
	}

	if len(temps) == 0 {
		return InsufficientDataMarker + " a weather summary for today's daylight hours."
	}

	return fmt.Sprintf(
		"Today's forecast: %s, with an average temperature of %d°C and a maximum precipitation probability of %s%%.",
		Describe(mostCommon(codes)),
		// Halves round away from zero: a 12.5 mean reads 13, not 12.
		int(math.Round(mean(temps))),
		strconv.FormatFloat(maxOf(precips), 'f', -1, 64),
	)
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// mostCommon returns the most frequent value; ties go to the one seen first.
func mostCommon(values []int) int {
	counts := make(map[int]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := values[0]
	for _, v := range values {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
