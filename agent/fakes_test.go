package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/teilomillet/trailhead/llm"
	"github.com/teilomillet/trailhead/location"
	"github.com/teilomillet/trailhead/parks"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/weather"
)

var errTransport = errors.New("connection refused")

type reply struct {
	text string
	err  error
}

func say(text string) reply { return reply{text: text} }
func fail(err error) reply { return reply{err: err} }

// scriptedTransport answers Chat calls from a fixed list and records what it
// was sent.
type scriptedTransport struct {
	mu      sync.Mutex
	replies []reply
	calls   [][]types.Message
	options []int
}

var _ llm.ChatTransport = (*scriptedTransport)(nil)

func newScriptedTransport(replies ...reply) *scriptedTransport {
	return &scriptedTransport{replies: replies}
}

func (s *scriptedTransport) Chat(_ context.Context, messages []types.Message, opts ...llm.ChatOption) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, types.CloneMessages(messages))
	s.options = append(s.options, len(opts))
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

func (s *scriptedTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *scriptedTransport) call(i int) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

type fakeLocator struct {
	loc   location.Location
	err   error
	calls int
}

func (f *fakeLocator) Resolve(context.Context) (location.Location, error) {
	f.calls++
	return f.loc, f.err
}

type fakeForecasts struct {
	forecast *weather.Forecast
	err      error
	calls    int
}

func (f *fakeForecasts) Forecast(context.Context, float64, float64) (*weather.Forecast, error) {
	f.calls++
	return f.forecast, f.err
}

type fakeParks struct {
	parks      []parks.Park
	err        error
	activities map[string][]parks.Activity
	failing    map[string]error
	parkCalls  int
	thingCalls int
}

func (f *fakeParks) Parks(context.Context, string) ([]parks.Park, error) {
	f.parkCalls++
	return f.parks, f.err
}

func (f *fakeParks) ThingsToDo(_ context.Context, code string) ([]parks.Activity, error) {
	f.thingCalls++
	if err := f.failing[code]; err != nil {
		return nil, err
	}
	return f.activities[code], nil
}

func ptr[T any](v T) *T { return &v }

// sunnyForecast covers 2025-06-01 in UTC with two daylight hours.
func sunnyForecast() *weather.Forecast {
	return &weather.Forecast{
		Latitude:  40.0,
		Longitude: -111.0,
		Timezone:  "UTC",
		Hourly: &weather.Hourly{
			Time:                     []string{"2025-06-01T09:00", "2025-06-01T12:00"},
			Temperature:              []*float64{ptr(20.0), ptr(22.0)},
			PrecipitationProbability: []*float64{ptr(10.0), ptr(30.0)},
			WeatherCode:              []*int{ptr(0), ptr(0)},
		},
	}
}

func zionParks() *fakeParks {
	return &fakeParks{
		parks: []parks.Park{{Name: "Zion National Park", Code: "zion"}},
		activities: map[string][]parks.Activity{
			"zion": {
				{Title: "Observation Point trail"},
				{Title: "Ranger talk", Tags: []string{"talks"}},
			},
		},
	}
}
