package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/teilomillet/trailhead/types"
)

// ParkTrailIndex maps park names to trail names and remembers the order in
// which parks were added.
type ParkTrailIndex struct {
	names  []string
	trails map[string][]string
}

func NewParkTrailIndex() *ParkTrailIndex {
	return &ParkTrailIndex{trails: make(map[string][]string)}
}

// Add records the trails of a park. Adding a park again replaces its trails
// and keeps its first position.
func (i *ParkTrailIndex) Add(park string, trails []string) {
	if _, ok := i.trails[park]; !ok {
		i.names = append(i.names, park)
	}
	i.trails[park] = append([]string(nil), trails...)
}

// Parks returns the park names in insertion order.
func (i *ParkTrailIndex) Parks() []string {
	return append([]string(nil), i.names...)
}

func (i *ParkTrailIndex) Trails(park string) []string {
	return append([]string(nil), i.trails[park]...)
}

func (i *ParkTrailIndex) Len() int {
	return len(i.names)
}

// FormatPrompt renders the index as the block sent to the model:
//
//	Park: <name>
//	  - Trail: <trail>
//
// with "  - No specific trails listed." for a park without trails.
func FormatPrompt(index *ParkTrailIndex) string {
	var b strings.Builder
	for _, park := range index.names {
		b.WriteString("\nPark: " + park + "\n")
		trails := index.trails[park]
		if len(trails) == 0 {
			b.WriteString("  - No specific trails listed.\n")
			continue
		}
		for _, trail := range trails {
			b.WriteString("  - Trail: " + trail + "\n")
		}
	}
	return b.String()
}

// Composer produces the first recommendation of a session.
type Composer struct{}

// Recommend asks for the top picks out of index and records the exchange as
// the opening turns of session. goodWeather selects the system prompt; for
// bad weather the picks are framed for a later trip.
func (Composer) Recommend(ctx context.Context, session *Session, index *ParkTrailIndex, goodWeather bool) (string, error) {
	const op = "composer.recommend"

	if index == nil || index.Len() == 0 {
		return "", types.NewError(types.KindInsufficientData, op, errors.New("no parks with trail data"))
	}

	system := recommendationSystemPrompt
	if !goodWeather {
		system = futureTripSystemPrompt
	}
	reply, err := session.Ask(ctx, system, recommendationUserPrefix+FormatPrompt(index))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		// Drop the question and the empty answer.
		session.Memory.Rewind(session.Memory.Len() - 2)
		return "", types.NewError(types.KindInsufficientData, op, errors.New("empty recommendation"))
	}
	return reply, nil
}
