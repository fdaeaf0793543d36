package llm

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/teilomillet/trailhead/utils"
)

// TokenCounter estimates how many tokens a piece of text costs.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts with a BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func (c TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// HeuristicCounter assumes roughly four runes per token. It needs no
// encoding files and is deterministic.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// NewTokenCounter returns a tiktoken counter for model. Local model names
// are unknown to tiktoken, so it falls back to the gpt-4o encoding, and to
// HeuristicCounter when no encoding can be loaded (e.g. offline).
func NewTokenCounter(model string, logger utils.Logger) TokenCounter {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Debug("No encoding for model, defaulting to gpt-4o", "model", model, "error", err)
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			logger.Warn("Failed to load token encoding, using heuristic counts", "error", err)
			return HeuristicCounter{}
		}
	}
	return TiktokenCounter{encoding: encoding}
}
