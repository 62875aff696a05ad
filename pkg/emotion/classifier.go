// Package emotion classifies the mood of a piece of text.
package emotion

import (
	"context"
	"sort"
)

type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Classifier interface {
	// Classify returns scores sorted by descending score.
	Classify(ctx context.Context, text string) ([]Score, error)
}

// Noop is used when no AI provider is configured.
type Noop struct{}

func (Noop) Classify(ctx context.Context, text string) ([]Score, error) {
	return nil, nil
}

func sortScores(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
}
