package network

import (
	"math"

	"github.com/cultivatehq/cultivate/backend/internal/domain"
)

// Each path length owns a band of scores that never overlaps the band of the
// next length, so a shorter path always outscores a longer one. Lengths past
// the table get bands of longBandStep scores each, enough to keep weak, medium
// and strong apart up to 19 hops. Longer paths score 0.
var bandTops = []int{0, 95, 72, 50}

const longBandStep = 3

const (
	introSuccessBonus   = 0.15
	introFailurePenalty = 0.20
)

var edgeBase = map[domain.Strength]float64{
	domain.StrengthWeak:   0.25,
	domain.StrengthMedium: 0.55,
	domain.StrengthStrong: 0.85,
}

// Confidence scores a path from its length, the strength of each traversed
// relationship and the recorded introduction outcomes. The result is an
// integer in [0, 100].
func Confidence(steps []domain.PathStep) int {
	length := len(steps)
	if length == 0 {
		return 0
	}

	minScore := 1.0
	total := 0.0
	for _, step := range steps {
		s := edgeScore(step.EdgeStrength, step.IntroductionSuccessful)
		total += s
		if s < minScore {
			minScore = s
		}
	}
	quality := 0.5*minScore + 0.5*(total/float64(length))

	top := bandTop(length)
	if top <= 0 {
		return 0
	}
	bottom := bandTop(length+1) + 1
	width := top - bottom
	return bottom + min(width, int(quality*float64(width+1)))
}

func edgeScore(strength domain.Strength, introduced *bool) float64 {
	score := edgeBase[strength]
	if introduced != nil {
		if *introduced {
			score += introSuccessBonus
		} else {
			score -= introFailurePenalty
		}
	}
	return math.Max(0, math.Min(1, score))
}

func bandTop(length int) int {
	if length < len(bandTops) {
		return bandTops[length]
	}
	return bandTops[len(bandTops)-1] - longBandStep*(length-len(bandTops)+1)
}
