// Package progress computes interview completion and reports it to the
// terminal.
package progress

import "math"

const (
	// FoundationQuestions is how many questions advance progress linearly.
	FoundationQuestions = 10
	// SectionCount is the number of scope document sections.
	SectionCount = 14

	decayRate     = 0.06
	softCeiling   = 99.0
	minRemaining  = 6.0
	completeValue = 100.0
)

// FromQuestionCount maps the number of answered questions to a percentage.
// The first ten questions each add one fourteenth. Every later question adds
// 6% of the remaining distance, but progress stops advancing once the next
// step would reach 99 or the remaining distance is 6 or less, so the jump to
// 100 only happens when the conversation completes.
func FromQuestionCount(n int, isComplete bool) float64 {
	if isComplete {
		return completeValue
	}
	if n <= 0 {
		return 0
	}
	step := completeValue / SectionCount
	if n <= FoundationQuestions {
		return round2(float64(n) * step)
	}
	v := FoundationQuestions * step
	for i := FoundationQuestions; i < n; i++ {
		remaining := completeValue - v
		if remaining <= minRemaining {
			break
		}
		next := v + remaining*decayRate
		if next >= softCeiling {
			break
		}
		v = next
	}
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
