package session

import "github.com/abhisek/adaptiq/internal/difficulty"

// Adaptation parameters.
const (
	// RollingWindow is the number of latest answers that drive the
	// accuracy rule.
	RollingWindow = 3

	LowAccuracy  = 0.4
	HighAccuracy = 0.8

	// AdjustmentStep is the difficulty shift of the accuracy rule.
	AdjustmentStep = 0.15

	// SlowAnswerFactor times the estimate marks an answer as slow. A slow
	// answer shifts difficulty by half a step.
	SlowAnswerFactor = 2
)

// adapt applies at most one difficulty shift after the answer at the
// cursor has been recorded, and returns the tag for it. The cursor has not
// advanced yet, so the shift covers the just-answered index too; its
// difficulty is already captured in its response.
func adapt(s *Session, timeTaken float64) Adjustment {
	tag := AdjustNone

	if n := len(s.Responses); n >= RollingWindow {
		correct := 0
		for _, r := range s.Responses[n-RollingWindow:] {
			if r.IsCorrect {
				correct++
			}
		}
		acc := float64(correct) / RollingWindow
		switch {
		case acc < LowAccuracy:
			tag = AdjustEasier
			shiftRemaining(s, -AdjustmentStep)
		case acc > HighAccuracy:
			tag = AdjustHarder
			shiftRemaining(s, AdjustmentStep)
		}
	}

	answered := s.Questions[s.Cursor]
	if tag == AdjustNone && timeTaken > float64(SlowAnswerFactor*answered.EstimatedTime) {
		tag = AdjustEasier
		shiftRemaining(s, -AdjustmentStep/2)
	}
	return tag
}

// shiftRemaining moves every question from the cursor on by delta,
// clamped, and mirrors the result into the progression.
func shiftRemaining(s *Session, delta float64) {
	for i := s.Cursor; i < len(s.Questions); i++ {
		d := difficulty.Clamp(s.Questions[i].Difficulty + delta)
		s.Questions[i].Difficulty = d
		s.DifficultyProgression[i] = d
	}
}
