package training

const (
	maxRIR            = 10
	minMesocycleWeeks = 2
	rirRampSteps      = 2
	deloadRIRIncrease = 4
)

// ProgressionConfig describes the mesocycle. The last week is always a deload week.
type ProgressionConfig struct {
	Weeks int `json:"weeks"`
}

// DefaultProgressionConfig is three loading weeks followed by a deload week.
func DefaultProgressionConfig() ProgressionConfig {
	return ProgressionConfig{Weeks: 4} //nolint:mnd // four week mesocycle.
}

// BuildRIRProgression ramps RIR down from targetRIR+2 to targetRIR over the loading weeks and finishes with a deload.
func BuildRIRProgression(targetRIR int, cfg ProgressionConfig) []RIRWeek {
	weeks := max(cfg.Weeks, minMesocycleWeeks)
	loading := weeks - 1
	progression := make([]RIRWeek, 0, weeks)
	for i := range loading {
		step := rirRampSteps
		if loading > 1 {
			step = rirRampSteps * i / (loading - 1)
		}
		progression = append(progression, RIRWeek{
			Week:      i + 1,
			TargetRIR: clampRIR(targetRIR + rirRampSteps - step),
			IsDeload:  false,
		})
	}
	progression = append(progression, RIRWeek{
		Week:      weeks,
		TargetRIR: clampRIR(targetRIR + deloadRIRIncrease),
		IsDeload:  true,
	})
	return progression
}

func clampRIR(rir int) int {
	return min(max(rir, 0), maxRIR)
}
