package training

// OptPhase is a phase of the NASM Optimum Performance Training model.
type OptPhase string

const (
	PhaseStabilizationEndurance OptPhase = "stabilization_endurance"
	PhaseStrengthEndurance      OptPhase = "strength_endurance"
	PhaseMuscularDevelopment    OptPhase = "muscular_development"
	PhaseMaximalStrength        OptPhase = "maximal_strength"
	PhasePower                  OptPhase = "power"
)

// PhaseConfig holds the canonical training parameters of an OptPhase.
type PhaseConfig struct {
	Phase       OptPhase `json:"phase"`
	Reps        string   `json:"reps"`
	Sets        int      `json:"sets"`
	Tempo       string   `json:"tempo"`
	Rest        string   `json:"rest"`
	RestSeconds int      `json:"rest_seconds"`
	Intensity   string   `json:"intensity"`
	TargetRIR   int      `json:"target_rir"`
}

//nolint:gochecknoglobals // read-only lookup table.
var phaseConfigs = map[OptPhase]PhaseConfig{
	PhaseStabilizationEndurance: {
		Phase:       PhaseStabilizationEndurance,
		Reps:        "12-20",
		Sets:        2,
		Tempo:       "4-2-1",
		Rest:        "60s",
		RestSeconds: 60,
		Intensity:   "50-70% 1RM",
		TargetRIR:   4,
	},
	PhaseStrengthEndurance: {
		Phase:       PhaseStrengthEndurance,
		Reps:        "8-12",
		Sets:        3,
		Tempo:       "2-0-2",
		Rest:        "60s",
		RestSeconds: 60,
		Intensity:   "70-80% 1RM",
		TargetRIR:   3,
	},
	PhaseMuscularDevelopment: {
		Phase:       PhaseMuscularDevelopment,
		Reps:        "6-12",
		Sets:        4,
		Tempo:       "2-0-2",
		Rest:        "60s",
		RestSeconds: 60,
		Intensity:   "75-85% 1RM",
		TargetRIR:   2,
	},
	PhaseMaximalStrength: {
		Phase:       PhaseMaximalStrength,
		Reps:        "1-5",
		Sets:        5,
		Tempo:       "X-X-X",
		Rest:        "3-5min",
		RestSeconds: 180,
		Intensity:   "85-100% 1RM",
		TargetRIR:   1,
	},
	PhasePower: {
		Phase:       PhasePower,
		Reps:        "1-10",
		Sets:        4,
		Tempo:       "X-X-X",
		Rest:        "3-5min",
		RestSeconds: 180,
		Intensity:   "30-45% 1RM or 10% BW",
		TargetRIR:   2,
	},
}

// DetermineOptPhase maps a goal and experience level to an OptPhase.
//
// Beginners always start with stabilization endurance regardless of goal.
func DetermineOptPhase(goal Goal, level ExperienceLevel) OptPhase {
	switch level {
	case LevelIntermediate:
		switch goal {
		case GoalStrength:
			return PhaseMaximalStrength
		case GoalHypertrophy:
			return PhaseMuscularDevelopment
		case GoalGeneral:
			return PhaseStrengthEndurance
		}
	case LevelAdvanced:
		switch goal {
		case GoalStrength:
			return PhaseMaximalStrength
		case GoalHypertrophy:
			return PhaseMuscularDevelopment
		case GoalGeneral:
			return PhasePower
		}
	case LevelBeginner:
	}
	return PhaseStabilizationEndurance
}

// GetPhaseConfig returns the training parameters of phase. Unknown phases get the stabilization endurance config.
func GetPhaseConfig(phase OptPhase) PhaseConfig {
	if cfg, ok := phaseConfigs[phase]; ok {
		return cfg
	}
	return phaseConfigs[PhaseStabilizationEndurance]
}

// RepRangeForGoal returns the prescribed rep range for goal.
func RepRangeForGoal(goal Goal) string {
	switch goal {
	case GoalStrength:
		return "3-6"
	case GoalHypertrophy:
		return "8-12"
	case GoalGeneral:
		return "10-15"
	}
	return "10-15"
}

// warmupMinutes is reserved at the start of every session.
const warmupMinutes = 5

// exerciseMinutes estimates the time one exercise takes including rest between sets and setup.
func exerciseMinutes(sets, restSeconds int) int {
	// Roughly 45 seconds of work per set and two minutes of setup.
	seconds := sets*45 + max(sets-1, 0)*restSeconds + 120 //nolint:mnd // see above.
	return max((seconds+59)/60, 1)                         //nolint:mnd // round up to full minutes.
}
