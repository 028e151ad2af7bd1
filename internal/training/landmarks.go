package training

import (
	"maps"
	"math"
)

// Landmark is the weekly set range of a muscle group between minimum effective volume (MEV) and maximum recoverable
// volume (MRV).
type Landmark struct {
	MEV int `json:"mev" yaml:"mev"`
	MRV int `json:"mrv" yaml:"mrv"`
}

// Landmarks maps muscle groups to their volume landmarks.
type Landmarks map[string]Landmark

//nolint:gochecknoglobals // fallback for muscles missing from the table.
var defaultLandmark = Landmark{MEV: 6, MRV: 20}

// DefaultLandmarks returns a fresh copy of the built-in volume landmark table in weekly sets.
func DefaultLandmarks() Landmarks {
	return Landmarks{
		MuscleChest:        {MEV: 8, MRV: 22},
		MuscleUpperBack:    {MEV: 10, MRV: 25},
		MuscleBack:         {MEV: 10, MRV: 25},
		MuscleLats:         {MEV: 10, MRV: 25},
		MuscleShoulders:    {MEV: 8, MRV: 26},
		MuscleFrontDeltoid: {MEV: 0, MRV: 12},
		MuscleSideDeltoid:  {MEV: 8, MRV: 26},
		MuscleRearDeltoid:  {MEV: 8, MRV: 26},
		MuscleBiceps:       {MEV: 8, MRV: 26},
		MuscleTriceps:      {MEV: 6, MRV: 18},
		MuscleQuads:        {MEV: 8, MRV: 20},
		MuscleHamstrings:   {MEV: 6, MRV: 20},
		MuscleGlutes:       {MEV: 0, MRV: 16},
		MuscleCalves:       {MEV: 8, MRV: 20},
		MuscleCore:         {MEV: 0, MRV: 25},
		MuscleTraps:        {MEV: 0, MRV: 26},
		MuscleForearms:     {MEV: 2, MRV: 25},
	}
}

// experienceScale is the fraction of MRV available to each experience tier.
func experienceScale(level ExperienceLevel) float64 {
	switch level {
	case LevelBeginner:
		return 0.6 //nolint:mnd // beginners recover from less volume.
	case LevelIntermediate, LevelAdvanced:
		return 1
	}
	return 1
}

// For returns the landmark of muscle scaled for the experience level. Unknown muscles get a generic landmark.
func (l Landmarks) For(muscle string, level ExperienceLevel) Landmark {
	lm, ok := l[normalizeTag(muscle)]
	if !ok {
		lm = defaultLandmark
	}
	mrv := max(int(math.Floor(float64(lm.MRV)*experienceScale(level))), 1)
	return Landmark{MEV: min(lm.MEV, mrv), MRV: mrv}
}

// Clone returns a copy that can be tuned without touching l.
func (l Landmarks) Clone() Landmarks {
	return maps.Clone(l)
}
