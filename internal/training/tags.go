package training

import (
	"slices"
	"strings"
)

// Muscle groups known to the landmark table and the split templates.
const (
	MuscleChest        = "chest"
	MuscleUpperBack    = "upper_back"
	MuscleBack         = "back"
	MuscleLats         = "lats"
	MuscleShoulders    = "shoulders"
	MuscleFrontDeltoid = "front_deltoid"
	MuscleSideDeltoid  = "side_deltoid"
	MuscleRearDeltoid  = "rear_deltoid"
	MuscleBiceps       = "biceps"
	MuscleTriceps      = "triceps"
	MuscleForearms     = "forearms"
	MuscleTraps        = "traps"
	MuscleQuads        = "quads"
	MuscleHamstrings   = "hamstrings"
	MuscleGlutes       = "glutes"
	MuscleCalves       = "calves"
	MuscleCore         = "core"
)

//nolint:gochecknoglobals // read-only tag sets.
var (
	compoundPatterns = []string{
		"squat", "hinge", "horizontal_push", "horizontal_pull", "vertical_push", "vertical_pull",
	}
	legMuscles  = []string{MuscleQuads, MuscleHamstrings, MuscleGlutes, MuscleCalves}
	pushMuscles = []string{MuscleChest, MuscleShoulders, MuscleFrontDeltoid, MuscleTriceps}
	pullMuscles = []string{MuscleBack, MuscleLats, MuscleUpperBack, MuscleBiceps, MuscleRearDeltoid}
)

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeTags lower-cases, trims, de-duplicates and sorts tags. Empty tags are dropped.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := normalizeTag(t); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// orderedTags lower-cases, trims and de-duplicates tags while keeping their first-seen order.
func orderedTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := normalizeTag(t); n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

func isCompound(patterns []string) bool {
	return intersects(patterns, compoundPatterns)
}
