package training

import (
	"fmt"
	"slices"
)

// dayTemplate is the muscle subset a training day focuses on before exercises are picked.
type dayTemplate struct {
	name    string
	focus   []string
	muscles []string
}

type muscleRole int

const (
	roleOther muscleRole = iota
	rolePush
	rolePull
	roleLegs
)

//nolint:gochecknoglobals // read-only lookup table.
var muscleRoles = map[string]muscleRole{
	MuscleChest:        rolePush,
	MuscleShoulders:    rolePush,
	MuscleFrontDeltoid: rolePush,
	MuscleSideDeltoid:  rolePush,
	MuscleTriceps:      rolePush,
	MuscleUpperBack:    rolePull,
	MuscleBack:         rolePull,
	MuscleLats:         rolePull,
	MuscleRearDeltoid:  rolePull,
	MuscleBiceps:       rolePull,
	MuscleTraps:        rolePull,
	MuscleForearms:     rolePull,
	MuscleQuads:        roleLegs,
	MuscleHamstrings:   roleLegs,
	MuscleGlutes:       roleLegs,
	MuscleCalves:       roleLegs,
	MuscleCore:         roleLegs,
}

// muscleAliases lets coarse wizard tags match the finer catalog tags.
//
//nolint:gochecknoglobals // read-only lookup table.
var muscleAliases = map[string][]string{
	MuscleBack: {MuscleUpperBack, MuscleLats},
}

// expandMuscle returns muscle together with the catalog tags it stands for.
func expandMuscle(muscle string) []string {
	return append([]string{muscle}, muscleAliases[muscle]...)
}

func roleOf(muscle string) muscleRole {
	return muscleRoles[muscle]
}

// dayTemplates distributes targets over daysPerWeek days according to split.
//
// Muscles without a known role are trained every day. A day whose subset ends up empty trains all targets.
func dayTemplates(split SplitType, daysPerWeek int, targets []string) []dayTemplate {
	var (
		push, pull, legs, other []string
	)
	for _, m := range targets {
		switch roleOf(m) {
		case rolePush:
			push = append(push, m)
		case rolePull:
			pull = append(pull, m)
		case roleLegs:
			legs = append(legs, m)
		case roleOther:
			other = append(other, m)
		}
	}
	upper := slices.Concat(push, pull)

	templates := make([]dayTemplate, 0, max(daysPerWeek, 0))
	for i := range max(daysPerWeek, 0) {
		var tpl dayTemplate
		switch split {
		case SplitUpperLower:
			if i%2 == 0 {
				tpl = dayTemplate{name: "Upper", focus: []string{"upper"}, muscles: upper}
			} else {
				tpl = dayTemplate{name: "Lower", focus: []string{"lower"}, muscles: legs}
			}
			tpl.name = fmt.Sprintf("%s %s", tpl.name, variantLetter(i/2)) //nolint:mnd // two day kinds.
		case SplitPushPullLegs:
			switch i % 3 { //nolint:mnd // three day kinds.
			case 0:
				tpl = dayTemplate{name: "Push", focus: []string{"push"}, muscles: push}
			case 1:
				tpl = dayTemplate{name: "Pull", focus: []string{"pull"}, muscles: pull}
			default:
				tpl = dayTemplate{name: "Legs", focus: []string{"legs"}, muscles: legs}
			}
			tpl.name = fmt.Sprintf("%s %s", tpl.name, variantLetter(i/3)) //nolint:mnd // three day kinds.
		case SplitFullBody:
			tpl = dayTemplate{
				name:    fmt.Sprintf("Full Body %s", variantLetter(i)),
				focus:   []string{"full_body"},
				muscles: targets,
			}
		}
		tpl.muscles = slices.Concat(tpl.muscles, otherMissing(tpl.muscles, other))
		if len(tpl.muscles) == 0 {
			tpl.muscles = targets
		}
		tpl.muscles = slices.Clone(tpl.muscles)
		templates = append(templates, tpl)
	}
	return templates
}

// otherMissing returns the role-less muscles not already in muscles.
func otherMissing(muscles, other []string) []string {
	var out []string
	for _, m := range other {
		if !slices.Contains(muscles, m) {
			out = append(out, m)
		}
	}
	return out
}

func variantLetter(i int) string {
	return string(rune('A' + i))
}
