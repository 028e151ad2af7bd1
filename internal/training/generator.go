package training

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

const maxExercisesPerDay = 8

// Generator builds deterministic training plans from wizard selections.
//
// The catalog and the landmark table are injected so that plans can be generated against synthetic data.
// A Generator is safe for concurrent use.
type Generator struct {
	catalog     *Catalog
	landmarks   Landmarks
	progression ProgressionConfig
	now         func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock sets the clock used for CreatedAt and timestamped plan ids.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// WithProgression sets the mesocycle configuration.
func WithProgression(cfg ProgressionConfig) GeneratorOption {
	return func(g *Generator) {
		g.progression = cfg
	}
}

// NewGenerator creates a Generator over catalog and landmarks.
func NewGenerator(catalog *Catalog, landmarks Landmarks, opts ...GeneratorOption) *Generator {
	g := &Generator{
		catalog:     catalog,
		landmarks:   landmarks.Clone(),
		progression: DefaultProgressionConfig(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateOptions tune a single GeneratePlan call.
type GenerateOptions struct {
	// AppendTimestamp adds a 12-digit creation timestamp to the plan id.
	AppendTimestamp bool
}

// GeneratePlan builds a plan for sel.
//
// It never fails. Selections should be checked with ValidateWizardInputs first, but the generator degrades
// gracefully on anything it is given: days without eligible exercises stay empty only when nothing in the catalog
// is eligible for the user.
func (g *Generator) GeneratePlan(sel WizardSelections, opts GenerateOptions) Plan {
	var (
		now         = g.now()
		targets     = normalizeTags(sel.TargetMuscles)
		equipment   = normalizeTags(sel.Equipment)
		constraints = normalizeTags(sel.Constraints)
		split       = SplitForDays(sel.DaysPerWeek)
		phase       = DetermineOptPhase(sel.Goal, sel.ExperienceLevel)
		cfg         = GetPhaseConfig(phase)
	)

	picker := g.newPicker(equipment, constraints, sel.ExperienceLevel)
	perDay := exercisesPerDay(sel.SessionDuration, cfg)
	templates := dayTemplates(split, sel.DaysPerWeek, targets)

	days := make([]WorkoutDay, 0, len(templates))
	for i, tpl := range templates {
		picks := picker.pickDay(tpl.muscles, targets, perDay)
		exercises := make([]ExercisePrescription, 0, len(picks))
		for _, p := range picks {
			exercises = append(exercises, prescribe(p, sel.Goal, cfg))
		}
		days = append(days, WorkoutDay{
			DayIndex:          i,
			Name:              tpl.name,
			FocusTags:         slices.Concat(tpl.focus, tpl.muscles),
			Exercises:         exercises,
			EstimatedDuration: 0,
		})
	}

	volume := g.capVolume(days, targets, sel.ExperienceLevel)
	for i := range days {
		days[i].EstimatedDuration = estimateDuration(days[i], cfg)
	}

	id := PlanID(sel)
	if opts.AppendTimestamp {
		id = id + "_" + planTimestamp(now)
	}

	return Plan{
		ID:             id,
		CreatedAt:      now,
		Selections:     cloneSelections(sel),
		Phase:          cfg,
		SplitType:      split,
		WorkoutDays:    days,
		WeeklyVolume:   volume,
		RIRProgression: BuildRIRProgression(cfg.TargetRIR, g.progression),
		Notes:          planNotes(sel, cfg, volume, targets),
	}
}

// exercisesPerDay fits exercises into the session without exceeding the per-day ceiling.
func exercisesPerDay(sessionDuration int, cfg PhaseConfig) int {
	available := sessionDuration - warmupMinutes
	n := available / exerciseMinutes(cfg.Sets, cfg.RestSeconds)
	return min(max(n, 1), maxExercisesPerDay)
}

func estimateDuration(day WorkoutDay, cfg PhaseConfig) int {
	if len(day.Exercises) == 0 {
		return 0
	}
	minutes := warmupMinutes
	for _, ex := range day.Exercises {
		minutes += exerciseMinutes(ex.Sets, cfg.RestSeconds)
	}
	return minutes
}

func prescribe(p pick, goal Goal, cfg PhaseConfig) ExercisePrescription {
	notes := ""
	if p.reused {
		notes = "Repeated from an earlier day of the week."
	}
	return ExercisePrescription{
		Exercise:  p.exercise,
		Sets:      cfg.Sets,
		Reps:      RepRangeForGoal(goal),
		RIR:       cfg.TargetRIR,
		Tempo:     cfg.Tempo,
		Rest:      cfg.Rest,
		Notes:     notes,
		Rationale: rationale(p, cfg),
	}
}

// rationale explains why the exercise was selected. It is never empty.
func rationale(p pick, cfg PhaseConfig) string {
	var b strings.Builder
	kind := "Isolation movement"
	if compound := firstCompoundPattern(p.exercise.Patterns); compound != "" {
		kind = fmt.Sprintf("Compound %s movement", strings.ReplaceAll(compound, "_", " "))
	}
	b.WriteString(kind)
	muscle := p.muscle
	if muscle == "" {
		muscle = strings.Join(p.exercise.PrimaryMuscles, ", ")
	}
	fmt.Fprintf(&b, " for %s", strings.ReplaceAll(muscle, "_", " "))
	fmt.Fprintf(&b, ", programmed for the %s phase with %d sets at %d RIR.",
		strings.ReplaceAll(string(cfg.Phase), "_", " "), cfg.Sets, cfg.TargetRIR)
	if p.fallback {
		b.WriteString(" Chosen as the closest eligible alternative for your equipment and constraints.")
	}
	return b.String()
}

func firstCompoundPattern(patterns []string) string {
	for _, p := range patterns {
		if slices.Contains(compoundPatterns, p) {
			return p
		}
	}
	return ""
}

// capVolume trims sets until every muscle's weekly volume fits its experience-scaled MRV and returns the summary.
//
// Sets are reduced from the prescription with the most sets, latest day first, down to a single set. When that is
// not enough, prescriptions are removed from days that keep at least one exercise.
func (g *Generator) capVolume(days []WorkoutDay, targets []string, level ExperienceLevel) []WeeklyVolume {
	muscles := slices.Clone(targets)
	for _, day := range days {
		for _, ex := range day.Exercises {
			muscles = append(muscles, ex.Exercise.PrimaryMuscles...)
		}
	}
	muscles = normalizeTags(muscles)

	for {
		over := ""
		for _, m := range muscles {
			if weeklySets(days, m) > g.landmarks.For(m, level).MRV {
				over = m
				break
			}
		}
		if over == "" || !reduceVolume(days, over) {
			break
		}
	}

	volume := make([]WeeklyVolume, 0, len(muscles))
	for _, m := range muscles {
		lm := g.landmarks.For(m, level)
		sets := weeklySets(days, m)
		volume = append(volume, WeeklyVolume{
			MuscleGroup: m,
			Sets:        sets,
			MEV:         lm.MEV,
			MRV:         lm.MRV,
			IsWithinCap: sets <= lm.MRV,
		})
	}
	return volume
}

// countsToward reports whether the sets of ex count towards muscle.
func countsToward(ex Exercise, muscle string) bool {
	return intersects(ex.PrimaryMuscles, expandMuscle(muscle))
}

func weeklySets(days []WorkoutDay, muscle string) int {
	total := 0
	for _, day := range days {
		for _, ex := range day.Exercises {
			if countsToward(ex.Exercise, muscle) {
				total += ex.Sets
			}
		}
	}
	return total
}

// reduceVolume removes one set, or one prescription, contributing to muscle. It reports whether anything changed.
func reduceVolume(days []WorkoutDay, muscle string) bool {
	type position struct{ day, ex int }
	var (
		best     position
		bestSets = 1
	)
	for d := len(days) - 1; d >= 0; d-- {
		for e := len(days[d].Exercises) - 1; e >= 0; e-- {
			ex := days[d].Exercises[e]
			if countsToward(ex.Exercise, muscle) && ex.Sets > bestSets {
				best, bestSets = position{day: d, ex: e}, ex.Sets
			}
		}
	}
	if bestSets > 1 {
		days[best.day].Exercises[best.ex].Sets--
		return true
	}
	for d := len(days) - 1; d >= 0; d-- {
		if len(days[d].Exercises) <= 1 {
			continue
		}
		for e := len(days[d].Exercises) - 1; e >= 0; e-- {
			if countsToward(days[d].Exercises[e].Exercise, muscle) {
				days[d].Exercises = slices.Delete(days[d].Exercises, e, e+1)
				return true
			}
		}
	}
	return false
}

func planNotes(sel WizardSelections, cfg PhaseConfig, volume []WeeklyVolume, targets []string) []string {
	notes := []string{
		fmt.Sprintf("%s phase: %d sets of %s reps, tempo %s, rest %s, intensity %s.",
			phaseTitle(cfg.Phase), cfg.Sets, RepRangeForGoal(sel.Goal), cfg.Tempo, cfg.Rest, cfg.Intensity),
	}
	for _, v := range volume {
		if slices.Contains(targets, v.MuscleGroup) && v.Sets < v.MEV {
			notes = append(notes, fmt.Sprintf("Weekly volume for %s (%d sets) is below the minimum effective volume "+
				"of %d sets.", v.MuscleGroup, v.Sets, v.MEV))
		}
	}
	for _, w := range ValidatePlanBalance(sel) {
		notes = append(notes, w.Message)
	}
	return notes
}

func phaseTitle(phase OptPhase) string {
	words := strings.Split(string(phase), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func cloneSelections(sel WizardSelections) WizardSelections {
	sel.Equipment = slices.Clone(sel.Equipment)
	sel.TargetMuscles = slices.Clone(sel.TargetMuscles)
	sel.Constraints = slices.Clone(sel.Constraints)
	return sel
}

// pick is an exercise chosen for a day together with the muscle slot it fills.
type pick struct {
	exercise Exercise
	muscle   string
	reused   bool
	fallback bool
}

// picker selects exercises for the days of a single plan and remembers what the plan already uses.
type picker struct {
	eligible []Exercise
	level    ExperienceLevel
	ranked   map[string][]Exercise
	used     map[string]bool
}

func (g *Generator) newPicker(equipment, constraints []string, level ExperienceLevel) *picker {
	strictBodyweight := isBodyweightOnly(equipment)
	available := append(slices.Clone(equipment), EquipmentBodyweight)
	var eligible []Exercise
	for _, ex := range g.catalog.exercises {
		if strictBodyweight && !isBodyweightOnly(ex.Equipment) {
			continue
		}
		if !intersects(ex.Equipment, available) {
			continue
		}
		if intersects(ex.Contraindications, constraints) {
			continue
		}
		eligible = append(eligible, ex)
	}
	return &picker{
		eligible: eligible,
		level:    level,
		ranked:   make(map[string][]Exercise),
		used:     make(map[string]bool),
	}
}

// score ranks ex for muscle. Zero means ex does not train muscle at all.
func score(ex Exercise, muscle string, level ExperienceLevel) int {
	aliases := expandMuscle(muscle)
	s := 0
	switch {
	case intersects(ex.PrimaryMuscles, aliases):
		s += 10
	case intersects(ex.SecondaryMuscles, aliases):
		s += 3
	default:
		return 0
	}
	if ex.IsCompound() {
		s += 4
	}
	switch difficultyDistance(ex.Difficulty, level) {
	case 0:
		s += 2
	case 1:
		s++
	}
	return s
}

func difficultyDistance(d Difficulty, level ExperienceLevel) int {
	var rank int
	switch d {
	case DifficultyAllLevels:
		return 0
	case DifficultyBeginner:
		rank = 0
	case DifficultyIntermediate:
		rank = 1
	case DifficultyAdvanced:
		rank = 2
	case DifficultyElite:
		rank = 3
	}
	levelRank := 0
	switch level {
	case LevelBeginner:
		levelRank = 0
	case LevelIntermediate:
		levelRank = 1
	case LevelAdvanced:
		levelRank = 2
	}
	if rank > levelRank {
		return rank - levelRank
	}
	return levelRank - rank
}

// rank returns the eligible exercises training muscle, best first. Ties keep catalog order.
func (p *picker) rank(muscle string) []Exercise {
	if r, ok := p.ranked[muscle]; ok {
		return r
	}
	type scored struct {
		ex    Exercise
		score int
	}
	var candidates []scored
	for _, ex := range p.eligible {
		if s := score(ex, muscle, p.level); s > 0 {
			candidates = append(candidates, scored{ex: ex, score: s})
		}
	}
	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	r := make([]Exercise, 0, len(candidates))
	for _, c := range candidates {
		r = append(r, c.ex)
	}
	p.ranked[muscle] = r
	return r
}

// pickDay selects up to count exercises for a day.
//
// Muscles are filled round-robin with the best unused exercise, then with exercises already used on earlier days.
// A day left empty falls back to all targets and finally to any eligible exercise.
func (p *picker) pickDay(dayMuscles, targets []string, count int) []pick {
	var (
		picks []pick
		inDay = make(map[string]bool)
	)
	add := func(pk pick) {
		pk.reused = p.used[pk.exercise.ID]
		picks = append(picks, pk)
		inDay[pk.exercise.ID] = true
		p.used[pk.exercise.ID] = true
	}
	roundRobin := func(muscles []string, allowReuse, fallback bool) {
		for len(picks) < count {
			added := false
			for _, m := range muscles {
				if len(picks) >= count {
					break
				}
				for _, ex := range p.rank(m) {
					if inDay[ex.ID] || (!allowReuse && p.used[ex.ID]) {
						continue
					}
					add(pick{exercise: ex, muscle: m, reused: false, fallback: fallback})
					added = true
					break
				}
			}
			if !added {
				return
			}
		}
	}

	roundRobin(dayMuscles, false, false)
	roundRobin(dayMuscles, true, false)
	if len(picks) > 0 {
		return picks
	}
	roundRobin(targets, false, true)
	roundRobin(targets, true, true)
	if len(picks) > 0 {
		return picks
	}
	for _, allowReuse := range []bool{false, true} {
		for _, ex := range p.eligible {
			if len(picks) >= count {
				return picks
			}
			if inDay[ex.ID] || (!allowReuse && p.used[ex.ID]) {
				continue
			}
			add(pick{exercise: ex, muscle: "", reused: false, fallback: true})
		}
	}
	return picks
}
