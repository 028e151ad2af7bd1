package workout

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/myrjola/coachplan/internal/training"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExportMarkdown renders a plan as a printable Markdown document.
func ExportMarkdown(plan training.Plan) string {
	var b strings.Builder
	w := func(format string, args ...any) {
		_, _ = fmt.Fprintf(&b, format, args...)
	}

	title := "Training plan"
	if plan.Selections.Name != "" {
		title = "Training plan for " + escapeCell(plan.Selections.Name)
	}
	w("# %s\n\n", title)
	w("- Plan: `%s`\n", plan.ID)
	if !plan.CreatedAt.IsZero() {
		w("- Created: %s\n", plan.CreatedAt.UTC().Format(time.DateOnly))
	}
	w("- Goal: %s, %s\n", plan.Selections.Goal, plan.Selections.ExperienceLevel)
	w("- Split: %s, %d days per week, %d minute sessions\n",
		plan.SplitType, plan.Selections.DaysPerWeek, plan.Selections.SessionDuration)
	w("- Phase: %s (%s reps, %d sets, tempo %s, rest %s, %s)\n\n",
		plan.Phase.Phase, plan.Phase.Reps, plan.Phase.Sets, plan.Phase.Tempo, plan.Phase.Rest, plan.Phase.Intensity)

	for _, day := range plan.WorkoutDays {
		w("## Day %d: %s\n\n", day.DayIndex+1, day.Name)
		w("Estimated duration: %d minutes\n\n", day.EstimatedDuration)
		w("| Exercise | Sets | Reps | RIR | Tempo | Rest |\n")
		w("|---|---|---|---|---|---|\n")
		for _, p := range day.Exercises {
			w("| %s | %d | %s | %d | %s | %s |\n",
				escapeCell(p.Exercise.Name), p.Sets, p.Reps, p.RIR, p.Tempo, p.Rest)
		}
		w("\n")
		for _, p := range day.Exercises {
			w("- **%s**: %s", escapeCell(p.Exercise.Name), p.Rationale)
			if p.Notes != "" {
				w(" %s", p.Notes)
			}
			w("\n")
		}
		w("\n")
	}

	if len(plan.WeeklyVolume) > 0 {
		w("## Weekly volume\n\n")
		w("| Muscle | Sets | MEV | MRV | Within cap |\n")
		w("|---|---|---|---|---|\n")
		for _, v := range plan.WeeklyVolume {
			within := "yes"
			if !v.IsWithinCap {
				within = "no"
			}
			w("| %s | %d | %d | %d | %s |\n", v.MuscleGroup, v.Sets, v.MEV, v.MRV, within)
		}
		w("\n")
	}

	if len(plan.RIRProgression) > 0 {
		w("## RIR progression\n\n")
		w("| Week | Target RIR | Deload |\n")
		w("|---|---|---|\n")
		for _, week := range plan.RIRProgression {
			deload := ""
			if week.IsDeload {
				deload = "yes"
			}
			w("| %d | %d | %s |\n", week.Week, week.TargetRIR, deload)
		}
		w("\n")
	}

	if len(plan.Notes) > 0 {
		w("## Notes\n\n")
		for _, note := range plan.Notes {
			w("- %s\n", note)
		}
		w("\n")
	}

	if plan.Selections.TrainerNotes != "" {
		w("## Trainer notes\n\n%s\n", plan.Selections.TrainerNotes)
	}
	return b.String()
}

// ExportHTML renders the Markdown export as an HTML fragment. Raw HTML in user supplied text is not rendered.
func ExportHTML(plan training.Plan) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(ExportMarkdown(plan)), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
