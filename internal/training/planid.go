package training

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"time"
)

const planIDPrefix = "plan_"

// planIDPattern matches both stable and timestamped plan ids.
//
//nolint:gochecknoglobals // compiled once.
var planIDPattern = regexp.MustCompile(`^plan_[a-f0-9]{64}(_[0-9]{12})?$`)

// canonicalSelections is the generation-relevant subset of WizardSelections in a fixed key order.
type canonicalSelections struct {
	Goal            string   `json:"goal"`
	ExperienceLevel string   `json:"experience_level"`
	Equipment       []string `json:"equipment"`
	TargetMuscles   []string `json:"target_muscles"`
	Constraints     []string `json:"constraints"`
	DaysPerWeek     int      `json:"days_per_week"`
	SessionDuration int      `json:"session_duration"`
}

// PlanID derives the stable content id of the plan generated from sel.
//
// Tag sets are normalised before hashing so that ordering, casing and duplicates do not change the id.
// Personalisation fields are not part of the id.
func PlanID(sel WizardSelections) string {
	canonical := canonicalSelections{
		Goal:            normalizeTag(string(sel.Goal)),
		ExperienceLevel: normalizeTag(string(sel.ExperienceLevel)),
		Equipment:       normalizeTags(sel.Equipment),
		TargetMuscles:   normalizeTags(sel.TargetMuscles),
		Constraints:     normalizeTags(sel.Constraints),
		DaysPerWeek:     sel.DaysPerWeek,
		SessionDuration: sel.SessionDuration,
	}
	// Marshalling strings, string slices and ints cannot fail.
	b, _ := json.Marshal(canonical) //nolint:errchkjson // see above.
	sum := sha256.Sum256(b)
	return planIDPrefix + hex.EncodeToString(sum[:])
}

// planTimestamp formats t as the 12-digit yyMMddHHmmss suffix of timestamped plan ids.
func planTimestamp(t time.Time) string {
	return t.UTC().Format("060102150405")
}

// IsPlanID reports whether id is a well-formed plan id.
func IsPlanID(id string) bool {
	return planIDPattern.MatchString(id)
}
