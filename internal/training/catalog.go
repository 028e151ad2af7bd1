package training

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Difficulty is the skill level an exercise is suited for.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
	DifficultyElite        Difficulty = "Elite"
	DifficultyAllLevels    Difficulty = "All Levels"
)

// Exercise is a catalog entry.
type Exercise struct {
	ID                string     `json:"id" yaml:"id"`
	Name              string     `json:"name" yaml:"name"`
	PrimaryMuscles    []string   `json:"primary_muscles" yaml:"primary_muscles"`
	SecondaryMuscles  []string   `json:"secondary_muscles" yaml:"secondary_muscles"`
	Equipment         []string   `json:"equipment" yaml:"equipment"`
	Patterns          []string   `json:"patterns" yaml:"patterns"`
	Contraindications []string   `json:"contraindications" yaml:"contraindications"`
	Difficulty        Difficulty `json:"difficulty" yaml:"difficulty"`
	Category          string     `json:"category" yaml:"category"`
	Description       string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsCompound reports whether the exercise has a compound movement pattern.
func (e Exercise) IsCompound() bool {
	return isCompound(e.Patterns)
}

var (
	ErrInvalidExercise   = errors.New("invalid exercise")
	ErrDuplicateExercise = errors.New("duplicate exercise id")
)

// Catalog is an immutable collection of exercises.
type Catalog struct {
	exercises []Exercise
	byID      map[string]int
}

// NewCatalog validates the exercises and builds a catalog from them.
//
// Every exercise needs an id unique within the catalog, at least one primary muscle and at least one equipment tag.
// Muscle, equipment, pattern and contraindication tags are normalised to lower case.
func NewCatalog(exercises []Exercise) (*Catalog, error) {
	c := &Catalog{
		exercises: make([]Exercise, 0, len(exercises)),
		byID:      make(map[string]int, len(exercises)),
	}
	var errs []error
	for _, ex := range exercises {
		ex = normalizeExercise(ex)
		if err := ValidateExercise(ex); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := c.byID[ex.ID]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateExercise, ex.ID))
			continue
		}
		c.byID[ex.ID] = len(c.exercises)
		c.exercises = append(c.exercises, ex)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// ValidateExercise checks the invariants every catalog entry must hold.
func ValidateExercise(ex Exercise) error {
	var errs []error
	if ex.ID == "" {
		errs = append(errs, fmt.Errorf("%w: missing id (name %q)", ErrInvalidExercise, ex.Name))
	}
	if len(normalizeTags(ex.PrimaryMuscles)) == 0 {
		errs = append(errs, fmt.Errorf("%w: %s has no primary muscles", ErrInvalidExercise, ex.ID))
	}
	if len(normalizeTags(ex.Equipment)) == 0 {
		errs = append(errs, fmt.Errorf("%w: %s has no equipment", ErrInvalidExercise, ex.ID))
	}
	switch ex.Difficulty {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyElite, DifficultyAllLevels:
	default:
		errs = append(errs, fmt.Errorf("%w: %s has unknown difficulty %q", ErrInvalidExercise, ex.ID, ex.Difficulty))
	}
	return errors.Join(errs...)
}

func normalizeExercise(ex Exercise) Exercise {
	ex.ID = normalizeTag(ex.ID)
	ex.PrimaryMuscles = orderedTags(ex.PrimaryMuscles)
	ex.SecondaryMuscles = orderedTags(ex.SecondaryMuscles)
	ex.Equipment = orderedTags(ex.Equipment)
	ex.Patterns = orderedTags(ex.Patterns)
	ex.Contraindications = orderedTags(ex.Contraindications)
	if ex.Difficulty == "" {
		ex.Difficulty = DifficultyAllLevels
	}
	return ex
}

// With returns a new catalog where extra exercises are appended or override built-in ones with the same id.
func (c *Catalog) With(extra ...Exercise) (*Catalog, error) {
	merged := slices.Clone(c.exercises)
	for _, ex := range extra {
		ex = normalizeExercise(ex)
		if i, ok := c.byID[ex.ID]; ok {
			merged[i] = ex
			continue
		}
		merged = append(merged, ex)
	}
	return NewCatalog(merged)
}

// All returns a copy of the exercises in catalog order.
func (c *Catalog) All() []Exercise {
	return slices.Clone(c.exercises)
}

// Len returns the number of exercises.
func (c *Catalog) Len() int {
	return len(c.exercises)
}

// ByID looks up an exercise by id.
func (c *Catalog) ByID(id string) (Exercise, bool) {
	i, ok := c.byID[normalizeTag(id)]
	if !ok {
		return Exercise{}, false
	}
	return c.exercises[i], true
}

// CatalogFilter narrows down Catalog.Filter results. Empty fields match everything.
type CatalogFilter struct {
	Muscle    string
	Equipment string
}

// Filter returns the exercises matching the filter in catalog order.
func (c *Catalog) Filter(f CatalogFilter) []Exercise {
	muscle := normalizeTag(f.Muscle)
	equipment := normalizeTag(f.Equipment)
	out := []Exercise{}
	for _, ex := range c.exercises {
		if muscle != "" && !slices.Contains(ex.PrimaryMuscles, muscle) && !slices.Contains(ex.SecondaryMuscles, muscle) {
			continue
		}
		if equipment != "" && !slices.Contains(ex.Equipment, equipment) {
			continue
		}
		out = append(out, ex)
	}
	return out
}

//go:embed catalog.yaml
var catalogYAML []byte

type catalogDocument struct {
	Exercises []Exercise `yaml:"exercises"`
}

// ParseCatalogYAML parses a YAML document with a top-level exercises list into a catalog.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	c, err := NewCatalog(doc.Exercises)
	if err != nil {
		return nil, fmt.Errorf("new catalog: %w", err)
	}
	return c, nil
}

// DefaultCatalog returns the built-in exercise catalog.
//
// The embedded document is validated by the tests, so a parse failure panics.
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalogYAML(catalogYAML)
	if err != nil {
		panic(fmt.Sprintf("parse embedded catalog: %v", err))
	}
	return c
})
