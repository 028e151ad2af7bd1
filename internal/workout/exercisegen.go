package workout

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/training"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ExerciseGenerator fills in the catalog fields of an exercise from its name.
type ExerciseGenerator interface {
	Generate(ctx context.Context, name string) (training.Exercise, error)
}

// OpenAIExerciseGenerator generates exercises with OpenAI structured outputs.
type OpenAIExerciseGenerator struct {
	client  openai.Client
	muscles []string
}

// NewOpenAIExerciseGenerator creates a generator restricted to the muscle groups of the landmark table.
func NewOpenAIExerciseGenerator(apiKey string, opts ...option.RequestOption) *OpenAIExerciseGenerator {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIExerciseGenerator{
		client:  openai.NewClient(opts...),
		muscles: slices.Sorted(maps.Keys(training.DefaultLandmarks())),
	}
}

// generatedExercise is the structured output requested from the model.
type generatedExercise struct {
	Name              string   `json:"name"`
	PrimaryMuscles    []string `json:"primary_muscles"`
	SecondaryMuscles  []string `json:"secondary_muscles"`
	Equipment         []string `json:"equipment"`
	Patterns          []string `json:"patterns"`
	Contraindications []string `json:"contraindications"`
	Difficulty        string   `json:"difficulty"`
	Category          string   `json:"category"`
	Description       string   `json:"description"`
}

func (g *OpenAIExerciseGenerator) schema() map[string]any {
	stringArray := func(description string, enum []string) map[string]any {
		items := map[string]any{"type": "string"}
		if enum != nil {
			items["enum"] = enum
		}
		return map[string]any{"type": "array", "description": description, "items": items}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required": []string{
			"name", "primary_muscles", "secondary_muscles", "equipment", "patterns",
			"contraindications", "difficulty", "category", "description",
		},
		"properties": map[string]any{
			"name":              map[string]any{"type": "string", "description": "Name of the exercise"},
			"primary_muscles":   stringArray("Muscle groups doing most of the work", g.muscles),
			"secondary_muscles": stringArray("Assisting muscle groups", g.muscles),
			"equipment":         stringArray("Equipment needed, lower case snake_case, e.g. barbell, dumbbells, bodyweight", nil),
			"patterns": stringArray("Movement patterns", []string{
				"squat", "hinge", "horizontal_push", "horizontal_pull", "vertical_push", "vertical_pull",
				"lunge", "carry", "rotation", "isolation", "core",
			}),
			"contraindications": stringArray("Conditions that rule the exercise out", []string{
				"knee_pain", "lower_back_pain", "shoulder_pain", "wrist_pain", "no_jumping",
			}),
			"difficulty": map[string]any{
				"type": "string",
				"enum": []string{
					string(training.DifficultyBeginner), string(training.DifficultyIntermediate),
					string(training.DifficultyAdvanced), string(training.DifficultyElite),
					string(training.DifficultyAllLevels),
				},
			},
			"category":    map[string]any{"type": "string", "enum": []string{"upper", "lower", "full_body", "core"}},
			"description": map[string]any{"type": "string", "description": "Two or three sentences on execution"},
		},
	}
}

// Generate asks the model for the catalog fields of the named exercise.
func (g *OpenAIExerciseGenerator) Generate(ctx context.Context, name string) (training.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return training.Exercise{}, errors.NewSentinel("exercise name cannot be empty")
	}

	prompt := fmt.Sprintf(`Describe the strength training exercise %q for an exercise catalog.
List the primary and secondary muscle groups it trains, the equipment it needs,
its movement patterns, the conditions that make it unsuitable, and its difficulty.
Keep the description short, clear and focused on safe execution.`, name)

	chat, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{ //nolint:exhaustruct // optional.
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{ //nolint:exhaustruct // one variant.
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{ //nolint:exhaustruct // type has a default.
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "exercise",
					Description: openai.String("Catalog entry of a strength training exercise"),
					Schema:      g.schema(),
					Strict:      openai.Bool(true),
				},
			},
		},
		Model: openai.ChatModelGPT4o2024_08_06,
	})
	if err != nil {
		return training.Exercise{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return training.Exercise{}, errors.NewSentinel("chat completion returned no choices")
	}

	var generated generatedExercise
	if err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &generated); err != nil {
		return training.Exercise{}, fmt.Errorf("parse exercise response: %w", err)
	}
	return generated.toExercise(name), nil
}

func (ge generatedExercise) toExercise(requestedName string) training.Exercise {
	name := ge.Name
	if name == "" {
		name = requestedName
	}
	return training.Exercise{
		ID:                ExerciseID(name),
		Name:              name,
		PrimaryMuscles:    ge.PrimaryMuscles,
		SecondaryMuscles:  ge.SecondaryMuscles,
		Equipment:         ge.Equipment,
		Patterns:          ge.Patterns,
		Contraindications: ge.Contraindications,
		Difficulty:        training.Difficulty(ge.Difficulty),
		Category:          ge.Category,
		Description:       ge.Description,
	}
}

// ExerciseID derives a catalog id such as "bulgarian_split_squat" from an exercise name.
func ExerciseID(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		case !underscore && b.Len() > 0:
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
