package mcpserver

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/myrjola/coachplan/internal/testhelpers"
	"github.com/myrjola/coachplan/internal/training"
)

func newTestHandlers(t *testing.T) *handlers {
	t.Helper()
	return &handlers{
		logger:    testhelpers.NewLogger(testhelpers.NewWriter(t)),
		catalog:   training.DefaultCatalog(),
		landmarks: training.DefaultLandmarks(),
		now: func() time.Time {
			return time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
		},
	}
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func selectionArgs() map[string]any {
	return map[string]any{
		"goal":             "hypertrophy",
		"experience_level": "intermediate",
		"equipment":        []any{"barbell", "bench", "dumbbells", "cable"},
		"target_muscles":   []any{"chest", "upper_back", "quads"},
		"days_per_week":    float64(3),
		"session_duration": float64(60),
		"name":             "Petra",
	}
}

// decodeResult unmarshals the JSON text content of a tool result into v.
func decodeResult(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), v); err != nil {
				t.Fatalf("unmarshal result: %v", err)
			}
			return
		}
	}
	t.Fatalf("Expected text content, got %+v", res.Content)
}

func TestGeneratePlan(t *testing.T) {
	h := newTestHandlers(t)
	args := selectionArgs()
	args["append_timestamp"] = true

	res, err := h.generatePlan(t.Context(), request(args))
	if err != nil {
		t.Fatalf("generatePlan: %v", err)
	}
	if res.IsError {
		t.Fatalf("Expected success, got %+v", res.Content)
	}
	var got planResult
	decodeResult(t, res, &got)

	if len(got.Plan.WorkoutDays) != 3 {
		t.Errorf("Expected 3 workout days, got %d", len(got.Plan.WorkoutDays))
	}
	if got.Plan.SplitType != training.SplitFullBody {
		t.Errorf("Expected full body split, got %s", got.Plan.SplitType)
	}
	if !training.IsPlanID(got.Plan.ID) {
		t.Errorf("Expected valid plan id, got %q", got.Plan.ID)
	}
	if got.Plan.Selections.Name != "Petra" {
		t.Errorf("Expected personalised plan, got name %q", got.Plan.Selections.Name)
	}
}

func TestGeneratePlan_Deterministic(t *testing.T) {
	h := newTestHandlers(t)
	var first, second planResult
	for _, out := range []*planResult{&first, &second} {
		res, err := h.generatePlan(t.Context(), request(selectionArgs()))
		if err != nil {
			t.Fatalf("generatePlan: %v", err)
		}
		decodeResult(t, res, out)
	}
	if first.Plan.ID != second.Plan.ID {
		t.Errorf("Expected identical ids, got %s and %s", first.Plan.ID, second.Plan.ID)
	}
}

func TestGeneratePlan_InvalidSelections(t *testing.T) {
	h := newTestHandlers(t)
	args := selectionArgs()
	args["days_per_week"] = float64(1)

	res, err := h.generatePlan(t.Context(), request(args))
	if err != nil {
		t.Fatalf("generatePlan: %v", err)
	}
	if !res.IsError {
		t.Error("Expected error result")
	}
	var got training.ValidationResult
	decodeResult(t, res, &got)
	if got.Valid || !slices.Contains(got.Errors, "Please select between 2 and 6 training days per week") {
		t.Errorf("Unexpected validation result %+v", got)
	}
}

func TestValidateSelections(t *testing.T) {
	h := newTestHandlers(t)
	args := selectionArgs()
	delete(args, "goal")

	res, err := h.validateSelections(t.Context(), request(args))
	if err != nil {
		t.Fatalf("validateSelections: %v", err)
	}
	var got training.ValidationResult
	decodeResult(t, res, &got)
	if got.Valid || !slices.Contains(got.Errors, "Please select a training goal") {
		t.Errorf("Unexpected validation result %+v", got)
	}
}

func TestCheckPlanBalance(t *testing.T) {
	h := newTestHandlers(t)
	args := selectionArgs()
	args["target_muscles"] = []any{"chest", "triceps"}

	res, err := h.checkPlanBalance(t.Context(), request(args))
	if err != nil {
		t.Fatalf("checkPlanBalance: %v", err)
	}
	var got struct {
		Warnings []training.ValidationWarning `json:"warnings"`
	}
	decodeResult(t, res, &got)
	ids := make([]string, 0, len(got.Warnings))
	for _, w := range got.Warnings {
		ids = append(ids, w.ID)
	}
	for _, want := range []string{"missing_legs", "imbalance_push"} {
		if !slices.Contains(ids, want) {
			t.Errorf("Expected warning %s, got %v", want, ids)
		}
	}
}

func TestListExercises(t *testing.T) {
	h := newTestHandlers(t)
	res, err := h.listExercises(t.Context(), request(map[string]any{"muscle": "quads", "equipment": "barbell"}))
	if err != nil {
		t.Fatalf("listExercises: %v", err)
	}
	var got struct {
		Exercises []training.Exercise `json:"exercises"`
	}
	decodeResult(t, res, &got)
	if len(got.Exercises) == 0 {
		t.Fatal("Expected exercises")
	}
	for _, ex := range got.Exercises {
		if !slices.Contains(ex.Equipment, "barbell") {
			t.Errorf("Expected barbell exercise, got %+v", ex)
		}
	}
}

func TestNew_RegistersTools(t *testing.T) {
	s := New("test", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	resp := s.HandleMessage(t.Context(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	for _, name := range []string{"generate_plan", "validate_selections", "check_plan_balance", "list_exercises"} {
		if !strings.Contains(string(raw), `"name":"`+name+`"`) {
			t.Errorf("Expected tool %s to be registered, got %s", name, raw)
		}
	}
}
