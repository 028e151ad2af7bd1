package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/myrjola/coachplan/internal/training"
)

// selectionOptions describe the wizard selections shared by the plan tools.
func selectionOptions() []mcp.ToolOption {
	stringItems := mcp.Items(map[string]any{"type": "string"})
	return []mcp.ToolOption{
		mcp.WithString("goal", mcp.Required(), mcp.Description("Primary training goal"),
			mcp.Enum(string(training.GoalStrength), string(training.GoalHypertrophy), string(training.GoalGeneral))),
		mcp.WithString("experience_level", mcp.Required(), mcp.Description("Training experience"),
			mcp.Enum(string(training.LevelBeginner), string(training.LevelIntermediate), string(training.LevelAdvanced))),
		mcp.WithArray("equipment", mcp.Required(), stringItems,
			mcp.Description("Available equipment tags (e.g. barbell, dumbbells, bench, cable, bodyweight)")),
		mcp.WithArray("target_muscles", mcp.Required(), stringItems,
			mcp.Description("Muscle groups to target (e.g. chest, upper_back, quads, hamstrings)")),
		mcp.WithArray("constraints", stringItems,
			mcp.Description("Injury or movement constraints excluding matching exercises (e.g. knee, lower_back)")),
		mcp.WithNumber("days_per_week", mcp.Required(), mcp.Description("Training days per week, 2 to 6")),
		mcp.WithNumber("session_duration", mcp.Required(), mcp.Description("Session length in minutes, at least 30")),
		mcp.WithString("name", mcp.Description("Trainee name shown on the plan")),
		mcp.WithString("note", mcp.Description("Free-form note added to the plan")),
		mcp.WithBoolean("is_trainer", mcp.Description("Whether a trainer builds the plan for a client")),
		mcp.WithString("trainer_notes", mcp.Description("Notes from the trainer")),
	}
}

var toolGeneratePlan = mcp.NewTool("generate_plan", append([]mcp.ToolOption{
	mcp.WithDescription("Generate a deterministic weekly training plan with OPT phase, split, prescriptions, " +
		"weekly volume capped at MRV and an RIR progression. Invalid selections return the validation errors."),
	mcp.WithBoolean("append_timestamp", mcp.Description("Append a generation timestamp to the plan id")),
}, selectionOptions()...)...)

var toolValidateSelections = mcp.NewTool("validate_selections", append([]mcp.ToolOption{
	mcp.WithDescription("Validate wizard selections. Returns valid and every applicable error message."),
}, selectionOptions()...)...)

var toolCheckPlanBalance = mcp.NewTool("check_plan_balance", append([]mcp.ToolOption{
	mcp.WithDescription("Check wizard selections for programming imbalances such as low frequency, missing " +
		"leg work or push without pull. Warnings never block plan generation."),
}, selectionOptions()...)...)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List catalog exercises, optionally filtered by muscle and equipment."),
	mcp.WithString("muscle", mcp.Description("Only exercises training this muscle as primary or secondary")),
	mcp.WithString("equipment", mcp.Description("Only exercises using this equipment tag")),
)

type generatePlanArgs struct {
	training.WizardSelections
	AppendTimestamp bool `json:"append_timestamp"`
}

type planResult struct {
	Plan     training.Plan                `json:"plan"`
	Warnings []training.ValidationWarning `json:"warnings"`
}

func (h *handlers) generatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args generatePlanArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if result := training.ValidateWizardInputs(args.WizardSelections); !result.Valid {
		return jsonResult(result, true)
	}

	generator := training.NewGenerator(h.catalog, h.landmarks, training.WithClock(h.now))
	plan := generator.GeneratePlan(args.WizardSelections, training.GenerateOptions{AppendTimestamp: args.AppendTimestamp})
	h.logger.LogAttrs(ctx, slog.LevelInfo, "mcp generated plan",
		slog.String("plan_id", plan.ID), slog.String("split", string(plan.SplitType)))
	return jsonResult(planResult{Plan: plan, Warnings: training.ValidatePlanBalance(args.WizardSelections)}, false)
}

func (h *handlers) validateSelections(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sel training.WizardSelections
	if err := req.BindArguments(&sel); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	return jsonResult(training.ValidateWizardInputs(sel), false)
}

func (h *handlers) checkPlanBalance(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sel training.WizardSelections
	if err := req.BindArguments(&sel); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"warnings": training.ValidatePlanBalance(sel)}, false)
}

func (h *handlers) listExercises(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises := h.catalog.Filter(training.CatalogFilter{
		Muscle:    req.GetString("muscle", ""),
		Equipment: req.GetString("equipment", ""),
	})
	return jsonResult(map[string]any{"exercises": exercises}, false)
}

// jsonResult serializes v as the tool result. isError flags results the caller must correct, like invalid input.
func jsonResult(v any, isError bool) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	result.IsError = isError
	return result, nil
}
