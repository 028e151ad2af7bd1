package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/myrjola/coachplan/internal/contexthelpers"
	"github.com/myrjola/coachplan/internal/training"
	"github.com/myrjola/coachplan/internal/workout"
)

type planResponse struct {
	Plan     training.Plan                `json:"plan"`
	Warnings []training.ValidationWarning `json:"warnings"`
}

type plansResponse struct {
	Plans []training.Plan `json:"plans"`
}

type logsResponse struct {
	Logs []training.WorkoutLog `json:"logs"`
}

func (app *application) planCreatePOST(w http.ResponseWriter, r *http.Request) {
	appendTimestamp, ok := queryBool(r, "append_timestamp")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid append_timestamp parameter")
		return
	}
	var sel training.WizardSelections
	if !decodeJSON(w, r, &sel) {
		return
	}
	ctx := r.Context()
	plan, warnings, err := app.workoutService.GeneratePlan(ctx, contexthelpers.AuthenticatedUserID(ctx), sel,
		appendTimestamp)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, planResponse{Plan: plan, Warnings: warnings})
}

func (app *application) plansGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plans, err := app.workoutService.ListPlans(ctx, contexthelpers.AuthenticatedUserID(ctx))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plansResponse{Plans: plans})
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plan, err := app.workoutService.GetPlan(ctx, contexthelpers.AuthenticatedUserID(ctx), chi.URLParam(r, "planID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (app *application) planDELETE(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := app.workoutService.DeletePlan(ctx, contexthelpers.AuthenticatedUserID(ctx), chi.URLParam(r, "planID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// planExportGET renders the plan as Markdown (default) or HTML.
func (app *application) planExportGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := r.URL.Query().Get("format")
	if format != "" && format != "markdown" && format != "html" {
		writeError(w, http.StatusBadRequest, "format must be markdown or html")
		return
	}
	plan, err := app.workoutService.GetPlan(ctx, contexthelpers.AuthenticatedUserID(ctx), chi.URLParam(r, "planID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	if format == "html" {
		var html string
		if html, err = workout.ExportHTML(plan); err != nil {
			app.serverError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+plan.ID+`.md"`)
	_, _ = w.Write([]byte(workout.ExportMarkdown(plan)))
}

func (app *application) planLogsPOST(w http.ResponseWriter, r *http.Request) {
	var log training.WorkoutLog
	if !decodeJSON(w, r, &log) {
		return
	}
	ctx := r.Context()
	saved, err := app.workoutService.LogWorkout(ctx, contexthelpers.AuthenticatedUserID(ctx),
		chi.URLParam(r, "planID"), log)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (app *application) planLogsGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logs, err := app.workoutService.ListLogs(ctx, contexthelpers.AuthenticatedUserID(ctx), chi.URLParam(r, "planID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logsResponse{Logs: logs})
}

// planAnalysisGET analyzes the logs on demand. window_days=0 analyzes the whole history.
func (app *application) planAnalysisGET(w http.ResponseWriter, r *http.Request) {
	windowDays, ok := queryInt(r, "window_days", app.windowDays)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid window_days parameter")
		return
	}
	ctx := r.Context()
	analysis, err := app.workoutService.Analyze(ctx, contexthelpers.AuthenticatedUserID(ctx),
		chi.URLParam(r, "planID"), windowDays)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// planInsightsGET returns the snapshot stored by the periodic re-analysis.
func (app *application) planInsightsGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	analysis, err := app.workoutService.LatestInsights(ctx, contexthelpers.AuthenticatedUserID(ctx),
		chi.URLParam(r, "planID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
