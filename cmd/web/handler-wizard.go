package main

import (
	"net/http"

	"github.com/myrjola/coachplan/internal/training"
)

type exercisesResponse struct {
	Exercises []training.Exercise `json:"exercises"`
}

type warningsResponse struct {
	Warnings []training.ValidationWarning `json:"warnings"`
}

// catalogExercisesGET lists the catalog, optionally filtered by muscle and equipment.
func (app *application) catalogExercisesGET(w http.ResponseWriter, r *http.Request) {
	catalog, err := app.workoutService.Catalog(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	exercises := catalog.Filter(training.CatalogFilter{
		Muscle:    r.URL.Query().Get("muscle"),
		Equipment: r.URL.Query().Get("equipment"),
	})
	writeJSON(w, http.StatusOK, exercisesResponse{Exercises: exercises})
}

func (app *application) wizardValidatePOST(w http.ResponseWriter, r *http.Request) {
	var sel training.WizardSelections
	if !decodeJSON(w, r, &sel) {
		return
	}
	result, _ := app.workoutService.ValidateSelections(sel)
	writeJSON(w, http.StatusOK, result)
}

func (app *application) wizardBalancePOST(w http.ResponseWriter, r *http.Request) {
	var sel training.WizardSelections
	if !decodeJSON(w, r, &sel) {
		return
	}
	_, warnings := app.workoutService.ValidateSelections(sel)
	writeJSON(w, http.StatusOK, warningsResponse{Warnings: warnings})
}
