package main

import (
	"net/http"
	"strings"

	"github.com/myrjola/coachplan/internal/training"
)

type generateExerciseRequest struct {
	Name string `json:"name"`
}

func (app *application) adminExercisePOST(w http.ResponseWriter, r *http.Request) {
	var ex training.Exercise
	if !decodeJSON(w, r, &ex) {
		return
	}
	saved, err := app.workoutService.AddCustomExercise(r.Context(), ex)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// adminExerciseGeneratePOST fills in an exercise with the AI generator and stores it.
func (app *application) adminExerciseGeneratePOST(w http.ResponseWriter, r *http.Request) {
	var req generateExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	ex, err := app.workoutService.GenerateExercise(r.Context(), name)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}
