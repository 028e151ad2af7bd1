package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/coachplan/internal/auth"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/training"
	"github.com/myrjola/coachplan/internal/workout"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Errors: nil})
}

// decodeJSON decodes the request body into v and answers 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return false
	}
	return true
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// handleError maps service errors to HTTP responses.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *workout.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  workout.ErrInvalidSelections.Error(),
			Errors: validationErr.Messages,
		})
	case errors.Is(err, workout.ErrNotFound):
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	case errors.Is(err, training.ErrInvalidExercise), errors.Is(err, auth.ErrInvalidDisplayName):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auth.ErrUnknownUser):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, workout.ErrGeneratorUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		app.serverError(w, r, err)
	}
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (bool, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, true
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}
