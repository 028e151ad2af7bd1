package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(app.timeout(next))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.auth.AuthenticateMiddleware(shared(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
		mustAdmin = func(next http.Handler) http.Handler {
			return mustSession(app.mustAdmin(next))
		}
	)

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Method(http.MethodGet, "/metrics", app.metricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/healthy", noAuth(http.HandlerFunc(app.healthy)))
		r.Method(http.MethodGet, "/test/timeout", noAuth(http.HandlerFunc(app.testTimeout)))

		r.Method(http.MethodPost, "/login", session(http.HandlerFunc(app.login)))
		r.Method(http.MethodPost, "/logout", session(http.HandlerFunc(app.logout)))
		r.Method(http.MethodGet, "/me", session(http.HandlerFunc(app.me)))

		r.Method(http.MethodGet, "/catalog/exercises", noAuth(http.HandlerFunc(app.catalogExercisesGET)))
		r.Method(http.MethodPost, "/wizard/validate", noAuth(http.HandlerFunc(app.wizardValidatePOST)))
		r.Method(http.MethodPost, "/wizard/balance", noAuth(http.HandlerFunc(app.wizardBalancePOST)))

		r.Route("/plans", func(r chi.Router) {
			r.Method(http.MethodPost, "/", mustSession(http.HandlerFunc(app.planCreatePOST)))
			r.Method(http.MethodGet, "/", mustSession(http.HandlerFunc(app.plansGET)))
			r.Route("/{planID}", func(r chi.Router) {
				r.Method(http.MethodGet, "/", mustSession(http.HandlerFunc(app.planGET)))
				r.Method(http.MethodDelete, "/", mustSession(http.HandlerFunc(app.planDELETE)))
				r.Method(http.MethodGet, "/export", mustSession(http.HandlerFunc(app.planExportGET)))
				r.Method(http.MethodPost, "/logs", mustSession(http.HandlerFunc(app.planLogsPOST)))
				r.Method(http.MethodGet, "/logs", mustSession(http.HandlerFunc(app.planLogsGET)))
				r.Method(http.MethodGet, "/analysis", mustSession(http.HandlerFunc(app.planAnalysisGET)))
				r.Method(http.MethodGet, "/insights", mustSession(http.HandlerFunc(app.planInsightsGET)))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Method(http.MethodPost, "/exercises", mustAdmin(http.HandlerFunc(app.adminExercisePOST)))
			r.Method(http.MethodPost, "/exercises/generate", mustAdmin(http.HandlerFunc(app.adminExerciseGeneratePOST)))
		})
	})

	return r
}
