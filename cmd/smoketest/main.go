package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/coachplan/internal/e2etest"
	"github.com/myrjola/coachplan/internal/logging"
	"github.com/myrjola/coachplan/internal/testhelpers"
	"github.com/myrjola/coachplan/internal/training"
)

type planResponse struct {
	Plan     training.Plan                `json:"plan"`
	Warnings []training.ValidationWarning `json:"warnings"`
}

func TestPlanLifecycle(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	var err error

	if err = client.Login(ctx, "smoketest"); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	sel := training.WizardSelections{
		Goal:            training.GoalGeneral,
		ExperienceLevel: training.LevelBeginner,
		Equipment:       []string{"bodyweight", "dumbbells"},
		TargetMuscles:   []string{"chest", "upper_back", "quads"},
		DaysPerWeek:     3,
		SessionDuration: 45,
	}
	var created planResponse
	if err = client.DoJSON(ctx, http.MethodPost, "/api/plans", sel, &created); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	planPath := "/api/plans/" + created.Plan.ID
	if err = client.DoJSON(ctx, http.MethodGet, planPath+"/analysis", nil, nil); err != nil {
		return fmt.Errorf("analyze plan: %w", err)
	}
	if err = client.DoJSON(ctx, http.MethodDelete, planPath, nil, nil); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if err = client.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestPlanLifecycle(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing plan lifecycle", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
