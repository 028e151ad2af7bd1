// Package mcpserver exposes the plan generator, validators and exercise catalog as MCP tools.
package mcpserver

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/myrjola/coachplan/internal/training"
)

type Option func(*handlers)

// WithClock overrides the clock used for timestamped plan ids.
func WithClock(now func() time.Time) Option {
	return func(h *handlers) {
		h.now = now
	}
}

// New creates an MCP server with all tools registered.
func New(version string, logger *slog.Logger, opts ...Option) *server.MCPServer {
	s := server.NewMCPServer("coachplan", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("coachplan generates NASM OPT based training plans. Validate the wizard "+
			"selections first, check the balance warnings, then generate the plan. Use list_exercises to "+
			"explore the exercise catalog."),
	)

	h := &handlers{
		logger:    logger,
		catalog:   training.DefaultCatalog(),
		landmarks: training.DefaultLandmarks(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	s.AddTools(
		server.ServerTool{Tool: toolGeneratePlan, Handler: h.generatePlan},
		server.ServerTool{Tool: toolValidateSelections, Handler: h.validateSelections},
		server.ServerTool{Tool: toolCheckPlanBalance, Handler: h.checkPlanBalance},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
	)

	return s
}

type handlers struct {
	logger    *slog.Logger
	catalog   *training.Catalog
	landmarks training.Landmarks
	now       func() time.Time
}
