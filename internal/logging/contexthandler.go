package logging

import (
	"context"
	"log/slog"
	"slices"

	"github.com/myrjola/coachplan/internal/contexthelpers"
	"github.com/myrjola/coachplan/internal/errors"
)

type attrsKey struct{}

// ContextHandler decorates records with the attributes collected by [WithAttrs] and, when the request has
// been authenticated, the user_id of the caller.
type ContextHandler struct {
	next slog.Handler
}

func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(attrsFrom(ctx)...)
	if userID := contexthelpers.AuthenticatedUserID(ctx); userID != "" {
		r.AddAttrs(slog.String("user_id", userID))
	}
	if err := h.next.Handle(ctx, r); err != nil {
		return errors.Wrap(err, "handle log record")
	}
	return nil
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

// WithAttrs returns a context whose log records carry attrs in addition to the ones already stored.
// The stored slice is never shared between sibling contexts.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	return context.WithValue(ctx, attrsKey{}, slices.Concat(attrsFrom(ctx), attrs))
}

func attrsFrom(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}
