package errors_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/testhelpers"
)

// nextLine returns "annotatederror_test.go:N" where N is the line after the caller.
func nextLine(t *testing.T) string {
	t.Helper()
	_, _, line, ok := runtime.Caller(1)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return "annotatederror_test.go:" + strconv.Itoa(line+1)
}

var errPlanNotFound = errors.NewSentinel("plan not found")

type storeError struct {
	table string
}

func (e *storeError) Error() string {
	return "query " + e.table
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "sentinel",
			err:  errPlanNotFound,
			want: "plan not found",
		},
		{
			name: "wrapped with annotations",
			err:  errors.Wrap(errPlanNotFound, "get plan", slog.String("plan_id", "plan_abc")),
			want: "get plan: plan not found",
		},
		{
			name: "wrapped twice",
			err:  errors.Wrap(errors.Wrap(&storeError{table: "plans"}, "select plan"), "analyze plan"),
			want: "analyze plan: select plan: query plans",
		},
		{
			name: "wrapping nil keeps the message",
			err:  errors.Wrap(nil, "log workout"),
			want: "log workout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsAsUnwrap(t *testing.T) {
	wrapped := errors.Wrap(errPlanNotFound, "delete plan", slog.String("user_id", "user_1"))
	if !errors.Is(wrapped, errPlanNotFound) {
		t.Error("Expected wrapped error to match errPlanNotFound")
	}
	if errors.Is(wrapped, errors.NewSentinel("plan not found")) {
		t.Error("Expected sentinels with equal messages to differ")
	}
	if got := errors.Unwrap(wrapped); got != errPlanNotFound { //nolint:errorlint // identity check.
		t.Errorf("Expected Unwrap to return errPlanNotFound, got %v", got)
	}
	if got := errors.Unwrap(errPlanNotFound); got != nil {
		t.Errorf("Expected nil from unwrapping a sentinel, got %v", got)
	}

	root := &storeError{table: "workout_logs"}
	joined := errors.Join(errPlanNotFound, fmt.Errorf("insert: %w", errors.Wrap(root, "log workout")))
	var target *storeError
	if !errors.As(joined, &target) || target != root {
		t.Errorf("Expected As to find the store error, got %v", target)
	}
}

func TestSlogError(t *testing.T) {
	wrapLine := nextLine(t)
	err := errors.Wrap(errPlanNotFound, "generate insights",
		slog.String("plan_id", "plan_abc"), slog.Duration("elapsed", time.Second))
	var buf bytes.Buffer
	testhelpers.NewLogger(&buf).Info("insights failed", errors.SlogError(err))
	logLine := buf.String()
	for _, content := range []string{
		"error.message=\"generate insights: plan not found\"",
		"error.annotations.plan_id=plan_abc",
		"error.annotations.elapsed=1s",
		wrapLine,
	} {
		if !strings.Contains(logLine, content) {
			t.Errorf("Expected log line %s to contain %s", logLine, content)
		}
	}
	if strings.Contains(logLine, "annotatederror.go") {
		t.Error("Expected the source to point at the caller, not annotatederror.go")
	}
}

func TestSlogError_OddTrees(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"nil", nil},
		{"join with nils", errors.Join(nil, nil, errPlanNotFound, errors.New("boom"))},
		{"fmt wrapped sentinel", fmt.Errorf("get: %w", errPlanNotFound)},
		{"wrap nil", errors.Wrap(nil, "wrap")},
		{"wrap empty join", errors.Wrap(errors.Join(nil, nil), "wrap")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := errors.SlogError(tt.err)
			if tt.err == nil && !attr.Equal(slog.Attr{}) {
				t.Errorf("Expected empty attr for nil error, got %v", attr)
			}
		})
	}
}

func TestNew(t *testing.T) {
	line := nextLine(t)
	err := errors.New("plan not generated", slog.String("plan_id", "plan_abc"))
	if got, want := err.Error(), "plan not generated"; got != want {
		t.Errorf("err.Error(): got %q, want %q", got, want)
	}
	attr := errors.SlogError(err).String()
	for _, contains := range []string{line, "plan_id=plan_abc"} {
		if !strings.Contains(attr, contains) {
			t.Errorf("attr.String(): expected %q to contain %q", attr, contains)
		}
	}
}

func TestSlogError_JoinedAnnotations(t *testing.T) {
	err := errors.Join(
		errors.Wrap(errors.NewSentinel("first"), "one", slog.Int("day", 1)),
		errors.Wrap(errors.NewSentinel("second"), "two", slog.Int("week", 2)),
	)
	attr := errors.SlogError(err).String()
	for _, contains := range []string{"day=1", "week=2"} {
		if !strings.Contains(attr, contains) {
			t.Errorf("attr.String(): expected %q to contain %q", attr, contains)
		}
	}
}

func TestDecoratePanic_Nil(t *testing.T) {
	if err := errors.DecoratePanic(nil); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestDecoratePanic(t *testing.T) {
	var panicLine string
	defer func() {
		excp := recover()
		err := errors.DecoratePanic(excp)
		if err == nil {
			t.Fatal("expected error")
		}
		if got, want := err.Error(), "panic: test"; got != want {
			t.Errorf("err.Error(): got %q, want %q", got, want)
		}
		attr := errors.SlogError(err)
		if got := attr.String(); !strings.Contains(got, panicLine) {
			t.Errorf("attr.String(): expected %q to contain %q", got, panicLine)
		}
	}()
	panicLine = nextLine(t)
	panic("test")
}
