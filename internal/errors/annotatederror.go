// Package errors is a drop-in for the standard library errors package that annotates errors with [slog.Attr] and
// the source location where they were created.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	pc    uintptr
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// callerPC returns the program counter of the function skip frames above the caller of callerPC.
func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	runtime.Callers(skip+2, pcs[:]) //nolint:mnd // skip runtime.Callers and callerPC.
	return pcs[0]
}

// NewSentinel creates an error without source information, meant for package level sentinel errors.
func NewSentinel(msg string) error {
	return stderrors.New(msg) //nolint:err113 // sentinel constructor.
}

// New creates an error annotated with attrs and the caller's source location.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: nil, attrs: attrs, pc: callerPC(1)}
}

// Wrap wraps err with msg, attrs and the caller's source location. The message reads "msg: err".
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, err: err, attrs: attrs, pc: callerPC(1)}
}

// DecoratePanic converts a recovered panic value into an error pointing at the panicking line.
// It returns nil when excp is nil.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	var cause error
	if err, ok := excp.(error); ok {
		cause = err
	} else {
		cause = NewSentinel(fmt.Sprint(excp))
	}
	return &annotatedError{msg: "panic", err: cause, attrs: nil, pc: panicPC()}
}

// panicPC finds the frame that called panic from within a deferred recover.
func panicPC() uintptr {
	pcs := make([]uintptr, 32) //nolint:mnd // deep enough to reach the panicking frame.
	n := runtime.Callers(3, pcs) //nolint:mnd // skip runtime.Callers, panicPC and DecoratePanic.
	frames := runtime.CallersFrames(pcs[:n])
	var fallback uintptr
	afterPanic := false
	for {
		frame, more := frames.Next()
		if fallback == 0 {
			fallback = frame.PC
		}
		if afterPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.PC
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			return fallback
		}
	}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target) //nolint:errorlint // thin wrapper.
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// SlogError converts err to an "error" group with the message, the annotations collected from the whole error tree,
// and the source location of the innermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	var (
		annotations []any
		pc          uintptr
	)
	walk(err, func(ae *annotatedError) {
		for _, a := range ae.attrs {
			annotations = append(annotations, a)
		}
		if ae.pc != 0 {
			pc = ae.pc
		}
	})
	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if pc != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
		attrs = append(attrs, slog.String("source", frame.File+":"+strconv.Itoa(frame.Line)))
	}
	return slog.Group("error", attrs...)
}

// walk visits the annotated errors in err's tree, outermost first.
func walk(err error, visit func(*annotatedError)) {
	if err == nil {
		return
	}
	if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // walking the tree manually.
		visit(ae)
	}
	switch u := err.(type) { //nolint:errorlint // walking the tree manually.
	case interface{ Unwrap() error }:
		walk(u.Unwrap(), visit)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			walk(e, visit)
		}
	}
}
