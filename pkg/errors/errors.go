// Package errors provides structured error handling for visibility tracking.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates invalid observation options or scenario configuration.
	KindConfig
	// KindPlatform indicates the native watcher could not be created or used.
	KindPlatform
	// KindParsing indicates a malformed value such as a root margin.
	KindParsing
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	default:
		return "unknown"
	}
}

// Error is a structured error raised while observing targets.
type Error struct {
	// Op is the operation that failed (e.g., "observe.Manager.startSession").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ParseError represents a value that could not be parsed.
type ParseError struct {
	// Field names the option being parsed (e.g., "rootMargin").
	Field string
	// Input is the raw text.
	Input string
	// Reason describes what was wrong.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

// ErrorHandler receives errors reported by the library.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
}
