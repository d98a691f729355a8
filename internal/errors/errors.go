// Package errors provides structured error handling for boomerang processing.
// It defines a closed set of error kinds, a structured error type carrying
// stage context, and utility functions for classifying arbitrary failures.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a processing failure.
type Kind string

const (
	// KindInvalidInput indicates a malformed, inaccessible, or too-short source
	KindInvalidInput Kind = "INVALID_INPUT"
	// KindFileNotFound indicates the input path does not exist
	KindFileNotFound Kind = "FILE_NOT_FOUND"
	// KindUnsupportedFormat indicates an extension outside the allow-list
	KindUnsupportedFormat Kind = "UNSUPPORTED_FORMAT"
	// KindFfmpeg indicates the external engine is unavailable or an invocation failed
	KindFfmpeg Kind = "FFMPEG_ERROR"
	// KindProcessing indicates any other internal unexpected failure
	KindProcessing Kind = "PROCESSING_ERROR"
	// KindOutput indicates an output-write failure
	KindOutput Kind = "OUTPUT_ERROR"
)

// Error is a classified processing failure. FFmpeg errors additionally carry
// the stage whose invocation failed.
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Stage != "" {
		msg = fmt.Sprintf("%s [stage=%s]", msg, e.Stage)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// FFmpeg creates an engine error carrying the originating stage.
func FFmpeg(stage, message string, cause error) *Error {
	return &Error{Kind: KindFfmpeg, Stage: stage, Message: message, Cause: cause}
}

// Classify returns err as an *Error, wrapping unrecognized errors as
// KindProcessing. A nil err yields nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindProcessing, Message: "unexpected error", Cause: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors report
// KindProcessing; nil reports the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProcessing
}

// StageOf extracts the failed stage name from an error chain, if any.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
