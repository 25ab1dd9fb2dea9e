// Package types defines shared types for download runs.
package types

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors for download runs.
var (
	ErrNoURLs            = errors.New("you must provide at least one URL to download")
	ErrTransportNotFound = errors.New("transport binary not found")
	ErrTransportFailed   = errors.New("transport exited with failure")
)

// TransportError reports a transport subprocess that exited nonzero.
type TransportError struct {
	ExitCode int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport exited with status %d: %v", e.ExitCode, e.Err)
	}
	return fmt.Sprintf("transport exited with status %d", e.ExitCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransportFailed) match any TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransportFailed
}

// Features describes what the installed transport supports.
type Features struct {
	Version         string
	NoClobber       bool
	Parallel        bool
	ParallelMaxHost bool
}

// Invocation is a fully built transport command line.
type Invocation struct {
	Program string
	Args    []string

	// URL and Output repeat what Args already carry, for logging and tests.
	URL    string
	Output string
}

// String renders the invocation as a shell-quoted command line.
func (i Invocation) String() string {
	parts := make([]string, 0, len(i.Args)+1)
	parts = append(parts, ShellQuote(i.Program))
	for _, a := range i.Args {
		parts = append(parts, ShellQuote(a))
	}
	return strings.Join(parts, " ")
}

// ShellQuote quotes s for a POSIX shell when it contains anything beyond a
// conservative set of safe characters.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=,+@%", r)
}

// Task pairs a URL with its resolved output path and transport invocation.
type Task struct {
	Index      int
	URL        string
	Path       string
	Invocation Invocation
}

// Status represents the result of a task.
type Status string

const (
	StatusPlanned   Status = "planned" // dry run, nothing executed
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsSuccess reports whether the status counts toward a zero exit code.
func (s Status) IsSuccess() bool {
	return s == StatusSucceeded || s == StatusPlanned
}

// Outcome is the result of executing one Task.
type Outcome struct {
	Task     Task
	Status   Status
	ExitCode int // transport exit status, -1 if it never ran to completion
	Err      error
	Size     int64
	Duration time.Duration
}

// Executor runs one invocation. A nonzero transport exit is reported as a
// *TransportError.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) error
}

// Builder turns a URL and its output path into an invocation.
type Builder interface {
	Build(rawURL, outputPath string) Invocation
}
