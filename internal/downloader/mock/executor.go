// Package mock provides an in-process transport for tests. It writes the
// configured body to the invocation's output path instead of downloading.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/wcurl/wcurl/internal/downloader/types"
)

// DefaultBody is written for URLs without a configured body.
var DefaultBody = []byte("mock download content\n")

// Executor simulates a transport against an afero filesystem.
type Executor struct {
	mu       sync.Mutex
	fs       afero.Fs
	failures map[string]int
	bodies   map[string][]byte
	hangs    map[string]bool
	calls    []types.Invocation
	delay    time.Duration
	// inFlight and maxInFlight track concurrency for assertions.
	inFlight    int
	maxInFlight int
}

// Compile-time check that Executor implements types.Executor.
var _ types.Executor = (*Executor)(nil)

// New creates a mock executor writing into fs.
func New(fs afero.Fs) *Executor {
	return &Executor{
		fs:       fs,
		failures: make(map[string]int),
		bodies:   make(map[string][]byte),
		hangs:    make(map[string]bool),
	}
}

// Fail makes every invocation for url exit with code.
func (e *Executor) Fail(url string, code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[url] = code
}

// SetBody sets the content written for url.
func (e *Executor) SetBody(url string, body []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bodies[url] = body
}

// Hang makes invocations for url block until their context is done.
func (e *Executor) Hang(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hangs[url] = true
}

// SetDelay makes every invocation take at least d, or until ctx is done.
func (e *Executor) SetDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = d
}

// Execute records inv and simulates the download it describes.
func (e *Executor) Execute(ctx context.Context, inv types.Invocation) error {
	e.mu.Lock()
	e.calls = append(e.calls, inv)
	e.inFlight++
	if e.inFlight > e.maxInFlight {
		e.maxInFlight = e.inFlight
	}
	code, fail := e.failures[inv.URL]
	body, ok := e.bodies[inv.URL]
	delay := e.delay
	hang := e.hangs[inv.URL]
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight--
		e.mu.Unlock()
	}()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if fail {
		return &types.TransportError{ExitCode: code}
	}
	if !ok {
		body = DefaultBody
	}
	return afero.WriteFile(e.fs, inv.Output, body, 0644)
}

// Calls returns the invocations seen so far in execution order.
func (e *Executor) Calls() []types.Invocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.Invocation, len(e.calls))
	copy(out, e.calls)
	return out
}

// MaxInFlight returns the highest number of concurrent Execute calls seen.
func (e *Executor) MaxInFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxInFlight
}
