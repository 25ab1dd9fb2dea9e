// Package downloader coordinates a download run: it resolves every URL to an
// output path, builds one transport invocation per URL, executes them and
// aggregates the outcomes into an exit status.
package downloader

import (
	"github.com/wcurl/wcurl/internal/downloader/types"
)

// Re-export types for convenience.
// This allows external packages to use downloader.Outcome instead of types.Outcome.

type Outcome = types.Outcome

// Re-export constants.
const (
	StatusPlanned   = types.StatusPlanned
	StatusSucceeded = types.StatusSucceeded
	StatusCanceled  = types.StatusCanceled
)

// Re-export errors.
var (
	ErrNoURLs            = types.ErrNoURLs
	ErrTransportNotFound = types.ErrTransportNotFound
)
