// Package curl builds and runs curl invocations for single-URL downloads.
package curl

import (
	"strconv"

	"github.com/wcurl/wcurl/internal/downloader/types"
	"github.com/wcurl/wcurl/internal/naming"
)

// DefaultRetry is the number of transient-error retries requested from curl.
const DefaultRetry = 5

// Options configures the invocations a Builder produces.
type Options struct {
	Binary      string
	UserAgent   string
	Retry       int
	Passthrough []string // forwarded to curl verbatim
	Features    types.Features
}

// Builder constructs curl invocations. It has no side effects.
type Builder struct {
	opts Options
}

var _ types.Builder = (*Builder)(nil)

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	if opts.Binary == "" {
		opts.Binary = "curl"
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	return &Builder{opts: opts}
}

// Build returns the invocation that downloads rawURL into outputPath.
func (b *Builder) Build(rawURL, outputPath string) types.Invocation {
	u := naming.EncodeWhitespace(rawURL)

	args := b.baseArgs()
	args = append(args, "--output", outputPath)
	args = append(args, b.opts.Passthrough...)
	args = append(args, u)

	return types.Invocation{
		Program: b.opts.Binary,
		Args:    args,
		URL:     u,
		Output:  outputPath,
	}
}

func (b *Builder) baseArgs() []string {
	args := []string{
		"--fail",
		"--globoff",
		"--location",
		"--proto-default", "https",
		"--remote-time",
		"--retry", strconv.Itoa(b.opts.Retry),
	}
	if b.opts.UserAgent != "" {
		args = append(args, "--header", "User-Agent: "+b.opts.UserAgent)
	}
	if b.opts.Features.NoClobber {
		args = append(args, "--no-clobber")
	}
	return args
}
