package naming

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Options controls how the Resolver turns URLs into paths.
type Options struct {
	// Dir is the directory output files are placed in. Empty means the
	// current working directory.
	Dir string
	// Output replaces the URL-derived base name for every URL when set.
	Output string
	// DecodeFilename percent-decodes the derived name.
	DecodeFilename bool
}

// Resolver assigns each URL of a run a path that is neither claimed earlier
// in the run nor present on disk. It is safe for concurrent use, but callers
// that need input-order numbering must resolve sequentially.
type Resolver struct {
	mu      sync.Mutex
	fs      afero.Fs
	opts    Options
	claimed map[string]struct{}
	// reserved holds absolute paths no download may use.
	reserved map[string]struct{}
	// last holds the highest suffix handed out per base path.
	last   map[string]int
	logger zerolog.Logger
}

// NewResolver creates a Resolver with an empty claimed set.
func NewResolver(fs afero.Fs, opts Options, logger zerolog.Logger) *Resolver {
	return &Resolver{
		fs:      fs,
		opts:    opts,
		claimed:  make(map[string]struct{}),
		reserved: make(map[string]struct{}),
		last:     make(map[string]int),
		logger:   logger,
	}
}

// Resolve returns the output path for rawURL and records it as claimed.
// Collisions get a ".N" suffix, N counting up from 1 per base name; a number
// is never handed out twice in one run even if its file disappears.
func (r *Resolver) Resolve(rawURL string) string {
	name := r.opts.Output
	if name == "" {
		name = BaseName(rawURL, r.opts.DecodeFilename)
	}
	base := r.join(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last[base] == 0 && r.available(base) {
		r.claim(base)
		return base
	}

	n := r.last[base]
	for {
		n++
		candidate := base + "." + strconv.Itoa(n)
		if r.available(candidate) {
			r.last[base] = n
			r.claim(candidate)
			r.logger.Debug().
				Str("url", rawURL).
				Str("base", base).
				Str("path", candidate).
				Msg("output name taken, using numbered suffix")
			return candidate
		}
	}
}

// Claimed reports whether path has been handed out in this run.
func (r *Resolver) Claimed(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.claimed[filepath.Clean(path)]
	return ok
}

// Reserve keeps path away from every later Resolve call, for files the run
// writes itself such as a report.
func (r *Resolver) Reserve(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserved[absPath(path)] = struct{}{}
}

// join places name under Dir unless name is already absolute.
func (r *Resolver) join(name string) string {
	if r.opts.Dir == "" || filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(r.opts.Dir, name)
}

func (r *Resolver) claim(path string) {
	r.claimed[path] = struct{}{}
}

// available must be called with mu held.
func (r *Resolver) available(path string) bool {
	if _, ok := r.claimed[path]; ok {
		return false
	}
	if _, ok := r.reserved[absPath(path)]; ok {
		return false
	}
	exists, err := r.exists(path)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("cannot stat output path, treating it as taken")
		return false
	}
	return !exists
}

func (r *Resolver) exists(path string) (bool, error) {
	var err error
	if ls, ok := r.fs.(afero.Lstater); ok {
		_, _, err = ls.LstatIfPossible(path)
	} else {
		_, err = r.fs.Stat(path)
	}
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
