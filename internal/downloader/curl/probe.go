package curl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/wcurl/wcurl/internal/downloader/types"
)

// Probe runs "<binary> --version" and derives the feature set from the
// reported version. Output that cannot be parsed yields zero features.
func Probe(ctx context.Context, binary string) (types.Features, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return types.Features{}, fmt.Errorf("%w: %s: %v", types.ErrTransportNotFound, binary, err)
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return types.Features{}, nil
		}
		return types.Features{}, fmt.Errorf("failed to run %s --version: %w", binary, err)
	}

	return ParseFeatures(out.String()), nil
}

// ParseFeatures extracts the curl version from "curl --version" output.
func ParseFeatures(output string) types.Features {
	version, major, minor, ok := ParseVersion(output)
	if !ok {
		return types.Features{}
	}
	return types.Features{
		Version:         version,
		NoClobber:       atLeast(major, minor, 7, 83),
		Parallel:        atLeast(major, minor, 7, 66),
		ParallelMaxHost: atLeast(major, minor, 8, 16),
	}
}

// ParseVersion returns the first word that looks like "X.Y[.Z...]", e.g.
// "8.7.1" from "curl 8.7.1 (x86_64-apple-darwin25.0) libcurl/8.7.1".
func ParseVersion(output string) (version string, major, minor int, ok bool) {
	for _, word := range strings.Fields(output) {
		parts := strings.Split(word, ".")
		if len(parts) < 2 {
			continue
		}
		maj, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		mnr, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		return word, maj, mnr, true
	}
	return "", 0, 0, false
}

func atLeast(major, minor, wantMajor, wantMinor int) bool {
	if major != wantMajor {
		return major > wantMajor
	}
	return minor >= wantMinor
}
