package downloader

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/wcurl/wcurl/internal/downloader/types"
)

// ExitInterrupted is the exit code of a run that was canceled, following
// the shell convention for SIGINT.
const ExitInterrupted = 130

// Summary holds the outcomes of a run in input order.
type Summary struct {
	RunID     string
	DryRun    bool
	Outcomes  []types.Outcome
	Succeeded int
	Failed    int
	Canceled  int
}

func (s *Summary) tally() {
	s.Succeeded, s.Failed, s.Canceled = 0, 0, 0
	for _, o := range s.Outcomes {
		switch {
		case o.Status.IsSuccess():
			s.Succeeded++
		case o.Status == types.StatusCanceled:
			s.Canceled++
		default:
			s.Failed++
		}
	}
}

// OK reports whether every URL succeeded.
func (s *Summary) OK() bool {
	return s.Failed == 0 && s.Canceled == 0
}

// Err combines the per-URL errors, each prefixed with its URL.
func (s *Summary) Err() error {
	var err error
	for _, o := range s.Outcomes {
		if o.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", o.Task.URL, o.Err))
		}
	}
	return err
}

// ExitCode returns 0 when every URL succeeded. Otherwise it returns the
// transport's exit status when all failures share one, ExitInterrupted when
// the run was canceled, and 1 in every other case.
func (s *Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	if s.Canceled > 0 {
		return ExitInterrupted
	}

	code := 0
	for _, o := range s.Outcomes {
		if o.Status != types.StatusFailed {
			continue
		}
		if o.ExitCode <= 0 || (code != 0 && o.ExitCode != code) {
			return 1
		}
		code = o.ExitCode
	}
	return code
}
