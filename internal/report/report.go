// Package report renders the outcome of a download run for humans and
// machines.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/wcurl/wcurl/internal/downloader"
)

// Print writes one line per URL in input order followed by a totals line.
func Print(w io.Writer, s *downloader.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, o := range s.Outcomes {
		var line string
		switch o.Status {
		case downloader.StatusSucceeded:
			line = fmt.Sprintf("ok\t%s\t%s", o.Task.Path, humanize.Bytes(uint64(max(o.Size, 0))))
		case downloader.StatusPlanned:
			line = fmt.Sprintf("plan\t%s\t%s", o.Task.Path, o.Task.URL)
		case downloader.StatusCanceled:
			line = fmt.Sprintf("skip\t%s\tcanceled", o.Task.URL)
		default:
			line = fmt.Sprintf("FAIL\t%s\t%s", o.Task.URL, failReason(o))
		}
		if _, err := fmt.Fprintln(tw, line); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d succeeded, %d failed, %d canceled\n", s.Succeeded, s.Failed, s.Canceled)
	return err
}

func failReason(o downloader.Outcome) string {
	if o.ExitCode > 0 {
		return fmt.Sprintf("(exit %d)", o.ExitCode)
	}
	if o.Err != nil {
		return o.Err.Error()
	}
	return "failed"
}

// Document is the YAML form of a Summary.
type Document struct {
	RunID     string  `yaml:"run_id"`
	DryRun    bool    `yaml:"dry_run,omitempty"`
	ExitCode  int     `yaml:"exit_code"`
	Succeeded int     `yaml:"succeeded"`
	Failed    int     `yaml:"failed"`
	Canceled  int     `yaml:"canceled"`
	Downloads []Entry `yaml:"downloads"`
}

// Entry is one URL of a Document.
type Entry struct {
	URL      string `yaml:"url"`
	Path     string `yaml:"path"`
	Status   string `yaml:"status"`
	ExitCode int    `yaml:"exit_code,omitempty"`
	Size     int64  `yaml:"size,omitempty"`
	Duration string `yaml:"duration,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// NewDocument converts a Summary into its report form.
func NewDocument(s *downloader.Summary) Document {
	doc := Document{
		RunID:     s.RunID,
		DryRun:    s.DryRun,
		ExitCode:  s.ExitCode(),
		Succeeded: s.Succeeded,
		Failed:    s.Failed,
		Canceled:  s.Canceled,
		Downloads: make([]Entry, 0, len(s.Outcomes)),
	}
	for _, o := range s.Outcomes {
		e := Entry{
			URL:    o.Task.URL,
			Path:   o.Task.Path,
			Status: string(o.Status),
			Size:   o.Size,
		}
		if o.ExitCode > 0 {
			e.ExitCode = o.ExitCode
		}
		if o.Duration > 0 {
			e.Duration = o.Duration.Round(time.Millisecond).String()
		}
		if o.Err != nil {
			e.Error = o.Err.Error()
		}
		doc.Downloads = append(doc.Downloads, e)
	}
	return doc
}

// WriteYAML writes the report for s to path on fs, replacing any existing file.
func WriteYAML(fs afero.Fs, path string, s *downloader.Summary) error {
	data, err := yaml.Marshal(NewDocument(s))
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
