package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

const usageHeader = `wcurl -- a simple wrapper around curl to easily download files.

Usage: wcurl <URL>...
       wcurl [--curl-options <CURL_OPTIONS>]... [--no-decode-filename] [-o|-O|--output <PATH>] [--dry-run] [--] <URL>...
       wcurl [--curl-options=<CURL_OPTIONS>]... [--no-decode-filename] [--output=<PATH>] [--dry-run] [--] <URL>...
       wcurl -h|--help
       wcurl -V|--version

Options:
`

const usageFooter = `
  <CURL_OPTIONS>: Any option supported by curl. It is not interpreted by wcurl, only forwarded
                  to every curl invocation.

  <URL>: URL to be downloaded. Anything that is not an option is considered a URL. Whitespace
         is percent-encoded and the URL is passed to curl, which then performs the parsing.
         May be specified more than once.
`

// options holds the values of flags that are not routed through config.
type options struct {
	curlOptions      []string
	output           string
	noDecodeFilename bool
	dryRun           bool
	report           string
	configPath       string
	envFile          string
	verbose          bool
	help             bool
	version          bool
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("wcurl", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)

	fs.StringArrayVar(&opts.curlOptions, "curl-options", nil,
		"Extra option passed verbatim to every curl invocation. May be specified more than once.")
	fs.StringVarP(&opts.output, "output", "o", "",
		"Use `PATH` instead of the name derived from the URL. With several URLs the files get a numbered suffix.")
	// -O is accepted for compatibility and writes to the same value.
	fs.StringVarP(&opts.output, "remote-name", "O", "", "")
	_ = fs.MarkHidden("remote-name")
	fs.BoolVar(&opts.noDecodeFilename, "no-decode-filename", false,
		"Don't percent-decode the output filename.")
	fs.BoolVar(&opts.dryRun, "dry-run", false,
		"Don't execute curl, just print what would be invoked.")

	fs.IntP("parallel", "P", 1, "Number of downloads to run at the same time.")
	fs.String("dir", ".", "Directory the files are saved in.")
	fs.Int("retry", 5, "Number of retries curl performs on transient errors.")
	fs.String("curl", "curl", "Path of the curl binary.")
	fs.String("user-agent", "", "User-Agent header sent with every request (default wcurl/<version>).")
	fs.String("log-level", "warn", "Log level: trace, debug, info, warn, error, disabled.")
	fs.String("log-format", "console", "Log format: console or json.")
	fs.String("log-dir", "", "Directory for a rotated log file.")

	fs.StringVar(&opts.report, "report", "", "Write a YAML run report to `FILE`.")
	fs.StringVar(&opts.configPath, "config", "", "Path to a config `FILE`.")
	fs.StringVar(&opts.envFile, "env-file", "", "Load environment variables from `FILE` before reading config.")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging.")
	fs.BoolVarP(&opts.help, "help", "h", false, "Print this usage message.")
	fs.BoolVarP(&opts.version, "version", "V", false, "Print version information.")

	return fs
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, usageHeader)
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprint(w, usageFooter)
}
