// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/mcdonaldj/zip2hash/internal/adapters/osfs"
	"github.com/mcdonaldj/zip2hash/internal/adapters/sysclip"
	"github.com/mcdonaldj/zip2hash/internal/config"
	"github.com/mcdonaldj/zip2hash/internal/extract"
	"github.com/mcdonaldj/zip2hash/internal/legacy"
	"github.com/mcdonaldj/zip2hash/internal/ports"
	"github.com/mcdonaldj/zip2hash/internal/report"
	"github.com/mcdonaldj/zip2hash/internal/tui"
	"github.com/mcdonaldj/zip2hash/internal/zipfmt"
)

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
	ConfigPath() string
	DefaultConfig() *config.Config
}

// UIService opens the interactive browser for one archive.
type UIService interface {
	Browse(a *extract.Archive) error
}

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)
	// Now stamps run reports (defaults to time.Now)
	Now func() time.Time

	// Injectable dependencies (nil means use defaults)
	ConfigSvc ConfigService
	UISvc     UIService
	FS        ports.FileSystem

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		Now:     time.Now,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(int) {},
		Now:     time.Now,
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load() (*config.Config, error) { return config.Load() }
func (d *defaultConfigService) Save(cfg *config.Config) error { return cfg.Save() }
func (d *defaultConfigService) ConfigPath() string            { return config.ConfigPath() }
func (d *defaultConfigService) DefaultConfig() *config.Config { return config.DefaultConfig() }

// defaultUIService runs the bubbletea browser with the system clipboard.
type defaultUIService struct{}

func (d *defaultUIService) Browse(a *extract.Archive) error { return tui.Run(a, sysclip.New()) }

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) uiSvc() UIService {
	if c.UISvc != nil {
		return c.UISvc
	}
	return &defaultUIService{}
}

func (c *CLI) fs() ports.FileSystem {
	if c.FS != nil {
		return c.FS
	}
	return osfs.New()
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	if len(c.Args) < 2 {
		c.PrintUsage()
		c.Exit(1)
		return
	}

	switch c.Args[1] {
	case "hash":
		c.RunHash(c.Args[2:])
	case "list":
		c.ListEntries(c.Args[2:])
	case "inspect":
		c.Inspect(c.Args[2:])
	case "ui":
		c.Browse(c.Args[2:])
	case "init":
		c.InitConfig()
	case "version", "--version":
		fmt.Fprintf(c.Out, "zip2hash v%s\n", c.Version)
	case "help", "-h", "--help":
		c.PrintUsage()
	default:
		c.RunHash(c.Args[1:])
	}
}

// PrintUsage prints the help message.
func (c *CLI) PrintUsage() {
	fmt.Fprintln(c.Out, `zip2hash - Extract $pkzip2$ hashes from legacy-encrypted ZIP archives

Usage:
  zip2hash [flags] <archive>...            Print one hash line per encrypted entry
  zip2hash hash [flags] <archive>...       Same as above
  zip2hash list [flags] <archive>          List every entry with its classification
  zip2hash inspect [flags] <archive>       Show the diagnostic trace of every candidate
  zip2hash ui [flags] <archive>            Browse entries interactively
  zip2hash init                            Create default config file
  zip2hash version                         Show version
  zip2hash help, -h                        Show this help

Flags:
  -v, --verbose                            Print traces and skipped entries to stderr
  --scan-comment                           Accept archives with a trailing comment
  --report=<path>                          Write a JSON run report

Config: ~/.zip2hash/config.yaml`)
}

// runOptions holds the flags shared by every archive command.
type runOptions struct {
	extract extract.Options
	verbose bool
	report  string
	paths   []string
}

// parseArgs merges config with command-line flags. It reports false after
// printing an error.
func (c *CLI) parseArgs(args []string) (runOptions, bool) {
	var ro runOptions

	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return ro, false
	}
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return ro, false
	}
	ro.extract = opts
	ro.verbose = cfg.Verbose
	ro.report = cfg.Report

	for _, arg := range args {
		switch {
		case arg == "-v" || arg == "--verbose":
			ro.verbose = true
		case arg == "--scan-comment":
			ro.extract.CommentPolicy = zipfmt.CommentScan
		case strings.HasPrefix(arg, "--report="):
			ro.report = strings.TrimPrefix(arg, "--report=")
		case strings.HasPrefix(arg, "-") && arg != "-":
			fmt.Fprintf(c.Err, "Unknown flag: %s\n", arg)
			c.Exit(1)
			return ro, false
		default:
			ro.paths = append(ro.paths, arg)
		}
	}
	ro.report = config.ExpandPath(ro.report)
	ro.extract.Digest = ro.report != ""
	return ro, true
}

// archiveError prints an archive-fatal error. Parse errors already lead
// with their stage.
func (c *CLI) archiveError(path string, err error) {
	fmt.Fprintf(c.Err, "%s %s: %v\n", c.red("Error:"), path, err)
}

// RunHash prints a hash line for every legacy-encrypted entry of each archive.
func (c *CLI) RunHash(args []string) {
	ro, ok := c.parseArgs(args)
	if !ok {
		return
	}
	if len(ro.paths) == 0 {
		fmt.Fprintln(c.Out, "Usage: zip2hash [hash] [flags] <archive>...")
		c.Exit(1)
		return
	}

	var rep *report.Report
	if ro.report != "" {
		rep = report.New(c.Version, c.Now())
	}

	failed := false
	for _, path := range ro.paths {
		a, err := extract.Open(c.fs(), path, ro.extract)
		if err != nil {
			c.archiveError(path, err)
			if rep != nil {
				rep.AddFailure(path, err)
			}
			failed = true
			continue
		}
		if rep != nil {
			rep.AddArchive(a)
		}

		for _, r := range a.Results {
			switch r.Status() {
			case extract.StatusHash:
				fmt.Fprintln(c.Out, r.Line)
				if ro.verbose {
					fmt.Fprintln(c.Err, c.gray(r.Candidate.Trace(path)))
				}
			case extract.StatusSkipped:
				if ro.verbose {
					fmt.Fprintf(c.Err, "  %s %s %s\n", c.gray("-"), c.gray(r.Entry.Name), c.gray("("+r.Reason+")"))
				}
			case extract.StatusFailed:
				fmt.Fprintf(c.Err, "%s %s/%s: %v\n", c.yellow("Warning:"), path, r.Entry.Name, r.Err)
			}
		}
		if a.Count(extract.StatusHash) == 0 {
			fmt.Fprintf(c.Err, "%s %s: no legacy-encrypted entries found\n", c.yellow("Warning:"), path)
		}
	}

	if rep != nil {
		if err := rep.Save(c.fs(), ro.report); err != nil {
			fmt.Fprintf(c.Err, "Error saving report: %v\n", err)
			c.Exit(1)
			return
		}
		if ro.verbose {
			fmt.Fprintf(c.Err, "%s Report written to %s\n", c.green("*"), ro.report)
		}
	}

	if failed {
		c.Exit(1)
	}
}

// openOne handles commands that take exactly one archive.
func (c *CLI) openOne(args []string, usage string) (*extract.Archive, runOptions, bool) {
	ro, ok := c.parseArgs(args)
	if !ok {
		return nil, ro, false
	}
	if len(ro.paths) != 1 {
		fmt.Fprintln(c.Out, usage)
		c.Exit(1)
		return nil, ro, false
	}

	a, err := extract.Open(c.fs(), ro.paths[0], ro.extract)
	if err != nil {
		c.archiveError(ro.paths[0], err)
		c.Exit(1)
		return nil, ro, false
	}
	return a, ro, true
}

// ListEntries prints every directory entry with its classification.
func (c *CLI) ListEntries(args []string) {
	a, _, ok := c.openOne(args, "Usage: zip2hash list <archive>")
	if !ok {
		return
	}

	fmt.Fprintf(c.Out, "Entries in %s:\n\n", c.cyan(a.Name))
	fmt.Fprintf(c.Out, "  %-32s %4s %6s %8s %10s %s\n", "NAME", "VER", "FLAGS", "METHOD", "SIZE", "STATUS")
	fmt.Fprintf(c.Out, "  %-32s %4s %6s %8s %10s %s\n", "----", "---", "-----", "------", "----", "------")

	for _, r := range a.Results {
		e := r.Entry
		var status string
		switch r.Status() {
		case extract.StatusHash:
			check := "crc"
			if r.Candidate.TimeCheck {
				check = "time"
			}
			status = c.green("hash") + c.gray(fmt.Sprintf(" (%s check %s)", check, r.Candidate.CheckString()))
		case extract.StatusSkipped:
			status = c.gray("skipped (" + r.Reason + ")")
		default:
			status = c.red(fmt.Sprintf("error (%v)", r.Err))
		}
		fmt.Fprintf(c.Out, "  %-32s %4s %#6x %8s %10d %s\n",
			truncate(e.Name, 32),
			legacy.Version(e.VersionNeeded),
			e.Flags,
			methodName(e.Method),
			e.CompressedSize,
			status)
	}

	fmt.Fprintln(c.Out)
	fmt.Fprintf(c.Out, "%d entries: %s hashes, %s skipped",
		len(a.Results),
		c.green(fmt.Sprintf("%d", a.Count(extract.StatusHash))),
		c.gray(fmt.Sprintf("%d", a.Count(extract.StatusSkipped))))
	if n := a.Count(extract.StatusFailed); n > 0 {
		fmt.Fprintf(c.Out, ", %s errors", c.red(fmt.Sprintf("%d", n)))
	}
	fmt.Fprintln(c.Out)
}

// Inspect prints the trailer summary and the trace of each candidate.
func (c *CLI) Inspect(args []string) {
	a, _, ok := c.openOne(args, "Usage: zip2hash inspect <archive>")
	if !ok {
		return
	}

	t := a.Trailer
	fmt.Fprintf(c.Out, "%s %s\n", c.cyan("=>"), a.Name)
	fmt.Fprintf(c.Out, "  Trailer:    %#x (comment %d bytes)\n", t.Offset, t.CommentLength)
	fmt.Fprintf(c.Out, "  Directory:  %#x, %d bytes, %d entries\n", t.DirectoryOffset, t.DirectorySize, t.TotalEntries)
	fmt.Fprintln(c.Out)

	for _, r := range a.Results {
		switch r.Status() {
		case extract.StatusHash:
			fmt.Fprintln(c.Out, r.Candidate.Trace(a.Name))
		case extract.StatusSkipped:
			fmt.Fprintln(c.Out, c.gray(fmt.Sprintf("%s/%s: skipped (%s)", a.Name, r.Entry.Name, r.Reason)))
		case extract.StatusFailed:
			fmt.Fprintln(c.Out, c.yellow(fmt.Sprintf("%s/%s: %v", a.Name, r.Entry.Name, r.Err)))
		}
	}
}

// Browse opens the interactive entry browser.
func (c *CLI) Browse(args []string) {
	a, _, ok := c.openOne(args, "Usage: zip2hash ui <archive>")
	if !ok {
		return
	}
	if err := c.uiSvc().Browse(a); err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
	}
}

// InitConfig creates the default config file.
func (c *CLI) InitConfig() {
	svc := c.configSvc()
	if err := svc.Save(svc.DefaultConfig()); err != nil {
		fmt.Fprintf(c.Err, "Error saving config: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "Created config at %s\n", svc.ConfigPath())
}

func methodName(m uint16) string {
	switch m {
	case 0:
		return "store"
	case 8:
		return "deflate"
	case 12:
		return "bzip2"
	case 14:
		return "lzma"
	case legacy.MethodAES:
		return "aes"
	}
	return fmt.Sprintf("%d", m)
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
