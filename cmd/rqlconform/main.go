package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/rqlconform/rqlconform"
	"github.com/rqlconform/rqlconform/client"
	"github.com/rqlconform/rqlconform/corpus"
	"github.com/rqlconform/rqlconform/driver"
	"github.com/rqlconform/rqlconform/report"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

// RunCmd represents the run command
type RunCmd struct {
	ServerPort int      `arg:"" help:"Port of the server under test"`
	AltPort    int      `arg:"" optional:"" help:"Port of an alternate server implementation (accepted for rig parity, not used)"`
	Corpus     []string `help:"Corpus files to run, in order" short:"c" type:"existingfile"`
	Host       string   `help:"Server host (overrides config)"`
}

// Run executes the run command: connect once, run every corpus entry
// sequentially, print a summary.
func (cmd *RunCmd) Run(ctx *Context) error {
	config, err := rqlconform.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	host := config.Host
	if cmd.Host != "" {
		host = cmd.Host
	}

	files := cmd.Corpus

	if len(files) == 0 && config.CorpusDir != "" {
		files, err = collectCorpusFiles(config.CorpusDir)
		if err != nil {
			return err
		}
	}

	if ctx.Verbose {
		fmt.Printf("Connecting to server on %s:%d\n", host, cmd.ServerPort)
		fmt.Println()
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), config.Connect.Timeout)
	defer cancel()

	conn, err := client.Connect(dialCtx, host, cmd.ServerPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	session := driver.NewSession(conn, report.New(os.Stdout))

	for _, file := range files {
		entries, err := corpus.Load(file)
		if err != nil {
			return err
		}

		if ctx.Verbose {
			fmt.Printf("Running %s (%d entries)\n", file, len(entries))
		}

		// A failed define is fatal: later tests assume its binding.
		if err := session.RunEntries(context.Background(), entries); err != nil {
			return err
		}
	}

	printSummary(session, ctx.Quiet)

	if session.Failures() > 0 {
		os.Exit(1)
	}

	return nil
}

func collectCorpusFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan corpus directory: %w", err)
	}

	sort.Strings(matches)

	return matches, nil
}

func printSummary(session *driver.Session, quiet bool) {
	if quiet && session.Failures() == 0 {
		return
	}

	passed := session.Total() - session.Failures()

	if session.Failures() > 0 {
		color.Red("%d tests, %d passed, %d failed", session.Total(), passed, session.Failures())
	} else {
		color.Green("%d tests, all passed", session.Total())
	}
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("rqlconform v0.1.0")
	return nil
}

// CLI represents the command-line interface
var CLI struct {
	Config  string     `help:"Configuration file path" default:"rqlconform.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress output for passing runs" short:"q"`
	Run     RunCmd     `cmd:"" default:"withargs" help:"Run conformance tests against a server"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
