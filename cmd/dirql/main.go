// Command dirql is an interactive shell that points at a directory tree of
// structured data files (CSV, TSV, TOML, YAML, XLSX, Parquet) and queries
// them as relational tables with SQL.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dirql/internal/engine"
	"dirql/internal/loader"
	"dirql/internal/pathx"
	"dirql/internal/render"
	"dirql/internal/session"
)

// Exit codes, distinguishing the failure classes a caller can act on.
const (
	exitOK        = 0
	exitFatal     = 1
	exitNoMatches = 2
	exitParse     = 3
	exitQuery     = 4
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		query       string
		modeFlag    string
		historyFile string
		verbose     bool
	)

	rootCmd := &cobra.Command{
		Use:   "dirql [path|glob ...]",
		Short: "Query directories of structured data files with SQL",
		Long: `dirql loads CSV, TSV, TOML, YAML, XLSX, and Parquet files (and
compressed variants) as SQL tables and runs queries against them, either
interactively or one-shot with --query.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(args, query, modeFlag, historyFile, verbose)
		},
	}

	rootCmd.Flags().StringVarP(&query, "query", "q", "", "run one SQL statement and exit")
	rootCmd.Flags().StringVarP(&modeFlag, "mode", "m", "table", "output mode: table or tree")
	rootCmd.Flags().StringVar(&historyFile, "history", "", "history file location override")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", exit.err)
			}
			return exit.code
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitFatal
	}
	return exitOK
}

// runShell wires the engine and session together, preloads any path
// arguments, then either runs one statement or enters the REPL.
func runShell(patterns []string, query, modeFlag, historyFile string, verbose bool) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	mode, ok := render.ParseMode(modeFlag)
	if !ok {
		return &exitError{code: exitFatal, err: fmt.Errorf("unknown mode %q (table or tree)", modeFlag)}
	}

	ctx := context.Background()
	eng, err := engine.New(ctx)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	defer func() {
		_ = eng.Close()
	}()

	sess, err := session.New(eng,
		session.WithMode(mode),
		session.WithLogger(log),
	)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}

	nonInteractive := query != ""
	if err := preload(ctx, sess, patterns, nonInteractive); err != nil {
		return err
	}

	if nonInteractive {
		if err := sess.Dispatch(ctx, query); err != nil {
			return &exitError{code: exitQuery, err: err}
		}
		return nil
	}

	return repl(sess, historyFile, log)
}

// preload resolves and loads the command-line path arguments. In
// non-interactive mode an empty match set and an all-failed batch map to
// distinct exit codes; interactively they are only reported.
func preload(ctx context.Context, sess *session.Session, patterns []string, nonInteractive bool) error {
	if len(patterns) == 0 {
		return nil
	}

	resolver := &pathx.Resolver{BaseDir: sess.WorkingDir(), Supported: loader.IsSupported}
	paths, err := resolver.Resolve(patterns...)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	if len(paths) == 0 {
		err := fmt.Errorf("no files matched: %s", strings.Join(patterns, " "))
		if nonInteractive {
			return &exitError{code: exitNoMatches, err: err}
		}
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}

	loadCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	applied, err := sess.LoadFiles(loadCtx, paths, false)
	if err != nil && !session.Interrupted(err) {
		return &exitError{code: exitFatal, err: err}
	}
	if nonInteractive && applied == 0 {
		return &exitError{code: exitParse, err: errors.New("no files could be loaded")}
	}
	return nil
}

// repl runs the interactive loop: read a line, dispatch it to completion,
// repeat. Ctrl-C cancels an in-flight command (or clears the line), Ctrl-D
// or .quit exits.
func repl(sess *session.Session, historyFile string, log *logrus.Logger) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dirql> ",
		HistoryFile:     resolveHistoryFile(historyFile, log),
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return &exitError{code: exitFatal, err: fmt.Errorf("initialize input: %w", err)}
	}
	defer func() {
		_ = rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &exitError{code: exitFatal, err: fmt.Errorf("read input: %w", err)}
		}

		dispatchCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = sess.Dispatch(dispatchCtx, line)
		stop()

		if errors.Is(err, session.ErrExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// resolveHistoryFile picks the history location: the override flag, or
// the user config directory. An unusable location disables persistent
// history rather than failing the session.
func resolveHistoryFile(override string, log *logrus.Logger) string {
	if override != "" {
		return override
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.WithError(err).Debug("no user config directory; history not persisted")
		return ""
	}
	dir := filepath.Join(configDir, "dirql")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.WithError(err).Debug("cannot create history directory; history not persisted")
		return ""
	}
	return filepath.Join(dir, "history")
}

// completer offers the meta-commands and common SQL keywords.
func completer() *readline.PrefixCompleter {
	words := []string{
		".load", ".load!", ".tables", ".tree", ".mode", ".export",
		".history", ".cd", ".help", ".quit",
		"select", "from", "where", "group", "order", "by", "limit",
		"join", "left", "inner", "on", "as", "distinct", "count",
	}
	items := make([]readline.PrefixCompleterInterface, 0, len(words))
	for _, w := range words {
		items = append(items, readline.PcItem(w))
	}
	return readline.NewPrefixCompleter(items...)
}
