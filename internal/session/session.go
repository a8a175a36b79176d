// Package session implements the interactive state machine: it owns the
// table registry, the working directory, the output mode, and the history,
// and dispatches each input line as a meta-command or a SQL statement.
package session

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"dirql/internal/engine"
	"dirql/internal/loader"
	"dirql/internal/pathx"
	"dirql/internal/render"
	"dirql/internal/table"
)

var (
	// ErrExit signals a clean quit request; it is not a failure.
	ErrExit = errors.New("exit requested")

	// ErrNoMatches is returned when a load pattern matched no files.
	ErrNoMatches = errors.New("no files matched")

	// ErrNameCollision is returned when the engine already holds a table
	// under the derived name that the session does not track, e.g. one the
	// user created with CREATE TABLE.
	ErrNameCollision = errors.New("table name collision")

	// ErrInterrupted is returned when a batch load is cancelled; tables
	// applied before the interrupt stay registered.
	ErrInterrupted = errors.New("load interrupted")

	// ErrNoResult is returned by .export when no query has produced a
	// result yet.
	ErrNoResult = errors.New("no result to export")
)

// Session is the only mutable shared state of the program. All mutation
// happens on the dispatch path, one command at a time, so no locking is
// needed on the registry.
type Session struct {
	wd         string
	engine     *engine.Engine
	registry   map[string]*table.Table
	mode       render.Mode
	history    []string
	lastResult *table.QueryResult
	out        io.Writer
	log        *logrus.Logger
	workers    int
}

// Option configures a session at construction time.
type Option func(*Session)

// WithMode sets the initial output mode.
func WithMode(mode render.Mode) Option {
	return func(s *Session) { s.mode = mode }
}

// WithOutput redirects rendered output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// WithLogger sets the debug logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithWorkers sets the batch-load worker pool size.
func WithWorkers(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a session bound to an engine. The working directory starts as
// the process working directory.
func New(eng *engine.Engine, opts ...Option) (*Session, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	s := &Session{
		wd:       wd,
		engine:   eng,
		registry: make(map[string]*table.Table),
		out:      os.Stdout,
		log:      logrus.New(),
		workers:  defaultWorkers,
	}
	s.log.SetLevel(logrus.WarnLevel)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Mode returns the current output mode.
func (s *Session) Mode() render.Mode {
	return s.mode
}

// WorkingDir returns the session working directory.
func (s *Session) WorkingDir() string {
	return s.wd
}

// TableNames returns the registered table names in sorted order.
func (s *Session) TableNames() []string {
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns a registered table by name.
func (s *Session) Table(name string) (*table.Table, bool) {
	tbl, ok := s.registry[name]
	return tbl, ok
}

// History returns the accepted input lines in order.
func (s *Session) History() []string {
	return s.history
}

// Dispatch classifies and executes one input line to completion. Blank
// lines are ignored; every other line is appended to the history first,
// including lines that subsequently fail. A returned error never leaves
// committed registry state altered.
func (s *Session) Dispatch(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	s.history = append(s.history, line)

	cmd, err := classify(line)
	if err != nil {
		return err
	}

	switch cmd.kind {
	case cmdSQL:
		return s.runSQL(ctx, cmd.sql)
	case cmdLoad:
		return s.runLoad(ctx, cmd.args, cmd.force)
	case cmdTables:
		return s.runTables()
	case cmdTree:
		return s.runTree(cmd.args)
	case cmdMode:
		return s.runMode(cmd.args)
	case cmdExport:
		return s.runExport(cmd.args)
	case cmdHistory:
		return s.runHistory()
	case cmdCD:
		return s.runCD(cmd.args)
	case cmdHelp:
		fmt.Fprintln(s.out, helpText)
		return nil
	case cmdQuit:
		return ErrExit
	default:
		// classify returns only the kinds above.
		return fmt.Errorf("unhandled command kind %d", cmd.kind)
	}
}

// runSQL forwards a statement to the engine and renders the result.
func (s *Session) runSQL(ctx context.Context, query string) error {
	res, err := s.engine.Query(ctx, query)
	if err != nil {
		return err
	}
	s.lastResult = res
	fmt.Fprint(s.out, render.Result(res, s.mode))
	return nil
}

// runLoad resolves the patterns and loads every matched file. Per-file
// failures are reported individually and do not abort the batch.
func (s *Session) runLoad(ctx context.Context, patterns []string, force bool) error {
	if len(patterns) == 0 {
		return errors.New("usage: .load <glob ...>")
	}
	resolver := &pathx.Resolver{BaseDir: s.wd, Supported: loader.IsSupported}
	paths, err := resolver.Resolve(patterns...)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: %s", ErrNoMatches, strings.Join(patterns, " "))
	}
	_, err = s.LoadFiles(ctx, paths, force)
	return err
}

// runTables lists the registry as a result set in the current mode.
func (s *Session) runTables() error {
	res := &table.QueryResult{
		Columns: []string{"name", "columns", "rows", "source"},
		Types: []table.ColumnType{
			table.TypeText, table.TypeInteger, table.TypeInteger, table.TypeText,
		},
	}
	for _, name := range s.TableNames() {
		tbl := s.registry[name]
		res.Rows = append(res.Rows, table.NewRow(
			name,
			fmt.Sprintf("%d", len(tbl.Columns())),
			fmt.Sprintf("%d", len(tbl.Rows())),
			tbl.SourcePath(),
		))
	}
	fmt.Fprint(s.out, render.Result(res, s.mode))
	return nil
}

// runTree shows a table schema or a directory as a tree. Without an
// argument it shows the working directory. A name matching a registered
// table wins over a directory of the same name.
func (s *Session) runTree(args []string) error {
	target := s.wd
	if len(args) > 0 {
		target = args[0]
	}

	if tbl, ok := s.registry[target]; ok {
		fmt.Fprint(s.out, render.Tree(render.TableTree(tbl)))
		return nil
	}

	dir, err := pathx.ExpandHome(target)
	if err != nil {
		return err
	}
	dir = s.resolvePath(dir)
	node, err := render.DirTree(dir)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, render.Tree(node))
	return nil
}

// runMode shows or switches the output mode.
func (s *Session) runMode(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(s.out, s.mode.String())
		return nil
	}
	mode, ok := render.ParseMode(args[0])
	if !ok {
		return fmt.Errorf("unknown mode %q (table or tree)", args[0])
	}
	s.mode = mode
	return nil
}

// runExport writes the last query result as CSV, to stdout or to a file.
// NULL cells export as empty fields; CSV has no richer encoding for them.
func (s *Session) runExport(args []string) error {
	if s.lastResult == nil {
		return ErrNoResult
	}

	out := s.out
	if len(args) > 0 {
		f, err := os.Create(s.resolvePath(args[0]))
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write(s.lastResult.Columns); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	record := make([]string, len(s.lastResult.Columns))
	for _, row := range s.lastResult.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) && !row[i].Null {
				record[i] = row[i].Text
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// runHistory prints the accepted input lines, numbered from 1.
func (s *Session) runHistory() error {
	for i, line := range s.history {
		fmt.Fprintf(s.out, "%4d  %s\n", i+1, line)
	}
	return nil
}

// runCD shows or changes the session working directory.
func (s *Session) runCD(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(s.out, s.wd)
		return nil
	}
	dir, err := pathx.ExpandHome(args[0])
	if err != nil {
		return err
	}
	dir = s.resolvePath(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("change directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("change directory: %s is not a directory", dir)
	}
	s.wd = dir
	return nil
}

// resolvePath anchors a possibly-relative path at the session working
// directory.
func (s *Session) resolvePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return s.wd
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.wd, path)
}
