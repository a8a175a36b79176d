package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"dirql/internal/loader"
	"dirql/internal/table"
)

// defaultWorkers bounds the batch-load worker pool.
const defaultWorkers = 4

// loadResult is one worker's outcome for one file. Workers never touch the
// registry; they hand results back over a channel and the controller is
// the sole applier.
type loadResult struct {
	index int
	path  string
	tbl   *table.Table
	err   error
}

// LoadFiles loads the given files on a worker pool and applies the results
// to the registry one at a time, in input order, so collision suffixes come
// out the same no matter which worker finishes first. Per-file failures are
// reported to the session output and counted, not fatal. Context
// cancellation stops the batch: results not yet applied are discarded and
// ErrInterrupted is returned, while tables applied before the interrupt
// stay registered.
//
// The returned count is the number of tables applied.
func (s *Session) LoadFiles(ctx context.Context, paths []string, force bool) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	if ctx.Err() != nil {
		return 0, ErrInterrupted
	}

	results := s.startWorkers(ctx, paths)

	applied := 0
	failed := 0
	pending := make(map[int]loadResult)
	next := 0
	for res := range results {
		if ctx.Err() != nil {
			// Drain so the workers can exit, discarding their results.
			for range results {
			}
			fmt.Fprintf(s.out, "load interrupted: %d of %d files applied\n", applied, len(paths))
			return applied, ErrInterrupted
		}
		pending[res.index] = res
		for {
			buffered, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if s.applyResult(ctx, buffered, force) {
				applied++
			} else {
				failed++
			}
		}
	}

	// Cancellation can also close the channel before another result is
	// received; the batch still counts as interrupted.
	if ctx.Err() != nil {
		fmt.Fprintf(s.out, "load interrupted: %d of %d files applied\n", applied, len(paths))
		return applied, ErrInterrupted
	}

	if failed > 0 {
		s.log.WithFields(logrus.Fields{"applied": applied, "failed": failed}).
			Debug("batch load finished with failures")
	}
	return applied, nil
}

// applyResult commits one worker result to the registry, reporting the
// outcome on the session output. Returns true when a table was applied.
func (s *Session) applyResult(ctx context.Context, res loadResult, force bool) bool {
	if res.err != nil {
		fmt.Fprintf(s.out, "error: %v\n", res.err)
		return false
	}
	name, err := s.register(ctx, res.tbl, force)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	fmt.Fprintf(s.out, "loaded %s (%d rows) from %s\n", name, len(res.tbl.Rows()), res.path)
	return true
}

// startWorkers fans the paths out over the pool and returns the result
// channel, closed when all workers are done.
func (s *Session) startWorkers(ctx context.Context, paths []string) <-chan loadResult {
	workers := s.workers
	if workers > len(paths) {
		workers = len(paths)
	}

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)
	results := make(chan loadResult)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				tbl, err := loader.Load(ctx, j.path, s.log)
				select {
				case results <- loadResult{index: j.index, path: j.path, tbl: tbl, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			select {
			case jobs <- job{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// register applies one loaded table to the engine and the registry as a
// single unit: the registry is only updated after engine registration
// succeeded, so a failure leaves both exactly as they were.
//
// Naming rules, in order:
//   - a table already loaded from the same source path is replaced in
//     place, keeping its registered name;
//   - a name collision with a table from a different source appends a
//     numeric suffix, unless force requests replace-in-place;
//   - a collision with engine state the session does not track (a table
//     the user created via SQL) is rejected as ErrNameCollision.
func (s *Session) register(ctx context.Context, tbl *table.Table, force bool) (string, error) {
	// With force set the table is dropped and recreated unconditionally,
	// which also covers tables created via SQL that the registry never saw.
	name := tbl.Name()
	replace := force

	if existing := s.findBySource(tbl.SourcePath()); existing != "" {
		name = existing
		replace = true
	} else if _, collides := s.registry[name]; collides && !force {
		name = table.DisambiguateName(name, func(candidate string) bool {
			_, taken := s.registry[candidate]
			return taken
		})
	}

	if name != tbl.Name() {
		tbl = tbl.Rename(name)
	}

	if err := s.engine.Register(ctx, tbl, replace); err != nil {
		if !replace && strings.Contains(err.Error(), "already exists") {
			return "", fmt.Errorf("%w: %s (created outside .load; use .load! to replace)", ErrNameCollision, name)
		}
		return "", err
	}
	s.registry[name] = tbl
	return name, nil
}

// findBySource returns the registered name of the table loaded from path,
// or empty. Re-loading a source replaces its table even when the original
// registration was suffix-disambiguated.
func (s *Session) findBySource(path string) string {
	for name, tbl := range s.registry {
		if tbl.SourcePath() == path {
			return name
		}
	}
	return ""
}

// Interrupted reports whether err is the batch-interrupt sentinel.
func Interrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}
