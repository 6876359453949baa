package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	internal "github.com/seisnode/wfcheck/wfcheck"
	"github.com/seisnode/wfcheck/wfcheck/metadata"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// FileJob carries everything a classification worker needs about one
// archive file. Network and Station come from the directory path, which
// drove the pruning and is authoritative over the file name fields.
type FileJob struct {
	Path    string
	Name    string
	Network string
	Station string
}

// Walker traverses the archiveRoot/year/network/station/channelDir/file
// hierarchy, prunes subtrees using the epoch index and dispatches file
// batches to a bounded worker pool. It performs no classification itself.
type Walker struct {
	root       string
	startYear  int
	endYear    int
	excluded   map[string]struct{}
	index      *metadata.Index
	maxWorkers int
}

// NewWalker creates a walker for one reconciliation run. The worker pool
// is sized once for the whole walk: CPU cores * 2 for I/O bound
// classification, bounded to keep resource use sane.
func NewWalker(root string, startYear, endYear int, excludedNetworks []string, index *metadata.Index) *Walker {
	excluded := make(map[string]struct{}, len(excludedNetworks))
	for _, n := range excludedNetworks {
		if n = strings.TrimSpace(n); n != "" {
			excluded[n] = struct{}{}
		}
	}
	return &Walker{
		root:       root,
		startYear:  startYear,
		endYear:    endYear,
		excluded:   excluded,
		index:      index,
		maxWorkers: min(max(runtime.NumCPU()*2, 4), 32),
	}
}

// Walk enumerates the archive sequentially and runs classify for every
// surviving file on a shared pool. It returns once every in-flight
// classification has completed; on context cancellation dispatch stops
// but running workers are still joined, so callers always observe a hard
// barrier. An unreadable subdirectory is logged and skipped; only an
// unreadable root aborts the walk.
func (w *Walker) Walk(ctx context.Context, classify func(FileJob)) error {
	ignored := w.loadIgnore()

	years, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("failed to read archive root %s: %w", w.root, err)
	}

	p := pool.New().WithMaxGoroutines(w.maxWorkers)
	networks := w.index.Networks()

	for _, yearEntry := range years {
		year, err := strconv.Atoi(yearEntry.Name())
		if !yearEntry.IsDir() || err != nil || year < w.startYear || year > w.endYear {
			continue
		}
		slog.Info("Searching archive year", "year", year)

		yearPath := filepath.Join(w.root, yearEntry.Name())
		for _, network := range w.readDir(yearPath) {
			if _, skip := w.excluded[network]; skip {
				continue
			}
			if _, present := networks[network]; !present {
				continue
			}

			netPath := filepath.Join(yearPath, network)
			for _, station := range w.readDir(netPath) {
				if !w.index.HasStation(network, station) {
					continue
				}

				staPath := filepath.Join(netPath, station)
				for _, channelDir := range w.readDir(staPath) {
					if !w.index.ChannelKnown(network, station, channelDir) {
						continue
					}

					if err := w.dispatchFiles(ctx, p, filepath.Join(staPath, channelDir), network, station, ignored, classify); err != nil {
						p.Wait()
						return err
					}
				}
			}
		}
	}

	p.Wait()
	return nil
}

// dispatchFiles submits every file of one channel directory to the pool.
func (w *Walker) dispatchFiles(ctx context.Context, p *pool.Pool, dir, network, station string, ignored *ignore.GitIgnore, classify func(FileJob)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("Skipping unreadable directory", "path", dir, "error", err)
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		path := filepath.Join(dir, entry.Name())
		if ignored != nil && ignored.MatchesPath(path) {
			slog.Debug("Ignoring file", "path", path)
			continue
		}

		job := FileJob{Path: path, Name: entry.Name(), Network: network, Station: station}
		p.Go(func() {
			classify(job)
		})
	}
	return nil
}

// readDir lists subdirectory names, logging and skipping unreadable
// directories instead of unwinding the walk.
func (w *Walker) readDir(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		slog.Warn("Skipping unreadable directory", "path", path, "error", err)
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// loadIgnore compiles the optional ignore file at the archive root.
func (w *Walker) loadIgnore() *ignore.GitIgnore {
	ignorePath := filepath.Join(w.root, internal.DefaultIgnoreFileName)
	if _, err := os.Stat(ignorePath); err != nil {
		return nil
	}
	ignored, err := ignore.CompileIgnoreFile(ignorePath)
	if err != nil {
		slog.Warn("Failed to compile archive ignore file", "path", ignorePath, "error", err)
		return nil
	}
	return ignored
}
