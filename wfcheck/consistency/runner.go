package consistency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seisnode/wfcheck/wfcheck/archive"
	"github.com/seisnode/wfcheck/wfcheck/catalog"
	"github.com/seisnode/wfcheck/wfcheck/metadata"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"
)

// EpochSource provides the flat epoch list for one run.
type EpochSource interface {
	FetchEpochs(ctx context.Context) ([]metadata.Epoch, error)
}

// RecordSource provides the catalog records in scope for one run.
type RecordSource interface {
	FetchRecords(ctx context.Context, startYear, endYear int, excluded []string) ([]catalog.Record, error)
}

// Options configures one reconciliation run.
type Options struct {
	ArchiveRoot      string
	StartYear        int
	EndYear          int
	ExcludedNetworks []string
	VerifyChecksums  bool
}

// Report is the categorized result of one completed run. Partial is set
// when the run was interrupted: a partial report must never be presented
// as "zero inconsistencies found".
type Report struct {
	RunID      uuid.UUID
	StartYear  int
	EndYear    int
	StartedAt  time.Time
	FinishedAt time.Time
	Partial    bool

	Categories map[Category][]string
	Mismatches []string
	Visited    int
	Skipped    int
}

// Total returns the number of classified inconsistencies across all
// categories.
func (r *Report) Total() int {
	total := 0
	for _, names := range r.Categories {
		total += len(names)
	}
	return total
}

// Runner wires the indices, walker, classifier and aggregator into one
// reconciliation run. Both indices are built fully before the walk starts;
// upstream fetch failures abort the run with no report.
type Runner struct {
	opts    Options
	epochs  EpochSource
	records RecordSource
	assert  *assert.AssertHandler
}

// NewRunner creates a runner over the given sources.
func NewRunner(opts Options, epochs EpochSource, records RecordSource) *Runner {
	return &Runner{
		opts:    opts,
		epochs:  epochs,
		records: records,
		assert:  assert.NewAssertHandler(),
	}
}

// Run executes one reconciliation: fetch and index metadata and catalog,
// walk the archive with concurrent classification, then derive the
// residual catalog set behind the walk barrier.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	startedAt := time.Now()

	slog.Info("Reading metadata from FDSN station service")
	epochs, err := r.epochs.FetchEpochs(ctx)
	if err != nil {
		return nil, fmt.Errorf("metadata fetch failed: %w", err)
	}
	if len(epochs) == 0 {
		// An empty epoch set would prune the whole archive and flag every
		// catalog entry in scope for removal.
		return nil, errors.New("FDSN station service returned no channel epochs")
	}
	epochIndex := metadata.BuildIndex(epochs)

	slog.Info("Reading files from WFCatalog database")
	records, err := r.records.FetchRecords(ctx, r.opts.StartYear, r.opts.EndYear, r.opts.ExcludedNetworks)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch failed: %w", err)
	}
	excluded := make(map[string]struct{}, len(r.opts.ExcludedNetworks))
	for _, n := range r.opts.ExcludedNetworks {
		excluded[n] = struct{}{}
	}
	catalogIndex := catalog.BuildIndex(records, r.opts.StartYear, r.opts.EndYear, excluded)

	classifier := &Classifier{
		Epochs:          epochIndex,
		Catalog:         catalogIndex,
		VerifyChecksums: r.opts.VerifyChecksums,
	}
	aggregator := NewAggregator()

	slog.Info("Start searching archive",
		"root", r.opts.ArchiveRoot,
		"start", r.opts.StartYear,
		"end", r.opts.EndYear,
		"checksums", r.opts.VerifyChecksums)

	walker := archive.NewWalker(r.opts.ArchiveRoot, r.opts.StartYear, r.opts.EndYear, r.opts.ExcludedNetworks, epochIndex)
	walkErr := walker.Walk(ctx, func(job archive.FileJob) {
		aggregator.Record(job.Name, classifier.Classify(job))
	})

	partial := false
	switch {
	case walkErr == nil:
	case errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded):
		// In-flight classifications were joined inside Walk; the report is
		// complete for everything visited so far.
		slog.Warn("Walk interrupted, producing partial result", "error", walkErr)
		partial = true
	default:
		return nil, walkErr
	}

	// Walk has joined every worker; the catalog residue is stable now.
	residual := catalogIndex.Remaining()
	aggregator.SetResidual(residual)

	// A file classified missing was absent from the catalog index, so its
	// name can never survive in the residue. An overlap means a matched
	// entry was not removed and the residue is corrupt.
	missing := make(map[string]struct{})
	for _, name := range aggregator.Names(MissingInCatalog) {
		missing[name] = struct{}{}
	}
	disjoint := true
	for _, name := range residual {
		if _, ok := missing[name]; ok {
			disjoint = false
			break
		}
	}
	r.assert.Assert(ctx, disjoint, "catalog residue overlaps the missing set")

	report := &Report{
		RunID:      uuid.New(),
		StartYear:  r.opts.StartYear,
		EndYear:    r.opts.EndYear,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Partial:    partial,
		Categories: make(map[Category][]string, len(Categories)),
		Mismatches: aggregator.Mismatches(),
		Visited:    aggregator.Visited(),
		Skipped:    aggregator.SkippedFiles(),
	}
	for _, cat := range Categories {
		report.Categories[cat] = aggregator.Names(cat)
	}

	slog.Info("Reconciliation finished",
		"run_id", report.RunID,
		"visited", report.Visited,
		"inconsistencies", report.Total(),
		"partial", report.Partial)

	return report, nil
}
