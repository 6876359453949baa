package consistency

import (
	"sort"
	"sync"
)

// Aggregator is the concurrency-safe sink for classification outcomes.
// Category membership is deduplicated; all mutation goes through one
// mutex so concurrent workers never corrupt or lose updates.
type Aggregator struct {
	mu         sync.Mutex
	sets       map[Category]map[string]struct{}
	mismatches map[string]struct{}
	skipped    int
	visited    int
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	sets := make(map[Category]map[string]struct{}, len(Categories))
	for _, cat := range Categories {
		sets[cat] = make(map[string]struct{})
	}
	return &Aggregator{
		sets:       sets,
		mismatches: make(map[string]struct{}),
	}
}

// Record stores one file's classification outcome.
func (a *Aggregator) Record(fileName string, out Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visited++
	if out.Skipped {
		a.skipped++
	}
	for _, cat := range out.Categories {
		a.sets[cat][fileName] = struct{}{}
	}
	if out.NameMismatch {
		a.mismatches[fileName] = struct{}{}
	}
}

// SetResidual stores the catalog entries never matched during the walk.
// Must only be called after the walk barrier.
func (a *Aggregator) SetResidual(fileNames []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, name := range fileNames {
		a.sets[RemoveFromCatalog][name] = struct{}{}
	}
}

// Names returns the sorted file names collected for a category.
func (a *Aggregator) Names(cat Category) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.sets[cat]))
	for name := range a.sets[cat] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mismatches returns the sorted files whose name-derived network/station
// disagree with their directory path.
func (a *Aggregator) Mismatches() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.mismatches))
	for name := range a.mismatches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Visited returns how many files were classified, including skipped ones.
func (a *Aggregator) Visited() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visited
}

// SkippedFiles returns how many files were excluded from classification.
func (a *Aggregator) SkippedFiles() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.skipped
}
