package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Record is one WFCatalog entry, keyed by file name.
type Record struct {
	FileName string
	Checksum string
	Created  time.Time // when the entry was ingested into the catalog
	Stream   time.Time // start of the daily stream the entry describes
}

// Network returns the network code encoded in the file name.
func (r Record) Network() string {
	net, _, _ := strings.Cut(r.FileName, ".")
	return net
}

// Index holds the catalog entries in scope for one reconciliation run.
// Workers remove matched entries concurrently during the walk, so every
// map access goes through the mutex. Whatever remains after the walk is
// the set of entries that should be removed from the catalog.
type Index struct {
	mu      sync.Mutex
	records map[string]Record
}

// BuildIndex filters records to the inclusive year window
// [Jan 1 startYear, Dec 31 endYear 23:59:59.999999] on the stream
// timestamp and drops records of excluded networks.
func BuildIndex(records []Record, startYear, endYear int, excluded map[string]struct{}) *Index {
	windowStart := time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(endYear, 12, 31, 23, 59, 59, 999999000, time.UTC)

	idx := &Index{records: make(map[string]Record, len(records))}
	for _, r := range records {
		if r.Stream.Before(windowStart) || r.Stream.After(windowEnd) {
			continue
		}
		if _, ok := excluded[r.Network()]; ok {
			continue
		}
		idx.records[r.FileName] = r
	}
	return idx
}

// Lookup returns the record for a file name if present.
func (idx *Index) Lookup(fileName string) (Record, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	r, ok := idx.records[fileName]
	return r, ok
}

// Remove deletes a record. Removing an absent key is a no-op.
func (idx *Index) Remove(fileName string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.records, fileName)
}

// Remaining returns the sorted file names still present. Only valid once
// every classification worker has been joined.
func (idx *Index) Remaining() []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	names := make([]string, 0, len(idx.records))
	for name := range idx.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of records currently held.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.records)
}
