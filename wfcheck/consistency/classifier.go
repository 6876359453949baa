package consistency

import (
	"log/slog"
	"os"

	"github.com/seisnode/wfcheck/wfcheck/archive"
	"github.com/seisnode/wfcheck/wfcheck/catalog"
	"github.com/seisnode/wfcheck/wfcheck/metadata"
)

// Outcome is the classification of a single archive file. A file with no
// categories and Skipped=false matched an epoch and its catalog entry and
// was removed from the catalog index; Skipped=true means the file was
// deliberately excluded because no metadata exists to judge it, or an I/O
// error prevented a complete classification.
type Outcome struct {
	Categories   []Category
	NameMismatch bool // filename net/sta differ from the directory path
	Skipped      bool
}

// Classifier decides the category of one archive file from the two
// pre-built indices. It is safe for concurrent use: the epoch index is
// read-only and the catalog index locks internally.
type Classifier struct {
	Epochs          *metadata.Index
	Catalog         *catalog.Index
	VerifyChecksums bool

	// Hash computes a file's content digest. Defaults to archive.MD5Sum;
	// swappable in tests.
	Hash func(path string) (string, error)
}

// Classify runs the per-file decision tree. The epoch lookup is scoped by
// the directory-derived network and station in the job, not the fields
// parsed from the file name; a disagreement between the two is reported as
// a NameMismatch diagnostic instead of silently picking one.
func (c *Classifier) Classify(job archive.FileJob) Outcome {
	parsed, err := archive.ParseName(job.Name)
	if err != nil {
		return Outcome{Categories: []Category{InappropriateNaming}}
	}

	mismatch := parsed.Network != job.Network || parsed.Station != job.Station

	epochs, ok := c.Epochs.Lookup(job.Network, job.Station, parsed.Location, parsed.Channel)
	if !ok {
		// No metadata exists for this location/channel under the station:
		// the file is excluded from every category.
		return Outcome{NameMismatch: mismatch, Skipped: true}
	}

	matched := false
	for _, epoch := range epochs {
		if epoch.Contains(parsed.Date) {
			matched = true
			break
		}
	}
	if !matched {
		return Outcome{Categories: []Category{InconsistentMetadata}, NameMismatch: mismatch}
	}

	record, ok := c.Catalog.Lookup(job.Name)
	if !ok {
		return Outcome{Categories: []Category{MissingInCatalog}, NameMismatch: mismatch}
	}

	info, err := os.Stat(job.Path)
	if err != nil {
		slog.Warn("Skipping file with unreadable status", "path", job.Path, "error", err)
		return Outcome{NameMismatch: mismatch, Skipped: true}
	}

	var categories []Category
	if c.VerifyChecksums {
		sum, err := c.hash(job.Path)
		if err != nil {
			// Hash unavailable counts as non-matching.
			slog.Warn("Checksum unavailable", "path", job.Path, "error", err)
			categories = append(categories, InconsistentChecksum)
		} else if sum != record.Checksum {
			categories = append(categories, InconsistentChecksum)
		}
	}

	if record.Created.Before(info.ModTime()) {
		categories = append(categories, OlderDate)
	}

	// The file is accounted for either way; only never-matched entries may
	// remain in the catalog index after the walk.
	c.Catalog.Remove(job.Name)

	return Outcome{Categories: categories, NameMismatch: mismatch}
}

func (c *Classifier) hash(path string) (string, error) {
	if c.Hash != nil {
		return c.Hash(path)
	}
	return archive.MD5Sum(path)
}
