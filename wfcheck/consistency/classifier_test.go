package consistency

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seisnode/wfcheck/wfcheck/archive"
	"github.com/seisnode/wfcheck/wfcheck/catalog"
	"github.com/seisnode/wfcheck/wfcheck/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileMtime = time.Date(2016, 2, 1, 12, 0, 0, 0, time.UTC)

func epochIndex() *metadata.Index {
	return metadata.BuildIndex([]metadata.Epoch{
		{Network: "HL", Station: "ATH", Location: "00", Channel: "HHZ",
			Start: time.Date(2010, 3, 2, 0, 0, 0, 0, time.UTC), Open: true},
		{Network: "HL", Station: "ATH", Location: "00", Channel: "HHN",
			Start: time.Date(2010, 3, 2, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC)},
	})
}

func catalogIndex(records ...catalog.Record) *catalog.Index {
	return catalog.BuildIndex(records, 2010, 2020, nil)
}

func catalogRecord(name, checksum string, created time.Time) catalog.Record {
	return catalog.Record{
		FileName: name,
		Checksum: checksum,
		Created:  created,
		Stream:   time.Date(2015, 4, 10, 0, 0, 0, 0, time.UTC),
	}
}

// archiveJob writes a real file so the classifier can stat and hash it.
func archiveJob(t *testing.T, name string) archive.FileJob {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("miniseed"), 0o644))
	require.NoError(t, os.Chtimes(path, fileMtime, fileMtime))
	return archive.FileJob{Path: path, Name: name, Network: "HL", Station: "ATH"}
}

func TestClassifyConsistentFile(t *testing.T) {
	name := "HL.ATH.00.HHZ.D.2015.100"
	sum, job := fileChecksum(t, name)
	cat := catalogIndex(catalogRecord(name, sum, fileMtime.Add(time.Hour)))
	cls := &Classifier{Epochs: epochIndex(), Catalog: cat, VerifyChecksums: true}

	out := cls.Classify(job)

	assert.Empty(t, out.Categories)
	assert.False(t, out.Skipped)
	assert.False(t, out.NameMismatch)
	assert.Empty(t, cat.Remaining(), "matched entry must leave the catalog index")
}

func TestClassifyInappropriateNaming(t *testing.T) {
	job := archiveJob(t, "HL.ATH.00.HHZ.D.2015.ABC")
	cls := &Classifier{Epochs: epochIndex(), Catalog: catalogIndex()}

	out := cls.Classify(job)

	assert.Equal(t, []Category{InappropriateNaming}, out.Categories)
}

func TestClassifyUnknownChannelIsSilentlyExcluded(t *testing.T) {
	job := archiveJob(t, "HL.ATH.00.BHZ.D.2015.100")
	cat := catalogIndex()
	cls := &Classifier{Epochs: epochIndex(), Catalog: cat}

	out := cls.Classify(job)

	assert.Empty(t, out.Categories)
	assert.True(t, out.Skipped)
}

func TestClassifyOrphanedFile(t *testing.T) {
	// HHN epochs end in 2014; a 2015 file has no covering epoch.
	name := "HL.ATH.00.HHN.D.2015.100"
	job := archiveJob(t, name)
	cat := catalogIndex(catalogRecord(name, "whatever", fileMtime.Add(time.Hour)))
	cls := &Classifier{Epochs: epochIndex(), Catalog: cat}

	out := cls.Classify(job)

	assert.Equal(t, []Category{InconsistentMetadata}, out.Categories)
	assert.Equal(t, []string{name}, cat.Remaining(), "orphaned files never match catalog entries")
}

func TestClassifyEpochBoundaries(t *testing.T) {
	cls := &Classifier{Epochs: epochIndex(), Catalog: catalogIndex()}

	// 2014.365 = Dec 31 2014, the inclusive end of the HHN epoch.
	out := cls.Classify(archiveJob(t, "HL.ATH.00.HHN.D.2014.365"))
	assert.Equal(t, []Category{MissingInCatalog}, out.Categories, "date on epoch end must match")

	// One day later is outside.
	out = cls.Classify(archiveJob(t, "HL.ATH.00.HHN.D.2015.001"))
	assert.Equal(t, []Category{InconsistentMetadata}, out.Categories)

	// Epoch start day itself. 2010.061 = Mar 2 2010.
	out = cls.Classify(archiveJob(t, "HL.ATH.00.HHZ.D.2010.061"))
	assert.Equal(t, []Category{MissingInCatalog}, out.Categories, "date on epoch start must match")

	out = cls.Classify(archiveJob(t, "HL.ATH.00.HHZ.D.2010.060"))
	assert.Equal(t, []Category{InconsistentMetadata}, out.Categories)
}

func TestClassifyMissingInCatalog(t *testing.T) {
	job := archiveJob(t, "HL.ATH.00.HHZ.D.2015.100")
	cls := &Classifier{Epochs: epochIndex(), Catalog: catalogIndex()}

	out := cls.Classify(job)

	assert.Equal(t, []Category{MissingInCatalog}, out.Categories)
}

func TestClassifyOlderDate(t *testing.T) {
	// Epoch HL.ATH.00.HHZ is open since 2010-03-02; the catalog entry was
	// created before the file was last modified.
	name := "HL.ATH.00.HHZ.D.2015.100"
	sum, job := fileChecksum(t, name)
	cat := catalogIndex(catalogRecord(name, sum, fileMtime.Add(-time.Hour)))
	cls := &Classifier{Epochs: epochIndex(), Catalog: cat, VerifyChecksums: true}

	out := cls.Classify(job)

	assert.Equal(t, []Category{OlderDate}, out.Categories)
	assert.Empty(t, cat.Remaining(), "stale entries are still accounted for")
}

func TestClassifyChecksumMismatchAndOlderDateBothFire(t *testing.T) {
	name := "HL.ATH.00.HHZ.D.2015.100"
	job := archiveJob(t, name)
	cat := catalogIndex(catalogRecord(name, "0000000000000000000000000000dead", fileMtime.Add(-time.Hour)))
	cls := &Classifier{Epochs: epochIndex(), Catalog: cat, VerifyChecksums: true}

	out := cls.Classify(job)

	assert.ElementsMatch(t, []Category{InconsistentChecksum, OlderDate}, out.Categories)
	assert.Empty(t, cat.Remaining())
}

func TestClassifyChecksumDisabled(t *testing.T) {
	name := "HL.ATH.00.HHZ.D.2015.100"
	job := archiveJob(t, name)
	cat := catalogIndex(catalogRecord(name, "0000000000000000000000000000dead", fileMtime.Add(time.Hour)))
	cls := &Classifier{Epochs: epochIndex(), Catalog: cat, VerifyChecksums: false}

	out := cls.Classify(job)

	assert.Empty(t, out.Categories, "checksum comparison only runs when enabled")
}

func TestClassifyChecksumUnavailableIsNonMatching(t *testing.T) {
	name := "HL.ATH.00.HHZ.D.2015.100"
	job := archiveJob(t, name)
	cat := catalogIndex(catalogRecord(name, "whatever", fileMtime.Add(time.Hour)))
	cls := &Classifier{
		Epochs: epochIndex(), Catalog: cat, VerifyChecksums: true,
		Hash: func(string) (string, error) { return "", errors.New("read failed") },
	}

	out := cls.Classify(job)

	assert.Equal(t, []Category{InconsistentChecksum}, out.Categories)
}

func TestClassifyUnreadableFileIsExcluded(t *testing.T) {
	name := "HL.ATH.00.HHZ.D.2015.100"
	cat := catalogIndex(catalogRecord(name, "whatever", fileMtime))
	cls := &Classifier{Epochs: epochIndex(), Catalog: cat}

	job := archive.FileJob{
		Path:    filepath.Join(t.TempDir(), name), // never written
		Name:    name,
		Network: "HL",
		Station: "ATH",
	}
	out := cls.Classify(job)

	assert.True(t, out.Skipped)
	assert.Empty(t, out.Categories)
}

func TestClassifyNameMismatchDiagnostic(t *testing.T) {
	// Directory says HL/ATH, file name claims network GE. The path is
	// authoritative for the epoch lookup; the disagreement is reported.
	name := "GE.ATH.00.HHZ.D.2015.100"
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("miniseed"), 0o644))
	job := archive.FileJob{Path: path, Name: name, Network: "HL", Station: "ATH"}

	cls := &Classifier{Epochs: epochIndex(), Catalog: catalogIndex()}
	out := cls.Classify(job)

	assert.True(t, out.NameMismatch)
	assert.Equal(t, []Category{MissingInCatalog}, out.Categories)
}

func TestClassifyIsIdempotentOverStaticIndices(t *testing.T) {
	job := archiveJob(t, "HL.ATH.00.HHN.D.2015.100")
	cls := &Classifier{Epochs: epochIndex(), Catalog: catalogIndex()}

	first := cls.Classify(job)
	second := cls.Classify(job)

	assert.Equal(t, first, second)
}

// fileChecksum creates the archive file and returns its real digest, so
// matching-checksum scenarios do not hardcode hashes.
func fileChecksum(t *testing.T, name string) (string, archive.FileJob) {
	t.Helper()
	job := archiveJob(t, name)
	sum, err := archive.MD5Sum(job.Path)
	require.NoError(t, err)
	return sum, job
}
