package consistency

// Category tags one inconsistency class. The five walk-time categories are
// mutually exclusive for a file, except that a checksum mismatch and a
// stale catalog date may both fire for the same file. RemoveFromCatalog is
// derived from the catalog residue after the walk, never assigned directly.
type Category int

const (
	InconsistentMetadata Category = iota // orphaned: no epoch covers the file date
	InappropriateNaming                  // base name violates the naming convention
	MissingInCatalog                     // consistent with metadata but absent from the catalog
	InconsistentChecksum                 // catalog checksum differs from file content
	OlderDate                            // catalog entry predates the file's last modification
	RemoveFromCatalog                    // catalog entry never matched by any archive file
)

// Categories lists every category in persistence order.
var Categories = []Category{
	InconsistentMetadata,
	InappropriateNaming,
	MissingInCatalog,
	InconsistentChecksum,
	OlderDate,
	RemoveFromCatalog,
}

func (c Category) String() string {
	switch c {
	case InconsistentMetadata:
		return "inconsistent_metadata"
	case InappropriateNaming:
		return "inappropriate_naming"
	case MissingInCatalog:
		return "missing_in_wfcatalog"
	case InconsistentChecksum:
		return "inconsistent_checksum"
	case OlderDate:
		return "older_date"
	case RemoveFromCatalog:
		return "remove_from_wfcatalog"
	default:
		return "unknown"
	}
}
