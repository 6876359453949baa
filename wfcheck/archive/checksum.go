package archive

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// checksumBlockSize bounds memory use while hashing regardless of file size.
const checksumBlockSize = 64 * 1024

// MD5Sum computes the streaming MD5 digest of a file, matching the
// checksum format stored in the WFCatalog.
func MD5Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for checksum: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, checksumBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("failed to read %s for checksum: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
