package metadata

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// stationQuery is the FDSN station service query for channel-level epochs
// in pipe-delimited text format.
const stationQuery = "https://%s/fdsnws/station/1/query?level=channel&format=text&nodata=404"

// Client fetches channel epochs from an FDSN station service.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client for the given FDSN endpoint host.
func NewClient(endpoint string) *Client {
	return &Client{
		url:  fmt.Sprintf(stationQuery, endpoint),
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

// NewClientURL creates a client for a fully formed query URL. Used by tests
// and non-standard deployments.
func NewClientURL(url string) *Client {
	return &Client{url: url, http: &http.Client{Timeout: 5 * time.Minute}}
}

// FetchEpochs retrieves all channel epochs from the station service.
// Any transport or format failure is returned as an error; the caller must
// never substitute an empty index for a failed fetch.
func (c *Client) FetchEpochs(ctx context.Context) ([]Epoch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build FDSN request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FDSN station service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FDSN station service returned status %d", resp.StatusCode)
	}

	epochs, err := ParseEpochs(resp.Body)
	if err != nil {
		return nil, err
	}

	slog.Info("Fetched metadata from FDSN station service", "epochs", len(epochs))
	return epochs, nil
}

// ParseEpochs parses FDSN station text output. Each non-header line is
// pipe-delimited; the epoch start and end are the last two fields and an
// empty end marks a still-open epoch. A malformed line is an input-format
// error and aborts the whole parse.
func ParseEpochs(r io.Reader) ([]Epoch, error) {
	var epochs []Epoch

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 6 {
			return nil, fmt.Errorf("malformed metadata record on line %d: %q", lineNo, line)
		}

		start, err := parseEpochDate(parts[len(parts)-2])
		if err != nil {
			return nil, fmt.Errorf("malformed epoch start on line %d: %w", lineNo, err)
		}

		e := Epoch{
			Network:  parts[0],
			Station:  parts[1],
			Location: parts[2],
			Channel:  parts[3],
			Start:    start,
		}

		if rawEnd := strings.TrimSpace(parts[len(parts)-1]); rawEnd == "" {
			e.Open = true
		} else {
			end, err := parseEpochDate(rawEnd)
			if err != nil {
				return nil, fmt.Errorf("malformed epoch end on line %d: %w", lineNo, err)
			}
			e.End = end
		}

		epochs = append(epochs, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata records: %w", err)
	}

	return epochs, nil
}

// parseEpochDate parses an ISO-8601-like timestamp at date precision,
// which is sufficient for containment checks against day files.
func parseEpochDate(s string) (time.Time, error) {
	datePart, _, _ := strings.Cut(strings.TrimSpace(s), "T")
	return time.Parse("2006-01-02", datePart)
}
