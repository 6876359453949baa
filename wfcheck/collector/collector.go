// Package collector invokes the external WFCatalog collector process to
// insert or update catalog entries for files selected by a reconciliation
// run. The engine itself never mutates the catalog; everything here acts
// on the persisted results of a previous check.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/seisnode/wfcheck/wfcheck/config"
)

// baseOptions are always passed to the collector script.
var baseOptions = []string{"--flags", "--csegs"}

// Collector wraps the WFCatalog collector script and its virtualenv.
type Collector struct {
	python    string
	script    string
	config    string
	batchSize int
}

// New creates a collector from configuration.
func New(cfg config.CollectorConfig) *Collector {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 500
	}
	return &Collector{
		python:    cfg.Python,
		script:    cfg.Script,
		config:    cfg.Config,
		batchSize: batch,
	}
}

// AddMissing runs the collector with an explicit file list, in batches so
// the command line never exceeds the shell argument size limit.
func (c *Collector) AddMissing(ctx context.Context, fileNames []string) error {
	for i, batch := range chunk(fileNames, c.batchSize) {
		payload, err := json.Marshal(batch)
		if err != nil {
			return fmt.Errorf("failed to encode batch %d: %w", i+1, err)
		}

		slog.Info("Execute WFCatalog collector for batch", "batch", i+1, "files", len(batch))
		args := append(append([]string{c.script}, baseOptions...), "--list", string(payload))
		if err := c.run(ctx, args); err != nil {
			return fmt.Errorf("collector failed on batch %d: %w", i+1, err)
		}
	}
	return nil
}

// UpdateEntries whitelists the given files in the collector config, runs a
// forced update over the archive directory and restores the previous
// whitelist afterwards, also on interrupt.
func (c *Collector) UpdateEntries(ctx context.Context, fileNames []string, archiveDir string) error {
	restore, err := patchWhitelist(c.config, fileNames)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("Undo changes to collector config", "path", c.config)
		if err := restore(); err != nil {
			slog.Error("Failed to restore collector config", "path", c.config, "error", err)
		}
	}()

	slog.Info("Execute WFCatalog collector", "files", len(fileNames), "dir", archiveDir)
	args := append(append([]string{c.script}, baseOptions...), "--update", "--force", "--dir", archiveDir)
	return c.run(ctx, args)
}

func (c *Collector) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.python, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("collector process failed: %w", err)
	}
	return nil
}

// chunk splits names into slices of at most size elements.
func chunk(names []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		batches = append(batches, names[start:end])
	}
	return batches
}

// patchWhitelist replaces FILTERS.WHITE in the collector config.json with
// fileNames and returns a function restoring the previous value. The rest
// of the document is preserved as-is.
func patchWhitelist(configPath string, fileNames []string) (restore func() error, err error) {
	doc, err := readConfig(configPath)
	if err != nil {
		return nil, err
	}

	filters, ok := doc["FILTERS"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("collector config %s has no FILTERS section", configPath)
	}
	previous := filters["WHITE"]

	filters["WHITE"] = fileNames
	if err := writeConfig(configPath, doc); err != nil {
		return nil, err
	}

	return func() error {
		doc, err := readConfig(configPath)
		if err != nil {
			return err
		}
		filters, ok := doc["FILTERS"].(map[string]any)
		if !ok {
			return fmt.Errorf("collector config %s has no FILTERS section", configPath)
		}
		filters["WHITE"] = previous
		return writeConfig(configPath, doc)
	}, nil
}

func readConfig(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collector config %s: %w", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse collector config %s: %w", path, err)
	}
	return doc, nil
}

func writeConfig(path string, doc map[string]any) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collector config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write collector config %s: %w", path, err)
	}
	return nil
}
