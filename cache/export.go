package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/uutislabs/kieli"
)

// ExportFormat is the JSON envelope for cache export and import. It
// exists so a cache can be moved between store backends, or inspected
// offline, without reaching into the store's layout.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Entries    []Entry           `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

const exportVersion = "1.0"

// Exporter dumps a cache manager's entries.
type Exporter struct {
	manager *Manager
}

// NewExporter creates an exporter over manager's entries.
func NewExporter(manager *Manager) *Exporter {
	return &Exporter{manager: manager}
}

// Export writes every readable cache entry to w. Undecodable documents
// are skipped; export is a read-only snapshot, never a repair pass.
func (e *Exporter) Export(ctx context.Context, w io.Writer, metadata map[string]string) error {
	paths, err := e.manager.store.List(ctx, e.manager.prefix)
	if err != nil {
		return fmt.Errorf("listing cache entries: %w", err)
	}

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		if !strings.HasSuffix(path, ".json") {
			continue
		}

		data, _, err := e.manager.store.Get(ctx, path)
		if err != nil {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	export := ExportFormat{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	return nil
}

// ExportToFile exports the cache to a file.
func (e *Exporter) ExportToFile(ctx context.Context, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return e.Export(ctx, f, metadata)
}

// Importer loads exported entries into a cache manager.
type Importer struct {
	manager *Manager
}

// NewImporter creates an importer writing into manager.
func NewImporter(manager *Manager) *Importer {
	return &Importer{manager: manager}
}

// ImportResult contains statistics about an import.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads an export envelope from r and writes its entries into
// the cache, preserving their recorded timestamps and fingerprints.
// Entries missing a cache key are counted as failed and skipped.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		if entry.ArticleID == "" || entry.SourceLang == "" || entry.TargetLang == "" {
			result.Failed++
			continue
		}

		key := kieli.Key{ArticleID: entry.ArticleID, SourceLang: entry.SourceLang, TargetLang: entry.TargetLang}

		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			result.Failed++
			continue
		}
		if err := i.manager.store.Put(ctx, i.manager.path(key), data); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
func (i *Importer) ImportFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}
