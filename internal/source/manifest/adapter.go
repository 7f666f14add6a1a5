package manifest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/timmy/memerator/internal/source"
)

// ManifestItem represents one line of a JSON Lines template manifest.
// Field names follow the imgflip catalog so a saved catalog can be replayed offline.
type ManifestItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
}

// Adapter implements the Source interface for a local manifest file.
type Adapter struct {
	path string

	mu    sync.Mutex
	items []source.TemplateItem
}

// NewAdapter creates a new manifest adapter.
// Parameters:
//   - path: path to a .jsonl manifest.
// Returns:
//   - *Adapter: initialized manifest adapter.
func NewAdapter(path string) *Adapter {
	return &Adapter{path: path}
}

// GetSourceID returns the unique identifier for this source.
// Parameters: none.
// Returns:
//   - string: source identifier with "manifest:" prefix.
func (a *Adapter) GetSourceID() string {
	return "manifest:" + strings.TrimSuffix(filepath.Base(a.path), filepath.Ext(a.path))
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return fmt.Sprintf("Manifest (%s)", filepath.Base(a.path))
}

// FetchBatch fetches a batch of templates from the manifest.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.TemplateItem, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Each run re-reads the file so edits are picked up
	if cursor == "" || a.items == nil {
		if err := a.loadItems(); err != nil {
			return nil, "", fmt.Errorf("failed to load items: %w", err)
		}
	}

	return source.Page(a.items, cursor, limit)
}

// loadItems reads every well-formed line of the manifest
func (a *Adapter) loadItems() error {
	file, err := os.Open(a.path)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	seen := make(map[string]struct{})
	a.items = []source.TemplateItem{}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var item ManifestItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			// Skip malformed lines
			continue
		}
		if item.ID == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		a.items = append(a.items, source.TemplateItem{
			SourceID: item.ID,
			Name:     item.Name,
			URL:      item.URL,
			Width:    item.Width,
			Height:   item.Height,
			BoxCount: item.BoxCount,
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading manifest: %w", err)
	}

	sort.Slice(a.items, func(i, j int) bool {
		return a.items[i].SourceID < a.items[j].SourceID
	})

	return nil
}
