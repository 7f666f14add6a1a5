package source

import (
	"context"
	"fmt"
	"strconv"
)

// TemplateItem represents a meme template from a catalog source.
type TemplateItem struct {
	SourceID string // Catalog identifier, reused as the template primary key
	Name     string
	URL      string // Blank template image URL
	Width    int
	Height   int
	BoxCount int // Number of caption boxes the template expects
}

// Source defines the interface for template catalogs.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly source name.
	GetDisplayName() string

	// FetchBatch fetches a batch of templates starting from the given cursor.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - cursor: pagination cursor or empty for first page.
	//   - limit: maximum number of items to fetch.
	// Returns:
	//   - items: batch of templates.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, cursor string, limit int) (items []TemplateItem, nextCursor string, err error)
}

// Page slices an already loaded item list using an index cursor.
// Parameters:
//   - items: full item list.
//   - cursor: start index encoded as a string, or empty for the first page.
//   - limit: maximum page size; non-positive returns the rest of the list.
// Returns:
//   - []TemplateItem: the requested page.
//   - string: next cursor or empty when exhausted.
//   - error: non-nil if the cursor is malformed.
func Page(items []TemplateItem, cursor string, limit int) ([]TemplateItem, string, error) {
	startIndex := 0
	if cursor != "" {
		var err error
		startIndex, err = strconv.Atoi(cursor)
		if err != nil || startIndex < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
	}

	if startIndex >= len(items) {
		return []TemplateItem{}, "", nil
	}

	endIndex := len(items)
	if limit > 0 && startIndex+limit < endIndex {
		endIndex = startIndex + limit
	}

	nextCursor := ""
	if endIndex < len(items) {
		nextCursor = strconv.Itoa(endIndex)
	}

	return items[startIndex:endIndex], nextCursor, nil
}
