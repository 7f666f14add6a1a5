package imgflip

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memerator/internal/source"
)

const (
	SourceID   = "imgflip"
	SourceName = "Imgflip"

	getMemesPath = "/get_memes"
)

type getMemesResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message"`
	Data         struct {
		Memes []catalogMeme `json:"memes"`
	} `json:"data"`
}

type catalogMeme struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
}

// Adapter implements the Source interface for the public imgflip catalog.
// A run starting at the empty cursor fetches the catalog; later cursors page
// through that snapshot.
type Adapter struct {
	client *resty.Client

	mu    sync.Mutex
	items []source.TemplateItem
}

// NewAdapter creates a new imgflip catalog adapter.
// Parameters:
//   - baseURL: imgflip API root, e.g. https://api.imgflip.com.
//   - timeout: HTTP timeout for the catalog request.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(baseURL string, timeout time.Duration) *Adapter {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Adapter{client: client}
}

// GetSourceID returns the unique identifier for this source
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// GetDisplayName returns a human-readable name for this source
func (a *Adapter) GetDisplayName() string {
	return SourceName
}

// FetchBatch fetches a batch of templates
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.TemplateItem, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cursor == "" || a.items == nil {
		items, err := a.fetchCatalog(ctx)
		if err != nil {
			return nil, "", err
		}
		a.items = items
	}

	return source.Page(a.items, cursor, limit)
}

func (a *Adapter) fetchCatalog(ctx context.Context) ([]source.TemplateItem, error) {
	var result getMemesResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(getMemesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template catalog: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("template catalog returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if !result.Success {
		return nil, fmt.Errorf("template catalog request failed: %s", result.ErrorMessage)
	}

	items := make([]source.TemplateItem, 0, len(result.Data.Memes))
	for _, m := range result.Data.Memes {
		if m.ID == "" {
			continue
		}
		items = append(items, source.TemplateItem{
			SourceID: m.ID,
			Name:     m.Name,
			URL:      m.URL,
			Width:    m.Width,
			Height:   m.Height,
			BoxCount: m.BoxCount,
		})
	}
	return items, nil
}
