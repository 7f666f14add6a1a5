package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/repository"
	"github.com/timmy/memerator/internal/source/imgflip"
)

func newTemplateService(t *testing.T, src *fakeSource, cfg *TemplateConfig) (*TemplateService, *repository.TemplateRepository) {
	t.Helper()
	repo := repository.NewTemplateRepository(newTestDB(t))
	return NewTemplateService(repo, src, testLogger(), cfg), repo
}

func TestTemplateService_EnsureTemplatesFetchesOnce(t *testing.T) {
	src := &fakeSource{items: catalogItems()}
	svc, _ := newTemplateService(t, src, &TemplateConfig{BatchSize: 4})
	ctx := context.Background()

	templates, err := svc.EnsureTemplates(ctx)
	if err != nil {
		t.Fatalf("EnsureTemplates() error = %v", err)
	}
	if len(templates) != len(catalogItems()) {
		t.Fatalf("got %d templates, want %d", len(templates), len(catalogItems()))
	}

	if _, err := svc.EnsureTemplates(ctx); err != nil {
		t.Fatalf("second EnsureTemplates() error = %v", err)
	}
	if got := src.fetches.Load(); got != 1 {
		t.Errorf("catalog fetched %d times, want 1", got)
	}
}

func TestTemplateService_EnsureTemplatesConcurrentCallersShareFetch(t *testing.T) {
	src := &fakeSource{items: catalogItems(), gate: make(chan struct{})}
	svc, _ := newTemplateService(t, src, nil)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			templates, err := svc.EnsureTemplates(context.Background())
			if err == nil && len(templates) == 0 {
				err = errors.New("no templates returned")
			}
			errs <- err
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("EnsureTemplates() error = %v", err)
		}
	}
	if got := src.fetches.Load(); got != 1 {
		t.Errorf("catalog fetched %d times, want 1", got)
	}
}

func TestTemplateService_EnsureTemplatesSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("catalog down")}
	svc, _ := newTemplateService(t, src, nil)

	if _, err := svc.EnsureTemplates(context.Background()); err == nil {
		t.Fatal("EnsureTemplates() expected error")
	}
}

func TestTemplateService_Seed(t *testing.T) {
	src := &fakeSource{items: catalogItems()}
	svc, repo := newTemplateService(t, src, &TemplateConfig{BatchSize: 2})
	ctx := context.Background()

	result, err := svc.Seed(ctx, false)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if result.Fetched != 6 || result.Stored != 6 || result.Total != 6 {
		t.Errorf("first Seed() = %+v, want 6/6/6", result)
	}

	result, err = svc.Seed(ctx, false)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if result.Fetched != 0 || result.Total != 6 {
		t.Errorf("unforced Seed() on filled table = %+v", result)
	}
	if got := src.fetches.Load(); got != 1 {
		t.Errorf("catalog fetched %d times, want 1", got)
	}

	src.items[0].Name = "Renamed Upstream"
	result, err = svc.Seed(ctx, true)
	if err != nil {
		t.Fatalf("forced Seed() error = %v", err)
	}
	if result.Fetched != 6 || result.Stored != 0 || result.Total != 6 {
		t.Errorf("forced Seed() = %+v, want fetched 6 stored 0 total 6", result)
	}

	stored, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, tpl := range stored {
		if tpl.ID == "181913649" && tpl.Name != "Drake Hotline Bling" {
			t.Errorf("existing template changed to %q", tpl.Name)
		}
	}
}

func TestTemplateService_PickEligibleNeverReturnsLargeTemplates(t *testing.T) {
	svc := NewTemplateService(nil, nil, testLogger(), nil)

	templates := []domain.Template{
		{ID: "a", BoxCount: 2},
		{ID: "b", BoxCount: 3},
		{ID: "c", BoxCount: 1},
		{ID: "d", BoxCount: 4},
		{ID: "e", BoxCount: 5},
	}

	seen := map[string]int{}
	for i := 0; i < 2000; i++ {
		got, err := svc.PickEligible(templates)
		if err != nil {
			t.Fatalf("PickEligible() error = %v", err)
		}
		if got.BoxCount > domain.MaxEligibleBoxCount {
			t.Fatalf("PickEligible() returned template %s with box_count %d", got.ID, got.BoxCount)
		}
		seen[got.ID]++
	}
	if seen["a"] == 0 || seen["c"] == 0 {
		t.Errorf("expected both eligible templates to be drawn, got %v", seen)
	}
}

func TestTemplateService_PickEligible(t *testing.T) {
	last := func(n int) int { return n - 1 }

	tests := []struct {
		name      string
		templates []domain.Template
		wantID    string
		wantErr   error
	}{
		{
			name:      "picks among eligible only",
			templates: []domain.Template{{ID: "a", BoxCount: 1}, {ID: "b", BoxCount: 2}, {ID: "c", BoxCount: 3}},
			wantID:    "b",
		},
		{
			name:      "no eligible template",
			templates: []domain.Template{{ID: "c", BoxCount: 3}},
			wantErr:   ErrUpstream,
		},
		{
			name:    "empty list",
			wantErr: ErrUpstream,
		},
	}

	svc := NewTemplateService(nil, nil, testLogger(), &TemplateConfig{Pick: last})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.PickEligible(tt.templates)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("PickEligible() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("PickEligible() error = %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("PickEligible() = %s, want %s", got.ID, tt.wantID)
			}
		})
	}
}

func TestTemplateService_ForcedSeedPicksUpNewCatalogEntries(t *testing.T) {
	const drake = `{"id": "181913649", "name": "Drake Hotline Bling", "url": "https://i.imgflip.com/30b1gx.jpg", "width": 1200, "height": 1200, "box_count": 2}`
	const buttons = `{"id": "87743020", "name": "Two Buttons", "url": "https://i.imgflip.com/1g8my4.jpg", "width": 600, "height": 908, "box_count": 3}`

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		memes := drake
		if calls.Add(1) > 1 {
			memes = drake + "," + buttons
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success": true, "data": {"memes": [`+memes+`]}}`)
	}))
	defer srv.Close()

	repo := repository.NewTemplateRepository(newTestDB(t))
	svc := NewTemplateService(repo, imgflip.NewAdapter(srv.URL, 5*time.Second), testLogger(), nil)
	ctx := context.Background()

	templates, err := svc.EnsureTemplates(ctx)
	if err != nil {
		t.Fatalf("EnsureTemplates() error = %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("EnsureTemplates() returned %d templates, want 1", len(templates))
	}

	result, err := svc.Seed(ctx, true)
	if err != nil {
		t.Fatalf("forced Seed() error = %v", err)
	}
	if result.Fetched != 2 || result.Stored != 1 || result.Total != 2 {
		t.Errorf("forced Seed() = %+v, want fetched 2 stored 1 total 2", result)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("catalog requested %d times, want 2", got)
	}
}

func TestTemplateService_LogFallsBackToServiceLogger(t *testing.T) {
	var serviceOut, requestOut bytes.Buffer
	serviceLog := logger.New(&logger.Config{Level: "info", Format: "json", Output: &serviceOut})
	requestLog := logger.New(&logger.Config{Level: "info", Format: "json", Output: &requestOut})

	tests := []struct {
		name string
		svc  *TemplateService
		ctx  context.Context
		want *bytes.Buffer
	}{
		{"context logger wins", NewTemplateService(nil, nil, serviceLog, nil), requestLog.WithContext(context.Background()), &requestOut},
		{"service logger without context logger", NewTemplateService(nil, nil, serviceLog, nil), context.Background(), &serviceOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceOut.Reset()
			requestOut.Reset()
			tt.svc.log(tt.ctx).Info("marker")
			if !strings.Contains(tt.want.String(), "marker") {
				t.Errorf("log line not written to the expected logger: service=%q request=%q", serviceOut.String(), requestOut.String())
			}
		})
	}

	if got := NewTemplateService(nil, nil, nil, nil).log(context.Background()); got != logger.Default() {
		t.Error("service without a logger should use the process default")
	}
}
