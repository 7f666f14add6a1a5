package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/repository"
	"github.com/timmy/memerator/internal/source"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTemplateBatchSize = 100
	ensureTemplatesKey       = "templates"
)

// TemplateService keeps the local template table filled and picks templates for generation.
type TemplateService struct {
	repo      *repository.TemplateRepository
	source    source.Source
	group     singleflight.Group
	pick      func(n int) int
	batchSize int
	logger    *logger.Logger
}

// TemplateConfig holds configuration for the template service.
type TemplateConfig struct {
	BatchSize int
	// Pick returns an index in [0, n). Defaults to a uniform random choice.
	Pick func(n int) int
}

// SeedResult reports what a seeding run did.
type SeedResult struct {
	Fetched int   `json:"fetched"`
	Stored  int64 `json:"stored"`
	Total   int64 `json:"total"`
}

// NewTemplateService creates a new template service.
// Parameters:
//   - repo: template repository.
//   - src: catalog the templates are fetched from.
//   - log: fallback logger.
//   - cfg: optional batch size and pick function; nil uses defaults.
// Returns:
//   - *TemplateService: initialized service.
func NewTemplateService(repo *repository.TemplateRepository, src source.Source, log *logger.Logger, cfg *TemplateConfig) *TemplateService {
	s := &TemplateService{
		repo:      repo,
		source:    src,
		pick:      rand.IntN,
		batchSize: defaultTemplateBatchSize,
		logger:    log,
	}
	if cfg != nil {
		if cfg.BatchSize > 0 {
			s.batchSize = cfg.BatchSize
		}
		if cfg.Pick != nil {
			s.pick = cfg.Pick
		}
	}
	return s
}

// log returns the request logger, then the service logger, then the process default.
func (s *TemplateService) log(ctx context.Context) *logger.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	if s.logger != nil {
		return s.logger
	}
	return logger.Default()
}

// EnsureTemplates returns the stored templates, fetching the catalog first when the table is empty.
// Concurrent callers share one fetch.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Template: stored templates.
//   - error: non-nil if reading or seeding fails.
func (s *TemplateService) EnsureTemplates(ctx context.Context) ([]domain.Template, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	if len(templates) > 0 {
		return templates, nil
	}

	v, err, shared := s.group.Do(ensureTemplatesKey, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if _, err := s.fetchAndStore(fetchCtx); err != nil {
			return nil, err
		}
		return s.repo.List(fetchCtx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log(ctx).Debug("Template bootstrap shared with a concurrent request")
	}
	return v.([]domain.Template), nil
}

// Seed fills the template table from the catalog.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - force: fetch and upsert even when templates already exist.
// Returns:
//   - *SeedResult: fetched, newly stored and total counts.
//   - error: non-nil if fetching or storing fails.
func (s *TemplateService) Seed(ctx context.Context, force bool) (*SeedResult, error) {
	if !force {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count templates: %w", err)
		}
		if count > 0 {
			s.log(ctx).WithField(logger.FieldCount, count).Info("Templates already seeded, skipping fetch")
			return &SeedResult{Total: count}, nil
		}
	}

	result, err := s.fetchAndStore(ctx)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}
	result.Total = total
	return result, nil
}

// fetchAndStore pages through the source and upserts every batch.
func (s *TemplateService) fetchAndStore(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}
	cursor := ""

	for {
		items, next, err := s.source.FetchBatch(ctx, cursor, s.batchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch templates from %s: %w", s.source.GetSourceID(), err)
		}

		templates := make([]domain.Template, 0, len(items))
		for _, item := range items {
			templates = append(templates, domain.Template{
				ID:       item.SourceID,
				Name:     item.Name,
				URL:      item.URL,
				Width:    item.Width,
				Height:   item.Height,
				BoxCount: item.BoxCount,
			})
		}

		stored, err := s.repo.UpsertAll(ctx, templates)
		if err != nil {
			return nil, fmt.Errorf("failed to store templates: %w", err)
		}
		result.Fetched += len(items)
		result.Stored += stored

		if next == "" {
			break
		}
		cursor = next
	}

	s.log(ctx).WithFields(logger.Fields{
		"source":  s.source.GetSourceID(),
		"fetched": result.Fetched,
		"stored":  result.Stored,
	}).Info("Templates fetched from catalog")

	return result, nil
}

// PickEligible chooses one template that can carry two captions.
// Parameters:
//   - templates: candidates.
// Returns:
//   - *domain.Template: the chosen template.
//   - error: ErrUpstream when no template is eligible.
func (s *TemplateService) PickEligible(templates []domain.Template) (*domain.Template, error) {
	eligible := make([]domain.Template, 0, len(templates))
	for i := range templates {
		if templates[i].IsEligible() {
			eligible = append(eligible, templates[i])
		}
	}
	if len(eligible) == 0 {
		return nil, newError(ErrUpstream, msgNoTemplates)
	}
	chosen := eligible[s.pick(len(eligible))]
	return &chosen, nil
}
