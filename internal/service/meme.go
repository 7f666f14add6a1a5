package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/repository"
	"gorm.io/gorm"
)

// MaxTopics is the largest number of topics accepted for one meme.
const MaxTopics = 3

// MemeService creates, edits and reads memes.
type MemeService struct {
	memeRepo  *repository.MemeRepository
	templates *TemplateService
	captions  CaptionGenerator
	renderer  ImageRenderer
	archiver  *ImageArchiver
	logger    *logger.Logger
}

// NewMemeService creates a new meme service.
// Parameters:
//   - memeRepo: meme repository.
//   - templates: template catalog service.
//   - captions: caption generator.
//   - renderer: image renderer.
//   - archiver: optional image archiver; nil disables archiving.
//   - log: fallback logger.
// Returns:
//   - *MemeService: initialized service.
func NewMemeService(
	memeRepo *repository.MemeRepository,
	templates *TemplateService,
	captions CaptionGenerator,
	renderer ImageRenderer,
	archiver *ImageArchiver,
	log *logger.Logger,
) *MemeService {
	return &MemeService{
		memeRepo:  memeRepo,
		templates: templates,
		captions:  captions,
		renderer:  renderer,
		archiver:  archiver,
		logger:    log,
	}
}

func (s *MemeService) log(ctx context.Context) *logger.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	if s.logger != nil {
		return s.logger
	}
	return logger.Default()
}

// CreateMeme generates and stores a meme for the caller.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - caller: authenticated user or nil.
//   - topics: one to three topics; blank entries are ignored.
//   - audience: intended audience.
// Returns:
//   - *domain.Meme: the stored meme with its template.
//   - error: ErrUnauthorized, ErrForbidden, ErrBadRequest, ErrUpstream or an internal error.
func (s *MemeService) CreateMeme(ctx context.Context, caller *domain.User, topics []string, audience string) (*domain.Meme, error) {
	if caller == nil {
		return nil, newError(ErrUnauthorized, msgNotLoggedIn)
	}
	if caller.Credits <= 0 && !caller.IsAdmin {
		return nil, newError(ErrForbidden, msgNoCredits)
	}

	topics = normalizeTopics(topics)
	audience = strings.TrimSpace(audience)
	if len(topics) == 0 || audience == "" {
		return nil, newError(ErrBadRequest, msgMissingInput)
	}
	if len(topics) > MaxTopics {
		return nil, newError(ErrBadRequest, msgTooManyTopics)
	}

	start := time.Now()
	ctx = logger.SetUserID(ctx, caller.ID)

	templates, err := s.templates.EnsureTemplates(ctx)
	if err != nil {
		return nil, err
	}
	template, err := s.templates.PickEligible(templates)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithField(ctx, logger.FieldTemplateID, template.ID)

	flattened := domain.FlattenTopics(topics)
	captions, err := s.captions.Generate(ctx, CaptionRequest{
		Topics:       flattened,
		Audience:     audience,
		TemplateName: template.Name,
	})
	if err != nil {
		return nil, err
	}

	url, err := s.renderer.Render(ctx, RenderRequest{
		TemplateID: template.ID,
		Text0:      captions.Text0,
		Text1:      captions.Text1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render meme: %w", err)
	}

	meme := &domain.Meme{
		ID:         uuid.New().String(),
		Text0:      captions.Text0,
		Text1:      captions.Text1,
		Topics:     flattened,
		Audience:   audience,
		URL:        url,
		UserID:     caller.ID,
		TemplateID: template.ID,
	}
	ctx = logger.SetMemeID(ctx, meme.ID)

	archived := s.archive(ctx, meme)

	if err := s.memeRepo.Create(ctx, meme); err != nil {
		s.discard(ctx, archived)
		return nil, fmt.Errorf("failed to save meme: %w", err)
	}
	meme.Template = template

	logger.With(logger.Fields{
		"topics":   len(topics),
		"archived": archived != nil,
	}).WithDuration(time.Since(start).Milliseconds()).Info(ctx, "Meme created")

	return meme, nil
}

// EditMeme re-renders a meme with new captions.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - caller: authenticated user or nil.
//   - id: meme ID.
//   - text0: new top caption.
//   - text1: new bottom caption.
// Returns:
//   - *domain.Meme: the updated meme with its template.
//   - error: ErrUnauthorized, ErrNotFound, ErrForbidden or an internal error.
func (s *MemeService) EditMeme(ctx context.Context, caller *domain.User, id, text0, text1 string) (*domain.Meme, error) {
	if caller == nil {
		return nil, newError(ErrUnauthorized, msgNotLoggedIn)
	}

	meme, err := s.getMeme(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanEdit(meme) {
		return nil, newError(ErrForbidden, msgNotCreator)
	}

	ctx = logger.SetMemeID(logger.SetUserID(ctx, caller.ID), meme.ID)

	url, err := s.renderer.Render(ctx, RenderRequest{
		TemplateID: meme.TemplateID,
		Text0:      text0,
		Text1:      text1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render meme: %w", err)
	}

	meme.Text0 = text0
	meme.Text1 = text1
	meme.URL = url
	meme.StorageKey = ""
	meme.ArchiveURL = ""
	archived := s.archive(ctx, meme)

	if err := s.memeRepo.UpdateRender(ctx, meme); err != nil {
		s.discard(ctx, archived)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, msgMemeNotFound)
		}
		return nil, fmt.Errorf("failed to update meme: %w", err)
	}

	s.log(ctx).Info("Meme captions updated")
	return meme, nil
}

// GetAllMemes returns every meme, newest first. No login is required.
func (s *MemeService) GetAllMemes(ctx context.Context) ([]domain.Meme, error) {
	memes, err := s.memeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memes: %w", err)
	}
	return memes, nil
}

// GetMeme returns one meme to a logged-in caller.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - caller: authenticated user or nil.
//   - id: meme ID.
// Returns:
//   - *domain.Meme: the meme with its template.
//   - error: ErrUnauthorized or ErrNotFound.
func (s *MemeService) GetMeme(ctx context.Context, caller *domain.User, id string) (*domain.Meme, error) {
	if caller == nil {
		return nil, newError(ErrUnauthorized, msgNotLoggedIn)
	}
	return s.getMeme(ctx, id)
}

// OpenArchivedImage opens the archived copy of a meme image.
// The returned object is nil when the meme has no archived copy; callers fall back to meme.URL.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - caller: authenticated user or nil.
//   - id: meme ID.
// Returns:
//   - *ArchivedObject: open object or nil; callers close Body.
//   - *domain.Meme: the meme.
//   - error: ErrUnauthorized, ErrNotFound or a storage error.
func (s *MemeService) OpenArchivedImage(ctx context.Context, caller *domain.User, id string) (*ArchivedObject, *domain.Meme, error) {
	meme, err := s.GetMeme(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}
	if s.archiver == nil || meme.StorageKey == "" {
		return nil, meme, nil
	}
	obj, err := s.archiver.Open(ctx, meme.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archived image: %w", err)
	}
	return obj, meme, nil
}

func (s *MemeService) getMeme(ctx context.Context, id string) (*domain.Meme, error) {
	meme, err := s.memeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, msgMemeNotFound)
		}
		return nil, fmt.Errorf("failed to load meme: %w", err)
	}
	return meme, nil
}

// archive copies the rendered image into storage when enabled and records it on the meme.
// Failures are logged and leave the meme without an archive.
func (s *MemeService) archive(ctx context.Context, meme *domain.Meme) *ArchivedImage {
	if s.archiver == nil {
		return nil
	}
	archived, err := s.archiver.Archive(ctx, meme.URL)
	if err != nil {
		s.log(ctx).WithError(err).Warn("Failed to archive rendered meme")
		return nil
	}
	meme.StorageKey = archived.Key
	meme.ArchiveURL = archived.URL
	s.log(ctx).WithFields(logger.Fields{
		"storage_key":    archived.Key,
		"format":         archived.Format,
		"width":          archived.Width,
		"height":         archived.Height,
		logger.FieldSize: archived.Size,
		"uploaded":       archived.Uploaded,
	}).Debug("Archived rendered meme")
	return archived
}

func (s *MemeService) discard(ctx context.Context, archived *ArchivedImage) {
	if archived == nil || !archived.Uploaded {
		return
	}
	if err := s.archiver.Discard(ctx, archived.Key); err != nil {
		s.log(ctx).WithError(err).WithField("storage_key", archived.Key).Warn("Failed to remove orphaned archive object")
	}
}

// normalizeTopics trims topics and drops empty ones.
func normalizeTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
