package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/timmy/memerator/internal/config"
	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/repository"
	"github.com/timmy/memerator/internal/source"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
}

func createUser(t *testing.T, db *gorm.DB, username string, credits int, admin bool) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "unused",
		Credits:      credits,
		IsAdmin:      admin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// fakeSource serves a fixed catalog and counts fetches.
type fakeSource struct {
	items   []source.TemplateItem
	err     error
	fetches atomic.Int32
	gate    chan struct{} // when set, FetchBatch blocks until closed
}

func (f *fakeSource) GetSourceID() string    { return "fake" }
func (f *fakeSource) GetDisplayName() string { return "Fake" }

func (f *fakeSource) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.TemplateItem, string, error) {
	if cursor == "" {
		f.fetches.Add(1)
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, "", f.err
	}
	return source.Page(f.items, cursor, limit)
}

func catalogItems() []source.TemplateItem {
	return []source.TemplateItem{
		{SourceID: "181913649", Name: "Drake Hotline Bling", URL: "https://i.imgflip.com/30b1gx.jpg", BoxCount: 2},
		{SourceID: "87743020", Name: "Two Buttons", URL: "https://i.imgflip.com/1g8my4.jpg", BoxCount: 3},
		{SourceID: "112126428", Name: "Distracted Boyfriend", URL: "https://i.imgflip.com/1ur9b0.jpg", BoxCount: 3},
		{SourceID: "61579", Name: "One Does Not Simply", URL: "https://i.imgflip.com/1bij.jpg", BoxCount: 2},
		{SourceID: "4087833", Name: "Waiting Skeleton", URL: "https://i.imgflip.com/2fm6x.jpg", BoxCount: 1},
		{SourceID: "129242436", Name: "Change My Mind", URL: "https://i.imgflip.com/24y43o.jpg", BoxCount: 5},
	}
}

// fakeCaptions returns fixed captions and records requests.
type fakeCaptions struct {
	mu       sync.Mutex
	captions Captions
	err      error
	requests []CaptionRequest
}

func (f *fakeCaptions) Generate(ctx context.Context, req CaptionRequest) (*Captions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	c := f.captions
	return &c, nil
}

func (f *fakeCaptions) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakeRenderer returns a fixed URL and records requests.
type fakeRenderer struct {
	mu       sync.Mutex
	url      string
	err      error
	requests []RenderRequest
}

func (f *fakeRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func (f *fakeRenderer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// memoryStorage is an in-memory ObjectStorage.
type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   int
	uploadErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) EnsureBucket(ctx context.Context) error { return nil }

func (m *memoryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.uploads++
	return nil
}

func (m *memoryStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStorage) GetURL(key string) string {
	return "https://archive.example.com/" + key
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}
