package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/storage"
	_ "golang.org/x/image/webp"
)

const archiveKeyPrefix = "memes"

// maxArchiveBytes caps a rendered image download.
const maxArchiveBytes = 10 << 20

// ArchivedImage describes a rendered meme copied into object storage.
type ArchivedImage struct {
	Key         string
	URL         string
	Format      string
	ContentType string
	Width       int
	Height      int
	Size        int
	Uploaded    bool // false when the object was already stored
}

// ArchivedObject is an open archived image.
type ArchivedObject struct {
	Body        io.ReadCloser
	ContentType string
}

// ImageArchiver mirrors rendered meme images into object storage.
type ImageArchiver struct {
	storage storage.ObjectStorage
	client  *resty.Client
}

// NewImageArchiver creates a new archiver.
// Parameters:
//   - objectStorage: destination bucket.
//   - timeout: download timeout for rendered images.
// Returns:
//   - *ImageArchiver: initialized archiver.
func NewImageArchiver(objectStorage storage.ObjectStorage, timeout time.Duration) *ImageArchiver {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetResponseBodyLimit(maxArchiveBytes)

	return &ImageArchiver{
		storage: objectStorage,
		client:  client,
	}
}

// Archive downloads the image at url and stores it under a content-addressed key.
// Images already present in the bucket are not uploaded again.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - url: rendered image URL.
// Returns:
//   - *ArchivedImage: storage key, public URL and image metadata.
//   - error: non-nil if download, decoding or upload fails.
func (a *ImageArchiver) Archive(ctx context.Context, url string) (*ArchivedImage, error) {
	resp, err := a.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download rendered image: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rendered image download returned status %d", resp.StatusCode())
	}

	data := resp.Body()
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered image: %w", err)
	}

	md5Hash := calculateMD5(data)
	ext := formatExtension(format)
	storageKey := fmt.Sprintf("%s/%s/%s.%s", archiveKeyPrefix, md5Hash[:2], md5Hash, ext)
	contentType := getContentType(format)

	exists, err := a.storage.Exists(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := a.storage.Upload(ctx, storageKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			return nil, err
		}
	} else {
		logger.CtxDebug(ctx, "Archived image already exists, skipping upload: %s", storageKey)
	}

	return &ArchivedImage{
		Key:         storageKey,
		URL:         a.storage.GetURL(storageKey),
		Format:      format,
		ContentType: contentType,
		Width:       config.Width,
		Height:      config.Height,
		Size:        len(data),
		Uploaded:    !exists,
	}, nil
}

// Discard removes an archived object. Used when the meme referencing it could not be saved.
func (a *ImageArchiver) Discard(ctx context.Context, key string) error {
	return a.storage.Delete(ctx, key)
}

// Open streams an archived object.
func (a *ImageArchiver) Open(ctx context.Context, key string) (*ArchivedObject, error) {
	body, err := a.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	return &ArchivedObject{Body: body, ContentType: contentTypeForKey(key)}, nil
}

func calculateMD5(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}

func formatExtension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

func getContentType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func contentTypeForKey(key string) string {
	return getContentType(strings.TrimPrefix(path.Ext(key), "."))
}
