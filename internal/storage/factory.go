package storage

import (
	"fmt"
	"strings"

	"github.com/timmy/memerator/internal/config"
)

// NewStorage creates an ObjectStorage instance from the archive configuration.
// Parameters:
//   - cfg: storage section of the application config.
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the type is unknown or the client cannot be created.
func NewStorage(cfg *config.StorageConfig) (ObjectStorage, error) {
	storeType, err := parseStorageType(cfg.Type, cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	return NewS3Storage(&S3Config{
		Type:      storeType,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		PublicURL: cfg.PublicURL,
	})
}

// parseStorageType maps the configured type onto a StorageType, detecting it from the endpoint when empty.
// MinIO is served through the S3-compatible client.
func parseStorageType(value, endpoint string) (StorageType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return detectStorageType(endpoint), nil
	case string(StorageTypeR2):
		return StorageTypeR2, nil
	case string(StorageTypeS3):
		return StorageTypeS3, nil
	case string(StorageTypeS3Compatible), "minio":
		return StorageTypeS3Compatible, nil
	default:
		return "", fmt.Errorf("unsupported storage type %q", value)
	}
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case endpoint == "" || strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
