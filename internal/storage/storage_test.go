package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://abc.r2.cloudflarestorage.com/", "abc.r2.cloudflarestorage.com"},
		{"http://localhost:9000/bucket/path", "localhost:9000"},
		{"minio:9000", "minio:9000"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.in); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseStorageType(t *testing.T) {
	tests := []struct {
		value    string
		endpoint string
		want     StorageType
		wantErr  bool
	}{
		{value: "", endpoint: "https://acct.r2.cloudflarestorage.com", want: StorageTypeR2},
		{value: "", endpoint: "", want: StorageTypeS3},
		{value: "", endpoint: "s3.us-west-2.amazonaws.com", want: StorageTypeS3},
		{value: "", endpoint: "localhost:9000", want: StorageTypeS3Compatible},
		{value: "MinIO", endpoint: "localhost:9000", want: StorageTypeS3Compatible},
		{value: "r2", want: StorageTypeR2},
		{value: "gcs", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseStorageType(tt.value, tt.endpoint)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseStorageType(%q, %q) error = %v, wantErr %v", tt.value, tt.endpoint, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseStorageType(%q, %q) = %q, want %q", tt.value, tt.endpoint, got, tt.want)
		}
	}
}

func TestObjectBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      S3Config
		scheme   string
		endpoint string
		region   string
		want     string
	}{
		{
			name: "public url wins",
			cfg:  S3Config{Bucket: "memes", PublicURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com",
		},
		{
			name:   "aws virtual host",
			cfg:    S3Config{Bucket: "memes"},
			region: "eu-west-1",
			want:   "https://memes.s3.eu-west-1.amazonaws.com",
		},
		{
			name:     "path style endpoint",
			cfg:      S3Config{Bucket: "memes"},
			scheme:   "http",
			endpoint: "localhost:9000",
			want:     "http://localhost:9000/memes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := objectBaseURL(&tt.cfg, tt.scheme, tt.endpoint, tt.region); got != tt.want {
				t.Errorf("objectBaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultRegion(t *testing.T) {
	tests := []struct {
		storeType StorageType
		region    string
		want      string
	}{
		{StorageTypeR2, "", "auto"},
		{StorageTypeS3, "", "us-east-1"},
		{StorageTypeS3Compatible, "", "us-east-1"},
		{StorageTypeR2, "eu-west-1", "eu-west-1"},
	}
	for _, tt := range tests {
		if got := defaultRegion(tt.storeType, tt.region); got != tt.want {
			t.Errorf("defaultRegion(%q, %q) = %q, want %q", tt.storeType, tt.region, got, tt.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"typed not found", fmt.Errorf("head: %w", &types.NotFound{}), true},
		{"typed no such key", &types.NoSuchKey{}, true},
		{"generic 404 code", &smithy.GenericAPIError{Code: "NotFound"}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}
