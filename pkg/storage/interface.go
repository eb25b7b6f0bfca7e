package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// StorageProvider stores generated report files such as conversion exports.
type StorageProvider interface {
	Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error)
	Delete(ctx context.Context, key string) error
	GetURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

type UploadRequest struct {
	Key          string            `json:"key"`
	Reader       io.Reader         `json:"-"`
	ContentType  string            `json:"content_type"`
	Size         int64             `json:"size"`
	Metadata     map[string]string `json:"metadata"`
	CacheControl string            `json:"cache_control"`
}

type UploadResponse struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag"`
	Location string `json:"location"`
}

type ProviderConfig struct {
	Provider string

	LocalBasePath string
	LocalBaseURL  string

	AWSRegion    string
	AWSBucket    string
	AWSCDNDomain string

	GCPProjectID       string
	GCPBucket          string
	GCPCredentialsFile string
	GCPCDNDomain       string
}

func NewProvider(ctx context.Context, cfg ProviderConfig) (StorageProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "aws", "s3":
		if cfg.AWSBucket == "" {
			return nil, fmt.Errorf("s3 bucket is required")
		}
		return NewAWSS3Storage(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.AWSCDNDomain)
	case "gcp", "gcs":
		if cfg.GCPBucket == "" {
			return nil, fmt.Errorf("gcs bucket is required")
		}
		return NewGCPStorage(ctx, cfg.GCPBucket, cfg.GCPCredentialsFile, cfg.GCPCDNDomain)
	case "local", "":
		return NewLocalStorage(cfg.LocalBasePath, cfg.LocalBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
