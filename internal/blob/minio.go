package blob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	// PublicBaseURL prefixes "<bucket>/<key>" in returned locators.
	PublicBaseURL string
}

// MinIO keeps one bucket per project. Buckets are created on first write with
// an anonymous read policy so locators can be embedded directly.
type MinIO struct {
	mc      *minio.Client
	baseURL string
	now     func() time.Time

	mu    sync.Mutex
	ready map[string]bool
}

func NewMinIO(cfg MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + cfg.Endpoint
	}
	return &MinIO{
		mc:      mc,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		ready:   make(map[string]bool),
	}, nil
}

// BucketForProject returns the bucket name for a project.
// MinIO/S3: lowercase, digits, hyphens; 3-63 chars.
func BucketForProject(projectID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, projectID)
	bucket := "project-" + name
	if len(bucket) > 63 {
		bucket = strings.TrimRight(bucket[:63], "-")
	}
	return bucket
}

func (m *MinIO) Put(ctx context.Context, scopeID string, f File) (string, error) {
	if err := checkPut(scopeID, f); err != nil {
		return "", err
	}
	bucket := BucketForProject(scopeID)
	if err := m.ensureBucket(ctx, bucket); err != nil {
		return "", fmt.Errorf("ensure bucket %s: %w", bucket, err)
	}

	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := objectKey(m.now().UTC(), f.Name(), f.ContentType())
	_, err = m.mc.PutObject(ctx, bucket, key, src, f.Size(), minio.PutObjectOptions{ContentType: f.ContentType()})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return m.baseURL + "/" + bucket + "/" + key, nil
}

func (m *MinIO) ensureBucket(ctx context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready[bucket] {
		return nil
	}

	exists, err := m.mc.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := m.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		if err := m.mc.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
			return err
		}
	}
	m.ready[bucket] = true
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
