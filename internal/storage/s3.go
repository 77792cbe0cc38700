package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the connection info for an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// S3Sink uploads artifacts to an S3-compatible bucket.
type S3Sink struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewS3Sink(cfg S3Config) (*S3Sink, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	// minio wants a bare host; a scheme on the endpoint decides TLS.
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "http://"), false
	}
	endpoint = strings.TrimRight(strings.TrimPrefix(endpoint, "//"), "/")

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       secure,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed creating s3 client: %w", err)
	}

	return &S3Sink{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Save uploads the artifact in a single PUT and returns its s3:// URI.
func (s *S3Sink) Save(ctx context.Context, artifact *domain.Artifact) (string, error) {
	name, err := artifactName(artifact)
	if err != nil {
		return "", err
	}
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(artifact.Content), int64(len(artifact.Content)),
		minio.PutObjectOptions{ContentType: artifact.MIMEType},
	)
	if err != nil {
		return "", fmt.Errorf("s3 upload of %s failed: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

var _ ArtifactSink = (*S3Sink)(nil)
