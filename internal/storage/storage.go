// Package storage saves exported reports. Every sink writes a complete
// artifact or nothing.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/andresuchdata/reorder-dashboard/internal/config"
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
)

// ArtifactSink stores an artifact and returns where it ended up.
type ArtifactSink interface {
	Save(ctx context.Context, artifact *domain.Artifact) (string, error)
}

// NewSink builds the sink selected by cfg.Sink.
func NewSink(ctx context.Context, cfg config.ExportConfig) (ArtifactSink, error) {
	switch cfg.Sink {
	case config.SinkLocal, "":
		return NewLocalSink(cfg.Dir), nil
	case config.SinkS3:
		return NewS3Sink(S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			UseSSL:    cfg.S3UseSSL,
		})
	case config.SinkDrive:
		return NewDriveSink(ctx, cfg.DriveCredentialsJSON, cfg.DriveFolderID)
	default:
		return nil, fmt.Errorf("unknown export sink %q", cfg.Sink)
	}
}

// artifactName keeps only the final element of a backend-supplied filename.
func artifactName(artifact *domain.Artifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("artifact is nil")
	}
	name := path.Base(strings.ReplaceAll(artifact.Filename, "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("invalid artifact filename %q", artifact.Filename)
	}
	return name, nil
}
