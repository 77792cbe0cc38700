package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/reorder-dashboard/internal/domain"
)

// LocalSink writes artifacts into a directory.
type LocalSink struct {
	dir string
}

func NewLocalSink(dir string) *LocalSink {
	if dir == "" {
		dir = "."
	}
	return &LocalSink{dir: dir}
}

// Save writes to a temp file in the target directory and renames it into
// place, so readers never see a partial report.
func (s *LocalSink) Save(ctx context.Context, artifact *domain.Artifact) (string, error) {
	name, err := artifactName(artifact)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed creating export directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(artifact.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed writing %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed writing %s: %w", name, err)
	}

	dest := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("failed moving export into place: %w", err)
	}
	return dest, nil
}

var _ ArtifactSink = (*LocalSink)(nil)
