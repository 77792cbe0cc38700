package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/andresuchdata/reorder-dashboard/internal/drive"
)

// DriveSink uploads artifacts into a Google Drive folder.
type DriveSink struct {
	service  *drive.Service
	folderID string
}

func NewDriveSink(ctx context.Context, credentialsJSON, folder string) (*DriveSink, error) {
	if credentialsJSON == "" {
		return nil, fmt.Errorf("drive credentials must be provided")
	}
	service, err := drive.NewService(ctx, credentialsJSON)
	if err != nil {
		return nil, err
	}
	return newDriveSink(ctx, service, folder)
}

func newDriveSink(ctx context.Context, service *drive.Service, folder string) (*DriveSink, error) {
	folderID, err := service.ResolveFolder(ctx, folder)
	if err != nil {
		return nil, err
	}
	return &DriveSink{service: service, folderID: folderID}, nil
}

// Save uploads the artifact and returns its web link, or a drive:// URI
// when Drive does not return one.
func (s *DriveSink) Save(ctx context.Context, artifact *domain.Artifact) (string, error) {
	name, err := artifactName(artifact)
	if err != nil {
		return "", err
	}

	f, err := s.service.Upload(ctx, s.folderID, name, artifact.MIMEType, bytes.NewReader(artifact.Content))
	if err != nil {
		return "", err
	}
	if f.WebViewLink != "" {
		return f.WebViewLink, nil
	}
	return fmt.Sprintf("drive://%s", f.ID), nil
}

var _ ArtifactSink = (*DriveSink)(nil)
