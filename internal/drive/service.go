package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

type Service struct {
	srv *drive.Service
}

// NewService authenticates with a service account key.
func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	config, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	return NewServiceWithOptions(ctx, option.WithHTTPClient(config.Client(ctx)))
}

// NewServiceWithOptions builds a Service from raw client options.
func NewServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create drive client: %w", err)
	}
	return &Service{srv: srv}, nil
}

type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	WebViewLink string `json:"webViewLink,omitempty"`
	Size        int64  `json:"size,string,omitempty"`
}

// Upload creates name inside folderID with the contents of r.
func (s *Service) Upload(ctx context.Context, folderID, name, mimeType string, r io.Reader) (*File, error) {
	meta := &drive.File{Name: name, MimeType: mimeType}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	f, err := s.srv.Files.Create(meta).
		Media(r).
		Fields("id, name, mimeType, webViewLink, size").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to upload %s: %w", name, err)
	}

	return &File{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		WebViewLink: f.WebViewLink,
		Size:        f.Size,
	}, nil
}

// ResolveFolder turns a folder reference into an ID. References starting
// with "/" are walked as a path from the root; anything else is taken as an ID.
func (s *Service) ResolveFolder(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "/") {
		return ref, nil
	}
	return s.FindFolderByPath(ctx, ref)
}

func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"

	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				currentID, strings.ReplaceAll(folder, "'", `\'`), folderMimeType)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}
