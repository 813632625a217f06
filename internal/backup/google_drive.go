package backup

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// GoogleDriveBackupService keeps workout backups in a single Drive folder.
// One file per day: a second backup on the same day replaces the content.
type GoogleDriveBackupService struct {
	service         *drive.Service
	folderName      string
	backupsFolderId string
}

func NewGoogleDriveBackupService(
	ctx context.Context,
	credentialsJson []byte,
	folderName string,
) (*GoogleDriveBackupService, error) {
	driveService, err := drive.NewService(
		ctx,
		option.WithCredentialsJSON(credentialsJson),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	return &GoogleDriveBackupService{
		service:    driveService,
		folderName: folderName,
	}, nil
}

// Upload stores content under name in the backups folder and returns the Drive file id.
func (s *GoogleDriveBackupService) Upload(ctx context.Context, name string, content []byte, mimeType string) (string, error) {
	folderId, err := s.backupsFolder(ctx)
	if err != nil {
		return "", fmt.Errorf("backups folder: %w", err)
	}

	existing, err := s.service.
		Files.List().
		Q(fileInFolderQuery(folderId, name)).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("list backup files: %w", err)
	}

	if len(existing.Files) > 0 {
		fileId := existing.Files[0].Id
		log.Debugf("backup file %s already exists [%s], updating content", name, fileId)
		updated, err := s.service.
			Files.Update(fileId, &drive.File{}).
			Media(bytes.NewReader(content)).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("update backup file %s: %w", name, err)
		}
		return updated.Id, nil
	}

	fileMeta := &drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{folderId},
	}
	created, err := s.service.
		Files.Create(fileMeta).
		Fields("id, parents").
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create backup file %s: %w", name, err)
	}

	return created.Id, nil
}

func (s *GoogleDriveBackupService) backupsFolder(ctx context.Context) (string, error) {
	if s.backupsFolderId != "" {
		return s.backupsFolderId, nil
	}

	folders, err := s.service.
		Files.List().
		Q(folderQuery(s.folderName)).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve files: %w", err)
	}

	switch {
	case len(folders.Files) == 1:
		s.backupsFolderId = folders.Files[0].Id
		log.Printf("backups folder found, %s: %s", s.folderName, s.backupsFolderId)
	case len(folders.Files) > 1:
		s.backupsFolderId = folders.Files[0].Id
		log.Warnf("attention: found %d backups folders, will take the first one: %s", len(folders.Files), s.backupsFolderId)
	default:
		log.Println("backups folder not found, creating ...")
		folder, err := s.service.
			Files.Create(&drive.File{
				Name:     s.folderName,
				MimeType: folderMimeType,
			}).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("create backups folder: %w", err)
		}
		s.backupsFolderId = folder.Id
		log.Printf("new backups folder created: %s", s.backupsFolderId)
	}

	return s.backupsFolderId, nil
}

func folderQuery(folderName string) string {
	return fmt.Sprintf(
		"mimeType = '%s' and trashed = false and name = '%s'",
		folderMimeType, escapeQueryValue(folderName),
	)
}

func fileInFolderQuery(folderId, name string) string {
	return fmt.Sprintf(
		"'%s' in parents and mimeType != '%s' and trashed = false and name = '%s'",
		escapeQueryValue(folderId), folderMimeType, escapeQueryValue(name),
	)
}

// escapeQueryValue escapes a value for a single quoted Drive query string literal
func escapeQueryValue(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
