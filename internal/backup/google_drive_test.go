package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriveQueries(t *testing.T) {
	assert.Equal(t,
		"mimeType = 'application/vnd.google-apps.folder' and trashed = false and name = 'workout-tracker-backups'",
		folderQuery("workout-tracker-backups"),
	)
	assert.Equal(t,
		"'f1' in parents and mimeType != 'application/vnd.google-apps.folder' and trashed = false and name = 'workout-backup-2024-03-11.json'",
		fileInFolderQuery("f1", "workout-backup-2024-03-11.json"),
	)
	assert.Equal(t,
		`mimeType = 'application/vnd.google-apps.folder' and trashed = false and name = 'bob\'s \\ backups'`,
		folderQuery(`bob's \ backups`),
	)
}
