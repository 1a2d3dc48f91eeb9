package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pranubaita/photoshare/src/models"
	"github.com/stretchr/testify/require"
)

func journalLines(t *testing.T, path string) []string {
	t.Helper()
	return strings.Split(strings.TrimSpace(string(readFile(t, path))), "\n")
}

func TestJournalAddEntry(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	journal, err := newJournal(dir, 0, func() time.Time { return day })
	require.NoError(t, err)

	entry, err := journal.AddEntry("create", "users", "ada")
	require.NoError(t, err)
	require.NoError(t, journal.Close())
	require.NoError(t, journal.Close())

	_, err = uuid.Parse(entry.ID)
	require.NoError(t, err)

	path := filepath.Join(dir, "mutations_2026-03-14.journal")
	require.Equal(t, path, journal.Path())
	require.Equal(t, []string{"2026-03-14T09:30:00Z | " + entry.ID + " | create | users | ada"}, journalLines(t, path))
}

func TestJournalRollsOver(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	journal, err := newJournal(dir, 64, func() time.Time { return day })
	require.NoError(t, err)
	defer journal.Close()

	// each line is longer than the limit, so every entry starts a new file
	for _, key := range []string{"1", "2"} {
		_, err := journal.AddEntry("delete", "comments", key)
		require.NoError(t, err)
	}
	require.Equal(t, filepath.Join(dir, "mutations_2026-03-14.1.journal"), journal.Path())

	day = day.Add(24 * time.Hour)
	_, err = journal.AddEntry("delete", "comments", "3")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "mutations_2026-03-15.journal"), journal.Path())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
}

func TestJournalResumesExistingFile(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		journal, err := NewJournal(dir, 0)
		require.NoError(t, err)
		_, err = journal.AddEntry("update", "users", "ada")
		require.NoError(t, err)
		require.NoError(t, journal.Close())
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, journalLines(t, filepath.Join(dir, files[0].Name())), 2)
}

func TestDatabaseJournalsMutations(t *testing.T) {
	journalDir := filepath.Join(t.TempDir(), "journal")
	db, _ := openTestDatabase(t, DefaultOptions().WithJournalDir(journalDir))

	_, err := db.Create(testUsers, ada())
	require.NoError(t, err)
	_, err = db.Update(testUsers, "ada", models.Record{"bio": "x"})
	require.NoError(t, err)
	require.NoError(t, db.Delete(testUsers, "ada", true))

	// failed and no-op mutations are not journaled
	_, err = db.Create(testUsers, models.Record{})
	require.Error(t, err)
	require.NoError(t, db.Delete(testUsers, "ada", false))

	lines := journalLines(t, db.journal.Path())
	require.Len(t, lines, 3)
	for i, command := range []string{"create", "update", "delete"} {
		require.True(t, strings.HasSuffix(lines[i], " | "+command+" | users | ada"), lines[i])
	}
}
