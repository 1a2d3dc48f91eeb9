package engine

// The journal records every successful mutation of the store, one line per
// create, update or delete, in a daily append-only file.

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pranubaita/photoshare/src/helpers"
	"go.uber.org/multierr"
)

const journalBaseName = "mutations"

// JournalEntry is one journal line, written in the String form.
type JournalEntry struct {
	ID         string
	Timestamp  time.Time
	Command    string
	Collection string
	Key        string
}

func (e JournalEntry) String() string {
	return fmt.Sprintf("%s | %s | %s | %s | %s",
		e.Timestamp.Format(time.RFC3339), e.ID, e.Command, e.Collection, e.Key)
}

// Journal appends entries to <dir>/mutations_YYYY-MM-DD.journal. When a file
// grows past maxFileSize the journal moves on to
// mutations_YYYY-MM-DD.N.journal for the rest of the day.
type Journal struct {
	mu          sync.Mutex
	dir         string
	maxFileSize int64
	now         func() time.Time

	file        *os.File
	path        string
	currentDate string
	currentSize int64
	sequence    int
}

// NewJournal creates the journal directory if needed and opens today's file.
func NewJournal(dir string, maxFileSize int64) (*Journal, error) {
	return newJournal(dir, maxFileSize, time.Now)
}

func newJournal(dir string, maxFileSize int64, now func() time.Time) (*Journal, error) {
	if maxFileSize <= 0 {
		maxFileSize = DefaultJournalFileSize
	}
	if err := helpers.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	journal := &Journal{
		dir:         dir,
		maxFileSize: maxFileSize,
		now:         now,
	}

	if err := journal.ensureCorrectFileOpen(); err != nil {
		return nil, err
	}

	return journal, nil
}

// Path returns the file the next entry will be appended to.
func (j *Journal) Path() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.path
}

func (j *Journal) fileName(date string, sequence int) string {
	if sequence == 0 {
		return filepath.Join(j.dir, fmt.Sprintf("%s_%s.journal", journalBaseName, date))
	}
	return filepath.Join(j.dir, fmt.Sprintf("%s_%s.%d.journal", journalBaseName, date, sequence))
}

// ensureCorrectFileOpen switches files when the day changes or the current
// file is full.
func (j *Journal) ensureCorrectFileOpen() error {
	today := j.now().Format("2006-01-02")

	if j.file != nil && j.currentDate == today && j.currentSize < j.maxFileSize {
		return nil
	}

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			return fmt.Errorf("failed to close previous journal file: %w", err)
		}
		j.file = nil
	}

	if j.currentDate != today {
		j.currentDate = today
		j.sequence = 0
	}

	// skip files of the same day that are already full
	for {
		name := j.fileName(j.currentDate, j.sequence)
		info, err := os.Stat(name)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat journal file %s: %w", name, err)
		}
		if err != nil || info.Size() < j.maxFileSize {
			file, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("failed to open journal file %s: %w", name, err)
			}
			j.file = file
			j.path = name
			j.currentSize = 0
			if info != nil {
				j.currentSize = info.Size()
			}
			return nil
		}
		j.sequence++
	}
}

// AddEntry appends a mutation of key in collection to the journal.
func (j *Journal) AddEntry(command, collection, key string) (JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.ensureCorrectFileOpen(); err != nil {
		return JournalEntry{}, err
	}

	entry := JournalEntry{
		ID:         helpers.GenerateUUID(),
		Timestamp:  j.now(),
		Command:    command,
		Collection: collection,
		Key:        key,
	}

	line := entry.String() + "\n"
	n, err := j.file.WriteString(line)
	j.currentSize += int64(n)
	if err != nil {
		return JournalEntry{}, fmt.Errorf("failed to write to journal file: %w", err)
	}

	return entry, nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	err := multierr.Append(j.file.Sync(), j.file.Close())
	j.file = nil
	if err != nil {
		return fmt.Errorf("failed to close journal file: %w", err)
	}
	return nil
}
