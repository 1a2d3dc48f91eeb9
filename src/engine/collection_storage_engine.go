package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pranubaita/photoshare/src/helpers"
	"github.com/pranubaita/photoshare/src/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CollectionStore is the raw persistence of whole collection documents.
type CollectionStore interface {
	Location(collection *models.Collection) string
	Read(location string) (models.Document, error)
	Write(location string, doc models.Document) error
	Update(location string, transform Transform) (models.Document, error)
	Initialize(location string, defaultDocument models.Document) error
}

// Transform maps the current document of a collection to its next state.
// It must depend only on its argument. Returning an error aborts the update
// without writing anything.
type Transform func(doc models.Document) (models.Document, error)

// CollectionStorageEngine keeps one file per collection under DataDirectory.
// Every call reads or writes the whole file; nothing is cached in memory.
//
// Calls on the same location are serialized within the process, and with
// FileLocking enabled an flock is held on the file for the duration of each
// read and each read-modify-write cycle.
type CollectionStorageEngine struct {
	DataDirectory string
	codec         Codec
	fileLocking   bool
	metrics       *Metrics
	logger        *zap.SugaredLogger

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func NewCollectionStore(dataDir string, opts *Options) (*CollectionStorageEngine, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	store := &CollectionStorageEngine{
		DataDirectory: dataDir,
		codec:         opts.codec(),
		fileLocking:   opts.FileLocking,
		logger:        opts.Logger(),
		locks:         make(map[string]*sync.RWMutex),
	}

	if err := helpers.EnsureDir(store.DataDirectory); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return store, nil
}

// Location returns the path of the file backing a collection.
func (s *CollectionStorageEngine) Location(collection *models.Collection) string {
	return filepath.Join(s.DataDirectory, collection.Name()+s.codec.Extension())
}

// Codec returns the codec used for collection files.
func (s *CollectionStorageEngine) Codec() Codec {
	return s.codec
}

func (s *CollectionStorageEngine) lockFor(location string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[location]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[location] = l
	}
	return l
}

// Read loads and decodes the document stored at location.
func (s *CollectionStorageEngine) Read(location string) (doc models.Document, err error) {
	l := s.lockFor(location)
	l.RLock()
	defer l.RUnlock()

	fl, err := s.acquire(location, false, false)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, fl.Unlock())
	}()

	return s.read(location)
}

// Write replaces the contents of location with doc.
func (s *CollectionStorageEngine) Write(location string, doc models.Document) (err error) {
	l := s.lockFor(location)
	l.Lock()
	defer l.Unlock()

	data, err := s.encode(location, doc)
	if err != nil {
		return err
	}

	fl, err := s.acquire(location, true, true)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, fl.Unlock())
	}()

	return s.write(location, data)
}

// Update reads the document at location, applies transform and writes the
// result back, returning it. The location stays locked for the whole cycle.
func (s *CollectionStorageEngine) Update(location string, transform Transform) (updated models.Document, err error) {
	l := s.lockFor(location)
	l.Lock()
	defer l.Unlock()

	fl, err := s.acquire(location, true, false)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, fl.Unlock())
	}()

	current, err := s.read(location)
	if err != nil {
		return nil, err
	}

	updated, err = transform(current)
	if err != nil {
		return nil, err
	}

	data, err := s.encode(location, updated)
	if err != nil {
		return nil, err
	}

	if err := s.write(location, data); err != nil {
		return nil, err
	}

	return updated, nil
}

// Initialize writes defaultDocument to location unless a file already exists there.
func (s *CollectionStorageEngine) Initialize(location string, defaultDocument models.Document) error {
	l := s.lockFor(location)
	l.Lock()
	defer l.Unlock()

	exists, err := helpers.FileExists(location, s.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if exists {
		s.logger.Debugw("Collection file already exists", "path", location)
		return nil
	}

	data, err := s.encode(location, defaultDocument)
	if err != nil {
		return err
	}
	if err := s.write(location, data); err != nil {
		return err
	}

	s.logger.Infow("Initialized collection file", "path", location)
	return nil
}

// acquire takes the file lock for location, or returns a nil lock when file
// locking is disabled.
func (s *CollectionStorageEngine) acquire(location string, exclusive, create bool) (*fileLock, error) {
	if !s.fileLocking {
		return nil, nil
	}
	fl, err := lockFile(location, exclusive, create)
	if err != nil {
		return nil, fmt.Errorf("%w: error opening collection file %s: %w", ErrStorage, location, err)
	}
	return fl, nil
}

func (s *CollectionStorageEngine) read(location string) (models.Document, error) {
	defer s.metrics.observeStorage("read", time.Now())

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading collection file %s: %w", ErrStorage, location, err)
	}

	doc, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: error decoding collection file %s: %w", ErrStorage, location, err)
	}

	return doc, nil
}

func (s *CollectionStorageEngine) encode(location string, doc models.Document) ([]byte, error) {
	data, err := s.codec.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: error encoding collection file %s: %w", ErrStorage, location, err)
	}
	return data, nil
}

func (s *CollectionStorageEngine) write(location string, data []byte) error {
	defer s.metrics.observeStorage("write", time.Now())

	if err := helpers.WriteDataFile(location, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
