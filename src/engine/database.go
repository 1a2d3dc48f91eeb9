package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pranubaita/photoshare/src/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store is the record store used by the application: fetch, create, update
// and delete of records by primary key, plus bootstrapping of collections.
type Store interface {
	Initialize(collections ...*models.Collection) error
	FetchAll(c *models.Collection) ([]models.Record, error)
	FetchOne(c *models.Collection, id string, strict bool) (models.Record, error)
	Create(c *models.Collection, record models.Record) (models.Record, error)
	Update(c *models.Collection, id string, patch models.Record) (models.Record, error)
	Delete(c *models.Collection, id string, strict bool) error
}

var _ Store = (*Database)(nil)

// errUnchanged aborts a storage update that has nothing to write.
var errUnchanged = errors.New("document unchanged")

// Database implements Store over a CollectionStorageEngine. Each mutation
// is a single read-modify-write cycle of the collection file, so validation,
// autoincrement and persistence see the same document.
type Database struct {
	storage   *CollectionStorageEngine
	validator Validator
	journal   *Journal
	metrics   *Metrics
	logger    *zap.SugaredLogger

	mu          sync.RWMutex
	collections map[string]*models.Collection
}

// Open creates dir if needed and bootstraps an empty document for every
// collection that has none yet. Existing files are left untouched.
func Open(dir string, collections []*models.Collection, opts *Options) (*Database, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	storage, err := NewCollectionStore(dir, opts)
	if err != nil {
		return nil, err
	}

	db := &Database{
		storage:     storage,
		validator:   IntegrityValidator{},
		logger:      opts.Logger(),
		collections: make(map[string]*models.Collection),
	}

	if opts.Registerer != nil {
		if db.metrics, err = NewMetrics(opts.Registerer); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		storage.metrics = db.metrics
	}

	if opts.JournalDir != "" {
		if db.journal, err = NewJournal(opts.JournalDir, opts.MaxJournalFileSize); err != nil {
			return nil, err
		}
	}

	if err := db.Initialize(collections...); err != nil {
		return nil, multierr.Append(err, db.Close())
	}

	db.logger.Infow("Opened store",
		"path", dir,
		"codec", storage.Codec().Name(),
		"collections", len(collections))

	return db, nil
}

// Close releases the journal. Collection files are not held open between
// operations, so a store without a journal needs no closing.
func (db *Database) Close() error {
	return db.journal.Close()
}

// Collections returns the collections the store knows about.
func (db *Database) Collections() []*models.Collection {
	db.mu.RLock()
	defer db.mu.RUnlock()

	collections := make([]*models.Collection, 0, len(db.collections))
	for _, c := range db.collections {
		collections = append(collections, c)
	}
	return collections
}

// Collection looks up a known collection by name.
func (db *Database) Collection(name string) (*models.Collection, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.collections[name]
	return c, ok
}

// Location returns the file backing collection c.
func (db *Database) Location(c *models.Collection) string {
	return db.storage.Location(c)
}

func (db *Database) resolve(c *models.Collection) (*models.Collection, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil collection", ErrUnknownCollection)
	}
	known, ok := db.Collection(c.Name())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, c.Name())
	}
	return known, nil
}

// Initialize registers the collections with the store and writes an empty
// document for each one that has no file yet.
func (db *Database) Initialize(collections ...*models.Collection) error {
	var errs error
	for _, c := range collections {
		if c == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: nil collection", ErrUnknownCollection))
			continue
		}

		db.mu.Lock()
		if known, ok := db.collections[c.Name()]; ok && known != c {
			db.mu.Unlock()
			errs = multierr.Append(errs, fmt.Errorf("%w: collection %s is defined twice", ErrInvalidSchema, c.Name()))
			continue
		}
		db.collections[c.Name()] = c
		db.mu.Unlock()

		err := db.storage.Initialize(db.storage.Location(c), models.Document{})
		db.metrics.observeOperation(c.Name(), "initialize", err)
		errs = multierr.Append(errs, err)
	}
	return errs
}

// FetchAll returns every record of c, ordered by key.
func (db *Database) FetchAll(c *models.Collection) (records []models.Record, err error) {
	collection, err := db.resolve(c)
	if err != nil {
		return nil, err
	}
	defer func() { db.metrics.observeOperation(collection.Name(), "fetch_all", err) }()

	doc, err := db.storage.Read(db.storage.Location(collection))
	if err != nil {
		return nil, err
	}
	return doc.Records(), nil
}

// FetchOne returns the record stored under id. A missing record is an
// ErrNotFound error when strict, and a nil record otherwise.
func (db *Database) FetchOne(c *models.Collection, id string, strict bool) (record models.Record, err error) {
	collection, err := db.resolve(c)
	if err != nil {
		return nil, err
	}
	defer func() { db.metrics.observeOperation(collection.Name(), "fetch_one", err) }()

	doc, err := db.storage.Read(db.storage.Location(collection))
	if err != nil {
		return nil, err
	}

	record, ok := doc[id]
	if !ok {
		if strict {
			return nil, notFound(collection, id)
		}
		return nil, nil
	}
	return record, nil
}

// Create validates record in full, assigns its autoincremented fields and
// stores it under its primary value. Autoincremented fields supplied by the
// caller are ignored. The stored record is returned.
func (db *Database) Create(c *models.Collection, record models.Record) (created models.Record, err error) {
	collection, err := db.resolve(c)
	if err != nil {
		return nil, err
	}
	defer func() { db.metrics.observeOperation(collection.Name(), "create", err) }()

	input := models.NormalizeRecord(record)
	if input == nil {
		input = models.Record{}
	}
	autoincremented := collection.Autoincremented()
	for _, prop := range autoincremented {
		delete(input, prop.Name())
	}

	var key string
	_, err = db.storage.Update(db.storage.Location(collection), func(doc models.Document) (models.Document, error) {
		if err := db.validator.Validate(input, collection, allRecords(doc), false); err != nil {
			return nil, err
		}

		stored := input.Clone()
		for _, prop := range autoincremented {
			stored[prop.Name()] = nextValue(doc, prop.Name())
		}

		var err error
		if key, err = models.KeyOf(stored[collection.PrimaryField()]); err != nil {
			return nil, validationErrorf(collection.Name(), collection.PrimaryField(), RulePrimary, "%v", err)
		}
		if _, exists := doc[key]; exists {
			return nil, validationErrorf(collection.Name(), collection.PrimaryField(), RuleUnique,
				"%s %s is already taken", collection.PrimaryField(), key)
		}

		doc[key] = stored
		created = stored.Clone()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	db.record("create", collection, key)
	return created, nil
}

// Update validates patch as a partial record and merges it over the record
// stored under id. The primary field may be present in patch but cannot be
// changed. The merged record is returned.
func (db *Database) Update(c *models.Collection, id string, patch models.Record) (updated models.Record, err error) {
	collection, err := db.resolve(c)
	if err != nil {
		return nil, err
	}
	defer func() { db.metrics.observeOperation(collection.Name(), "update", err) }()

	input := models.NormalizeRecord(patch)

	_, err = db.storage.Update(db.storage.Location(collection), func(doc models.Document) (models.Document, error) {
		if err := db.validator.Validate(input, collection, otherRecords(doc, id), true); err != nil {
			return nil, err
		}

		existing, ok := doc[id]
		if !ok {
			return nil, notFound(collection, id)
		}

		if value, ok := input[collection.PrimaryField()]; ok {
			if key, err := models.KeyOf(value); err != nil || key != id {
				return nil, validationErrorf(collection.Name(), collection.PrimaryField(), RulePrimary,
					"%s cannot be changed", collection.PrimaryField())
			}
		}

		merged := existing.Clone()
		for field, value := range input {
			merged[field] = value
		}

		doc[id] = merged
		updated = merged.Clone()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	db.record("update", collection, id)
	return updated, nil
}

// Delete removes the record stored under id. Deleting a missing record is an
// ErrNotFound error when strict, and a no-op otherwise.
func (db *Database) Delete(c *models.Collection, id string, strict bool) (err error) {
	collection, err := db.resolve(c)
	if err != nil {
		return err
	}
	defer func() { db.metrics.observeOperation(collection.Name(), "delete", err) }()

	_, err = db.storage.Update(db.storage.Location(collection), func(doc models.Document) (models.Document, error) {
		if _, ok := doc[id]; !ok {
			if strict {
				return nil, notFound(collection, id)
			}
			return nil, errUnchanged
		}
		delete(doc, id)
		return doc, nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	db.record("delete", collection, id)
	return nil
}

// record journals a completed mutation. The mutation is already durable, so
// journal failures are logged and not returned.
func (db *Database) record(command string, collection *models.Collection, key string) {
	db.logger.Debugw("Mutated record", "command", command, "collection", collection.Name(), "id", key)

	if db.journal == nil {
		return
	}
	if _, err := db.journal.AddEntry(command, collection.Name(), key); err != nil {
		db.logger.Warnw("Failed to journal mutation",
			"command", command,
			"collection", collection.Name(),
			"id", key,
			"error", err)
	}
}

func allRecords(doc models.Document) RecordSource {
	return func() ([]models.Record, error) {
		return doc.Records(), nil
	}
}

// otherRecords lists every record except the one stored under key, so a
// record being updated does not collide with itself.
func otherRecords(doc models.Document, key string) RecordSource {
	return func() ([]models.Record, error) {
		records := make([]models.Record, 0, len(doc))
		for k, record := range doc {
			if k != key {
				records = append(records, record)
			}
		}
		return records, nil
	}
}

// nextValue is one more than the largest numeric value of field in doc, or 1
// when no record holds a number there.
func nextValue(doc models.Document, field string) float64 {
	var highest float64
	found := false
	for _, record := range doc {
		if v, ok := record[field].(float64); ok && (!found || v > highest) {
			highest, found = v, true
		}
	}
	return highest + 1
}
