package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const DefaultJournalFileSize = 1 << 20

// Options configures a Database and its CollectionStorageEngine.
type Options struct {
	// Codec encodes collection documents on disk. Defaults to JSONCodec.
	Codec Codec

	// FileLocking takes advisory flock locks on collection files around
	// every read and read-modify-write cycle.
	FileLocking bool

	// JournalDir enables the mutation journal when non-empty.
	JournalDir string

	// MaxJournalFileSize rolls the journal to a new file once exceeded.
	MaxJournalFileSize int64

	// Registerer receives the store metrics. Metrics are disabled when nil.
	Registerer prometheus.Registerer

	logger *zap.SugaredLogger
}

// DefaultOptions returns JSON storage with file locking and no journal or metrics.
func DefaultOptions() *Options {
	return &Options{
		Codec:              JSONCodec{},
		FileLocking:        true,
		MaxJournalFileSize: DefaultJournalFileSize,
		logger:             zap.NewNop().Sugar(),
	}
}

func (opts *Options) WithCodec(codec Codec) *Options {
	opts.Codec = codec
	return opts
}

func (opts *Options) WithFileLocking(enabled bool) *Options {
	opts.FileLocking = enabled
	return opts
}

func (opts *Options) WithJournalDir(dir string) *Options {
	opts.JournalDir = dir
	return opts
}

func (opts *Options) WithMaxJournalFileSize(size int64) *Options {
	opts.MaxJournalFileSize = size
	return opts
}

func (opts *Options) WithRegisterer(reg prometheus.Registerer) *Options {
	opts.Registerer = reg
	return opts
}

func (opts *Options) WithLogger(logger *zap.SugaredLogger) *Options {
	opts.logger = logger
	return opts
}

// Logger returns the configured logger, never nil.
func (opts *Options) Logger() *zap.SugaredLogger {
	if opts == nil || opts.logger == nil {
		return zap.NewNop().Sugar()
	}
	return opts.logger
}

func (opts *Options) codec() Codec {
	if opts == nil || opts.Codec == nil {
		return JSONCodec{}
	}
	return opts.Codec
}
