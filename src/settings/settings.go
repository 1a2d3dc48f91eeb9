package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pranubaita/photoshare/src/engine"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes environment variables that override settings,
// e.g. PHOTOSHARE_DATADIR or PHOTOSHARE_FILE_LOCKING.
const EnvPrefix = "PHOTOSHARE"

// Setting keys, shared by flags, config files and environment variables.
const (
	KeyDataDir            = "datadir"
	KeyLogFile            = "logfile"
	KeyConfig             = "config"
	KeyCodec              = "codec"
	KeyFileLocking        = "file-locking"
	KeyJournalDir         = "journaldir"
	KeyMaxJournalFileSize = "max-journal-file-size"
	KeyDebug              = "debug"
	KeyVerbose            = "verbose"
)

type Arguments struct {
	// The directory holding one file per collection
	DataDir string
	// Optional file receiving a copy of the logs
	LogFile string

	ConfigFile string

	// json or bson
	Codec string

	// Take advisory locks on collection files
	FileLocking bool

	// Mutation journal directory, disabled when empty
	JournalDir         string
	MaxJournalFileSize int64

	Debug bool

	// Strongly verbose logging
	Verbose bool
}

// DefaultArguments returns the settings used when nothing overrides them.
func DefaultArguments() *Arguments {
	return &Arguments{
		DataDir:            "./data",
		Codec:              engine.JSONCodec{}.Name(),
		FileLocking:        true,
		MaxJournalFileSize: engine.DefaultJournalFileSize,
	}
}

// SetDefaults registers DefaultArguments as the viper defaults.
func SetDefaults(v *viper.Viper) {
	d := DefaultArguments()
	v.SetDefault(KeyDataDir, d.DataDir)
	v.SetDefault(KeyLogFile, d.LogFile)
	v.SetDefault(KeyConfig, d.ConfigFile)
	v.SetDefault(KeyCodec, d.Codec)
	v.SetDefault(KeyFileLocking, d.FileLocking)
	v.SetDefault(KeyJournalDir, d.JournalDir)
	v.SetDefault(KeyMaxJournalFileSize, d.MaxJournalFileSize)
	v.SetDefault(KeyDebug, d.Debug)
	v.SetDefault(KeyVerbose, d.Verbose)
}

// Load resolves the settings from v. Flags bound to v win over environment
// variables, which win over the config file named by the config key, which
// wins over defaults. The result is validated.
func Load(v *viper.Viper) (*Arguments, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile := v.GetString(KeyConfig); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	args := &Arguments{
		DataDir:            v.GetString(KeyDataDir),
		LogFile:            v.GetString(KeyLogFile),
		ConfigFile:         v.ConfigFileUsed(),
		Codec:              strings.ToLower(v.GetString(KeyCodec)),
		FileLocking:        v.GetBool(KeyFileLocking),
		JournalDir:         v.GetString(KeyJournalDir),
		MaxJournalFileSize: v.GetInt64(KeyMaxJournalFileSize),
		Debug:              v.GetBool(KeyDebug),
		Verbose:            v.GetBool(KeyVerbose),
	}

	if err := args.Validate(); err != nil {
		return nil, err
	}
	return args, nil
}

// Validate checks the arguments without changing anything on disk.
func (a *Arguments) Validate() error {
	if a.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if info, err := os.Stat(a.DataDir); err == nil && !info.IsDir() {
		return fmt.Errorf("data directory path exists but is not a directory: %s", a.DataDir)
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error accessing data directory: %w", err)
	}

	if _, err := engine.CodecByName(a.Codec); err != nil {
		return err
	}

	if a.MaxJournalFileSize <= 0 {
		return fmt.Errorf("max journal file size must be positive, got %d", a.MaxJournalFileSize)
	}

	if a.LogFile != "" {
		if info, err := os.Stat(filepath.Dir(a.LogFile)); err == nil && !info.IsDir() {
			return fmt.Errorf("log file directory is not a directory: %s", filepath.Dir(a.LogFile))
		}
	}

	return nil
}

// EngineOptions translates the arguments into store options.
func (a *Arguments) EngineOptions(logger *zap.SugaredLogger) (*engine.Options, error) {
	codec, err := engine.CodecByName(a.Codec)
	if err != nil {
		return nil, err
	}

	return engine.DefaultOptions().
		WithCodec(codec).
		WithFileLocking(a.FileLocking).
		WithJournalDir(a.JournalDir).
		WithMaxJournalFileSize(a.MaxJournalFileSize).
		WithLogger(logger), nil
}

// LogSettings prints the arguments when running verbosely.
func (a *Arguments) LogSettings(logger *zap.SugaredLogger) {
	if !a.Verbose {
		return
	}
	logger.Infow("photoshare starting with options",
		"datadir", a.DataDir,
		"logfile", a.LogFile,
		"config", a.ConfigFile,
		"codec", a.Codec,
		"fileLocking", a.FileLocking,
		"journaldir", a.JournalDir,
		"maxJournalFileSize", a.MaxJournalFileSize,
		"debug", a.Debug)
}
