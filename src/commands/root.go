// Package commands implements the photoshare command line, an admin tool
// over the collection store.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pranubaita/photoshare/src/catalog"
	"github.com/pranubaita/photoshare/src/engine"
	"github.com/pranubaita/photoshare/src/helpers"
	"github.com/pranubaita/photoshare/src/models"
	"github.com/pranubaita/photoshare/src/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Commandline holds the state shared by every subcommand of one invocation.
type Commandline struct {
	v      *viper.Viper
	args   *settings.Arguments
	logger *zap.SugaredLogger
}

// NewRootCmd builds the command tree. Settings are read into v.
func NewRootCmd(v *viper.Viper) (*cobra.Command, error) {
	cl := &Commandline{v: v}

	cmd := &cobra.Command{
		Use:   "photoshare",
		Short: "photoshare - manage the collection store of the photo sharing app",
		Long: `photoshare - manage the collection store of the photo sharing app.

Every flag can also be set in the config file or through an environment
variable named after the flag with a "PHOTOSHARE_" prefix, e.g.
PHOTOSHARE_DATADIR=/var/lib/photoshare. Flags take precedence.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: cl.setup,
	}

	cl.setupFlags(cmd)
	if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return nil, err
	}
	settings.SetDefaults(v)

	cmd.AddCommand(
		cl.initCmd(),
		cl.listCmd(),
		cl.getCmd(),
		cl.createCmd(),
		cl.updateCmd(),
		cl.deleteCmd(),
		cl.addUserCmd(),
		cl.resetPasswordCmd(),
	)

	return cmd, nil
}

// Execute runs the photoshare command line with the process arguments.
func Execute() error {
	cmd, err := NewRootCmd(viper.New())
	if err != nil {
		return err
	}
	return cmd.Execute()
}

func (cl *Commandline) setupFlags(cmd *cobra.Command) {
	d := settings.DefaultArguments()
	cmd.PersistentFlags().String(settings.KeyDataDir, d.DataDir, "directory holding the collection files")
	cmd.PersistentFlags().String(settings.KeyLogFile, d.LogFile, "also append logs to this file")
	cmd.PersistentFlags().String(settings.KeyConfig, d.ConfigFile, "config file (yaml, toml or json)")
	cmd.PersistentFlags().String(settings.KeyCodec, d.Codec, "collection file format: json or bson")
	cmd.PersistentFlags().Bool(settings.KeyFileLocking, d.FileLocking, "take advisory locks on collection files")
	cmd.PersistentFlags().String(settings.KeyJournalDir, d.JournalDir, "record every mutation in a daily journal in this directory")
	cmd.PersistentFlags().Int64(settings.KeyMaxJournalFileSize, d.MaxJournalFileSize, "maximum size of a journal file in bytes")
	cmd.PersistentFlags().Bool(settings.KeyDebug, d.Debug, "enable debug logging")
	cmd.PersistentFlags().Bool(settings.KeyVerbose, d.Verbose, "print the settings in use")
}

func (cl *Commandline) setup(cmd *cobra.Command, _ []string) error {
	args, err := settings.Load(cl.v)
	if err != nil {
		return err
	}

	logger, err := helpers.NewLogger(args.Debug, args.LogFile)
	if err != nil {
		return err
	}

	cl.args = args
	cl.logger = logger
	args.LogSettings(logger)
	return nil
}

// withStore opens the store, runs fn and closes the store again.
func (cl *Commandline) withStore(fn func(db *engine.Database) error) (err error) {
	defer func() {
		// stderr syncs fail on some platforms, so the error is dropped
		_ = cl.logger.Sync()
	}()

	opts, err := cl.args.EngineOptions(cl.logger)
	if err != nil {
		return err
	}

	db, err := catalog.Open(cl.args.DataDir, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(db)
}

func collectionArg(name string) (*models.Collection, error) {
	name = keyArg(name)
	c, ok := catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownCollection, name)
	}
	return c, nil
}

// keyArg trims a collection name or primary key argument and drops one pair
// of surrounding quotes that a script or shell passed through literally.
func keyArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if len(arg) < 2 {
		return arg
	}
	for _, quote := range []string{`"`, "'"} {
		if strings.HasPrefix(arg, quote) && strings.HasSuffix(arg, quote) {
			return arg[1 : len(arg)-1]
		}
	}
	return arg
}

func parseRecord(data string) (models.Record, error) {
	var record models.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("record must be a JSON object, got null")
	}
	return record, nil
}

func printJSON(out io.Writer, value interface{}) error {
	data, err := json.MarshalIndent(value, "", engine.JSONIndent)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
