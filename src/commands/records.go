package commands

import (
	"fmt"

	"github.com/pranubaita/photoshare/src/catalog"
	"github.com/pranubaita/photoshare/src/engine"
	"github.com/spf13/cobra"
)

func (cl *Commandline) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create missing collection files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cl.withStore(func(db *engine.Database) error {
				for _, c := range catalog.Collections() {
					fmt.Fprintln(cmd.OutOrStdout(), db.Location(c))
				}
				return nil
			})
		},
	}
}

func (cl *Commandline) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <collection>",
		Short: "Print every record of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			return cl.withStore(func(db *engine.Database) error {
				records, err := db.FetchAll(c)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), records)
			})
		},
	}
}

func (cl *Commandline) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print the record stored under a primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			return cl.withStore(func(db *engine.Database) error {
				record, err := db.FetchOne(c, keyArg(args[1]), true)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), record)
			})
		},
	}
}

func (cl *Commandline) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create <collection> <json>",
		Short:   "Validate and store a new record",
		Example: `  photoshare create comments '{"body": "nice", "time_stamp": 1700000000000, "commenter": "ada", "post": "abc"}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			record, err := parseRecord(args[1])
			if err != nil {
				return err
			}
			return cl.withStore(func(db *engine.Database) error {
				created, err := db.Create(c, record)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), created)
			})
		},
	}
}

func (cl *Commandline) updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <id> <json>",
		Short: "Merge fields into an existing record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			patch, err := parseRecord(args[2])
			if err != nil {
				return err
			}
			return cl.withStore(func(db *engine.Database) error {
				updated, err := db.Update(c, keyArg(args[1]), patch)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), updated)
			})
		},
	}
}

func (cl *Commandline) deleteCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Remove a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			return cl.withStore(func(db *engine.Database) error {
				return db.Delete(c, keyArg(args[1]), strict)
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the record does not exist")
	return cmd
}
