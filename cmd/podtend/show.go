package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podtend/podtend/internal/config"
	"github.com/podtend/podtend/internal/reconcile"
)

func newShowCmd(root *rootFlags) *cobra.Command {
	var (
		executable string
		globalArgs []string
	)

	cmd := &cobra.Command{
		Use:   "show KIND NAME",
		Short: "Print the inspect record of a resource",
		Long:  "Print the inspect record of a resource. Unlike apply, an absent resource is an error here.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := reconcile.ParseKind(args[0])
			if err != nil {
				return err
			}

			log, err := newCmdLogger(root.verbose)
			if err != nil {
				return err
			}
			engine := newEngine(config.Settings{
				Executable: executable,
				GlobalArgs: globalArgs,
			}, false, log)

			record, err := engine.Info(context.Background(), kind, args[1])
			if err != nil {
				return err
			}

			pretty, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
			return nil
		},
	}

	cmd.Flags().StringVar(&executable, "executable", "", "Path to the podman executable")
	cmd.Flags().StringArrayVar(&globalArgs, "global-arg", nil, "Global argument passed before the subcommand (repeatable)")

	return cmd
}
