package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podtend/podtend/internal/connection"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

type execFlags struct {
	buildah bool
	user    string
	workdir string
	env     []string
}

func newExecCmd(root *rootFlags) *cobra.Command {
	flags := execFlags{}

	cmd := &cobra.Command{
		Use:   "exec TARGET -- COMMAND [ARG...]",
		Short: "Run a command inside a running container or buildah working container",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newCmdLogger(root.verbose)
			if err != nil {
				return err
			}

			tool := connection.ToolPodman
			if flags.buildah {
				tool = connection.ToolBuildah
			}
			conn, err := connection.New(connection.Options{Tool: tool, Logger: log})
			if err != nil {
				return err
			}

			env, err := parseEnvFlags(flags.env)
			if err != nil {
				return err
			}

			res, err := conn.RunCommand(context.Background(), args[0], args[1:], connection.ExecOptions{
				Env:  env,
				Cwd:  flags.workdir,
				User: flags.user,
			})
			if err != nil {
				return err
			}

			if res.Stdout != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Stdout)
			}
			if res.Stderr != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), res.Stderr)
			}
			if !res.OK() {
				return pterrors.NewExecutionError(res.Cmd, res.RC, res.Stdout, res.Stderr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.buildah, "buildah", false, "Target a buildah working container")
	cmd.Flags().StringVarP(&flags.user, "user", "u", "", "User to run the command as")
	cmd.Flags().StringVarP(&flags.workdir, "workdir", "w", "", "Working directory inside the target")
	cmd.Flags().StringArrayVarP(&flags.env, "env", "e", nil, "Environment variable KEY=VALUE (repeatable)")

	return cmd
}

func parseEnvFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, pterrors.NewValidationError("env", fmt.Sprintf("expected KEY=VALUE, got %q", pair), nil)
		}
		env[key] = value
	}
	return env, nil
}
