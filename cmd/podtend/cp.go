package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podtend/podtend/internal/connection"
	pterrors "github.com/podtend/podtend/pkg/errors"
)

func newCpCmd(root *rootFlags) *cobra.Command {
	var buildah bool

	cmd := &cobra.Command{
		Use:   "cp SRC DST",
		Short: "Copy a file into or out of a container",
		Long: "Copy a file into or out of a container. Exactly one side must use the\n" +
			"TARGET:PATH form; the other is a local path.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newCmdLogger(root.verbose)
			if err != nil {
				return err
			}

			tool := connection.ToolPodman
			if buildah {
				tool = connection.ToolBuildah
			}
			conn, err := connection.New(connection.Options{Tool: tool, Logger: log})
			if err != nil {
				return err
			}

			srcTarget, srcPath := splitTarget(args[0])
			dstTarget, dstPath := splitTarget(args[1])

			ctx := context.Background()
			switch {
			case srcTarget != "" && dstTarget != "":
				return pterrors.NewValidationError("args", "only one side may name a container", nil)
			case srcTarget != "":
				return conn.FetchFile(ctx, srcTarget, srcPath, args[1])
			case dstTarget != "":
				return conn.PutFile(ctx, dstTarget, args[0], dstPath)
			default:
				return pterrors.NewValidationError("args", "one side must use the TARGET:PATH form", nil)
			}
		},
	}

	cmd.Flags().BoolVar(&buildah, "buildah", false, "Target a buildah working container")

	return cmd
}

// splitTarget separates "container:/path" into its parts. A path with no
// colon, or a colon inside an absolute path, is local.
func splitTarget(arg string) (target, path string) {
	target, path, found := strings.Cut(arg, ":")
	if !found || target == "" || strings.Contains(target, "/") {
		return "", arg
	}
	return target, path
}
