package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/podtend/podtend/internal/config"
)

func newVerifyCmd(root *rootFlags) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Evaluate a manifest without mutating anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.OutOrStdout(), manifestPath, root.verbose)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "file", "f", "podtend.yaml", "Path to the manifest file")

	return cmd
}

func runVerify(out io.Writer, manifestPath string, verbose bool) error {
	manifest, err := config.ParseManifest(manifestPath)
	if err != nil {
		return err
	}

	log, err := newCmdLogger(verbose || manifest.Settings.Verbose)
	if err != nil {
		return err
	}
	engine := newEngine(manifest.Settings, false, log)

	ctx := context.Background()
	drifted := 0
	for _, res := range manifest.Resources {
		name := fmt.Sprintf("%s/%s", res.Kind, res.Name)

		ev, err := engine.Evaluate(ctx, res.Spec())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		if ev.Plan.Empty() {
			fmt.Fprintf(out, "%s %s: in sync\n", okMark("✓"), name)
			continue
		}

		drifted++
		fmt.Fprintf(out, "%s %s: %d pending action(s)\n", changedMark("~"), name, len(ev.Plan.Ops))
		if ev.Diff != nil && ev.Diff.Changed {
			if text := ev.Diff.Render(); text != "" {
				fmt.Fprintln(out, text)
			}
		}
		for _, op := range ev.Plan.Ops {
			fmt.Fprintf(out, "    - %s\n", op.Desc)
		}
	}

	if drifted > 0 {
		return fmt.Errorf("%d resource(s) differ from the manifest", drifted)
	}
	return nil
}
