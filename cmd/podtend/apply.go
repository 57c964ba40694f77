package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/podtend/podtend/internal/config"
	"github.com/podtend/podtend/internal/logger"
	"github.com/podtend/podtend/internal/reconcile"
)

type applyOptions struct {
	ManifestPath string
	DryRun       bool
	Verbose      bool
}

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile every resource in a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose
			return runApply(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ManifestPath, "file", "f", "podtend.yaml", "Path to the manifest file")

	return cmd
}

func runApply(out io.Writer, opts applyOptions) error {
	manifest, err := config.ParseManifest(opts.ManifestPath)
	if err != nil {
		return err
	}

	effectiveVerbose := opts.Verbose || manifest.Settings.Verbose
	log, err := newCmdLogger(effectiveVerbose)
	if err != nil {
		return err
	}

	engine := newEngine(manifest.Settings, opts.DryRun, log)

	ctx := context.Background()
	var summary runSummary
	for _, res := range manifest.Resources {
		result := engine.Reconcile(ctx, res.Spec())
		summary.count(result)
		renderResult(out, result, effectiveVerbose)
	}

	renderSummary(out, summary, opts.DryRun || manifest.Settings.DryRun)
	if summary.failed > 0 {
		return fmt.Errorf("%d resource(s) failed", summary.failed)
	}
	return nil
}

func newEngine(settings config.Settings, dryRunFlag bool, log *logger.Logger) *reconcile.Engine {
	return reconcile.New(reconcile.Config{
		Executable: settings.Executable,
		GlobalArgs: settings.GlobalArgs,
		Timeout:    settings.TimeoutDuration(),
		DryRun:     dryRunFlag || settings.DryRun,
		Logger:     log,
	})
}
