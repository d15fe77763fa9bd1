package cliapp

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	coreapp "grammarcheck/internal/app"
	"grammarcheck/internal/engine/artifact"

	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("validation failed")

func newGenerateCommand(opts *globalOptions) *cobra.Command {
	var over overrides
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the grammar bindings for the target platform",
		Long: `generate locates the archive and sidecar for the target triple, filters the
grammars to the validation subset and writes the cgo bindings file. A failed
run removes previously generated bindings so the validator cannot build
against stale artifacts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := setup(cmd, opts, over)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a, &err)

			res, err := a.Generate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Describe())
			return nil
		},
	}
	cmd.Flags().StringVar(&over.target, "target", "", "target triple (default: resolved from TARGET, GOOS/GOARCH, HOST or the running host)")
	cmd.Flags().StringVar(&over.dist, "dist", "", "directory holding the archive and sidecar, relative to the module root")
	cmd.Flags().StringVar(&over.output, "out", "", "bindings file to write, relative to the module root")
	return cmd
}

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var over overrides
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate bindings whenever the archive or sidecar changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			a, err := setup(cmd, opts, over)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a, &err)
			return a.Watch(ctx)
		},
	}
	cmd.Flags().StringVar(&over.target, "target", "", "target triple")
	cmd.Flags().StringVar(&over.dist, "dist", "", "directory holding the archive and sidecar")
	cmd.Flags().StringVar(&over.output, "out", "", "bindings file to write")
	return cmd
}

func newTargetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the supported target triples and their archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, source := artifact.ResolveTriple(nil)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TRIPLE\tGOOS/GOARCH\tARCHIVE\t")
			for _, p := range artifact.SupportedPlatforms() {
				marker := ""
				if p.Triple == current {
					marker = "(" + string(source) + ")"
				}
				fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\n", p.Triple, p.GOOS, p.GOARCH, p.Archive, marker)
			}
			return tw.Flush()
		},
	}
}

func newProbeCommand(opts *globalOptions) *cobra.Command {
	var (
		shared    string
		languages []string
	)
	cmd := &cobra.Command{
		Use:   "probe --shared <lib>",
		Short: "Validate grammars exported by a shared library",
		Long: `probe opens a shared grammar library with dlopen, resolves each grammar's
entry point with the same symbol naming the generator uses and runs the
validation harness over them. Not available on Windows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := setup(cmd, opts, overrides{})
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a, &err)

			summary, err := a.Probe(cmd.Context(), shared, languages, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if coreapp.ExitCode(summary) != 0 {
				return errValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&shared, "shared", "", "shared library exporting tree_sitter_<name> entry points")
	cmd.Flags().StringSliceVar(&languages, "languages", nil, "grammars to probe (default: the configured subset languages)")
	_ = cmd.MarkFlagRequired("shared")
	return cmd
}
