package cli

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cipapi-client/pkg/cipapi"
	"github.com/cipapi-client/pkg/cva"
)

// errLimitReached stops the walk once enough injects are written
var errLimitReached = errors.New("limit reached")

func newExportCmd() *cobra.Command {
	opts := &listOptions{}
	var kind string

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Build an inject record for every listed case",
		Long: `Walks the case list and writes one inject record per case, one JSON document per line.
Cases lacking the record the inject is built from are skipped, as are blocked cases and
cases that cannot be parsed or migrated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, kind)
		},
	}
	opts.register(exportCmd)
	exportCmd.Flags().StringVar(&kind, "kind", "", "Inject kind: tiered|candidate|reported|exit-questionnaire (required)")
	_ = exportCmd.MarkFlagRequired("kind")

	return exportCmd
}

func runExport(cmd *cobra.Command, opts *listOptions, kindName string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	kind, err := cva.ParseKind(kindName)
	if err != nil {
		return err
	}

	printer, err := NewPrinter(cmd.OutOrStdout(), cliCtx.OutputFormat)
	if err != nil {
		return err
	}
	defer printer.Close()

	written, skipped := 0, 0
	err = cliCtx.Client.WalkCases(cmd.Context(), opts.params(), func(c *cipapi.Case) error {
		inject, err := buildInject(cmd, cliCtx, kind, c)
		if errors.Is(err, cva.ErrMissingRecord) {
			skipped++
			cliCtx.Logger.WithFields(logrus.Fields{
				"case_id":      c.CaseID(),
				"case_version": c.CaseVersion(),
			}).WithError(err).Debug("Skipping case")
			return nil
		}
		if err != nil {
			return err
		}
		if err := printer.Stream(inject); err != nil {
			return err
		}
		written++
		if opts.Limit > 0 && written >= opts.Limit {
			return errLimitReached
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return err
	}

	cliCtx.Logger.WithFields(logrus.Fields{
		"kind":    kind,
		"written": written,
		"skipped": skipped,
	}).Info("Export finished")
	return nil
}
