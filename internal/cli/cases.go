package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cipapi-client/pkg/cipapi"
)

// listOptions are the filters shared by the commands walking the case list
type listOptions struct {
	GroupID    string
	SampleType string
	Status     string
	Limit      int
}

func (o *listOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.GroupID, "group-id", "", "Family or cancer participant id")
	cmd.Flags().StringVar(&o.SampleType, "sample-type", "", "Program filter: raredisease|cancer")
	cmd.Flags().StringVar(&o.Status, "status", "", "Last status filter, e.g. sent_to_gmcs")
	cmd.Flags().IntVar(&o.Limit, "limit", 0, "Maximum number of cases, 0 for all")
}

func (o *listOptions) params() url.Values {
	params := url.Values{}
	if o.GroupID != "" {
		params.Set("group_id", o.GroupID)
	}
	if o.SampleType != "" {
		params.Set("sample_type", o.SampleType)
	}
	if o.Status != "" {
		params.Set("last_status", o.Status)
	}
	return params
}

func newCasesCmd() *cobra.Command {
	casesCmd := &cobra.Command{
		Use:   "cases",
		Short: "Work with the case list",
	}

	opts := &listOptions{}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List case overviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCasesList(cmd, opts)
		},
	}
	opts.register(listCmd)

	casesCmd.AddCommand(listCmd)
	return casesCmd
}

func runCasesList(cmd *cobra.Command, opts *listOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	it, err := cliCtx.Client.ListCases(cmd.Context(), opts.params())
	if err != nil {
		return err
	}
	overviews := []cipapi.CaseOverview{}
	for it.Next() {
		overviews = append(overviews, it.Item())
		if opts.Limit > 0 && len(overviews) >= opts.Limit {
			break
		}
	}
	if err := it.Err(); err != nil {
		return err
	}
	cliCtx.Logger.WithField("count", len(overviews)).Debug("Listed cases")

	printer, err := NewPrinter(cmd.OutOrStdout(), cliCtx.OutputFormat)
	if err != nil {
		return err
	}
	defer printer.Close()
	return printer.Print(overviews)
}

// parseCaseArgs reads the ID VERSION positional arguments
func parseCaseArgs(args []string) (string, int, error) {
	version, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid case version %q: %w", args[1], err)
	}
	return args[0], version, nil
}
