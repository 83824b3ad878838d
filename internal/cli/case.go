package cli

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cipapi-client/pkg/cipapi"
	"github.com/cipapi-client/pkg/cva"
	"github.com/cipapi-client/pkg/reports"
)

// CaseSummary is what `case get` prints unless the raw payload is asked for
type CaseSummary struct {
	ID                       string           `json:"id"`
	Version                  int              `json:"version"`
	Program                  reports.Program  `json:"program"`
	Assembly                 reports.Assembly `json:"assembly"`
	GroupID                  string           `json:"groupId"`
	CohortID                 string           `json:"cohortId"`
	LastStatus               string           `json:"lastStatus"`
	CasePriority             int              `json:"casePriority"`
	Samples                  []string         `json:"samples"`
	InterpretedGenomeVersion int              `json:"interpretedGenomeVersion,omitempty"`
	InterpretationService    string           `json:"interpretationService,omitempty"`
	ClinicalReportVersion    int              `json:"clinicalReportVersion,omitempty"`
	ClinicalReports          int              `json:"clinicalReports"`
	HasExitQuestionnaire     bool             `json:"hasExitQuestionnaire"`
	Blocked                  bool             `json:"blocked"`
}

// NewCaseSummary summarises c
func NewCaseSummary(c *cipapi.Case) CaseSummary {
	return CaseSummary{
		ID:                       c.CaseID(),
		Version:                  c.CaseVersion(),
		Program:                  c.Program(),
		Assembly:                 c.Assembly(),
		GroupID:                  c.GroupID(),
		CohortID:                 c.CohortID(),
		LastStatus:               c.Header.LastStatus,
		CasePriority:             c.Header.CasePriority,
		Samples:                  c.Samples(),
		InterpretedGenomeVersion: c.InterpretedGenomeVersion(),
		InterpretationService:    c.InterpretationServiceVersion(),
		ClinicalReportVersion:    c.ClinicalReportVersion(),
		ClinicalReports:          c.NumberOfClinicalReports(),
		HasExitQuestionnaire:     c.HasExitQuestionnaire(),
		Blocked:                  c.Header.IsBlocked(),
	}
}

func newCaseCmd() *cobra.Command {
	caseCmd := &cobra.Command{
		Use:   "case",
		Short: "Work with a single case",
	}

	var raw bool
	getCmd := &cobra.Command{
		Use:   "get ID VERSION",
		Short: "Fetch a case and print its summary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCaseGet(cmd, args, raw)
		},
	}
	getCmd.Flags().BoolVar(&raw, "raw", false, "Print the payload returned by the service")

	var kind string
	injectCmd := &cobra.Command{
		Use:   "inject ID VERSION",
		Short: "Build a CVA inject record from a case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCaseInject(cmd, args, kind)
		},
	}
	injectCmd.Flags().StringVar(&kind, "kind", "", "Inject kind: tiered|candidate|reported|exit-questionnaire (required)")
	_ = injectCmd.MarkFlagRequired("kind")

	caseCmd.AddCommand(getCmd, injectCmd)
	return caseCmd
}

func runCaseGet(cmd *cobra.Command, args []string, raw bool) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	caseID, version, err := parseCaseArgs(args)
	if err != nil {
		return err
	}

	printer, err := NewPrinter(cmd.OutOrStdout(), cliCtx.OutputFormat)
	if err != nil {
		return err
	}
	defer printer.Close()

	if raw {
		payload, err := cliCtx.Client.GetCaseRaw(cmd.Context(), caseID, version, nil)
		if err != nil {
			return err
		}
		var doc interface{}
		if err := json.Unmarshal(payload, &doc); err != nil {
			return fmt.Errorf("failed to decode case %s: %w", caseID, err)
		}
		return printer.Print(doc)
	}

	c, err := cliCtx.Client.GetCase(cmd.Context(), caseID, version, nil)
	if err != nil {
		return err
	}
	return printer.Print(NewCaseSummary(c))
}

func runCaseInject(cmd *cobra.Command, args []string, kindName string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	kind, err := cva.ParseKind(kindName)
	if err != nil {
		return err
	}
	caseID, version, err := parseCaseArgs(args)
	if err != nil {
		return err
	}

	c, err := cliCtx.Client.GetCase(cmd.Context(), caseID, version, nil)
	if err != nil {
		return err
	}
	inject, err := buildInject(cmd, cliCtx, kind, c)
	if err != nil {
		return err
	}

	printer, err := NewPrinter(cmd.OutOrStdout(), cliCtx.OutputFormat)
	if err != nil {
		return err
	}
	defer printer.Close()
	return printer.Print(inject)
}

// buildInject fetches the exit questionnaire first when the kind needs it
func buildInject(cmd *cobra.Command, cliCtx *CLIContext, kind cva.Kind, c *cipapi.Case) (cva.Inject, error) {
	if kind == cva.KindExitQuestionnaire && !c.HasExitQuestionnaire() {
		if err := c.LoadExitQuestionnaire(cmd.Context(), cliCtx.Client, nil); err != nil {
			return nil, err
		}
	}
	inject, err := cva.Build(kind, c)
	if err != nil {
		return nil, err
	}
	cliCtx.Logger.WithFields(logrus.Fields{
		"case_id":      c.CaseID(),
		"case_version": c.CaseVersion(),
		"kind":         kind,
	}).Debug("Built inject")
	return inject, nil
}
