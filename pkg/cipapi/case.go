package cipapi

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/cipapi-client/pkg/cva"
	"github.com/cipapi-client/pkg/reports"
)

const (
	sampleTypeRareDisease = "raredisease"
	sampleTypeCancer      = "cancer"
)

var _ cva.Case = (*Case)(nil)

type interpretationRequestData struct {
	JSONRequest json.RawMessage `json:"json_request"`
}

type caseWire struct {
	CaseHeader
	InterpretationRequestData interpretationRequestData `json:"interpretation_request_data"`
	InterpretedGenome         []json.RawMessage         `json:"interpreted_genome"`
	ClinicalReport            []json.RawMessage         `json:"clinical_report"`
}

// Case is a versioned interpretation request together with its reports. The
// interpretation request is migrated once on construction; interpreted genomes,
// clinical reports and exit questionnaires are migrated on every access.
type Case struct {
	Header CaseHeader

	id       string
	version  int
	program  reports.Program
	assembly reports.Assembly
	groupID  string
	cohortID string

	interpretationRequest reports.InterpretationRequest
	tieringGenome         *reports.InterpretedGenome

	interpretedGenomes []InterpretedGenomeRecord
	clinicalReports    []ClinicalReportRecord
	latestGenome       *InterpretedGenomeRecord
	latestReport       *ClinicalReportRecord
	exitQuestionnaire  *ExitQuestionnaireRecord

	registry *reports.Registry
}

// NewCase builds a case from the payload of the case detail endpoint. A nil registry
// selects the built-in migration chains.
func NewCase(raw json.RawMessage, registry *reports.Registry) (*Case, error) {
	if registry == nil {
		registry = reports.NewRegistry()
	}

	var wire caseWire
	if err := decodeRecord(raw, &wire); err != nil {
		return nil, &ParsingError{Field: "case", Err: err}
	}
	header := wire.CaseHeader
	header.Raw = raw

	c := &Case{
		Header:   header,
		id:       header.InterpretationRequestID,
		version:  header.Version,
		cohortID: header.CohortID,
		registry: registry,
	}
	if c.id == "" {
		return nil, &ParsingError{Field: "interpretation_request_id"}
	}

	program, ok := programOf(header.SampleType)
	if !ok {
		return nil, &ProgramError{CaseID: c.id, SampleType: header.SampleType}
	}
	c.program = program

	if header.Assembly != "" {
		assembly, err := reports.ParseAssembly(header.Assembly)
		if err != nil {
			return nil, &ParsingError{CaseID: c.id, Field: "assembly", Err: err}
		}
		c.assembly = assembly
	}

	if !isPresent(wire.InterpretationRequestData.JSONRequest) {
		return nil, &ParsingError{CaseID: c.id, Field: "interpretation_request_data.json_request"}
	}
	if err := c.migrateInterpretationRequest(wire.InterpretationRequestData.JSONRequest); err != nil {
		return nil, err
	}
	c.tieringGenome = c.interpretationRequest.TieringInterpretedGenome()

	for _, entry := range wire.InterpretedGenome {
		if !isObject(entry) {
			continue
		}
		record, err := NewInterpretedGenomeRecord(entry)
		if err != nil {
			return nil, withCaseID(err, c.id)
		}
		c.interpretedGenomes = append(c.interpretedGenomes, record)
	}
	for _, entry := range wire.ClinicalReport {
		if !isObject(entry) {
			continue
		}
		record, err := NewClinicalReportRecord(entry)
		if err != nil {
			return nil, withCaseID(err, c.id)
		}
		c.clinicalReports = append(c.clinicalReports, record)
	}
	c.latestGenome = latest(c.interpretedGenomes, func(r InterpretedGenomeRecord) string { return r.CreatedAt })
	c.latestReport = latest(c.clinicalReports, func(r ClinicalReportRecord) string { return r.CreatedAt })

	if c.latestReport != nil && isPresent(c.latestReport.ExitQuestionnaire) {
		eq, err := NewExitQuestionnaireRecord(c.latestReport.ExitQuestionnaire)
		if err != nil {
			return nil, withCaseID(err, c.id)
		}
		c.exitQuestionnaire = &eq
	}

	c.groupID = header.GroupID
	if c.groupID == "" {
		if c.program == reports.ProgramCancer {
			c.groupID = header.CancerParticipantID
		} else {
			c.groupID = header.FamilyID
		}
	}
	return c, nil
}

func programOf(sampleType string) (reports.Program, bool) {
	switch sampleType {
	case sampleTypeRareDisease:
		return reports.ProgramRareDisease, true
	case sampleTypeCancer:
		return reports.ProgramCancer, true
	}
	return "", false
}

func withCaseID(err error, caseID string) error {
	var pe *ParsingError
	if errors.As(err, &pe) {
		qualified := *pe
		qualified.CaseID = caseID
		return &qualified
	}
	return err
}

func (c *Case) migrateInterpretationRequest(raw json.RawMessage) error {
	mctx := reports.Context{
		Assembly:                     c.assembly,
		InterpretationRequestID:      c.id,
		InterpretationRequestVersion: c.version,
	}
	switch c.program {
	case reports.ProgramRareDisease:
		ir, err := c.registry.MigrateInterpretationRequestRD(raw, mctx)
		if err != nil {
			return err
		}
		c.interpretationRequest = ir
		if c.assembly == "" {
			c.assembly = ir.GenomeAssembly
		}
	case reports.ProgramCancer:
		ir, err := c.registry.MigrateCancerInterpretationRequest(raw, mctx)
		if err != nil {
			return err
		}
		c.interpretationRequest = ir
		if c.assembly == "" {
			c.assembly = ir.GenomeAssembly
		}
	}
	return nil
}

// latest returns the record with the greatest creation time. Among equal times the
// last one in input order wins.
func latest[T any](records []T, createdAt func(T) string) *T {
	var best *T
	for i := range records {
		if best == nil || !createdBefore(createdAt(records[i]), createdAt(*best)) {
			best = &records[i]
		}
	}
	return best
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// createdBefore compares timestamps. One that fails to parse counts as the zero time,
// so it sorts before every dated record and ties with other undated ones.
func createdBefore(a, b string) bool {
	ta, _ := parseTimestamp(a)
	tb, _ := parseTimestamp(b)
	return ta.Before(tb)
}

// CaseID returns the interpretation request id
func (c *Case) CaseID() string { return c.id }

// CaseVersion returns the interpretation request version
func (c *Case) CaseVersion() int { return c.version }

// Program returns the program derived from the sample type
func (c *Case) Program() reports.Program { return c.program }

// Assembly returns the reference genome of the case
func (c *Case) Assembly() reports.Assembly { return c.assembly }

// GroupID returns the family id or cancer participant id of the case
func (c *Case) GroupID() string { return c.groupID }

// CohortID returns the cohort of the case
func (c *Case) CohortID() string { return c.cohortID }

// IsRareDisease reports whether the case belongs to the rare disease program
func (c *Case) IsRareDisease() bool { return c.program == reports.ProgramRareDisease }

// IsCancer reports whether the case belongs to the cancer program
func (c *Case) IsCancer() bool { return c.program == reports.ProgramCancer }

// IsAssembly37 reports whether the case is aligned to GRCh37
func (c *Case) IsAssembly37() bool { return c.assembly == reports.AssemblyGRCh37 }

// IsAssembly38 reports whether the case is aligned to GRCh38
func (c *Case) IsAssembly38() bool { return c.assembly == reports.AssemblyGRCh38 }

// InterpretationRequest returns the canonical interpretation request
func (c *Case) InterpretationRequest() (reports.InterpretationRequest, error) {
	return c.interpretationRequest, nil
}

// TieringInterpretedGenome returns the tiering output bundled in the interpretation request
func (c *Case) TieringInterpretedGenome() (*reports.InterpretedGenome, error) {
	return c.tieringGenome, nil
}

// HasInterpretedGenome reports whether an interpretation service returned a genome
func (c *Case) HasInterpretedGenome() bool { return c.latestGenome != nil }

// HasClinicalReport reports whether a clinical report was submitted
func (c *Case) HasClinicalReport() bool { return c.latestReport != nil }

// HasExitQuestionnaire reports whether the exit questionnaire of the latest report is known
func (c *Case) HasExitQuestionnaire() bool { return c.exitQuestionnaire != nil }

// HasBeenInterpreted reports whether any interpreted genome is attached
func (c *Case) HasBeenInterpreted() bool { return len(c.interpretedGenomes) > 0 }

// HasClinicalReports reports whether any clinical report is attached
func (c *Case) HasClinicalReports() bool { return len(c.clinicalReports) > 0 }

// NumberOfClinicalReports counts the attached clinical reports
func (c *Case) NumberOfClinicalReports() int { return len(c.clinicalReports) }

// LatestInterpretedGenome returns the raw record of the latest interpreted genome
func (c *Case) LatestInterpretedGenome() *InterpretedGenomeRecord { return c.latestGenome }

// LatestClinicalReport returns the raw record of the latest clinical report
func (c *Case) LatestClinicalReport() *ClinicalReportRecord { return c.latestReport }

// ExitQuestionnaire returns the raw record of the exit questionnaire
func (c *Case) ExitQuestionnaire() *ExitQuestionnaireRecord { return c.exitQuestionnaire }

// InterpretedGenomeVersion returns the version of the latest interpreted genome, 0 without one
func (c *Case) InterpretedGenomeVersion() int {
	if c.latestGenome == nil {
		return 0
	}
	return c.latestGenome.CIPVersion
}

// InterpretationServiceVersion returns the service version of the latest interpreted genome
func (c *Case) InterpretationServiceVersion() string {
	if c.latestGenome == nil {
		return ""
	}
	return c.latestGenome.ServiceVersion()
}

// ClinicalReportVersion returns the version of the latest clinical report, 0 without one
func (c *Case) ClinicalReportVersion() int {
	if c.latestReport == nil {
		return 0
	}
	return c.latestReport.ClinicalReportVersion
}

// reportContext carries what the report chains need beyond the payload. Cancer reports
// are keyed by the participant and its first tumour sample.
func (c *Case) reportContext() (reports.Context, error) {
	mctx := reports.Context{
		Assembly:                     c.assembly,
		InterpretationRequestID:      c.id,
		InterpretationRequestVersion: c.version,
	}
	if c.program != reports.ProgramCancer {
		return mctx, nil
	}
	participant, _ := c.CancerParticipant()
	if participant == nil || len(participant.TumourSamples) == 0 {
		return mctx, &ParsingError{CaseID: c.id, Field: "cancerParticipant.tumourSamples"}
	}
	mctx.ParticipantID = participant.IndividualID
	mctx.SampleID = participant.TumourSamples[0].SampleID
	return mctx, nil
}

// InterpretedGenome migrates the latest interpreted genome; nil when there is none
func (c *Case) InterpretedGenome() (*reports.InterpretedGenome, error) {
	if c.latestGenome == nil {
		return nil, nil
	}
	mctx, err := c.reportContext()
	if err != nil {
		return nil, err
	}
	return c.registry.MigrateInterpretedGenome(c.program, c.latestGenome.InterpretedGenomeData, mctx)
}

// ClinicalReport migrates the latest clinical report; nil when there is none
func (c *Case) ClinicalReport() (*reports.ClinicalReport, error) {
	if c.latestReport == nil {
		return nil, nil
	}
	mctx, err := c.reportContext()
	if err != nil {
		return nil, err
	}
	return c.registry.MigrateClinicalReport(c.program, c.latestReport.ClinicalReportData, mctx)
}

// RareDiseaseExitQuestionnaire migrates the exit questionnaire of a rare disease case;
// nil for cancer cases and when the questionnaire is unknown
func (c *Case) RareDiseaseExitQuestionnaire() (*reports.RareDiseaseExitQuestionnaire, error) {
	if c.program != reports.ProgramRareDisease || c.exitQuestionnaire == nil {
		return nil, nil
	}
	mctx, err := c.reportContext()
	if err != nil {
		return nil, err
	}
	return c.registry.MigrateRareDiseaseExitQuestionnaire(c.exitQuestionnaire.ExitQuestionnaireData, mctx)
}

// CancerExitQuestionnaire migrates the exit questionnaire of a cancer case;
// nil for rare disease cases and when the questionnaire is unknown
func (c *Case) CancerExitQuestionnaire() (*reports.CancerExitQuestionnaire, error) {
	if c.program != reports.ProgramCancer || c.exitQuestionnaire == nil {
		return nil, nil
	}
	mctx, err := c.reportContext()
	if err != nil {
		return nil, err
	}
	return c.registry.MigrateCancerExitQuestionnaire(c.exitQuestionnaire.ExitQuestionnaireData, mctx)
}

// Pedigree returns the pedigree of a rare disease case, nil for cancer cases
func (c *Case) Pedigree() (*reports.Pedigree, error) {
	ir, ok := c.interpretationRequest.(*reports.InterpretationRequestRD)
	if !ok {
		return nil, nil
	}
	return ir.Pedigree, nil
}

// Proband returns the pedigree member flagged as proband. A pedigree flagging no
// proband or several of them yields a ProbandError.
func (c *Case) Proband() (*reports.PedigreeMember, error) {
	pedigree, err := c.Pedigree()
	if err != nil || pedigree == nil {
		return nil, err
	}
	var (
		proband *reports.PedigreeMember
		count   int
	)
	for i := range pedigree.Members {
		if pedigree.Members[i].IsProband {
			proband = &pedigree.Members[i]
			count++
		}
	}
	if count != 1 {
		return nil, &ProbandError{FamilyID: pedigree.FamilyID, Count: count}
	}
	return proband, nil
}

// CancerParticipant returns the participant of a cancer case, nil for rare disease cases
func (c *Case) CancerParticipant() (*reports.CancerParticipant, error) {
	ir, ok := c.interpretationRequest.(*reports.CancerInterpretationRequest)
	if !ok {
		return nil, nil
	}
	return ir.CancerParticipant, nil
}

// Samples lists the sample ids of the case: every pedigree member sample of a rare
// disease case, the germline and tumour sample of each matched pair of a cancer case
func (c *Case) Samples() []string {
	var samples []string
	switch ir := c.interpretationRequest.(type) {
	case *reports.InterpretationRequestRD:
		if ir.Pedigree == nil {
			return nil
		}
		for _, member := range ir.Pedigree.Members {
			for _, sample := range member.Samples {
				samples = append(samples, sample.SampleID)
			}
		}
	case *reports.CancerInterpretationRequest:
		if ir.CancerParticipant == nil {
			return nil
		}
		for _, matched := range ir.CancerParticipant.MatchedSamples {
			samples = append(samples, matched.GermlineSampleID, matched.TumourSampleID)
		}
	}
	return samples
}

// EnsureNotBlocked returns a BlockedCaseError for blocked cases
func (c *Case) EnsureNotBlocked() error {
	if c.Header.IsBlocked() {
		return &BlockedCaseError{CaseID: c.id, CaseVersion: c.version}
	}
	return nil
}

// Less orders cases by numeric id, then version
func (c *Case) Less(other *Case) bool {
	if c.id != other.id {
		a, errA := strconv.Atoi(c.id)
		b, errB := strconv.Atoi(other.id)
		if errA == nil && errB == nil {
			return a < b
		}
		return c.id < other.id
	}
	return c.version < other.version
}
