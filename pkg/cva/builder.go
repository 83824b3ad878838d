package cva

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cipapi-client/pkg/reports"
)

// TieringAuthor is the author of every tiered variant inject
const TieringAuthor = "tiering"

// Case is the view of a case the builder reads. Getters compute the canonical records
// on each call and return nil without error when the case has no such record.
type Case interface {
	CaseID() string
	CaseVersion() int
	Program() reports.Program
	Assembly() reports.Assembly
	GroupID() string
	CohortID() string

	InterpretationRequest() (reports.InterpretationRequest, error)
	TieringInterpretedGenome() (*reports.InterpretedGenome, error)
	InterpretedGenome() (*reports.InterpretedGenome, error)
	InterpretedGenomeVersion() int
	InterpretationServiceVersion() string
	ClinicalReport() (*reports.ClinicalReport, error)
	ClinicalReportVersion() int
	RareDiseaseExitQuestionnaire() (*reports.RareDiseaseExitQuestionnaire, error)
	CancerExitQuestionnaire() (*reports.CancerExitQuestionnaire, error)
}

// Build dispatches to the builder of kind
func Build(kind Kind, c Case) (Inject, error) {
	switch kind {
	case KindTieredVariant:
		return TieredVariantInject(c)
	case KindCandidateVariant:
		return CandidateVariantInject(c)
	case KindReportedVariant:
		return ReportedVariantInject(c)
	case KindExitQuestionnaire:
		return ExitQuestionnaireInject(c)
	}
	return nil, NewValidationError("kind", "unknown inject kind", string(kind))
}

// ParseKind accepts the inject kinds by name, with dashes or underscores
func ParseKind(s string) (Kind, error) {
	kind := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch kind {
	case KindTieredVariant, KindCandidateVariant, KindReportedVariant, KindExitQuestionnaire:
		return kind, nil
	case "tiered":
		return KindTieredVariant, nil
	case "candidate":
		return KindCandidateVariant, nil
	case "reported":
		return KindReportedVariant, nil
	}
	return "", NewValidationError("kind", "unknown inject kind", s)
}

// composedID is the id of records derived from a case
func composedID(c Case) string {
	return fmt.Sprintf("%s-%d", c.CaseID(), c.CaseVersion())
}

func unsupportedProgram(c Case) error {
	return NewValidationError("program", "unsupported program", string(c.Program()))
}

// TieredVariantInject maps the tiering output of a case
func TieredVariantInject(c Case) (Inject, error) {
	ir, err := c.InterpretationRequest()
	if err != nil {
		return nil, err
	}
	if ir == nil {
		return nil, missing("interpretation request")
	}
	ig, err := c.TieringInterpretedGenome()
	if err != nil {
		return nil, err
	}
	if ig == nil {
		return nil, missing("tiering interpreted genome")
	}

	header := InjectHeader{
		ID:                 c.CaseID(),
		Version:            c.CaseVersion(),
		Assembly:           c.Assembly(),
		Author:             TieringAuthor,
		AuthorVersion:      lookup(ig.SoftwareVersions, TieringAuthor),
		Workspace:          ir.Workspaces(),
		GroupID:            c.GroupID(),
		CohortID:           c.CohortID(),
		ReportModelVersion: ig.VersionControl.GitVersionControl,
	}
	switch c.Program() {
	case reports.ProgramRareDisease:
		return &TieredVariantInjectRD{InjectHeader: header, InterpretedGenome: ig}, nil
	case reports.ProgramCancer:
		return &TieredVariantInjectCancer{InjectHeader: header, InterpretedGenome: ig}, nil
	}
	return nil, unsupportedProgram(c)
}

// CandidateVariantInject maps the latest interpreted genome of a case
func CandidateVariantInject(c Case) (Inject, error) {
	ir, err := c.InterpretationRequest()
	if err != nil {
		return nil, err
	}
	if ir == nil {
		return nil, missing("interpretation request")
	}
	ig, err := c.InterpretedGenome()
	if err != nil {
		return nil, err
	}
	if ig == nil {
		return nil, missing("interpreted genome")
	}

	serviceVersion := c.InterpretationServiceVersion()
	header := InjectHeader{
		ID:                 composedID(c),
		Version:            c.InterpretedGenomeVersion(),
		ParentID:           c.CaseID(),
		ParentVersion:      c.CaseVersion(),
		Assembly:           c.Assembly(),
		Author:             ig.InterpretationService,
		AuthorVersion:      &serviceVersion,
		Workspace:          ir.Workspaces(),
		GroupID:            c.GroupID(),
		CohortID:           c.CohortID(),
		ReportModelVersion: ig.VersionControl.GitVersionControl,
	}
	switch c.Program() {
	case reports.ProgramRareDisease:
		return &CandidateVariantInjectRD{InjectHeader: header, InterpretedGenome: ig}, nil
	case reports.ProgramCancer:
		return &CandidateVariantInjectCancer{InjectHeader: header, InterpretedGenome: ig}, nil
	}
	return nil, unsupportedProgram(c)
}

// ReportedVariantInject maps the latest clinical report of a case
func ReportedVariantInject(c Case) (Inject, error) {
	ir, err := c.InterpretationRequest()
	if err != nil {
		return nil, err
	}
	if ir == nil {
		return nil, missing("interpretation request")
	}
	cr, err := c.ClinicalReport()
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, missing("clinical report")
	}

	header := derivedHeader(c, ir, cr.User)
	switch c.Program() {
	case reports.ProgramRareDisease:
		return &ReportedVariantInjectRD{InjectHeader: header, ClinicalReport: cr}, nil
	case reports.ProgramCancer:
		return &ReportedVariantInjectCancer{InjectHeader: header, ClinicalReport: cr}, nil
	}
	return nil, unsupportedProgram(c)
}

// ExitQuestionnaireInject maps the exit questionnaire of the latest clinical report
func ExitQuestionnaireInject(c Case) (Inject, error) {
	ir, err := c.InterpretationRequest()
	if err != nil {
		return nil, err
	}
	if ir == nil {
		return nil, missing("interpretation request")
	}

	switch c.Program() {
	case reports.ProgramRareDisease:
		eq, err := c.RareDiseaseExitQuestionnaire()
		if err != nil {
			return nil, err
		}
		if eq == nil {
			return nil, missing("exit questionnaire")
		}
		flattened, err := exitQuestionnaireRD(eq, c.Assembly())
		if err != nil {
			return nil, err
		}
		return &ExitQuestionnaireInjectRD{
			InjectHeader:        derivedHeader(c, ir, eq.Reporter),
			ExitQuestionnaireRD: flattened,
		}, nil

	case reports.ProgramCancer:
		eq, err := c.CancerExitQuestionnaire()
		if err != nil {
			return nil, err
		}
		if eq == nil {
			return nil, missing("exit questionnaire")
		}
		germline, err := germlineQuestionnaires(eq.GermlineVariantLevelQuestions, c.Assembly())
		if err != nil {
			return nil, err
		}
		somatic, err := somaticQuestionnaires(eq.SomaticVariantLevelQuestions, c.Assembly())
		if err != nil {
			return nil, err
		}
		// otherActionableVariants has no string encoding in the inject model yet
		return &ExitQuestionnaireInjectCancer{
			InjectHeader:                     derivedHeader(c, ir, eq.Reporter),
			CancerGermlineExitQuestionnaires: germline,
			CancerSomaticExitQuestionnaires:  somatic,
			CancerCaseLevelQuestions:         eq.CaseLevelQuestions,
			AdditionalComments:               eq.AdditionalComments,
		}, nil
	}
	return nil, unsupportedProgram(c)
}

// derivedHeader is shared by the clinical report based injects
func derivedHeader(c Case, ir reports.InterpretationRequest, author string) InjectHeader {
	return InjectHeader{
		ID:                 composedID(c),
		Version:            c.ClinicalReportVersion(),
		ParentID:           c.CaseID(),
		ParentVersion:      c.CaseVersion(),
		Assembly:           c.Assembly(),
		Author:             author,
		Workspace:          ir.Workspaces(),
		GroupID:            c.GroupID(),
		CohortID:           c.CohortID(),
		ReportModelVersion: ir.ModelVersion(),
	}
}

func exitQuestionnaireRD(eq *reports.RareDiseaseExitQuestionnaire, assembly reports.Assembly) (ExitQuestionnaireRD, error) {
	variants := []ReportedVariantQuestionnaireRD{}
	for _, group := range eq.VariantGroupLevelQuestions {
		for _, question := range group.VariantLevelQuestions {
			coordinates, err := ParseVariantDetails(question.VariantDetails, assembly)
			if err != nil {
				return ExitQuestionnaireRD{}, err
			}
			variants = append(variants, ReportedVariantQuestionnaireRD{
				VariantCoordinates: coordinates,
				ReportEvent: ReportEventQuestionnaireRD{
					GroupOfVariants:            group.VariantGroup,
					VariantLevelQuestions:      question,
					VariantGroupLevelQuestions: group,
					FamilyLevelQuestions:       eq.FamilyLevelQuestions,
				},
			})
		}
	}
	return ExitQuestionnaireRD{Variants: variants}, nil
}

func germlineQuestionnaires(questions []reports.CancerGermlineVariantLevelQuestions, assembly reports.Assembly) ([]CancerGermlineVariantLevelQuestionnaire, error) {
	out := []CancerGermlineVariantLevelQuestionnaire{}
	for _, question := range questions {
		coordinates, err := ParseVariantDetails(question.VariantDetails, assembly)
		if err != nil {
			return nil, err
		}
		out = append(out, CancerGermlineVariantLevelQuestionnaire{VariantCoordinates: coordinates, VariantLevelQuestions: question})
	}
	return out, nil
}

func somaticQuestionnaires(questions []reports.CancerSomaticVariantLevelQuestions, assembly reports.Assembly) ([]CancerSomaticVariantLevelQuestionnaire, error) {
	out := []CancerSomaticVariantLevelQuestionnaire{}
	for _, question := range questions {
		coordinates, err := ParseVariantDetails(question.VariantDetails, assembly)
		if err != nil {
			return nil, err
		}
		out = append(out, CancerSomaticVariantLevelQuestionnaire{VariantCoordinates: coordinates, VariantLevelQuestions: question})
	}
	return out, nil
}

// ParseVariantDetails decodes "chromosome:position:reference:alternate"
func ParseVariantDetails(details string, assembly reports.Assembly) (reports.VariantCoordinates, error) {
	parts := strings.Split(details, ":")
	if len(parts) != 4 {
		return reports.VariantCoordinates{}, NewValidationError("variantDetails",
			"expected format chromosome:position:reference:alternate", details)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	position, err := strconv.Atoi(parts[1])
	if err != nil {
		return reports.VariantCoordinates{}, NewValidationError("variantDetails",
			fmt.Sprintf("position %q is not an integer", parts[1]), details)
	}
	return reports.VariantCoordinates{
		Chromosome: parts[0],
		Position:   position,
		Reference:  parts[2],
		Alternate:  parts[3],
		Assembly:   assembly,
	}, nil
}

func lookup(values map[string]string, key string) *string {
	value, ok := values[key]
	if !ok {
		return nil
	}
	return &value
}
