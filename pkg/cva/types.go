// Package cva maps canonical report records of a case into the CVA 1.0.0 inject records.
package cva

import (
	"github.com/cipapi-client/pkg/reports"
)

// ModelVersion of the inject records built by this package
const ModelVersion = "1.0.0"

// Kind of inject record
type Kind string

const (
	KindTieredVariant     Kind = "tiered_variant"
	KindCandidateVariant  Kind = "candidate_variant"
	KindReportedVariant   Kind = "reported_variant"
	KindExitQuestionnaire Kind = "exit_questionnaire"
)

// Inject is implemented by every inject record
type Inject interface {
	// Header returns the identity shared by all inject records
	Header() *InjectHeader
	Kind() Kind
	Program() reports.Program
}

// InjectHeader identifies an inject and its provenance. Derived records carry the
// composite id "{caseId}-{caseVersion}" and point back to the case through the parent fields.
type InjectHeader struct {
	ID                 string           `json:"id"`
	Version            int              `json:"version"`
	ParentID           string           `json:"parentId,omitempty"`
	ParentVersion      int              `json:"parentVersion,omitempty"`
	Assembly           reports.Assembly `json:"assembly"`
	Author             string           `json:"author"`
	AuthorVersion      *string          `json:"authorVersion"`
	Workspace          []string         `json:"workspace"`
	GroupID            string           `json:"groupId"`
	CohortID           string           `json:"cohortId"`
	ReportModelVersion string           `json:"reportModelVersion"`
}

// Header implements Inject
func (h *InjectHeader) Header() *InjectHeader { return h }

// TieredVariantInjectRD carries the tiering output of a rare disease case
type TieredVariantInjectRD struct {
	InjectHeader
	InterpretedGenome *reports.InterpretedGenome `json:"interpretedGenome"`
}

func (*TieredVariantInjectRD) Kind() Kind { return KindTieredVariant }
func (*TieredVariantInjectRD) Program() reports.Program { return reports.ProgramRareDisease }

// TieredVariantInjectCancer carries the tiering output of a cancer case
type TieredVariantInjectCancer struct {
	InjectHeader
	InterpretedGenome *reports.InterpretedGenome `json:"interpretedGenome"`
}

func (*TieredVariantInjectCancer) Kind() Kind { return KindTieredVariant }
func (*TieredVariantInjectCancer) Program() reports.Program { return reports.ProgramCancer }

// CandidateVariantInjectRD carries the latest interpretation service output of a rare disease case
type CandidateVariantInjectRD struct {
	InjectHeader
	InterpretedGenome *reports.InterpretedGenome `json:"interpretedGenome"`
}

func (*CandidateVariantInjectRD) Kind() Kind { return KindCandidateVariant }
func (*CandidateVariantInjectRD) Program() reports.Program { return reports.ProgramRareDisease }

// CandidateVariantInjectCancer carries the latest interpretation service output of a cancer case
type CandidateVariantInjectCancer struct {
	InjectHeader
	InterpretedGenome *reports.InterpretedGenome `json:"interpretedGenome"`
}

func (*CandidateVariantInjectCancer) Kind() Kind { return KindCandidateVariant }
func (*CandidateVariantInjectCancer) Program() reports.Program { return reports.ProgramCancer }

// ReportedVariantInjectRD carries the latest clinical report of a rare disease case
type ReportedVariantInjectRD struct {
	InjectHeader
	ClinicalReport *reports.ClinicalReport `json:"clinicalReport"`
}

func (*ReportedVariantInjectRD) Kind() Kind { return KindReportedVariant }
func (*ReportedVariantInjectRD) Program() reports.Program { return reports.ProgramRareDisease }

// ReportedVariantInjectCancer carries the latest clinical report of a cancer case
type ReportedVariantInjectCancer struct {
	InjectHeader
	ClinicalReport *reports.ClinicalReport `json:"clinicalReport"`
}

func (*ReportedVariantInjectCancer) Kind() Kind { return KindReportedVariant }
func (*ReportedVariantInjectCancer) Program() reports.Program { return reports.ProgramCancer }

// ExitQuestionnaireInjectRD carries the exit questionnaire of a rare disease case
type ExitQuestionnaireInjectRD struct {
	InjectHeader
	ExitQuestionnaireRD ExitQuestionnaireRD `json:"exitQuestionnaireRd"`
}

func (*ExitQuestionnaireInjectRD) Kind() Kind { return KindExitQuestionnaire }
func (*ExitQuestionnaireInjectRD) Program() reports.Program { return reports.ProgramRareDisease }

// ExitQuestionnaireRD flattens the questionnaire to one entry per answered variant
type ExitQuestionnaireRD struct {
	Variants []ReportedVariantQuestionnaireRD `json:"variants"`
}

// ReportedVariantQuestionnaireRD is the answer set of one variant
type ReportedVariantQuestionnaireRD struct {
	VariantCoordinates reports.VariantCoordinates `json:"variantCoordinates"`
	ReportEvent        ReportEventQuestionnaireRD `json:"reportEvent"`
}

// ReportEventQuestionnaireRD keeps the group and family answers next to the variant ones
type ReportEventQuestionnaireRD struct {
	GroupOfVariants            int                                `json:"groupOfVariants"`
	VariantLevelQuestions      reports.VariantLevelQuestions      `json:"variantLevelQuestions"`
	VariantGroupLevelQuestions reports.VariantGroupLevelQuestions `json:"variantGroupLevelQuestions"`
	FamilyLevelQuestions       reports.FamilyLevelQuestions       `json:"familyLevelQuestions"`
}

// ExitQuestionnaireInjectCancer carries the exit questionnaire of a cancer case
type ExitQuestionnaireInjectCancer struct {
	InjectHeader
	CancerGermlineExitQuestionnaires []CancerGermlineVariantLevelQuestionnaire `json:"cancerGermlineExitQuestionnaires"`
	CancerSomaticExitQuestionnaires  []CancerSomaticVariantLevelQuestionnaire  `json:"cancerSomaticExitQuestionnaires"`
	CancerCaseLevelQuestions         reports.CancerCaseLevelQuestions          `json:"cancercaseLevelQuestions"`
	OtherActionableVariants          *string                                   `json:"otherActionableVariants"`
	AdditionalComments               string                                    `json:"additionalComments,omitempty"`
}

func (*ExitQuestionnaireInjectCancer) Kind() Kind { return KindExitQuestionnaire }
func (*ExitQuestionnaireInjectCancer) Program() reports.Program { return reports.ProgramCancer }

// CancerGermlineVariantLevelQuestionnaire pairs germline answers with decoded coordinates
type CancerGermlineVariantLevelQuestionnaire struct {
	VariantCoordinates    reports.VariantCoordinates                  `json:"variantCoordinates"`
	VariantLevelQuestions reports.CancerGermlineVariantLevelQuestions `json:"variantLevelQuestions"`
}

// CancerSomaticVariantLevelQuestionnaire pairs somatic answers with decoded coordinates
type CancerSomaticVariantLevelQuestionnaire struct {
	VariantCoordinates    reports.VariantCoordinates                 `json:"variantCoordinates"`
	VariantLevelQuestions reports.CancerSomaticVariantLevelQuestions `json:"variantLevelQuestions"`
}
