package cva

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cipapi-client/pkg/reports"
)

type fakeCase struct {
	program    reports.Program
	ir         reports.InterpretationRequest
	ig         *reports.InterpretedGenome
	cr         *reports.ClinicalReport
	eqRD       *reports.RareDiseaseExitQuestionnaire
	eqCancer   *reports.CancerExitQuestionnaire
	err        error
	igVersion  int
	crVersion  int
	cipVersion string
}

func (f *fakeCase) CaseID() string { return "1234" }
func (f *fakeCase) CaseVersion() int { return 2 }
func (f *fakeCase) Program() reports.Program { return f.program }
func (f *fakeCase) Assembly() reports.Assembly { return reports.AssemblyGRCh38 }
func (f *fakeCase) GroupID() string { return "F1001" }
func (f *fakeCase) CohortID() string { return "C-1" }
func (f *fakeCase) InterpretedGenomeVersion() int { return f.igVersion }
func (f *fakeCase) InterpretationServiceVersion() string { return f.cipVersion }
func (f *fakeCase) ClinicalReportVersion() int { return f.crVersion }

func (f *fakeCase) InterpretationRequest() (reports.InterpretationRequest, error) {
	return f.ir, f.err
}

func (f *fakeCase) TieringInterpretedGenome() (*reports.InterpretedGenome, error) {
	if f.err != nil || f.ir == nil {
		return nil, f.err
	}
	return f.ir.TieringInterpretedGenome(), nil
}

func (f *fakeCase) InterpretedGenome() (*reports.InterpretedGenome, error) { return f.ig, f.err }
func (f *fakeCase) ClinicalReport() (*reports.ClinicalReport, error) { return f.cr, f.err }

func (f *fakeCase) RareDiseaseExitQuestionnaire() (*reports.RareDiseaseExitQuestionnaire, error) {
	return f.eqRD, f.err
}

func (f *fakeCase) CancerExitQuestionnaire() (*reports.CancerExitQuestionnaire, error) {
	return f.eqCancer, f.err
}

func rareDiseaseCase() *fakeCase {
	return &fakeCase{
		program: reports.ProgramRareDisease,
		ir: &reports.InterpretationRequestRD{
			VersionControl:          reports.VersionControl{GitVersionControl: "6.1.0"},
			InterpretationRequestID: "1234",
			Workspace:               []string{"RGT"},
			TieringVersion:          "1.0.3",
		},
		ig: &reports.InterpretedGenome{
			VersionControl:        reports.VersionControl{GitVersionControl: "6.1.0"},
			InterpretationService: "exomiser",
		},
		cr:         &reports.ClinicalReport{InterpretationRequestID: "1234", User: "clinician@example.org"},
		igVersion:  3,
		crVersion:  1,
		cipVersion: "10.1.0",
		eqRD: &reports.RareDiseaseExitQuestionnaire{
			Reporter:             "reporter@example.org",
			FamilyLevelQuestions: reports.FamilyLevelQuestions{CaseSolvedFamily: "yes", SegregationQuestion: "no"},
			VariantGroupLevelQuestions: []reports.VariantGroupLevelQuestions{
				{
					VariantGroup: 1,
					VariantLevelQuestions: []reports.VariantLevelQuestions{
						{VariantDetails: "16:2138250:C:T"},
						{VariantDetails: "16:2138300:G:A"},
					},
				},
				{
					VariantGroup:          2,
					VariantLevelQuestions: []reports.VariantLevelQuestions{{VariantDetails: "X:100:A:AT"}},
				},
			},
		},
	}
}

func cancerCase() *fakeCase {
	return &fakeCase{
		program: reports.ProgramCancer,
		ir: &reports.CancerInterpretationRequest{
			VersionControl:          reports.VersionControl{GitVersionControl: "6.1.0"},
			InterpretationRequestID: "1234",
			Workspace:               []string{"NCL"},
		},
		cr:        &reports.ClinicalReport{InterpretationRequestID: "1234", User: "mdt@example.org"},
		crVersion: 4,
		eqCancer: &reports.CancerExitQuestionnaire{
			Reporter:           "mdt@example.org",
			CaseLevelQuestions: reports.CancerCaseLevelQuestions{TotalReviewTime: 2.5, ActionableVariants: "yes"},
			SomaticVariantLevelQuestions: []reports.CancerSomaticVariantLevelQuestions{
				{VariantDetails: "7:140753336:A:T", VariantActionability: []string{"predicts_therapeutic_response"}},
			},
			GermlineVariantLevelQuestions: []reports.CancerGermlineVariantLevelQuestions{
				{VariantDetails: "13:32315474:G:T"},
				{VariantDetails: "17:43045712:C:G"},
			},
			OtherActionableVariants: []reports.AdditionalVariantsQuestions{{VariantReference: "BRCA2"}},
			AdditionalComments:      "discussed at MDT",
		},
	}
}

func TestTieredVariantInject(t *testing.T) {
	inject, err := TieredVariantInject(rareDiseaseCase())
	require.NoError(t, err)

	rd, ok := inject.(*TieredVariantInjectRD)
	require.True(t, ok, "expected a rare disease inject, got %T", inject)
	assert.Equal(t, KindTieredVariant, rd.Kind())
	assert.Equal(t, "1234", rd.ID)
	assert.Equal(t, 2, rd.Version)
	assert.Empty(t, rd.ParentID)
	assert.Equal(t, TieringAuthor, rd.Author)
	require.NotNil(t, rd.AuthorVersion)
	assert.Equal(t, "1.0.3", *rd.AuthorVersion)
	assert.Equal(t, []string{"RGT"}, rd.Workspace)
	assert.Equal(t, "F1001", rd.GroupID)
	assert.Equal(t, "C-1", rd.CohortID)
	assert.Equal(t, "6.1.0", rd.ReportModelVersion)
	assert.Equal(t, reports.TieringService, rd.InterpretedGenome.InterpretationService)

	inject, err = TieredVariantInject(cancerCase())
	require.NoError(t, err)
	assert.IsType(t, &TieredVariantInjectCancer{}, inject)
	assert.Equal(t, reports.ProgramCancer, inject.Program())
}

func TestCandidateVariantInject(t *testing.T) {
	inject, err := CandidateVariantInject(rareDiseaseCase())
	require.NoError(t, err)

	header := inject.Header()
	assert.Equal(t, "1234-2", header.ID)
	assert.Equal(t, 3, header.Version)
	assert.Equal(t, "1234", header.ParentID)
	assert.Equal(t, 2, header.ParentVersion)
	assert.Equal(t, "exomiser", header.Author)
	require.NotNil(t, header.AuthorVersion)
	assert.Equal(t, "10.1.0", *header.AuthorVersion)

	_, err = CandidateVariantInject(cancerCase())
	assert.ErrorIs(t, err, ErrMissingRecord)
}

func TestReportedVariantInject(t *testing.T) {
	inject, err := ReportedVariantInject(cancerCase())
	require.NoError(t, err)

	cancer, ok := inject.(*ReportedVariantInjectCancer)
	require.True(t, ok)
	assert.Equal(t, "1234-2", cancer.ID)
	assert.Equal(t, 4, cancer.Version)
	assert.Equal(t, "mdt@example.org", cancer.Author)
	assert.Nil(t, cancer.AuthorVersion)
	assert.Equal(t, "6.1.0", cancer.ReportModelVersion)
	assert.Equal(t, "mdt@example.org", cancer.ClinicalReport.User)
}

func TestExitQuestionnaireInject_RareDisease(t *testing.T) {
	inject, err := ExitQuestionnaireInject(rareDiseaseCase())
	require.NoError(t, err)

	rd, ok := inject.(*ExitQuestionnaireInjectRD)
	require.True(t, ok)
	assert.Equal(t, "1234-2", rd.ID)
	assert.Equal(t, 1, rd.Version)
	assert.Equal(t, "reporter@example.org", rd.Author)

	variants := rd.ExitQuestionnaireRD.Variants
	require.Len(t, variants, 3)
	assert.Equal(t, reports.VariantCoordinates{
		Chromosome: "16",
		Position:   2138250,
		Reference:  "C",
		Alternate:  "T",
		Assembly:   reports.AssemblyGRCh38,
	}, variants[0].VariantCoordinates)
	assert.Equal(t, 1, variants[1].ReportEvent.GroupOfVariants)
	assert.Equal(t, 2, variants[2].ReportEvent.GroupOfVariants)
	assert.Equal(t, "AT", variants[2].VariantCoordinates.Alternate)
	assert.Equal(t, "yes", variants[2].ReportEvent.FamilyLevelQuestions.CaseSolvedFamily)
	assert.Len(t, variants[0].ReportEvent.VariantGroupLevelQuestions.VariantLevelQuestions, 2)
}

func TestExitQuestionnaireInject_Cancer(t *testing.T) {
	inject, err := ExitQuestionnaireInject(cancerCase())
	require.NoError(t, err)

	cancer, ok := inject.(*ExitQuestionnaireInjectCancer)
	require.True(t, ok)
	require.Len(t, cancer.CancerGermlineExitQuestionnaires, 2)
	require.Len(t, cancer.CancerSomaticExitQuestionnaires, 1)
	assert.Equal(t, 43045712, cancer.CancerGermlineExitQuestionnaires[1].VariantCoordinates.Position)
	assert.Equal(t, "7", cancer.CancerSomaticExitQuestionnaires[0].VariantCoordinates.Chromosome)
	assert.Equal(t, []string{"predicts_therapeutic_response"},
		cancer.CancerSomaticExitQuestionnaires[0].VariantLevelQuestions.VariantActionability)
	assert.InDelta(t, 2.5, cancer.CancerCaseLevelQuestions.TotalReviewTime, 1e-9)
	assert.Nil(t, cancer.OtherActionableVariants)
	assert.Equal(t, "discussed at MDT", cancer.AdditionalComments)

	encoded, err := json.Marshal(cancer)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Contains(t, decoded, "cancercaseLevelQuestions")
	assert.Equal(t, "1234-2", decoded["id"])
	assert.Nil(t, decoded["otherActionableVariants"])
}

func TestExitQuestionnaireInject_MalformedDetails(t *testing.T) {
	c := cancerCase()
	c.eqCancer.GermlineVariantLevelQuestions = append(c.eqCancer.GermlineVariantLevelQuestions,
		reports.CancerGermlineVariantLevelQuestions{VariantDetails: "13-32315474-G-T"})

	_, err := ExitQuestionnaireInject(c)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "variantDetails", ve.Field)
	assert.Equal(t, "13-32315474-G-T", ve.Value)
}

func TestBuilders_PropagateErrors(t *testing.T) {
	failure := errors.New("migration failed")

	for _, kind := range []Kind{KindTieredVariant, KindCandidateVariant, KindReportedVariant, KindExitQuestionnaire} {
		t.Run(string(kind), func(t *testing.T) {
			c := rareDiseaseCase()
			c.err = failure
			_, err := Build(kind, c)
			assert.ErrorIs(t, err, failure)

			c = rareDiseaseCase()
			c.ir = nil
			_, err = Build(kind, c)
			assert.ErrorIs(t, err, ErrMissingRecord)
		})
	}

	_, err := Build("sequencing_run", rareDiseaseCase())
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestParseVariantDetails(t *testing.T) {
	tests := []struct {
		name    string
		details string
		wantErr bool
	}{
		{"well formed", "1:12345:A:G", false},
		{"indel", "X:100:A:AT", false},
		{"three tokens", "1:12345:A", true},
		{"five tokens", "1:12345:A:G:T", true},
		{"non numeric position", "1:abc:A:G", true},
		{"empty", "", true},
		{"whitespace around tokens", "1: 123 :A:G", false},
		{"whitespace around position only", " X :\t100\n:A:AT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coordinates, err := ParseVariantDetails(tt.details, reports.AssemblyGRCh37)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.details, ve.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, reports.AssemblyGRCh37, coordinates.Assembly)
			assert.Positive(t, coordinates.Position)
		})
	}
}

func TestParseVariantDetails_TrimsTokens(t *testing.T) {
	coordinates, err := ParseVariantDetails(" 1: 123 : A :G ", reports.AssemblyGRCh38)
	require.NoError(t, err)

	assert.Equal(t, reports.VariantCoordinates{
		Chromosome: "1",
		Position:   123,
		Reference:  "A",
		Alternate:  "G",
		Assembly:   reports.AssemblyGRCh38,
	}, coordinates)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"tiered", KindTieredVariant},
		{"candidate", KindCandidateVariant},
		{"reported", KindReportedVariant},
		{"exit-questionnaire", KindExitQuestionnaire},
		{"reported_variant", KindReportedVariant},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}

	_, err := ParseKind("pedigree")
	assert.Error(t, err)
}
