package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVariant() SmallVariant {
	return SmallVariant{
		VariantCoordinates: VariantCoordinates{Chromosome: "1", Position: 100, Reference: "A", Alternate: "G", Assembly: AssemblyGRCh38},
		VariantCalls:       []VariantCall{{ParticipantID: "P1", SampleID: "S1", Zygosity: ZygosityHeterozygous}},
		ReportEvents:       []ReportEvent{{ReportEventID: "RE-1", Tier: Tier2}},
		AlleleOrigins:      []AlleleOrigin{GermlineVariant},
	}
}

func TestSmallVariant_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *SmallVariant)
		path   string
	}{
		{"valid", func(v *SmallVariant) {}, ""},
		{"missing chromosome", func(v *SmallVariant) { v.VariantCoordinates.Chromosome = "" }, "variantCoordinates.chromosome"},
		{"zero position", func(v *SmallVariant) { v.VariantCoordinates.Position = 0 }, "variantCoordinates.position"},
		{"missing reference", func(v *SmallVariant) { v.VariantCoordinates.Reference = "" }, "variantCoordinates.reference"},
		{"missing alternate", func(v *SmallVariant) { v.VariantCoordinates.Alternate = "" }, "variantCoordinates.alternate"},
		{"unknown assembly", func(v *SmallVariant) { v.VariantCoordinates.Assembly = "hg18" }, "variantCoordinates.assembly"},
		{"unknown zygosity", func(v *SmallVariant) { v.VariantCalls[0].Zygosity = "triploid" }, "variantCalls[0].zygosity"},
		{"no allele origin", func(v *SmallVariant) { v.AlleleOrigins = nil }, "alleleOrigins"},
		{"unknown allele origin", func(v *SmallVariant) { v.AlleleOrigins = []AlleleOrigin{"viral"} }, "alleleOrigins[0]"},
		{"unknown tier", func(v *SmallVariant) { v.ReportEvents[0].Tier = "TIER9" }, "reportEvents[0].tier"},
		{"unknown mode of inheritance", func(v *SmallVariant) { v.ReportEvents[0].ModeOfInheritance = "sporadic" }, "reportEvents[0].modeOfInheritance"},
		{"unknown significance", func(v *SmallVariant) {
			v.ReportEvents[0].VariantClassification = &VariantClassification{ClinicalSignificance: "VUS"}
		}, "reportEvents[0].variantClassification.clinicalSignificance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variant := validVariant()
			tt.mutate(&variant)

			err := variant.Validate()
			if tt.path == "" {
				assert.NoError(t, err)
				return
			}
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.path, fe.Path)
		})
	}
}

func TestParseAssembly(t *testing.T) {
	tests := []struct {
		input    string
		expected Assembly
		wantErr  bool
	}{
		{"GRCh37", AssemblyGRCh37, false},
		{"hg19", AssemblyGRCh37, false},
		{"GRCh37.p13", AssemblyGRCh37, false},
		{" grch38 ", AssemblyGRCh38, false},
		{"hg38", AssemblyGRCh38, false},
		{"hg18", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assembly, err := ParseAssembly(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, assembly)
		})
	}
}

func TestTieringInterpretedGenome(t *testing.T) {
	ir := &InterpretationRequestRD{
		VersionControl:               VersionControl{GitVersionControl: "6.1.0"},
		InterpretationRequestID:      "1234",
		InterpretationRequestVersion: 2,
		Workspace:                    []string{"RGT"},
		TieringVersion:               "1.0.3",
		TieredVariants:               []SmallVariant{validVariant()},
	}

	var request InterpretationRequest = ir
	assert.Equal(t, ProgramRareDisease, request.Program())
	assert.Equal(t, []string{"RGT"}, request.Workspaces())
	assert.Equal(t, "6.1.0", request.ModelVersion())

	ig := request.TieringInterpretedGenome()
	assert.Equal(t, TieringService, ig.InterpretationService)
	assert.Equal(t, "1234", ig.InterpretationRequestID)
	assert.Equal(t, 2, ig.InterpretationRequestVersion)
	assert.Equal(t, map[string]string{"tiering": "1.0.3"}, ig.SoftwareVersions)
	assert.Equal(t, ir.TieredVariants, ig.Variants)
	assert.NoError(t, ig.Validate())

	ig.Variants[0].Comments = []string{"edited"}
	assert.Nil(t, ir.TieredVariants[0].Comments, "derived genome must not alias the request variants")

	cancer := &CancerInterpretationRequest{InterpretationRequestID: "5678", TieringVersion: "2.0"}
	assert.Equal(t, ProgramCancer, cancer.Program())
	assert.Equal(t, map[string]string{"tiering": "2.0"}, cancer.TieringInterpretedGenome().SoftwareVersions)
	assert.Empty(t, cancer.TieringInterpretedGenome().Variants)
}

func TestDocumentHelpers(t *testing.T) {
	doc := map[string]interface{}{"old": 1, "kept": "x", "list": "single", "empty": ""}

	rename(doc, "old", "new")
	assert.Equal(t, 1, doc["new"])
	assert.NotContains(t, doc, "old")

	doc["other"] = 2
	rename(doc, "other", "kept")
	assert.Equal(t, "x", doc["kept"], "rename must not overwrite a key that is already set")

	stringToList(doc, "list")
	stringToList(doc, "empty")
	stringToList(doc, "absent")
	assert.Equal(t, []interface{}{"single"}, doc["list"])
	assert.Equal(t, []interface{}{}, doc["empty"])
	assert.NotContains(t, doc, "absent")

	id, ok := stringOf(float64(110001))
	assert.True(t, ok)
	assert.Equal(t, "110001", id)

	version, ok := intOf("3")
	assert.True(t, ok)
	assert.Equal(t, 3, version)
	_, ok = intOf(2.5)
	assert.False(t, ok)
}
