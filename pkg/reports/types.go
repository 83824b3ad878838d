// Package reports holds the report schema family exchanged with the CIPAPI: the canonical
// record types and the chains that migrate historical payloads to them.
package reports

// Canonical versions every migration chain converges on
const (
	CanonicalReportsVersion     Version = "6.1.0"
	CanonicalParticipantVersion Version = "1.1.0"
)

// VersionControl carries the schema version a record was serialised with
type VersionControl struct {
	GitVersionControl string `json:"gitVersionControl"`
}

// File references a data file of a case
type File struct {
	SampleID []string `json:"sampleId,omitempty"`
	URIFile  string   `json:"uriFile"`
	FileType string   `json:"fileType"`
	MD5Sum   string   `json:"md5Sum,omitempty"`
}

// InterpretationFlag marks a case with a known analysis caveat
type InterpretationFlag struct {
	InterpretationFlag    string `json:"interpretationFlag"`
	AdditionalDescription string `json:"additionalDescription,omitempty"`
}

// InterpretationRequestRD is the canonical rare disease interpretation request
type InterpretationRequestRD struct {
	VersionControl               VersionControl       `json:"versionControl"`
	InterpretationRequestID      string               `json:"interpretationRequestId"`
	InterpretationRequestVersion int                  `json:"interpretationRequestVersion"`
	InternalStudyID              string               `json:"internalStudyId,omitempty"`
	FamilyInternalID             string               `json:"familyInternalId,omitempty"`
	GenomeAssembly               Assembly             `json:"genomeAssembly"`
	Workspace                    []string             `json:"workspace"`
	Bams                         []File               `json:"bams,omitempty"`
	Vcfs                         []File               `json:"vcfs,omitempty"`
	Pedigree                     *Pedigree            `json:"pedigree"`
	TieredVariants               []SmallVariant       `json:"tieredVariants"`
	TieringVersion               string               `json:"tieringVersion,omitempty"`
	InterpretationFlags          []InterpretationFlag `json:"interpretationFlags,omitempty"`
	AdditionalInfo               map[string]string    `json:"additionalInfo,omitempty"`
}

// CancerInterpretationRequest is the canonical cancer interpretation request
type CancerInterpretationRequest struct {
	VersionControl               VersionControl       `json:"versionControl"`
	InterpretationRequestID      string               `json:"interpretationRequestId"`
	InterpretationRequestVersion int                  `json:"interpretationRequestVersion"`
	InternalStudyID              string               `json:"internalStudyId,omitempty"`
	GenomeAssembly               Assembly             `json:"genomeAssembly"`
	Workspace                    []string             `json:"workspace"`
	Bams                         []File               `json:"bams,omitempty"`
	Vcfs                         []File               `json:"vcfs,omitempty"`
	CancerParticipant            *CancerParticipant   `json:"cancerParticipant"`
	TieredVariants               []SmallVariant       `json:"tieredVariants"`
	TieringVersion               string               `json:"tieringVersion,omitempty"`
	InterpretationFlags          []InterpretationFlag `json:"interpretationFlags,omitempty"`
	AdditionalInfo               map[string]string    `json:"additionalInfo,omitempty"`
}

// InterpretedGenome is the canonical interpreted genome, shared by both programs
type InterpretedGenome struct {
	VersionControl               VersionControl    `json:"versionControl"`
	InterpretationRequestID      string            `json:"interpretationRequestId"`
	InterpretationRequestVersion int               `json:"interpretationRequestVersion"`
	InterpretationService        string            `json:"interpretationService"`
	ReportURL                    string            `json:"reportUrl,omitempty"`
	Variants                     []SmallVariant    `json:"variants"`
	ReferenceDatabasesVersions   map[string]string `json:"referenceDatabasesVersions,omitempty"`
	SoftwareVersions             map[string]string `json:"softwareVersions,omitempty"`
	Comments                     []string          `json:"comments,omitempty"`
}

// ClinicalReport is the canonical clinical report, shared by both programs
type ClinicalReport struct {
	InterpretationRequestID      string            `json:"interpretationRequestId"`
	InterpretationRequestVersion int               `json:"interpretationRequestVersion"`
	ReportingDate                string            `json:"reportingDate,omitempty"`
	User                         string            `json:"user"`
	Variants                     []SmallVariant    `json:"variants"`
	GenomicInterpretation        string            `json:"genomicInterpretation,omitempty"`
	References                   []string          `json:"references,omitempty"`
	ReferenceDatabasesVersions   map[string]string `json:"referenceDatabasesVersions,omitempty"`
	SoftwareVersions             map[string]string `json:"softwareVersions,omitempty"`
}

// SmallVariant is a variant with its calls and report events
type SmallVariant struct {
	VariantCoordinates VariantCoordinates `json:"variantCoordinates"`
	VariantCalls       []VariantCall      `json:"variantCalls"`
	ReportEvents       []ReportEvent      `json:"reportEvents"`
	AlleleOrigins      []AlleleOrigin     `json:"alleleOrigins"`
	Comments           []string           `json:"comments,omitempty"`
}

// VariantCoordinates locate a variant on an assembly
type VariantCoordinates struct {
	Chromosome string   `json:"chromosome"`
	Position   int      `json:"position"`
	Reference  string   `json:"reference"`
	Alternate  string   `json:"alternate"`
	Assembly   Assembly `json:"assembly"`
}

// VariantCall is the call of a variant in one sample
type VariantCall struct {
	ParticipantID  string   `json:"participantId"`
	SampleID       string   `json:"sampleId"`
	Zygosity       Zygosity `json:"zygosity"`
	PhaseSet       int      `json:"phaseSet,omitempty"`
	DepthReference int      `json:"depthReference,omitempty"`
	DepthAlternate int      `json:"depthAlternate,omitempty"`
	VAF            float64  `json:"vaf,omitempty"`
}

// ReportEvent explains why a variant was reported
type ReportEvent struct {
	ReportEventID          string                 `json:"reportEventId"`
	Phenotypes             *Phenotypes            `json:"phenotypes,omitempty"`
	GenePanel              *GenePanel             `json:"genePanel,omitempty"`
	GenomicEntities        []GenomicEntity        `json:"genomicEntities"`
	VariantConsequences    []VariantConsequence   `json:"variantConsequences,omitempty"`
	ModeOfInheritance      ModeOfInheritance      `json:"modeOfInheritance,omitempty"`
	Penetrance             string                 `json:"penetrance,omitempty"`
	Score                  float64                `json:"score,omitempty"`
	Tier                   Tier                   `json:"tier,omitempty"`
	VariantClassification  *VariantClassification `json:"variantClassification,omitempty"`
	FullyExplainsPhenotype bool                   `json:"fullyExplainsPhenotype,omitempty"`
	GroupOfVariants        int                    `json:"groupOfVariants,omitempty"`
	EventJustification     string                 `json:"eventJustification,omitempty"`
}

// Phenotypes associated with a report event
type Phenotypes struct {
	NonStandardPhenotype []string `json:"nonStandardPhenotype,omitempty"`
}

// GenePanel a report event was found in
type GenePanel struct {
	PanelName    string `json:"panelName"`
	PanelVersion string `json:"panelVersion,omitempty"`
}

// GenomicEntity affected by a report event
type GenomicEntity struct {
	Type       string            `json:"type"`
	EnsemblID  string            `json:"ensemblId,omitempty"`
	GeneSymbol string            `json:"geneSymbol,omitempty"`
	OtherIDs   map[string]string `json:"otherIds,omitempty"`
}

// VariantConsequence is a sequence ontology term
type VariantConsequence struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// VariantClassification of a report event
type VariantClassification struct {
	ClinicalSignificance ClinicalSignificance `json:"clinicalSignificance"`
}

// Pedigree is the canonical rare disease family structure
type Pedigree struct {
	VersionControl *VersionControl  `json:"versionControl,omitempty"`
	LDPCode        string           `json:"LDPCode,omitempty"`
	FamilyID       string           `json:"familyId"`
	Members        []PedigreeMember `json:"members"`
}

// PedigreeMember is one individual of a pedigree
type PedigreeMember struct {
	PedigreeID            int               `json:"pedigreeId"`
	IsProband             bool              `json:"isProband"`
	ParticipantID         string            `json:"participantId"`
	FatherID              int               `json:"fatherId,omitempty"`
	MotherID              int               `json:"motherId,omitempty"`
	Sex                   string            `json:"sex,omitempty"`
	AffectionStatus       string            `json:"affectionStatus,omitempty"`
	Samples               []Sample          `json:"samples,omitempty"`
	HPOTermList           []HPOTerm         `json:"hpoTermList,omitempty"`
	AdditionalInformation map[string]string `json:"additionalInformation,omitempty"`
}

// Sample of a pedigree member
type Sample struct {
	SampleID    string `json:"sampleId"`
	LabSampleID string `json:"labSampleId,omitempty"`
	Source      string `json:"source,omitempty"`
	Product     string `json:"product,omitempty"`
}

// HPOTerm is a phenotype observed in a pedigree member
type HPOTerm struct {
	Term     string `json:"term"`
	Presence string `json:"presence,omitempty"`
}

// CancerParticipant is the canonical cancer participant
type CancerParticipant struct {
	VersionControl             *VersionControl  `json:"versionControl,omitempty"`
	IndividualID               string           `json:"individualId"`
	LDPCode                    string           `json:"LDPCode,omitempty"`
	YearOfBirth                int              `json:"yearOfBirth,omitempty"`
	Sex                        string           `json:"sex,omitempty"`
	ReadyForAnalysis           bool             `json:"readyForAnalysis"`
	PrimaryDiagnosisDisease    []string         `json:"primaryDiagnosisDisease,omitempty"`
	PrimaryDiagnosisSubDisease []string         `json:"primaryDiagnosisSubDisease,omitempty"`
	TumourSamples              []TumourSample   `json:"tumourSamples"`
	GermlineSamples            []GermlineSample `json:"germlineSamples"`
	MatchedSamples             []MatchedSamples `json:"matchedSamples"`
}

// TumourSample of a cancer participant
type TumourSample struct {
	SampleID       string `json:"sampleId"`
	LabSampleID    string `json:"labSampleId"`
	LDPCode        string `json:"LDPCode,omitempty"`
	TumourID       string `json:"tumourId,omitempty"`
	DiseaseType    string `json:"diseaseType,omitempty"`
	DiseaseSubType string `json:"diseaseSubType,omitempty"`
	TumourType     string `json:"tumourType,omitempty"`
	TumourContent  string `json:"tumourContent,omitempty"`
	Source         string `json:"source,omitempty"`
	Product        string `json:"product,omitempty"`
}

// GermlineSample of a cancer participant
type GermlineSample struct {
	SampleID    string `json:"sampleId"`
	LabSampleID string `json:"labSampleId"`
	LDPCode     string `json:"LDPCode,omitempty"`
	Source      string `json:"source,omitempty"`
	Product     string `json:"product,omitempty"`
}

// MatchedSamples pairs a germline and a tumour sample
type MatchedSamples struct {
	GermlineSampleID string `json:"germlineSampleId"`
	TumourSampleID   string `json:"tumourSampleId"`
}

// RareDiseaseExitQuestionnaire is the clinician feedback for a rare disease report
type RareDiseaseExitQuestionnaire struct {
	EventDate                  string                       `json:"eventDate,omitempty"`
	Reporter                   string                       `json:"reporter"`
	FamilyLevelQuestions       FamilyLevelQuestions         `json:"familyLevelQuestions"`
	VariantGroupLevelQuestions []VariantGroupLevelQuestions `json:"variantGroupLevelQuestions"`
}

// FamilyLevelQuestions of a rare disease exit questionnaire
type FamilyLevelQuestions struct {
	CaseSolvedFamily    string `json:"caseSolvedFamily"`
	SegregationQuestion string `json:"segregationQuestion"`
	AdditionalComments  string `json:"additionalComments,omitempty"`
}

// VariantGroupLevelQuestions groups the answers for a set of related variants
type VariantGroupLevelQuestions struct {
	VariantGroup          int                     `json:"variantGroup"`
	VariantLevelQuestions []VariantLevelQuestions `json:"variantLevelQuestions"`
	Actionability         string                  `json:"actionability,omitempty"`
	ClinicalUtility       []string                `json:"clinicalUtility,omitempty"`
	PhenotypesSolved      string                  `json:"phenotypesSolved,omitempty"`
	PhenotypesExplained   []string                `json:"phenotypesExplained,omitempty"`
}

// VariantLevelQuestions are the answers for a single variant. VariantDetails is encoded
// as chromosome:position:reference:alternate.
type VariantLevelQuestions struct {
	VariantDetails       string `json:"variantDetails"`
	ConfirmationDecision string `json:"confirmationDecision,omitempty"`
	ConfirmationOutcome  string `json:"confirmationOutcome,omitempty"`
	ReportingQuestion    string `json:"reportingQuestion,omitempty"`
	ACMGClassification   string `json:"acmgClassification,omitempty"`
	Publications         string `json:"publications,omitempty"`
}

// CancerExitQuestionnaire is the clinician feedback for a cancer report
type CancerExitQuestionnaire struct {
	EventDate                     string                                `json:"eventDate,omitempty"`
	Reporter                      string                                `json:"reporter"`
	CaseLevelQuestions            CancerCaseLevelQuestions              `json:"caseLevelQuestions"`
	SomaticVariantLevelQuestions  []CancerSomaticVariantLevelQuestions  `json:"somaticVariantLevelQuestions,omitempty"`
	GermlineVariantLevelQuestions []CancerGermlineVariantLevelQuestions `json:"germlineVariantLevelQuestions,omitempty"`
	OtherActionableVariants       []AdditionalVariantsQuestions         `json:"otherActionableVariants,omitempty"`
	AdditionalComments            string                                `json:"additionalComments,omitempty"`
}

// CancerCaseLevelQuestions of a cancer exit questionnaire
type CancerCaseLevelQuestions struct {
	TotalReviewTime    float64 `json:"totalReviewTime"`
	MDTReviewTime      float64 `json:"mdtReviewTime"`
	ReviewedInMDTWGA   string  `json:"reviewedInMdtWga"`
	ActionableVariants string  `json:"actionableVariants"`
}

// CancerSomaticVariantLevelQuestions are the answers for a somatic variant
type CancerSomaticVariantLevelQuestions struct {
	VariantDetails            string   `json:"variantDetails"`
	VariantActionability      []string `json:"variantActionability,omitempty"`
	OtherVariantActionability string   `json:"otherVariantActionability,omitempty"`
	VariantUsability          string   `json:"variantUsability,omitempty"`
	VariantTested             string   `json:"variantTested,omitempty"`
	ValidationAssayType       string   `json:"validationAssayType,omitempty"`
}

// CancerGermlineVariantLevelQuestions are the answers for a germline variant
type CancerGermlineVariantLevelQuestions struct {
	VariantDetails      string `json:"variantDetails"`
	VariantUsability    string `json:"variantUsability,omitempty"`
	VariantTested       string `json:"variantTested,omitempty"`
	ValidationAssayType string `json:"validationAssayType,omitempty"`
}

// AdditionalVariantsQuestions describes an actionable variant outside the report
type AdditionalVariantsQuestions struct {
	VariantReference     string   `json:"variantReference"`
	VariantActionability []string `json:"variantActionability,omitempty"`
	VariantUsability     string   `json:"variantUsability,omitempty"`
	VariantTested        string   `json:"variantTested,omitempty"`
	ValidationAssayType  string   `json:"validationAssayType,omitempty"`
}
