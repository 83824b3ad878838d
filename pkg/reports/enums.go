package reports

import (
	"fmt"
	"strings"
)

// Program separates the rare disease and cancer branches of every record family
type Program string

const (
	ProgramRareDisease Program = "rare_disease"
	ProgramCancer      Program = "cancer"
)

// Valid checks the program against the known values
func (p Program) Valid() bool {
	return p == ProgramRareDisease || p == ProgramCancer
}

// Assembly is the reference genome a record is expressed against
type Assembly string

const (
	AssemblyGRCh37 Assembly = "GRCh37"
	AssemblyGRCh38 Assembly = "GRCh38"
)

// Valid checks the assembly against the known values
func (a Assembly) Valid() bool {
	return a == AssemblyGRCh37 || a == AssemblyGRCh38
}

// ParseAssembly accepts the spellings found in historical payloads
func ParseAssembly(s string) (Assembly, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grch37", "hg19", "grch37.p13":
		return AssemblyGRCh37, nil
	case "grch38", "hg38", "grch38.p12":
		return AssemblyGRCh38, nil
	}
	return "", fmt.Errorf("unknown assembly %q", s)
}

// Tier is the automated tiering category of a report event
type Tier string

const (
	TierNone Tier = "NONE"
	Tier1    Tier = "TIER1"
	Tier2    Tier = "TIER2"
	Tier3    Tier = "TIER3"
	Tier4    Tier = "TIER4"
	Tier5    Tier = "TIER5"
	TierA    Tier = "TIERA"
	TierB    Tier = "TIERB"
)

var validTiers = map[Tier]bool{
	TierNone: true, Tier1: true, Tier2: true, Tier3: true, Tier4: true, Tier5: true, TierA: true, TierB: true,
}

// Valid checks the tier against the known values
func (t Tier) Valid() bool {
	return validTiers[t]
}

// Zygosity of a variant call
type Zygosity string

const (
	ZygosityReferenceHomozygous  Zygosity = "reference_homozygous"
	ZygosityHeterozygous         Zygosity = "heterozygous"
	ZygosityAlternateHomozygous  Zygosity = "alternate_homozygous"
	ZygosityMissing              Zygosity = "missing"
	ZygosityHalfMissingReference Zygosity = "half_missing_reference"
	ZygosityHalfMissingAlternate Zygosity = "half_missing_alternate"
	ZygosityAlternateHemizigous  Zygosity = "alternate_hemizigous"
	ZygosityReferenceHemizigous  Zygosity = "reference_hemizigous"
	ZygosityUnknown              Zygosity = "unk"
	ZygosityNA                   Zygosity = "na"
)

var validZygosities = map[Zygosity]bool{
	ZygosityReferenceHomozygous: true, ZygosityHeterozygous: true, ZygosityAlternateHomozygous: true,
	ZygosityMissing: true, ZygosityHalfMissingReference: true, ZygosityHalfMissingAlternate: true,
	ZygosityAlternateHemizigous: true, ZygosityReferenceHemizigous: true, ZygosityUnknown: true, ZygosityNA: true,
}

// Valid checks the zygosity against the known values
func (z Zygosity) Valid() bool {
	return validZygosities[z]
}

// ModeOfInheritance of a report event
type ModeOfInheritance string

const (
	MonoallelicNotImprinted           ModeOfInheritance = "monoallelic_not_imprinted"
	MonoallelicMaternallyImprinted    ModeOfInheritance = "monoallelic_maternally_imprinted"
	MonoallelicPaternallyImprinted    ModeOfInheritance = "monoallelic_paternally_imprinted"
	Monoallelic                       ModeOfInheritance = "monoallelic"
	Biallelic                         ModeOfInheritance = "biallelic"
	MonoallelicAndBiallelic           ModeOfInheritance = "monoallelic_and_biallelic"
	MonoallelicAndMoreSevereBiallelic ModeOfInheritance = "monoallelic_and_more_severe_biallelic"
	XLinkedBiallelic                  ModeOfInheritance = "xlinked_biallelic"
	XLinkedMonoallelic                ModeOfInheritance = "xlinked_monoallelic"
	Mitochondrial                     ModeOfInheritance = "mitochondrial"
	ModeOfInheritanceUnknown          ModeOfInheritance = "unknown"
	ModeOfInheritanceNA               ModeOfInheritance = "na"
)

var validModesOfInheritance = map[ModeOfInheritance]bool{
	MonoallelicNotImprinted: true, MonoallelicMaternallyImprinted: true, MonoallelicPaternallyImprinted: true,
	Monoallelic: true, Biallelic: true, MonoallelicAndBiallelic: true, MonoallelicAndMoreSevereBiallelic: true,
	XLinkedBiallelic: true, XLinkedMonoallelic: true, Mitochondrial: true, ModeOfInheritanceUnknown: true,
	ModeOfInheritanceNA: true,
}

// Valid checks the mode of inheritance against the known values
func (m ModeOfInheritance) Valid() bool {
	return validModesOfInheritance[m]
}

// ClinicalSignificance is the classification of a variant
type ClinicalSignificance string

const (
	Benign                ClinicalSignificance = "benign"
	LikelyBenign          ClinicalSignificance = "likely_benign"
	Pathogenic            ClinicalSignificance = "pathogenic"
	LikelyPathogenic      ClinicalSignificance = "likely_pathogenic"
	UncertainSignificance ClinicalSignificance = "uncertain_significance"
	Excluded              ClinicalSignificance = "excluded"
)

var validSignificances = map[ClinicalSignificance]bool{
	Benign: true, LikelyBenign: true, Pathogenic: true, LikelyPathogenic: true,
	UncertainSignificance: true, Excluded: true,
}

// Valid checks the clinical significance against the known values
func (c ClinicalSignificance) Valid() bool {
	return validSignificances[c]
}

// AlleleOrigin of a variant
type AlleleOrigin string

const (
	DeNovoVariant             AlleleOrigin = "de_novo_variant"
	GermlineVariant           AlleleOrigin = "germline_variant"
	MaternalVariant           AlleleOrigin = "maternal_variant"
	PaternalVariant           AlleleOrigin = "paternal_variant"
	PedigreeSpecificVariant   AlleleOrigin = "pedigree_specific_variant"
	PopulationSpecificVariant AlleleOrigin = "population_specific_variant"
	SomaticVariant            AlleleOrigin = "somatic_variant"
)

var validAlleleOrigins = map[AlleleOrigin]bool{
	DeNovoVariant: true, GermlineVariant: true, MaternalVariant: true, PaternalVariant: true,
	PedigreeSpecificVariant: true, PopulationSpecificVariant: true, SomaticVariant: true,
}

// Valid checks the allele origin against the known values
func (a AlleleOrigin) Valid() bool {
	return validAlleleOrigins[a]
}
