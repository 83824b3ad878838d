package reports

import (
	"fmt"
)

// Validate checks the canonical interpretation request
func (r *InterpretationRequestRD) Validate() error {
	if r.InterpretationRequestID == "" {
		return fieldErrorf("interpretationRequestId", "required field is missing")
	}
	if !r.GenomeAssembly.Valid() {
		return fieldErrorf("genomeAssembly", "unknown assembly %q", r.GenomeAssembly)
	}
	if r.Pedigree == nil {
		return fieldErrorf("pedigree", "required field is missing")
	}
	if err := r.Pedigree.Validate(); err != nil {
		return prefixPath(err, "pedigree")
	}
	return validateVariants("tieredVariants", r.TieredVariants)
}

// Validate checks the canonical interpretation request
func (r *CancerInterpretationRequest) Validate() error {
	if r.InterpretationRequestID == "" {
		return fieldErrorf("interpretationRequestId", "required field is missing")
	}
	if !r.GenomeAssembly.Valid() {
		return fieldErrorf("genomeAssembly", "unknown assembly %q", r.GenomeAssembly)
	}
	if r.CancerParticipant == nil {
		return fieldErrorf("cancerParticipant", "required field is missing")
	}
	if err := r.CancerParticipant.Validate(); err != nil {
		return prefixPath(err, "cancerParticipant")
	}
	return validateVariants("tieredVariants", r.TieredVariants)
}

// Validate checks the canonical interpreted genome
func (g *InterpretedGenome) Validate() error {
	if g.InterpretationRequestID == "" {
		return fieldErrorf("interpretationRequestId", "required field is missing")
	}
	if g.InterpretationService == "" {
		return fieldErrorf("interpretationService", "required field is missing")
	}
	return validateVariants("variants", g.Variants)
}

// Validate checks the canonical clinical report
func (c *ClinicalReport) Validate() error {
	if c.InterpretationRequestID == "" {
		return fieldErrorf("interpretationRequestId", "required field is missing")
	}
	return validateVariants("variants", c.Variants)
}

// Validate checks the canonical pedigree
func (p *Pedigree) Validate() error {
	for i, member := range p.Members {
		if member.ParticipantID == "" {
			return fieldErrorf(fmt.Sprintf("members[%d].participantId", i), "required field is missing")
		}
	}
	return nil
}

// Validate checks the canonical cancer participant
func (p *CancerParticipant) Validate() error {
	if p.IndividualID == "" {
		return fieldErrorf("individualId", "required field is missing")
	}
	for i, sample := range p.TumourSamples {
		if sample.SampleID == "" {
			return fieldErrorf(fmt.Sprintf("tumourSamples[%d].sampleId", i), "required field is missing")
		}
	}
	return nil
}

func validateVariants(key string, variants []SmallVariant) error {
	for i := range variants {
		if err := variants[i].Validate(); err != nil {
			return prefixPath(err, fmt.Sprintf("%s[%d]", key, i))
		}
	}
	return nil
}

// Validate checks the coordinates and the enumerations of a variant
func (v *SmallVariant) Validate() error {
	c := v.VariantCoordinates
	switch {
	case c.Chromosome == "":
		return fieldErrorf("variantCoordinates.chromosome", "required field is missing")
	case c.Position <= 0:
		return fieldErrorf("variantCoordinates.position", "must be positive, got %d", c.Position)
	case c.Reference == "":
		return fieldErrorf("variantCoordinates.reference", "required field is missing")
	case c.Alternate == "":
		return fieldErrorf("variantCoordinates.alternate", "required field is missing")
	case !c.Assembly.Valid():
		return fieldErrorf("variantCoordinates.assembly", "unknown assembly %q", c.Assembly)
	}

	for i, call := range v.VariantCalls {
		if !call.Zygosity.Valid() {
			return fieldErrorf(fmt.Sprintf("variantCalls[%d].zygosity", i), "unknown zygosity %q", call.Zygosity)
		}
	}

	if len(v.AlleleOrigins) == 0 {
		return fieldErrorf("alleleOrigins", "at least one allele origin is required")
	}
	for i, origin := range v.AlleleOrigins {
		if !origin.Valid() {
			return fieldErrorf(fmt.Sprintf("alleleOrigins[%d]", i), "unknown allele origin %q", origin)
		}
	}

	for i, event := range v.ReportEvents {
		path := fmt.Sprintf("reportEvents[%d]", i)
		if event.Tier != "" && !event.Tier.Valid() {
			return fieldErrorf(path+".tier", "unknown tier %q", event.Tier)
		}
		if event.ModeOfInheritance != "" && !event.ModeOfInheritance.Valid() {
			return fieldErrorf(path+".modeOfInheritance", "unknown mode of inheritance %q", event.ModeOfInheritance)
		}
		if cls := event.VariantClassification; cls != nil && !cls.ClinicalSignificance.Valid() {
			return fieldErrorf(path+".variantClassification.clinicalSignificance", "unknown clinical significance %q", cls.ClinicalSignificance)
		}
	}
	return nil
}
