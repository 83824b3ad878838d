package reports

// TieringService names the automated interpretation performed on every request
const TieringService = "tiering"

// InterpretationRequest is implemented by the canonical requests of both programs
type InterpretationRequest interface {
	Program() Program
	RequestID() string
	RequestVersion() int
	Workspaces() []string
	ModelVersion() string
	TieringInterpretedGenome() *InterpretedGenome
}

var (
	_ InterpretationRequest = (*InterpretationRequestRD)(nil)
	_ InterpretationRequest = (*CancerInterpretationRequest)(nil)
)

func (r *InterpretationRequestRD) Program() Program { return ProgramRareDisease }
func (r *InterpretationRequestRD) RequestID() string { return r.InterpretationRequestID }
func (r *InterpretationRequestRD) RequestVersion() int { return r.InterpretationRequestVersion }
func (r *InterpretationRequestRD) Workspaces() []string { return r.Workspace }
func (r *InterpretationRequestRD) ModelVersion() string { return r.VersionControl.GitVersionControl }

// TieringInterpretedGenome derives the interpreted genome produced by tiering
func (r *InterpretationRequestRD) TieringInterpretedGenome() *InterpretedGenome {
	return tieringGenome(r.InterpretationRequestID, r.InterpretationRequestVersion, r.TieringVersion, r.TieredVariants)
}

func (r *CancerInterpretationRequest) Program() Program { return ProgramCancer }
func (r *CancerInterpretationRequest) RequestID() string { return r.InterpretationRequestID }
func (r *CancerInterpretationRequest) RequestVersion() int { return r.InterpretationRequestVersion }
func (r *CancerInterpretationRequest) Workspaces() []string { return r.Workspace }
func (r *CancerInterpretationRequest) ModelVersion() string { return r.VersionControl.GitVersionControl }

// TieringInterpretedGenome derives the interpreted genome produced by tiering
func (r *CancerInterpretationRequest) TieringInterpretedGenome() *InterpretedGenome {
	return tieringGenome(r.InterpretationRequestID, r.InterpretationRequestVersion, r.TieringVersion, r.TieredVariants)
}

func tieringGenome(id string, version int, tieringVersion string, variants []SmallVariant) *InterpretedGenome {
	copied := make([]SmallVariant, len(variants))
	copy(copied, variants)
	return &InterpretedGenome{
		VersionControl:               VersionControl{GitVersionControl: string(CanonicalReportsVersion)},
		InterpretationRequestID:      id,
		InterpretationRequestVersion: version,
		InterpretationService:        TieringService,
		Variants:                     copied,
		SoftwareVersions:             map[string]string{TieringService: tieringVersion},
	}
}
