package reports

func registerBuiltins(r *Registry) {
	for _, program := range []Program{ProgramRareDisease, ProgramCancer} {
		r.mustRegister(program, KindInterpretationRequest, interpretationRequestChain(program))
		r.mustRegister(program, KindInterpretedGenome, interpretedGenomeChain())
		r.mustRegister(program, KindClinicalReport, clinicalReportChain())
		r.mustRegister(program, KindExitQuestionnaire, exitQuestionnaireChain(program))
	}
	r.mustRegister(ProgramRareDisease, KindPedigree, pedigreeChain())
	r.mustRegister(ProgramCancer, KindCancerParticipant, cancerParticipantChain())
}
