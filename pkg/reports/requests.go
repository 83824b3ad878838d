package reports

// Interpretation request chains: 4.2.0 -> 5.0.0 -> 6.1.0, one per program.
// 4.2.0 requests embed participant 1.0.0 records whatever version they declare, later
// ones participant 1.1.0.

func interpretationRequestChain(program Program) Chain {
	legacy := func(doc map[string]interface{}) bool {
		return has(doc, "InterpretationRequestID") || has(doc, "TieredVariants") ||
			has(doc, "reportRequestId") || has(doc, "genomeAssemblyVersion")
	}
	looks50 := func(doc map[string]interface{}) bool {
		return looksLikeVariants50(doc, "tieredVariants") || hasPlainFlags(doc)
	}
	upgrade42 := upgradeRequestRD42
	if program == ProgramCancer {
		upgrade42 = upgradeRequestCancer42
	}

	return Chain{
		Versioned: true,
		Schemas: []Schema{
			{Version: "4.2.0", Matches: legacy, Upgrade: upgrade42},
			{
				Version: "5.0.0",
				Matches: func(doc map[string]interface{}) bool {
					return !legacy(doc) && looks50(doc)
				},
				Upgrade: func(doc map[string]interface{}, env *Env) error {
					upgradeFlags(doc)
					return upgradeVariantsAt(doc, "tieredVariants", func(variant map[string]interface{}) error {
						return upgradeVariant50(variant, env.Program)
					})
				},
			},
			{
				Version: CanonicalReportsVersion,
				Matches: func(doc map[string]interface{}) bool {
					return !legacy(doc) && !looks50(doc)
				},
			},
		},
	}
}

// requestAssembly resolves the assembly of a 4.2.0 request, preferring the case level one
func requestAssembly(doc map[string]interface{}, env *Env) (Assembly, error) {
	declared := stringAt(doc, "genomeAssemblyVersion")
	delete(doc, "genomeAssemblyVersion")
	if env.Assembly.Valid() {
		return env.Assembly, nil
	}
	if declared == "" {
		return "", fieldErrorf("genomeAssemblyVersion", "required field is missing")
	}
	assembly, err := ParseAssembly(declared)
	if err != nil {
		return "", fieldErrorf("genomeAssemblyVersion", "%v", err)
	}
	return assembly, nil
}

func upgradeFiles(doc map[string]interface{}) error {
	for _, key := range []string{"bams", "vcfs"} {
		err := eachMapAt(doc, key, func(_ int, file map[string]interface{}) error {
			rename(file, "SampleId", "sampleId")
			if s, ok := file["sampleId"].(string); ok {
				file["sampleId"] = []interface{}{s}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func upgradeRequestRD42(doc map[string]interface{}, env *Env) error {
	rename(doc, "InterpretationRequestID", "interpretationRequestId")
	rename(doc, "InterpretationRequestVersion", "interpretationRequestVersion")
	rename(doc, "TieredVariants", "tieredVariants")
	rename(doc, "TieringVersion", "tieringVersion")
	normaliseRequestIdentity(doc)

	assembly, err := requestAssembly(doc, env)
	if err != nil {
		return err
	}
	doc["genomeAssembly"] = string(assembly)

	if err := upgradeFiles(doc); err != nil {
		return err
	}

	pedigree := mapAt(doc, "pedigree")
	if pedigree == nil {
		return fieldErrorf("pedigree", "required field is missing")
	}
	setVersion(pedigree, "1.0.0")
	migrated, err := env.MigrateEmbedded(KindPedigree, pedigree)
	if err != nil {
		return err
	}
	doc["pedigree"] = migrated
	if !has(doc, "familyInternalId") {
		doc["familyInternalId"] = migrated["familyId"]
	}

	if !has(doc, "tieredVariants") {
		doc["tieredVariants"] = []interface{}{}
	}
	return upgradeVariantsAt(doc, "tieredVariants", func(variant map[string]interface{}) error {
		return upgradeVariantRD42(variant, assembly)
	})
}

func upgradeRequestCancer42(doc map[string]interface{}, env *Env) error {
	rename(doc, "reportRequestId", "interpretationRequestId")
	rename(doc, "reportVersion", "interpretationRequestVersion")
	normaliseRequestIdentity(doc)

	assembly, err := requestAssembly(doc, env)
	if err != nil {
		return err
	}
	doc["genomeAssembly"] = string(assembly)

	if err := upgradeFiles(doc); err != nil {
		return err
	}

	participant := mapAt(doc, "cancerParticipant")
	if participant == nil {
		return fieldErrorf("cancerParticipant", "required field is missing")
	}
	setVersion(participant, "1.0.0")
	migrated, err := env.MigrateEmbedded(KindCancerParticipant, participant)
	if err != nil {
		return err
	}
	doc["cancerParticipant"] = migrated

	if env.ParticipantID == "" {
		env.ParticipantID = stringAt(migrated, "individualId")
	}
	if env.SampleID == "" {
		if samples := listAt(migrated, "tumourSamples"); len(samples) > 0 {
			if first, ok := asMap(samples[0]); ok {
				env.SampleID = stringAt(first, "sampleId")
			}
		}
	}

	if !has(doc, "tieredVariants") {
		doc["tieredVariants"] = []interface{}{}
	}
	return upgradeVariantsAt(doc, "tieredVariants", func(variant map[string]interface{}) error {
		return upgradeVariantCancer42(variant, assembly, env)
	})
}

// normaliseRequestIdentity turns numeric request ids into strings and numeric strings
// into version numbers
func normaliseRequestIdentity(doc map[string]interface{}) {
	if id, ok := stringOf(doc["interpretationRequestId"]); ok {
		doc["interpretationRequestId"] = id
	}
	if version, ok := intOf(doc["interpretationRequestVersion"]); ok {
		doc["interpretationRequestVersion"] = version
	}
}

func hasPlainFlags(doc map[string]interface{}) bool {
	for _, flag := range listAt(doc, "interpretationFlags") {
		if _, ok := flag.(string); ok {
			return true
		}
	}
	return false
}

// upgradeFlags wraps 5.0.0 flag names into 6.1.0 flag records
func upgradeFlags(doc map[string]interface{}) {
	flags := listAt(doc, "interpretationFlags")
	for i, flag := range flags {
		if name, ok := flag.(string); ok {
			flags[i] = map[string]interface{}{"interpretationFlag": name}
		}
	}
}
