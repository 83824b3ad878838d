package reports

// Interpreted genome and clinical report chains: 4.2.0 -> 5.0.0 -> 6.1.0. Their 4.2.0
// variants carry no assembly, so the case context must provide one.

func interpretedGenomeChain() Chain {
	legacy := func(doc map[string]interface{}) bool {
		return has(doc, "InterpretationRequestID") || has(doc, "reportRequestId") ||
			has(doc, "companyName") || has(doc, "reportedVariants")
	}
	looks50 := func(doc map[string]interface{}) bool {
		return looksLikeVariants50(doc, "variants")
	}

	return Chain{
		Versioned: true,
		Schemas: []Schema{
			{
				Version: "4.2.0",
				Matches: legacy,
				Upgrade: func(doc map[string]interface{}, env *Env) error {
					rename(doc, "InterpretationRequestID", "interpretationRequestId")
					rename(doc, "reportRequestId", "interpretationRequestId")
					rename(doc, "InterpretationRequestVersion", "interpretationRequestVersion")
					rename(doc, "reportVersion", "interpretationRequestVersion")
					rename(doc, "companyName", "interpretationService")
					rename(doc, "reportUri", "reportUrl")
					rename(doc, "reportedVariants", "variants")
					fillRequestIdentity(doc, env)
					return upgradeLegacyVariants(doc, "variants", env)
				},
			},
			{
				Version: "5.0.0",
				Matches: func(doc map[string]interface{}) bool {
					return !legacy(doc) && looks50(doc)
				},
				Upgrade: func(doc map[string]interface{}, env *Env) error {
					return upgradeVariantsAt(doc, "variants", func(variant map[string]interface{}) error {
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

func clinicalReportChain() Chain {
	legacy := func(doc map[string]interface{}) bool {
		return has(doc, "interpretationRequestID") || has(doc, "candidateVariants") || has(doc, "supportingEvidence")
	}
	looks50 := func(doc map[string]interface{}) bool {
		return looksLikeVariants50(doc, "variants")
	}

	return Chain{
		Schemas: []Schema{
			{
				Version: "4.2.0",
				Matches: legacy,
				Upgrade: func(doc map[string]interface{}, env *Env) error {
					rename(doc, "interpretationRequestID", "interpretationRequestId")
					rename(doc, "candidateVariants", "variants")
					rename(doc, "supportingEvidence", "references")
					fillRequestIdentity(doc, env)
					return upgradeLegacyVariants(doc, "variants", env)
				},
			},
			{
				Version: "5.0.0",
				Matches: func(doc map[string]interface{}) bool {
					return !legacy(doc) && looks50(doc)
				},
				Upgrade: func(doc map[string]interface{}, env *Env) error {
					return upgradeVariantsAt(doc, "variants", func(variant map[string]interface{}) error {
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

// fillRequestIdentity completes the request id and version from the case when the
// payload omits them
func fillRequestIdentity(doc map[string]interface{}, env *Env) {
	if !has(doc, "interpretationRequestId") && env.InterpretationRequestID != "" {
		doc["interpretationRequestId"] = env.InterpretationRequestID
	}
	if !has(doc, "interpretationRequestVersion") && env.InterpretationRequestVersion != 0 {
		doc["interpretationRequestVersion"] = env.InterpretationRequestVersion
	}
	normaliseRequestIdentity(doc)
}

func upgradeLegacyVariants(doc map[string]interface{}, key string, env *Env) error {
	if !has(doc, key) {
		doc[key] = []interface{}{}
		return nil
	}
	if len(listAt(doc, key)) > 0 && !env.Assembly.Valid() {
		return fieldErrorf(key, "an assembly is required to migrate 4.2.0 variants")
	}
	return upgradeVariantsAt(doc, key, func(variant map[string]interface{}) error {
		if env.Program == ProgramCancer {
			return upgradeVariantCancer42(variant, env.Assembly, env)
		}
		return upgradeVariantRD42(variant, env.Assembly)
	})
}
