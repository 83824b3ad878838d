package reports

// Exit questionnaire chains: 4.2.0 -> 6.1.0. The 5.0.0 models kept the 4.2.0 shape.

var legacyCaseLevelKeys = map[string]string{
	"total_review_time":   "totalReviewTime",
	"mdt_review_time":     "mdtReviewTime",
	"reviewed_in_mdt_wga": "reviewedInMdtWga",
	"actionable_variants": "actionableVariants",
}

func exitQuestionnaireChain(program Program) Chain {
	legacy := legacyRareDiseaseQuestionnaire
	upgrade := upgradeRareDiseaseQuestionnaire42
	if program == ProgramCancer {
		legacy = legacyCancerQuestionnaire
		upgrade = upgradeCancerQuestionnaire42
	}

	return Chain{
		Schemas: []Schema{
			{Version: "4.2.0", Matches: legacy, Upgrade: upgrade},
			{
				Version: CanonicalReportsVersion,
				Matches: func(doc map[string]interface{}) bool {
					return !legacy(doc)
				},
			},
		},
	}
}

func legacyRareDiseaseQuestionnaire(doc map[string]interface{}) bool {
	return anyMap(doc, "variantGroupLevelQuestions", func(group map[string]interface{}) bool {
		_, explained := group["phenotypesExplained"].(string)
		_, utility := group["clinicalUtility"].(string)
		return explained || utility
	})
}

func upgradeRareDiseaseQuestionnaire42(doc map[string]interface{}, _ *Env) error {
	if !has(doc, "variantGroupLevelQuestions") {
		doc["variantGroupLevelQuestions"] = []interface{}{}
	}
	return eachMapAt(doc, "variantGroupLevelQuestions", func(_ int, group map[string]interface{}) error {
		stringToList(group, "phenotypesExplained")
		stringToList(group, "clinicalUtility")
		if version, ok := intOf(group["variantGroup"]); ok {
			group["variantGroup"] = version
		}
		return nil
	})
}

func legacyCancerQuestionnaire(doc map[string]interface{}) bool {
	if questions := mapAt(doc, "caseLevelQuestions"); questions != nil {
		for key := range legacyCaseLevelKeys {
			if _, ok := questions[key]; ok {
				return true
			}
		}
	}
	return anyMap(doc, "somaticVariantLevelQuestions", func(question map[string]interface{}) bool {
		_, plain := question["variantActionability"].(string)
		return plain
	})
}

func upgradeCancerQuestionnaire42(doc map[string]interface{}, _ *Env) error {
	questions := mapAt(doc, "caseLevelQuestions")
	if questions == nil {
		return fieldErrorf("caseLevelQuestions", "required field is missing")
	}
	for from, to := range legacyCaseLevelKeys {
		rename(questions, from, to)
	}
	return eachMapAt(doc, "somaticVariantLevelQuestions", func(_ int, question map[string]interface{}) error {
		stringToList(question, "variantActionability")
		return nil
	})
}
