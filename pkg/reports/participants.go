package reports

// Participant chains: 1.0.0 -> 1.1.0. They run standalone and embedded in 4.2.0 requests.

func pedigreeChain() Chain {
	legacy := func(doc map[string]interface{}) bool {
		if has(doc, "gelFamilyId") {
			return true
		}
		return anyMap(doc, "members", func(member map[string]interface{}) bool {
			if has(member, "gelId") {
				return true
			}
			for _, sample := range listAt(member, "samples") {
				if _, plain := sample.(string); plain {
					return true
				}
			}
			return false
		})
	}

	return Chain{
		Versioned: true,
		Schemas: []Schema{
			{Version: "1.0.0", Matches: legacy, Upgrade: upgradePedigree10},
			{
				Version: CanonicalParticipantVersion,
				Matches: func(doc map[string]interface{}) bool {
					return !legacy(doc)
				},
			},
		},
	}
}

func upgradePedigree10(doc map[string]interface{}, _ *Env) error {
	rename(doc, "gelFamilyId", "familyId")
	if id, ok := stringOf(doc["familyId"]); ok {
		doc["familyId"] = id
	}
	if !has(doc, "members") {
		doc["members"] = []interface{}{}
	}
	return eachMapAt(doc, "members", func(_ int, member map[string]interface{}) error {
		rename(member, "gelId", "participantId")
		if id, ok := stringOf(member["participantId"]); ok {
			member["participantId"] = id
		}
		samples := listAt(member, "samples")
		for i, sample := range samples {
			if id, plain := sample.(string); plain {
				samples[i] = map[string]interface{}{"sampleId": id}
			}
		}
		return nil
	})
}

func cancerParticipantChain() Chain {
	legacy := func(doc map[string]interface{}) bool {
		if _, plain := doc["primaryDiagnosisDisease"].(string); plain {
			return true
		}
		for _, key := range []string{"tumourSamples", "germlineSamples"} {
			if anyMap(doc, key, func(sample map[string]interface{}) bool { return has(sample, "labId") }) {
				return true
			}
		}
		return false
	}

	return Chain{
		Versioned: true,
		Schemas: []Schema{
			{Version: "1.0.0", Matches: legacy, Upgrade: upgradeCancerParticipant10},
			{
				Version: CanonicalParticipantVersion,
				Matches: func(doc map[string]interface{}) bool {
					return !legacy(doc)
				},
			},
		},
	}
}

func upgradeCancerParticipant10(doc map[string]interface{}, _ *Env) error {
	stringToList(doc, "primaryDiagnosisDisease")
	stringToList(doc, "primaryDiagnosisSubDisease")
	if id, ok := stringOf(doc["individualId"]); ok {
		doc["individualId"] = id
	}
	for _, key := range []string{"tumourSamples", "germlineSamples", "matchedSamples"} {
		if !has(doc, key) {
			doc[key] = []interface{}{}
		}
	}
	for _, key := range []string{"tumourSamples", "germlineSamples"} {
		err := eachMapAt(doc, key, func(_ int, sample map[string]interface{}) error {
			rename(sample, "labId", "labSampleId")
			if id, ok := stringOf(sample["labSampleId"]); ok {
				sample["labSampleId"] = id
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
