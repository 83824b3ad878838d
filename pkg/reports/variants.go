package reports

import (
	"strings"
)

var coordinateFields = []string{"chromosome", "position", "reference", "alternate"}

// liftCoordinates moves the flat 4.x coordinates of src into a variantCoordinates block
func liftCoordinates(src map[string]interface{}, assembly Assembly) (map[string]interface{}, error) {
	coordinates := map[string]interface{}{"assembly": string(assembly)}
	for _, key := range coordinateFields {
		value, ok := src[key]
		if !ok || value == nil {
			return nil, fieldErrorf(key, "required field is missing")
		}
		coordinates[key] = value
		delete(src, key)
	}
	return coordinates, nil
}

func copyKeys(dst, src map[string]interface{}, keys ...string) {
	for _, key := range keys {
		if value, ok := src[key]; ok && value != nil {
			dst[key] = value
		}
	}
}

// upgradeVariantRD42 rewrites a 4.2.0 reported variant into a 5.0.0 small variant
func upgradeVariantRD42(variant map[string]interface{}, assembly Assembly) error {
	coordinates, err := liftCoordinates(variant, assembly)
	if err != nil {
		return err
	}
	variant["variantCoordinates"] = coordinates

	calls := []interface{}{}
	err = eachMapAt(variant, "calledGenotypes", func(_ int, genotype map[string]interface{}) error {
		call := map[string]interface{}{
			"participantId": genotype["gelId"],
			"sampleId":      genotype["sampleId"],
			"zygosity":      genotype["genotype"],
		}
		copyKeys(call, genotype, "phaseSet", "depthReference", "depthAlternate")
		calls = append(calls, call)
		return nil
	})
	if err != nil {
		return err
	}
	delete(variant, "calledGenotypes")
	variant["variantCalls"] = calls

	if !has(variant, "reportEvents") {
		variant["reportEvents"] = []interface{}{}
	}
	return eachMapAt(variant, "reportEvents", func(_ int, event map[string]interface{}) error {
		return upgradeReportEventRD42(event)
	})
}

func upgradeReportEventRD42(event map[string]interface{}) error {
	if phenotype, ok := event["phenotype"]; ok {
		delete(event, "phenotype")
		phenotypes := []interface{}{}
		if s, isString := phenotype.(string); isString && s != "" {
			phenotypes = append(phenotypes, s)
		}
		event["phenotypes"] = phenotypes
	}

	if name := stringAt(event, "panelName"); name != "" {
		event["genePanel"] = map[string]interface{}{
			"panelName":    name,
			"panelVersion": stringAt(event, "panelVersion"),
		}
	}
	delete(event, "panelName")
	delete(event, "panelVersion")

	entities := []interface{}{}
	if feature := mapAt(event, "genomicFeature"); feature != nil {
		entityType, err := genomicEntityType(stringAt(feature, "featureType"))
		if err != nil {
			return prefixPath(err, "genomicFeature")
		}
		entity := map[string]interface{}{
			"type":       entityType,
			"ensemblId":  feature["ensemblId"],
			"geneSymbol": feature["hgnc"],
		}
		copyKeys(entity, feature, "otherIds")
		entities = append(entities, entity)
	}
	delete(event, "genomicFeature")
	event["genomicEntities"] = entities

	if raw, ok := event["variantClassification"]; ok {
		delete(event, "variantClassification")
		if label, isString := raw.(string); isString && label != "" {
			significance, keep, known := legacyClassifications(label)
			if !known {
				return fieldErrorf("variantClassification", "unrecognised classification %q", label)
			}
			if keep {
				event["variantClassification"] = map[string]interface{}{"clinicalSignificance": significance}
			}
		}
	}
	return nil
}

// legacyClassifications maps 4.x classification labels onto 5.0.0 significances
func legacyClassifications(label string) (significance string, keep bool, known bool) {
	switch label {
	case "pathogenic_variant":
		return "pathogenic", true, true
	case "likely_pathogenic_variant":
		return "likely_pathogenic", true, true
	case "variant_of_unknown_clinical_significance":
		return "VUS", true, true
	case "likely_benign_variant":
		return "likely_benign", true, true
	case "benign_variant":
		return "benign", true, true
	case "not_assessed":
		return "", false, true
	}
	return "", false, false
}

func genomicEntityType(featureType string) (string, error) {
	switch strings.ToLower(strings.ReplaceAll(featureType, "_", "")) {
	case "gene":
		return "gene", nil
	case "transcript":
		return "transcript", nil
	case "regulatoryregion":
		return "regulatory_region", nil
	case "intergenic":
		return "intergenic", nil
	}
	return "", fieldErrorf("featureType", "unrecognised feature type %q", featureType)
}

// upgradeVariantCancer42 rewrites a 4.2.0 reported somatic variant into a 5.0.0 small
// variant; the call is attributed to the participant and sample of env
func upgradeVariantCancer42(variant map[string]interface{}, assembly Assembly, env *Env) error {
	reported := mapAt(variant, "reportedVariantCancer")
	if reported == nil {
		return fieldErrorf("reportedVariantCancer", "required field is missing")
	}
	if env.ParticipantID == "" || env.SampleID == "" {
		return fieldErrorf("", "participant and sample identifiers are required to migrate cancer variants")
	}

	coordinates, err := liftCoordinates(reported, assembly)
	if err != nil {
		return prefixPath(err, "reportedVariantCancer")
	}
	call := map[string]interface{}{
		"participantId": env.ParticipantID,
		"sampleId":      env.SampleID,
		"zygosity":      string(ZygosityNA),
	}
	copyKeys(call, reported, "depthReference", "depthAlternate", "vaf")
	delete(variant, "reportedVariantCancer")
	variant["variantCoordinates"] = coordinates
	variant["variantCalls"] = []interface{}{call}

	if !has(variant, "reportEvents") {
		variant["reportEvents"] = []interface{}{}
	}
	return eachMapAt(variant, "reportEvents", func(_ int, event map[string]interface{}) error {
		rename(event, "soTerms", "variantConsequences")
		entities := []interface{}{}
		if feature := mapAt(event, "genomicFeatureCancer"); feature != nil {
			entityType, err := genomicEntityType(stringAt(feature, "featureType"))
			if err != nil {
				return prefixPath(err, "genomicFeatureCancer")
			}
			entity := map[string]interface{}{
				"type":       entityType,
				"ensemblId":  feature["ensemblId"],
				"geneSymbol": feature["geneName"],
			}
			entities = append(entities, entity)
		}
		delete(event, "genomicFeatureCancer")
		delete(event, "actions")
		event["genomicEntities"] = entities
		return nil
	})
}

// upgradeVariant50 rewrites a 5.0.0 small variant into its 6.1.0 shape
func upgradeVariant50(variant map[string]interface{}, program Program) error {
	if len(listAt(variant, "alleleOrigins")) == 0 {
		variant["alleleOrigins"] = []interface{}{string(defaultAlleleOrigin(program))}
	}
	return eachMapAt(variant, "reportEvents", func(_ int, event map[string]interface{}) error {
		if phenotypes, ok := asList(event["phenotypes"]); ok {
			event["phenotypes"] = map[string]interface{}{"nonStandardPhenotype": phenotypes}
		}
		if classification := mapAt(event, "variantClassification"); classification != nil {
			if stringAt(classification, "clinicalSignificance") == "VUS" {
				classification["clinicalSignificance"] = string(UncertainSignificance)
			}
		}
		return nil
	})
}

func defaultAlleleOrigin(program Program) AlleleOrigin {
	if program == ProgramCancer {
		return SomaticVariant
	}
	return GermlineVariant
}

// looksLikeVariants50 recognises 5.0.0 variants inside the list under key
func looksLikeVariants50(doc map[string]interface{}, key string) bool {
	return anyMap(doc, key, func(variant map[string]interface{}) bool {
		if len(listAt(variant, "alleleOrigins")) == 0 {
			return true
		}
		return anyMap(variant, "reportEvents", func(event map[string]interface{}) bool {
			if _, isList := asList(event["phenotypes"]); isList {
				return true
			}
			return stringAt(mapAt(event, "variantClassification"), "clinicalSignificance") == "VUS"
		})
	})
}

func upgradeVariantsAt(doc map[string]interface{}, key string, fn func(map[string]interface{}) error) error {
	return eachMapAt(doc, key, func(_ int, variant map[string]interface{}) error {
		return fn(variant)
	})
}
