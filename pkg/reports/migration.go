package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// Version is a schema release such as "6.1.0"
type Version string

// sameRelease compares major and minor components; patch releases share a shape
func (v Version) sameRelease(other Version) bool {
	return release(v) == release(other)
}

func release(v Version) string {
	parts := strings.SplitN(string(v), ".", 3)
	if len(parts) < 2 {
		return string(v)
	}
	return parts[0] + "." + parts[1]
}

// Kind names a record family
type Kind string

const (
	KindInterpretationRequest Kind = "interpretation_request"
	KindInterpretedGenome     Kind = "interpreted_genome"
	KindClinicalReport        Kind = "clinical_report"
	KindExitQuestionnaire     Kind = "exit_questionnaire"
	KindPedigree              Kind = "pedigree"
	KindCancerParticipant     Kind = "cancer_participant"
)

// Context carries identifiers a chain cannot read from the payload itself
type Context struct {
	Assembly                     Assembly
	InterpretationRequestID      string
	InterpretationRequestVersion int
	ParticipantID                string
	SampleID                     string
}

// Env is handed to every upgrade step
type Env struct {
	Context
	Program  Program
	registry *Registry
}

// MigrateEmbedded runs the chain registered for kind over a nested record and
// returns its canonical form
func (e *Env) MigrateEmbedded(kind Kind, doc map[string]interface{}) (map[string]interface{}, error) {
	migrated, _, err := e.registry.run(e.Program, kind, doc, e.Context)
	return migrated, err
}

// Schema is one historical shape of a record family
type Schema struct {
	Version Version
	// Matches recognises the shape when the payload does not declare its version
	Matches func(doc map[string]interface{}) bool
	// Upgrade rewrites doc in place into the next schema of the chain; nil on the last schema
	Upgrade func(doc map[string]interface{}, env *Env) error
}

// Chain lists the schemas of a record family from oldest to canonical
type Chain struct {
	Schemas []Schema
	// Versioned records carry a versionControl block that is rewritten after every step
	Versioned bool
}

// Canonical returns the version the chain converges on
func (c Chain) Canonical() Version {
	if len(c.Schemas) == 0 {
		return ""
	}
	return c.Schemas[len(c.Schemas)-1].Version
}

func (c Chain) validate() error {
	if len(c.Schemas) == 0 {
		return errors.New("chain has no schemas")
	}
	for i, schema := range c.Schemas {
		if schema.Version == "" {
			return fmt.Errorf("schema %d has no version", i)
		}
		if i < len(c.Schemas)-1 && schema.Upgrade == nil {
			return fmt.Errorf("schema %s has no upgrade step", schema.Version)
		}
	}
	return nil
}

// detect returns the index of the schema doc is expressed in
func (c Chain) detect(doc map[string]interface{}) (int, error) {
	if declared := declaredVersion(doc); declared != "" {
		for i, schema := range c.Schemas {
			if schema.Version.sameRelease(declared) {
				return i, nil
			}
		}
		return -1, fmt.Errorf("unsupported schema version %s", declared)
	}
	for i := len(c.Schemas) - 1; i >= 0; i-- {
		if matches := c.Schemas[i].Matches; matches != nil && matches(doc) {
			return i, nil
		}
	}
	return -1, errors.New("payload does not conform to any known schema version")
}

type chainKey struct {
	program Program
	kind    Kind
}

// Registry maps (program, kind) to the migration chain of that record family.
// Migrations through a Registry are pure: the raw payload is decoded afresh on each call.
type Registry struct {
	mu     sync.RWMutex
	chains map[chainKey]Chain
}

// NewRegistry returns a registry holding the built-in chains
func NewRegistry() *Registry {
	r := &Registry{chains: make(map[chainKey]Chain)}
	registerBuiltins(r)
	return r
}

// Register adds or replaces the chain for program and kind
func (r *Registry) Register(program Program, kind Kind, chain Chain) error {
	if !program.Valid() {
		return fmt.Errorf("unknown program %q", program)
	}
	if err := chain.validate(); err != nil {
		return fmt.Errorf("invalid chain for %s %s: %w", program, kind, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[chainKey{program: program, kind: kind}] = chain
	return nil
}

func (r *Registry) mustRegister(program Program, kind Kind, chain Chain) {
	if err := r.Register(program, kind, chain); err != nil {
		panic(err)
	}
}

func (r *Registry) chain(program Program, kind Kind) (Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain, ok := r.chains[chainKey{program: program, kind: kind}]
	return chain, ok
}

// Detect reports the schema version raw is expressed in
func (r *Registry) Detect(program Program, kind Kind, raw json.RawMessage) (Version, error) {
	doc, err := parseDocument(program, kind, raw)
	if err != nil {
		return "", err
	}
	chain, ok := r.chain(program, kind)
	if !ok {
		return "", &MigrationError{Program: program, Kind: kind, Step: "dispatch", Reason: "no chain registered"}
	}
	index, err := chain.detect(doc)
	if err != nil {
		return "", &MigrationError{Program: program, Kind: kind, Step: "detect", Reason: err.Error()}
	}
	return chain.Schemas[index].Version, nil
}

// Migrate brings raw to the canonical schema of its family and returns the generic form
func (r *Registry) Migrate(program Program, kind Kind, raw json.RawMessage, mctx Context) (map[string]interface{}, error) {
	doc, err := parseDocument(program, kind, raw)
	if err != nil {
		return nil, err
	}
	migrated, _, err := r.run(program, kind, doc, mctx)
	return migrated, err
}

func parseDocument(program Program, kind Kind, raw json.RawMessage) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &MigrationError{Program: program, Kind: kind, Step: "parse", Reason: err.Error()}
	}
	if doc == nil {
		return nil, &MigrationError{Program: program, Kind: kind, Step: "parse", Reason: "payload is empty"}
	}
	return doc, nil
}

func (r *Registry) run(program Program, kind Kind, doc map[string]interface{}, mctx Context) (map[string]interface{}, Version, error) {
	chain, ok := r.chain(program, kind)
	if !ok {
		return nil, "", &MigrationError{Program: program, Kind: kind, Step: "dispatch", Reason: "no chain registered"}
	}

	start, err := chain.detect(doc)
	if err != nil {
		return nil, "", &MigrationError{Program: program, Kind: kind, Step: "detect", Reason: err.Error()}
	}
	from := chain.Schemas[start].Version

	env := &Env{Context: mctx, Program: program, registry: r}
	for i := start; i < len(chain.Schemas)-1; i++ {
		current, next := chain.Schemas[i], chain.Schemas[i+1]
		if err := current.Upgrade(doc, env); err != nil {
			return nil, from, stepFailure(program, kind, from, fmt.Sprintf("%s->%s", current.Version, next.Version), err)
		}
		if chain.Versioned {
			setVersion(doc, next.Version)
		}
	}
	if chain.Versioned {
		setVersion(doc, chain.Canonical())
	}
	return doc, from, nil
}

func stepFailure(program Program, kind Kind, from Version, step string, err error) error {
	var nested *MigrationError
	if errors.As(err, &nested) {
		return nested
	}
	me := &MigrationError{Program: program, Kind: kind, FromVersion: from, Step: step, Reason: err.Error()}
	var fe *FieldError
	if errors.As(err, &fe) {
		me.Path = fe.Path
		me.Reason = fe.Reason
	}
	return me
}

type validator interface {
	Validate() error
}

// migrateTo runs the chain and decodes the canonical form into T
func migrateTo[T any](r *Registry, program Program, kind Kind, raw json.RawMessage, mctx Context) (*T, error) {
	doc, err := parseDocument(program, kind, raw)
	if err != nil {
		return nil, err
	}
	migrated, from, err := r.run(program, kind, doc, mctx)
	if err != nil {
		return nil, err
	}

	out := new(T)
	if err := decodeDocument(migrated, out); err != nil {
		return nil, &MigrationError{Program: program, Kind: kind, FromVersion: from, Step: "decode", Reason: err.Error()}
	}
	if v, ok := any(out).(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, stepFailure(program, kind, from, "validate", err)
		}
	}
	return out, nil
}

// decodeDocument maps the generic form onto a typed record using the json field names
func decodeDocument(doc map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(doc)
}

// MigrateInterpretationRequestRD migrates a rare disease interpretation request
func (r *Registry) MigrateInterpretationRequestRD(raw json.RawMessage, mctx Context) (*InterpretationRequestRD, error) {
	return migrateTo[InterpretationRequestRD](r, ProgramRareDisease, KindInterpretationRequest, raw, mctx)
}

// MigrateCancerInterpretationRequest migrates a cancer interpretation request
func (r *Registry) MigrateCancerInterpretationRequest(raw json.RawMessage, mctx Context) (*CancerInterpretationRequest, error) {
	return migrateTo[CancerInterpretationRequest](r, ProgramCancer, KindInterpretationRequest, raw, mctx)
}

// MigrateInterpretedGenome migrates an interpreted genome of either program
func (r *Registry) MigrateInterpretedGenome(program Program, raw json.RawMessage, mctx Context) (*InterpretedGenome, error) {
	return migrateTo[InterpretedGenome](r, program, KindInterpretedGenome, raw, mctx)
}

// MigrateClinicalReport migrates a clinical report of either program
func (r *Registry) MigrateClinicalReport(program Program, raw json.RawMessage, mctx Context) (*ClinicalReport, error) {
	return migrateTo[ClinicalReport](r, program, KindClinicalReport, raw, mctx)
}

// MigrateRareDiseaseExitQuestionnaire migrates a rare disease exit questionnaire
func (r *Registry) MigrateRareDiseaseExitQuestionnaire(raw json.RawMessage, mctx Context) (*RareDiseaseExitQuestionnaire, error) {
	return migrateTo[RareDiseaseExitQuestionnaire](r, ProgramRareDisease, KindExitQuestionnaire, raw, mctx)
}

// MigrateCancerExitQuestionnaire migrates a cancer exit questionnaire
func (r *Registry) MigrateCancerExitQuestionnaire(raw json.RawMessage, mctx Context) (*CancerExitQuestionnaire, error) {
	return migrateTo[CancerExitQuestionnaire](r, ProgramCancer, KindExitQuestionnaire, raw, mctx)
}

// MigratePedigree migrates a pedigree
func (r *Registry) MigratePedigree(raw json.RawMessage, mctx Context) (*Pedigree, error) {
	return migrateTo[Pedigree](r, ProgramRareDisease, KindPedigree, raw, mctx)
}

// MigrateCancerParticipant migrates a cancer participant
func (r *Registry) MigrateCancerParticipant(raw json.RawMessage, mctx Context) (*CancerParticipant, error) {
	return migrateTo[CancerParticipant](r, ProgramCancer, KindCancerParticipant, raw, mctx)
}
