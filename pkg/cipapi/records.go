package cipapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var (
	rawMessageType = reflect.TypeOf(json.RawMessage{})
	workspaceType  = reflect.TypeOf(WorkspacePermissions{})
)

// keepRaw re-encodes nested documents decoded into json.RawMessage fields
func keepRaw(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != rawMessageType {
		return data, nil
	}
	if b, ok := data.(json.RawMessage); ok {
		return []byte(b), nil
	}
	return json.Marshal(data)
}

// workspaceByName accepts workspaces sent as their short name
func workspaceByName(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != workspaceType || from.Kind() != reflect.String {
		return data, nil
	}
	return map[string]interface{}{"short_name": data}, nil
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isComposite(k reflect.Kind) bool {
	return k == reflect.Map || k == reflect.Struct || k == reflect.Slice || k == reflect.Array
}

// tolerateShape swaps a value that cannot fill its field for the field's zero value,
// so an optional field sent in an unexpected shape leaves the field empty
func tolerateShape(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to == rawMessageType {
		return data, nil
	}
	switch {
	case to.Kind() == reflect.Struct || to.Kind() == reflect.Map:
		if from.Kind() != reflect.Map && from.Kind() != reflect.Struct {
			return map[string]interface{}{}, nil
		}
	case to.Kind() == reflect.Slice:
		elem := to.Elem().Kind()
		if from.Kind() == reflect.Map && isScalar(elem) {
			return []interface{}{}, nil
		}
		if isScalar(from.Kind()) && isComposite(elem) {
			return []interface{}{}, nil
		}
	case isScalar(to.Kind()):
		if isComposite(from.Kind()) {
			return reflect.Zero(to).Interface(), nil
		}
		if s, ok := data.(string); ok && !parsesAs(to.Kind(), strings.TrimSpace(s)) {
			return reflect.Zero(to).Interface(), nil
		}
	}
	return data, nil
}

// parsesAs reports whether s converts to a value of kind k
func parsesAs(k reflect.Kind, s string) bool {
	var err error
	switch k {
	case reflect.String:
		return true
	case reflect.Bool:
		_, err = strconv.ParseBool(s)
	case reflect.Float32, reflect.Float64:
		_, err = strconv.ParseFloat(s, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_, err = strconv.ParseUint(s, 0, 64)
	default:
		_, err = strconv.ParseInt(s, 0, 64)
	}
	return s == "" || err == nil
}

// decodeRecord unpacks raw into out leniently: unknown keys are ignored, missing keys
// keep their zero value, scalars are converted between strings and numbers and fields
// sent in a shape they cannot hold are left empty. Only a payload that is not a JSON
// object fails.
func decodeRecord(raw json.RawMessage, out interface{}) error {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if data == nil {
		return nil
	}
	if _, ok := data.(map[string]interface{}); !ok {
		return fmt.Errorf("expected a JSON object, got %T", data)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(keepRaw, workspaceByName, tolerateShape),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}

// isObject filters the empty list placeholders found in sub-record lists
func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// isPresent reports whether raw holds anything other than null or an empty document
func isPresent(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "{}", "[]":
		return false
	}
	return true
}

// RequestStatus is one entry of the status history of a case
type RequestStatus struct {
	CreatedAt string `json:"created_at"`
	User      string `json:"user"`
	Status    string `json:"status"`
}

// IsBlocked reports whether the entry blocked the case
func (s RequestStatus) IsBlocked() bool {
	return s.Status == StatusBlocked
}

// Case statuses referenced by the status helpers
const (
	StatusBlocked         = "blocked"
	StatusDispatched      = "dispatched"
	StatusReportGenerated = "report_generated"
	StatusReportSent      = "report_sent"
)

// CaseOverview is one entry of the case list
type CaseOverview struct {
	InterpretationRequestID  int             `json:"id"`
	Version                  int             `json:"version"`
	CIP                      string          `json:"cip"`
	CohortID                 string          `json:"cohort_id"`
	SampleType               string          `json:"sample_type"`
	LastStatus               string          `json:"last_status"`
	FamilyID                 string          `json:"family_id"`
	CancerParticipantID      string          `json:"cancer_participant"`
	Proband                  string          `json:"proband"`
	NumberOfSamples          int             `json:"number_of_samples"`
	LastUpdate               string          `json:"last_update"`
	Sites                    []string        `json:"sites"`
	CasePriority             int             `json:"case_priority"`
	Tags                     []string        `json:"tags"`
	Assembly                 string          `json:"assembly"`
	LastModified             string          `json:"last_modified"`
	WorkflowStatus           string          `json:"workflow_status"`
	CVAVariantsStatus        string          `json:"cva_variants_status"`
	CVAVariantsTransactionID string          `json:"cva_variants_transaction_id"`
	ExternalCaseID           string          `json:"case_id"`
	Status                   []RequestStatus `json:"status"`
	Raw                      json.RawMessage `json:"-"`
}

type overviewWire struct {
	CaseOverview
	Composite string `json:"interpretation_request_id"`
}

// NewCaseOverview builds an overview from a case list entry. The composite
// interpretation_request_id "{id}-{version}" is split into its numeric parts.
func NewCaseOverview(raw json.RawMessage) (CaseOverview, error) {
	var wire overviewWire
	if err := decodeRecord(raw, &wire); err != nil {
		return CaseOverview{}, &ParsingError{Field: "case overview", Err: err}
	}
	id, version, err := splitComposite(wire.Composite)
	if err != nil {
		return CaseOverview{}, &ParsingError{CaseID: wire.Composite, Field: "interpretation_request_id", Err: err}
	}
	overview := wire.CaseOverview
	overview.InterpretationRequestID = id
	overview.Version = version
	overview.Raw = raw
	return overview, nil
}

func splitComposite(composite string) (int, int, error) {
	idPart, versionPart, ok := strings.Cut(composite, "-")
	if !ok {
		return 0, 0, fmt.Errorf("expected {id}-{version}, got %q", composite)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid id in %q", composite)
	}
	version, err := strconv.Atoi(versionPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid version in %q", composite)
	}
	return id, version, nil
}

// CaseID returns the interpretation request id as used in case URLs
func (o CaseOverview) CaseID() string {
	return strconv.Itoa(o.InterpretationRequestID)
}

// GroupID returns the family id of rare disease cases and the participant id of cancer ones
func (o CaseOverview) GroupID() string {
	if o.SampleType == sampleTypeCancer {
		return o.CancerParticipantID
	}
	return o.FamilyID
}

// Less orders overviews by id, then version
func (o CaseOverview) Less(other CaseOverview) bool {
	if o.InterpretationRequestID != other.InterpretationRequestID {
		return o.InterpretationRequestID < other.InterpretationRequestID
	}
	return o.Version < other.Version
}

// Equal reports whether both overviews describe the same case version
func (o CaseOverview) Equal(other CaseOverview) bool {
	return o.InterpretationRequestID == other.InterpretationRequestID && o.Version == other.Version
}

// CaseHeader holds the administrative fields of a case. It is available for every
// registered case, including those without an interpretation request yet.
type CaseHeader struct {
	InterpretationRequestID string                 `json:"interpretation_request_id"`
	Version                 int                    `json:"version"`
	ExternalCaseID          string                 `json:"case_id"`
	SampleType              string                 `json:"sample_type"`
	Assembly                string                 `json:"assembly"`
	CIP                     string                 `json:"cip"`
	GroupID                 string                 `json:"group_id"`
	CohortID                string                 `json:"cohort_id"`
	FamilyID                string                 `json:"family_id"`
	CancerParticipantID     string                 `json:"cancer_participant"`
	LastStatus              string                 `json:"last_status"`
	CreatedAt               string                 `json:"created_at"`
	LastModified            string                 `json:"last_modified"`
	GelTieringQCOutcome     string                 `json:"gel_tiering_qc_outcome"`
	CasePriority            int                    `json:"case_priority"`
	Tags                    []string               `json:"tags"`
	Paid                    bool                   `json:"paid"`
	Workspaces              []WorkspacePermissions `json:"workspaces"`
	Status                  []RequestStatus        `json:"status"`
	Raw                     json.RawMessage        `json:"-"`
}

// NewCaseHeader builds the header of a raw case
func NewCaseHeader(raw json.RawMessage) (*CaseHeader, error) {
	var header CaseHeader
	if err := decodeRecord(raw, &header); err != nil {
		return nil, &ParsingError{Field: "case", Err: err}
	}
	header.Raw = raw
	return &header, nil
}

// IsBlocked reports whether the case is currently blocked
func (h *CaseHeader) IsBlocked() bool {
	return h.LastStatus == StatusBlocked
}

// HasBeenEverBlocked reports whether the case was blocked at any point
func (h *CaseHeader) HasBeenEverBlocked() bool {
	return h.hasStatus(StatusBlocked)
}

// HasBeenClosed reports whether a report was ever generated or sent
func (h *CaseHeader) HasBeenClosed() bool {
	return h.hasStatus(StatusReportGenerated) || h.hasStatus(StatusReportSent)
}

// HasBeenDispatched reports whether the case was ever dispatched
func (h *CaseHeader) HasBeenDispatched() bool {
	return h.hasStatus(StatusDispatched)
}

// IsClosed reports whether the last status is report_sent
func (h *CaseHeader) IsClosed() bool {
	return h.LastStatus == StatusReportSent
}

func (h *CaseHeader) hasStatus(status string) bool {
	for _, s := range h.Status {
		if s.Status == status {
			return true
		}
	}
	return false
}

// WorkspacePermissions is a workspace a case is visible in
type WorkspacePermissions struct {
	ShortName string   `json:"short_name"`
	LongName  string   `json:"long_name"`
	GMCName   string   `json:"gmc_name"`
	Groups    []string `json:"groups"`
}

// InterpretedGenomeRecord is an interpreted genome attached to a case
type InterpretedGenomeRecord struct {
	Status                       []RequestStatus `json:"status"`
	GelQCOutcome                 string          `json:"gel_qc_outcome"`
	CreatedAt                    string          `json:"created_at"`
	CIPVersion                   int             `json:"cip_version"`
	InterpretationServiceVersion string          `json:"interpretation_service_version"`
	InterpretedGenomeData        json.RawMessage `json:"interpreted_genome_data"`
	CVAVariantsStatus            string          `json:"cva_variants_status"`
	CVAVariantsTransactionID     string          `json:"cva_variants_transaction_id"`
	Raw                          json.RawMessage `json:"-"`
}

// NewInterpretedGenomeRecord builds an interpreted genome record
func NewInterpretedGenomeRecord(raw json.RawMessage) (InterpretedGenomeRecord, error) {
	var record InterpretedGenomeRecord
	if err := decodeRecord(raw, &record); err != nil {
		return InterpretedGenomeRecord{}, &ParsingError{Field: "interpreted genome", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// ServiceVersion is the version of the interpretation service that produced the
// genome, the record version when the server does not report one
func (r InterpretedGenomeRecord) ServiceVersion() string {
	if r.InterpretationServiceVersion != "" {
		return r.InterpretationServiceVersion
	}
	return strconv.Itoa(r.CIPVersion)
}

// ClinicalReportRecord is a clinical report attached to a case
type ClinicalReportRecord struct {
	ClinicalReportData       json.RawMessage `json:"clinical_report_data"`
	CreatedAt                string          `json:"created_at"`
	ExitQuestionnaire        json.RawMessage `json:"exit_questionnaire"`
	ClinicalReportVersion    int             `json:"clinical_report_version"`
	Valid                    bool            `json:"valid"`
	CVAVariantsStatus        string          `json:"cva_variants_status"`
	CVAVariantsTransactionID string          `json:"cva_variants_transaction_id"`
	Timestamp                string          `json:"timestamp"`
	Raw                      json.RawMessage `json:"-"`
}

// NewClinicalReportRecord builds a clinical report record
func NewClinicalReportRecord(raw json.RawMessage) (ClinicalReportRecord, error) {
	var record ClinicalReportRecord
	if err := decodeRecord(raw, &record); err != nil {
		return ClinicalReportRecord{}, &ParsingError{Field: "clinical report", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// ExitQuestionnaireRecord is the exit questionnaire of a clinical report
type ExitQuestionnaireRecord struct {
	CreatedAt             string          `json:"created_at"`
	ExitQuestionnaireData json.RawMessage `json:"exit_questionnaire_data"`
	User                  string          `json:"user"`
	CVAStatus             string          `json:"cva_status"`
	CVATransactionID      string          `json:"cva_transaction_id"`
	Raw                   json.RawMessage `json:"-"`
}

// NewExitQuestionnaireRecord builds an exit questionnaire record
func NewExitQuestionnaireRecord(raw json.RawMessage) (ExitQuestionnaireRecord, error) {
	var record ExitQuestionnaireRecord
	if err := decodeRecord(raw, &record); err != nil {
		return ExitQuestionnaireRecord{}, &ParsingError{Field: "exit questionnaire", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// VariantInterpretationLog is a stored batch of variant interpretation log entries
type VariantInterpretationLog struct {
	ID        int               `json:"id"`
	CaseID    string            `json:"case_id"`
	User      string            `json:"user"`
	CreatedAt string            `json:"created_at"`
	LogEntry  []json.RawMessage `json:"log_entry"`
	Raw       json.RawMessage   `json:"-"`
}

// NewVariantInterpretationLog builds a variant interpretation log record
func NewVariantInterpretationLog(raw json.RawMessage) (VariantInterpretationLog, error) {
	var record VariantInterpretationLog
	if err := decodeRecord(raw, &record); err != nil {
		return VariantInterpretationLog{}, &ParsingError{Field: "variant interpretation log", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// InterpretationFlag is a flag attached to a case
type InterpretationFlag struct {
	ID                    int             `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	AdditionalDescription string          `json:"additional_description"`
	Raw                   json.RawMessage `json:"-"`
}

// NewInterpretationFlag builds an interpretation flag record
func NewInterpretationFlag(raw json.RawMessage) (InterpretationFlag, error) {
	var record InterpretationFlag
	if err := decodeRecord(raw, &record); err != nil {
		return InterpretationFlag{}, &ParsingError{Field: "interpretation flag", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// Referral is a test order received for a participant
type Referral struct {
	ReferralID          string          `json:"referral_id"`
	ReferralUID         string          `json:"referral_uid"`
	ClinicalIndication  string          `json:"clinical_indication"`
	OrderingEntity      string          `json:"ordering_entity"`
	ProbandParticipant  string          `json:"proband_participant"`
	Status              string          `json:"status"`
	CreatedAt           string          `json:"created_at"`
	LastModified        string          `json:"last_modified"`
	InterpretationCases []string        `json:"interpretation_requests"`
	Raw                 json.RawMessage `json:"-"`
}

// NewReferral builds a referral record
func NewReferral(raw json.RawMessage) (Referral, error) {
	var record Referral
	if err := decodeRecord(raw, &record); err != nil {
		return Referral{}, &ParsingError{Field: "referral", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// Participant is a participant registered in the service
type Participant struct {
	ParticipantID  string          `json:"participant_id"`
	ParticipantUID string          `json:"participant_uid"`
	Sex            string          `json:"sex"`
	YearOfBirth    int             `json:"year_of_birth"`
	Programme      string          `json:"programme"`
	CreatedAt      string          `json:"created_at"`
	LastModified   string          `json:"last_modified"`
	Raw            json.RawMessage `json:"-"`
}

// NewParticipant builds a participant record
func NewParticipant(raw json.RawMessage) (Participant, error) {
	var record Participant
	if err := decodeRecord(raw, &record); err != nil {
		return Participant{}, &ParsingError{Field: "participant", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// ParticipantConsent is the consent of a participant
type ParticipantConsent struct {
	ParticipantID string          `json:"participant_id"`
	ConsentData   json.RawMessage `json:"consent_data"`
	User          string          `json:"user"`
	CreatedAt     string          `json:"created_at"`
	LastModified  string          `json:"last_modified"`
	Raw           json.RawMessage `json:"-"`
}

// NewParticipantConsent builds a participant consent record
func NewParticipantConsent(raw json.RawMessage) (ParticipantConsent, error) {
	var record ParticipantConsent
	if err := decodeRecord(raw, &record); err != nil {
		return ParticipantConsent{}, &ParsingError{Field: "participant consent", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// ParticipantInterpretedGenome is an interpreted genome attached to a participant
type ParticipantInterpretedGenome struct {
	ParticipantID             string          `json:"participant_id"`
	InterpretationServiceName string          `json:"interpretation_service_name"`
	Version                   int             `json:"version"`
	InterpretedGenomeData     json.RawMessage `json:"interpreted_genome_data"`
	CreatedAt                 string          `json:"created_at"`
	Raw                       json.RawMessage `json:"-"`
}

// NewParticipantInterpretedGenome builds a participant interpreted genome record
func NewParticipantInterpretedGenome(raw json.RawMessage) (ParticipantInterpretedGenome, error) {
	var record ParticipantInterpretedGenome
	if err := decodeRecord(raw, &record); err != nil {
		return ParticipantInterpretedGenome{}, &ParsingError{Field: "participant interpreted genome", Err: err}
	}
	record.Raw = raw
	return record, nil
}

// ParticipantClinicalReport is a summary of findings attached to a participant
type ParticipantClinicalReport struct {
	ParticipantID             string          `json:"participant_id"`
	InterpretationServiceName string          `json:"interpretation_service_name"`
	Version                   int             `json:"version"`
	ClinicalReportData        json.RawMessage `json:"clinical_report_data"`
	CreatedAt                 string          `json:"created_at"`
	Raw                       json.RawMessage `json:"-"`
}

// NewParticipantClinicalReport builds a participant summary of findings record
func NewParticipantClinicalReport(raw json.RawMessage) (ParticipantClinicalReport, error) {
	var record ParticipantClinicalReport
	if err := decodeRecord(raw, &record); err != nil {
		return ParticipantClinicalReport{}, &ParsingError{Field: "participant clinical report", Err: err}
	}
	record.Raw = raw
	return record, nil
}
