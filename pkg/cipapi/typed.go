package cipapi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/cipapi-client/pkg/rest"
)

// one casts a single raw result
func one[T any](raw json.RawMessage, err error, decode func(json.RawMessage) (T, error)) (*T, error) {
	if err != nil {
		return nil, err
	}
	item, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// many casts a lazy sequence of raw results
func many[T any](raws *rest.Iterator[json.RawMessage], err error, decode func(json.RawMessage) (T, error)) (*rest.Iterator[T], error) {
	if err != nil {
		return nil, err
	}
	return rest.Map(raws, decode), nil
}

func (c *Client) newCase(raw json.RawMessage, err error) (*Case, error) {
	if err != nil {
		return nil, err
	}
	return NewCase(raw, c.registry)
}

// ListCases lists the case overviews
func (c *Client) ListCases(ctx context.Context, params url.Values) (*rest.Iterator[CaseOverview], error) {
	raws, err := c.ListCasesRaw(ctx, params)
	return many(raws, err, NewCaseOverview)
}

// GetCases is an alias of ListCases
func (c *Client) GetCases(ctx context.Context, params url.Values) (*rest.Iterator[CaseOverview], error) {
	return c.ListCases(ctx, params)
}

// GetCase fetches a case and migrates its interpretation request
func (c *Client) GetCase(ctx context.Context, caseID string, caseVersion int, params url.Values) (*Case, error) {
	return c.newCase(c.GetCaseRaw(ctx, caseID, caseVersion, params))
}

// GetCaseFor fetches the case an overview points to
func (c *Client) GetCaseFor(ctx context.Context, overview CaseOverview, params url.Values) (*Case, error) {
	return c.GetCase(ctx, overview.CaseID(), overview.Version, params)
}

// RegisterCase creates a case. New cases have no interpretation request yet, so only
// the header is returned.
func (c *Client) RegisterCase(ctx context.Context, payload interface{}, params url.Values) (*CaseHeader, error) {
	raw, err := c.RegisterCaseRaw(ctx, payload, params)
	if err != nil {
		return nil, err
	}
	return NewCaseHeader(raw)
}

// PatchCase applies a partial update and returns the updated case
func (c *Client) PatchCase(ctx context.Context, caseID string, caseVersion int, payload interface{}, params url.Values) (*Case, error) {
	return c.newCase(c.PatchCaseRaw(ctx, caseID, caseVersion, payload, params))
}

// SubmitInterpretationRequest attaches an interpretation request and returns the updated case
func (c *Client) SubmitInterpretationRequest(ctx context.Context, caseID string, caseVersion int, request interface{}, extra map[string]interface{}, params url.Values) (*Case, error) {
	return c.newCase(c.SubmitInterpretationRequestRaw(ctx, caseID, caseVersion, request, extra, params))
}

// Dispatch dispatches a case and returns the updated case
func (c *Client) Dispatch(ctx context.Context, caseID string, caseVersion int, params url.Values) (*Case, error) {
	return c.newCase(c.DispatchRaw(ctx, caseID, caseVersion, params))
}

// ChangePriority sets the priority of a case and returns the updated case
func (c *Client) ChangePriority(ctx context.Context, caseID string, caseVersion int, priority int, params url.Values) (*Case, error) {
	return c.newCase(c.ChangePriorityRaw(ctx, caseID, caseVersion, priority, params))
}

// SubmitInterpretedGenome posts the interpreted genome of an interpretation partner
func (c *Client) SubmitInterpretedGenome(ctx context.Context, payload interface{}, partnerID, analysisType, reportID string, params url.Values) (*InterpretedGenomeRecord, error) {
	raw, err := c.SubmitInterpretedGenomeRaw(ctx, payload, partnerID, analysisType, reportID, params)
	return one(raw, err, NewInterpretedGenomeRecord)
}

// SubmitClinicalReport posts a clinical report
func (c *Client) SubmitClinicalReport(ctx context.Context, payload interface{}, partnerID, analysisType, reportID string, params url.Values) (*ClinicalReportRecord, error) {
	raw, err := c.SubmitClinicalReportRaw(ctx, payload, partnerID, analysisType, reportID, params)
	return one(raw, err, NewClinicalReportRecord)
}

// ListClinicalReports lists clinical reports
func (c *Client) ListClinicalReports(ctx context.Context, params url.Values) (*rest.Iterator[ClinicalReportRecord], error) {
	raws, err := c.ListClinicalReportsRaw(ctx, params)
	return many(raws, err, NewClinicalReportRecord)
}

// SubmitVariantInterpretationLogs posts log entries for a case
func (c *Client) SubmitVariantInterpretationLogs(ctx context.Context, entries []interface{}, caseID string, caseVersion int, params url.Values) (*VariantInterpretationLog, error) {
	payload := map[string]interface{}{"log_entry": entries}
	raw, err := c.SubmitVariantInterpretationLogsRaw(ctx, payload, caseID, caseVersion, params)
	return one(raw, err, NewVariantInterpretationLog)
}

// SubmitInterpretationFlags posts interpretation flags and returns the stored ones
func (c *Client) SubmitInterpretationFlags(ctx context.Context, payload interface{}, caseID string, caseVersion int, params url.Values) ([]InterpretationFlag, error) {
	raw, err := c.SubmitInterpretationFlagsRaw(ctx, payload, caseID, caseVersion, params)
	if err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if raw != nil {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, &ParsingError{CaseID: caseID, Field: "interpretation flags", Err: err}
		}
	}
	flags := make([]InterpretationFlag, 0, len(entries))
	for _, entry := range entries {
		flag, err := NewInterpretationFlag(entry)
		if err != nil {
			return nil, withCaseID(err, caseID)
		}
		flags = append(flags, flag)
	}
	return flags, nil
}

// GetInterpretationFlags lists the interpretation flags of a case
func (c *Client) GetInterpretationFlags(ctx context.Context, caseID string, caseVersion int, params url.Values) (*rest.Iterator[InterpretationFlag], error) {
	raws, err := c.GetInterpretationFlagsRaw(ctx, caseID, caseVersion, params)
	return many(raws, err, NewInterpretationFlag)
}

// GetExitQuestionnaire fetches the exit questionnaire of a clinical report
func (c *Client) GetExitQuestionnaire(ctx context.Context, caseID string, caseVersion, clinicalReportVersion int, params url.Values) (*ExitQuestionnaireRecord, error) {
	raw, err := c.GetExitQuestionnaireRaw(ctx, caseID, caseVersion, clinicalReportVersion, params)
	return one(raw, err, NewExitQuestionnaireRecord)
}

// CreateReferral creates a referral
func (c *Client) CreateReferral(ctx context.Context, payload interface{}, params url.Values) (*Referral, error) {
	raw, err := c.CreateReferralRaw(ctx, payload, params)
	return one(raw, err, NewReferral)
}

// ListReferral lists referrals
func (c *Client) ListReferral(ctx context.Context, params url.Values) (*rest.Iterator[Referral], error) {
	raws, err := c.ListReferralRaw(ctx, params)
	return many(raws, err, NewReferral)
}

// ListParticipants lists the registered participants
func (c *Client) ListParticipants(ctx context.Context, params url.Values) (*rest.Iterator[Participant], error) {
	raws, err := c.ListParticipantsRaw(ctx, params)
	return many(raws, err, NewParticipant)
}

// GetParticipantConsent fetches the consent of a participant
func (c *Client) GetParticipantConsent(ctx context.Context, participantID string, params url.Values) (*ParticipantConsent, error) {
	raw, err := c.GetParticipantConsentRaw(ctx, participantID, params)
	return one(raw, err, NewParticipantConsent)
}

// PostParticipantConsent records the consent of a participant
func (c *Client) PostParticipantConsent(ctx context.Context, payload interface{}, participantID string, params url.Values) (*ParticipantConsent, error) {
	raw, err := c.PostParticipantConsentRaw(ctx, payload, participantID, params)
	return one(raw, err, NewParticipantConsent)
}

// PutParticipantConsent replaces the consent of a participant
func (c *Client) PutParticipantConsent(ctx context.Context, payload interface{}, participantID string, params url.Values) (*ParticipantConsent, error) {
	raw, err := c.PutParticipantConsentRaw(ctx, payload, participantID, params)
	return one(raw, err, NewParticipantConsent)
}

// PostParticipantInterpretedGenome posts an interpreted genome for a participant
func (c *Client) PostParticipantInterpretedGenome(ctx context.Context, payload interface{}, participantID, service string, params url.Values) (*ParticipantInterpretedGenome, error) {
	raw, err := c.PostParticipantInterpretedGenomeRaw(ctx, payload, participantID, service, params)
	return one(raw, err, NewParticipantInterpretedGenome)
}

// GetParticipantInterpretedGenome fetches one interpreted genome of a participant
func (c *Client) GetParticipantInterpretedGenome(ctx context.Context, participantID, service string, version int, params url.Values) (*ParticipantInterpretedGenome, error) {
	raw, err := c.GetParticipantInterpretedGenomeRaw(ctx, participantID, service, version, params)
	return one(raw, err, NewParticipantInterpretedGenome)
}

// ListParticipantInterpretedGenomes lists the interpreted genomes of a participant
func (c *Client) ListParticipantInterpretedGenomes(ctx context.Context, participantID string, params url.Values) (*rest.Iterator[ParticipantInterpretedGenome], error) {
	raws, err := c.ListParticipantInterpretedGenomesRaw(ctx, participantID, params)
	return many(raws, err, NewParticipantInterpretedGenome)
}

// PostParticipantClinicalReport posts a summary of findings for a participant
func (c *Client) PostParticipantClinicalReport(ctx context.Context, payload interface{}, participantID, service string, params url.Values) (*ParticipantClinicalReport, error) {
	raw, err := c.PostParticipantClinicalReportRaw(ctx, payload, participantID, service, params)
	return one(raw, err, NewParticipantClinicalReport)
}

// GetParticipantClinicalReport fetches one summary of findings of a participant
func (c *Client) GetParticipantClinicalReport(ctx context.Context, participantID string, version int, params url.Values) (*ParticipantClinicalReport, error) {
	raw, err := c.GetParticipantClinicalReportRaw(ctx, participantID, version, params)
	return one(raw, err, NewParticipantClinicalReport)
}

// ListParticipantClinicalReports lists the summaries of findings of a participant
func (c *Client) ListParticipantClinicalReports(ctx context.Context, participantID string, params url.Values) (*rest.Iterator[ParticipantClinicalReport], error) {
	raws, err := c.ListParticipantClinicalReportsRaw(ctx, participantID, params)
	return many(raws, err, NewParticipantClinicalReport)
}
