package cipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cipapi-client/pkg/rest"
)

// DefaultInterpretationService names the service of participant interpreted genomes
// posted without an explicit one
const DefaultInterpretationService = "genomics_england_additional_findings"

// endpoint builds the URL of a resource with a trailing slash
func (c *Client) endpoint(path string, segments ...string) (string, error) {
	u, err := rest.BuildURL(c.rest.BaseURL(), path, segments...)
	if err != nil {
		return "", err
	}
	return u + "/", nil
}

// list builds the lazy sequence of raw records of a list endpoint
func (c *Client) list(ctx context.Context, endpoint string, params url.Values) *rest.Iterator[json.RawMessage] {
	if c.pageSize > 0 && params.Get("page_size") == "" {
		params = cloneValues(params)
		params.Set("page_size", strconv.Itoa(c.pageSize))
	}
	return rest.NewIterator(c.rest.Paginate(ctx, endpoint, params), rest.Raw)
}

func cloneValues(params url.Values) url.Values {
	cloned := url.Values{}
	for key, values := range params {
		cloned[key] = append([]string(nil), values...)
	}
	return cloned
}

func versionSegment(version int) string {
	return strconv.Itoa(version)
}

// ListCasesRaw lists the interpretation request overviews. No status filtering is applied.
func (c *Client) ListCasesRaw(ctx context.Context, params url.Values) (*rest.Iterator[json.RawMessage], error) {
	endpoint, err := rest.BuildURL(c.rest.BaseURL(), IREndpoint)
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint, params), nil
}

// GetCaseRaw fetches one case
func (c *Client) GetCaseRaw(ctx context.Context, caseID string, caseVersion int, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(IREndpoint, caseID, versionSegment(caseVersion))
	if err != nil {
		return nil, err
	}
	return c.rest.Get(ctx, endpoint, params)
}

// RegisterCaseRaw creates a case
func (c *Client) RegisterCaseRaw(ctx context.Context, payload interface{}, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(IREndpoint)
	if err != nil {
		return nil, err
	}
	return c.rest.Post(ctx, endpoint, payload, params)
}

// PatchCaseRaw applies a partial update to a case
func (c *Client) PatchCaseRaw(ctx context.Context, caseID string, caseVersion int, payload interface{}, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(IREndpoint, caseID, versionSegment(caseVersion))
	if err != nil {
		return nil, err
	}
	return c.rest.Patch(ctx, endpoint, payload, params)
}

// SubmitInterpretationRequestRaw attaches an interpretation request to a case.
// extra fields are merged into the top level of the patch.
func (c *Client) SubmitInterpretationRequestRaw(ctx context.Context, caseID string, caseVersion int, request interface{}, extra map[string]interface{}, params url.Values) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"interpretation_request_data": map[string]interface{}{"json_request": request},
	}
	for key, value := range extra {
		payload[key] = value
	}
	return c.PatchCaseRaw(ctx, caseID, caseVersion, payload, params)
}

// DispatchRaw dispatches a case to its interpretation services
func (c *Client) DispatchRaw(ctx context.Context, caseID string, caseVersion int, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(IREndpoint, "dispatch", caseID, versionSegment(caseVersion))
	if err != nil {
		return nil, err
	}
	return c.rest.Put(ctx, endpoint, nil, params)
}

// ChangePriorityRaw sets the priority of a case
func (c *Client) ChangePriorityRaw(ctx context.Context, caseID string, caseVersion int, priority int, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(IREndpoint, "case-priority", caseID, versionSegment(caseVersion))
	if err != nil {
		return nil, err
	}
	return c.rest.Patch(ctx, endpoint, map[string]int{"case_priority": priority}, params)
}

// SubmitInterpretedGenomeRaw posts the interpreted genome of an interpretation partner
func (c *Client) SubmitInterpretedGenomeRaw(ctx context.Context, payload interface{}, partnerID, analysisType, reportID string, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(IGEndpoint, partnerID, analysisType, reportID)
	if err != nil {
		return nil, err
	}
	return c.rest.Post(ctx, endpoint, payload, params)
}

// SubmitClinicalReportRaw posts a clinical report
func (c *Client) SubmitClinicalReportRaw(ctx context.Context, payload interface{}, partnerID, analysisType, reportID string, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(CREndpoint, partnerID, analysisType, reportID)
	if err != nil {
		return nil, err
	}
	return c.rest.Post(ctx, endpoint, payload, params)
}

// ListClinicalReportsRaw lists clinical reports
func (c *Client) ListClinicalReportsRaw(ctx context.Context, params url.Values) (*rest.Iterator[json.RawMessage], error) {
	endpoint, err := rest.BuildURL(c.rest.BaseURL(), CREndpoint)
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint, params), nil
}

// SubmitVariantInterpretationLogsRaw posts variant interpretation log entries.
// The resource is addressed by the composite "{id}-{version}".
func (c *Client) SubmitVariantInterpretationLogsRaw(ctx context.Context, payload interface{}, caseID string, caseVersion int, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(IREndpoint, fmt.Sprintf("%s-%d", caseID, caseVersion), "variant-interpretation-log")
	if err != nil {
		return nil, err
	}
	return c.rest.Post(ctx, endpoint, payload, params)
}

// SubmitInterpretationFlagsRaw posts interpretation flags of a case
func (c *Client) SubmitInterpretationFlagsRaw(ctx context.Context, payload interface{}, caseID string, caseVersion int, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(IREndpoint, caseID, versionSegment(caseVersion), "interpretation-flags")
	if err != nil {
		return nil, err
	}
	return c.rest.Post(ctx, endpoint, payload, params)
}

// GetInterpretationFlagsRaw lists the interpretation flags of a case
func (c *Client) GetInterpretationFlagsRaw(ctx context.Context, caseID string, caseVersion int, params url.Values) (*rest.Iterator[json.RawMessage], error) {
	endpoint, err := c.endpoint(IREndpoint, caseID, versionSegment(caseVersion), "interpretation-flags")
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint, params), nil
}

// GetExitQuestionnaireRaw fetches the exit questionnaire of a clinical report
func (c *Client) GetExitQuestionnaireRaw(ctx context.Context, caseID string, caseVersion, clinicalReportVersion int, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(EQEndpoint, caseID, versionSegment(caseVersion), versionSegment(clinicalReportVersion))
	if err != nil {
		return nil, err
	}
	return c.rest.Get(ctx, endpoint, params)
}

// FileUploadRaw uploads the file at path on behalf of user
func (c *Client) FileUploadRaw(ctx context.Context, path, user, partnerID, reportID, fileType string, params url.Values) (json.RawMessage, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	endpoint, err := c.endpoint(FileEndpoint, partnerID, reportID, fileType)
	if err != nil {
		return nil, err
	}
	form := &rest.Multipart{
		Fields: map[string]string{"user": user},
		Files:  []rest.FilePart{{FieldName: "file", FileName: filepath.Base(path), Content: content}},
	}
	return c.rest.PostMultipart(ctx, endpoint, form, params)
}

// CreateReferralRaw creates a referral
func (c *Client) CreateReferralRaw(ctx context.Context, payload interface{}, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(ReferralEndpoint)
	if err != nil {
		return nil, err
	}
	return c.rest.Post(ctx, endpoint, payload, params)
}

// ListReferralRaw lists referrals
func (c *Client) ListReferralRaw(ctx context.Context, params url.Values) (*rest.Iterator[json.RawMessage], error) {
	endpoint, err := rest.BuildURL(c.rest.BaseURL(), ReferralEndpoint)
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint, params), nil
}

// ListParticipantsRaw lists the registered participants
func (c *Client) ListParticipantsRaw(ctx context.Context, params url.Values) (*rest.Iterator[json.RawMessage], error) {
	endpoint, err := c.endpoint(ParticipantsEndpoint)
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint, params), nil
}

// GetParticipantConsentRaw fetches the consent of a participant
func (c *Client) GetParticipantConsentRaw(ctx context.Context, participantID string, params url.Values) (json.RawMessage, error) {
	endpoint, err := rest.BuildURL(c.rest.BaseURL(), ParticipantsEndpoint, participantID, "consent")
	if err != nil {
		return nil, err
	}
	return c.rest.Get(ctx, endpoint, params)
}

// PostParticipantConsentRaw records the consent of a participant
func (c *Client) PostParticipantConsentRaw(ctx context.Context, payload interface{}, participantID string, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(ParticipantsEndpoint, participantID, "consent")
	if err != nil {
		return nil, err
	}
	return c.rest.Post(ctx, endpoint, payload, params)
}

// PutParticipantConsentRaw replaces the consent of a participant
func (c *Client) PutParticipantConsentRaw(ctx context.Context, payload interface{}, participantID string, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(ParticipantsEndpoint, participantID, "consent")
	if err != nil {
		return nil, err
	}
	return c.rest.Put(ctx, endpoint, payload, params)
}

// PostParticipantInterpretedGenomeRaw posts an interpreted genome for a participant.
// An empty service selects DefaultInterpretationService.
func (c *Client) PostParticipantInterpretedGenomeRaw(ctx context.Context, payload interface{}, participantID, service string, params url.Values) (json.RawMessage, error) {
	if service == "" {
		service = DefaultInterpretationService
	}
	endpoint, err := c.endpoint(ParticipantsEndpoint, participantID, "interpreted-genome")
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"interpreted_genome_data":     payload,
		"interpretation_service_name": service,
	}
	return c.rest.Post(ctx, endpoint, body, params)
}

// GetParticipantInterpretedGenomeRaw fetches one interpreted genome of a participant
func (c *Client) GetParticipantInterpretedGenomeRaw(ctx context.Context, participantID, service string, version int, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(ParticipantsEndpoint, participantID, "interpreted-genome", service, versionSegment(version))
	if err != nil {
		return nil, err
	}
	return c.rest.Get(ctx, endpoint, params)
}

// ListParticipantInterpretedGenomesRaw lists the interpreted genomes of a participant
func (c *Client) ListParticipantInterpretedGenomesRaw(ctx context.Context, participantID string, params url.Values) (*rest.Iterator[json.RawMessage], error) {
	endpoint, err := c.endpoint(ParticipantsEndpoint, participantID, "interpreted-genome")
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint, params), nil
}

// PostParticipantClinicalReportRaw posts a summary of findings for a participant
func (c *Client) PostParticipantClinicalReportRaw(ctx context.Context, payload interface{}, participantID, service string, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(ParticipantsEndpoint, participantID, "summary-of-findings", "interpretation-service", service)
	if err != nil {
		return nil, err
	}
	return c.rest.Post(ctx, endpoint, payload, params)
}

// GetParticipantClinicalReportRaw fetches one summary of findings of a participant
func (c *Client) GetParticipantClinicalReportRaw(ctx context.Context, participantID string, version int, params url.Values) (json.RawMessage, error) {
	endpoint, err := c.endpoint(ParticipantsEndpoint, participantID, "summary-of-findings", versionSegment(version))
	if err != nil {
		return nil, err
	}
	return c.rest.Get(ctx, endpoint, params)
}

// ListParticipantClinicalReportsRaw lists the summaries of findings of a participant
func (c *Client) ListParticipantClinicalReportsRaw(ctx context.Context, participantID string, params url.Values) (*rest.Iterator[json.RawMessage], error) {
	endpoint, err := c.endpoint(ParticipantsEndpoint, participantID, "summary-of-findings")
	if err != nil {
		return nil, err
	}
	return c.list(ctx, endpoint, params), nil
}
