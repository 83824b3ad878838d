package cipapi

import (
	"context"
	"encoding/json"
	"net/url"
)

// reload replaces the state of c with the case in raw. The identity must not change;
// on any failure the previous state is kept.
func (c *Case) reload(raw json.RawMessage) error {
	next, err := NewCase(raw, c.registry)
	if err != nil {
		return err
	}
	if next.id != c.id || next.version != c.version {
		return &IdentityError{
			CaseID:          c.id,
			CaseVersion:     c.version,
			ReceivedID:      next.id,
			ReceivedVersion: next.version,
		}
	}
	*c = *next
	return nil
}

// Refresh fetches the case again and rebuilds its state
func (c *Case) Refresh(ctx context.Context, client *Client, params url.Values) error {
	raw, err := client.GetCaseRaw(ctx, c.id, c.version, params)
	if err != nil {
		return err
	}
	return c.reload(raw)
}

// Dispatch dispatches the case and rebuilds its state from the response
func (c *Case) Dispatch(ctx context.Context, client *Client, params url.Values) error {
	raw, err := client.DispatchRaw(ctx, c.id, c.version, params)
	if err != nil {
		return err
	}
	return c.reload(raw)
}

// PatchCase applies payload to the case and rebuilds its state from the response
func (c *Case) PatchCase(ctx context.Context, client *Client, payload interface{}, params url.Values) error {
	raw, err := client.PatchCaseRaw(ctx, c.id, c.version, payload, params)
	if err != nil {
		return err
	}
	return c.reload(raw)
}

// ChangePriority sets the priority of the case and rebuilds its state from the response
func (c *Case) ChangePriority(ctx context.Context, client *Client, priority int, params url.Values) error {
	raw, err := client.ChangePriorityRaw(ctx, c.id, c.version, priority, params)
	if err != nil {
		return err
	}
	return c.reload(raw)
}

// SubmitInterpretationRequest replaces the interpretation request of the case. A case
// always carries one, so force is required; without it ErrPreviousData is returned.
func (c *Case) SubmitInterpretationRequest(ctx context.Context, client *Client, request interface{}, extra map[string]interface{}, force bool, params url.Values) error {
	if c.interpretationRequest != nil && !force {
		return ErrPreviousData
	}
	raw, err := client.SubmitInterpretationRequestRaw(ctx, c.id, c.version, request, extra, params)
	if err != nil {
		return err
	}
	return c.reload(raw)
}

// SubmitInterpretedGenome posts an interpreted genome for the case, then fetches the
// case again so that the new genome is taken into account
func (c *Case) SubmitInterpretedGenome(ctx context.Context, client *Client, payload interface{}, partnerID, analysisType, reportID string, params url.Values) (*InterpretedGenomeRecord, error) {
	record, err := client.SubmitInterpretedGenome(ctx, payload, partnerID, analysisType, reportID, params)
	if err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx, client, nil); err != nil {
		return record, err
	}
	return record, nil
}

// LoadExitQuestionnaire fetches the exit questionnaire of the latest clinical report.
// Cases without a clinical report have no questionnaire and are left untouched.
func (c *Case) LoadExitQuestionnaire(ctx context.Context, client *Client, params url.Values) error {
	if c.latestReport == nil {
		return nil
	}
	eq, err := client.GetExitQuestionnaire(ctx, c.id, c.version, c.latestReport.ClinicalReportVersion, params)
	if err != nil {
		return err
	}
	c.exitQuestionnaire = eq
	return nil
}
