package cipapi

import (
	"context"
	"net/url"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/cipapi-client/pkg/rest"
)

// CasesByGroup holds every case registered for a family or cancer participant
type CasesByGroup struct {
	GroupID string
	Cases   []CaseOverview
}

// GetCasesByGroup lists the cases of groupID
func (c *Client) GetCasesByGroup(ctx context.Context, groupID string, params url.Values) (*CasesByGroup, error) {
	params = cloneValues(params)
	params.Set("group_id", groupID)
	it, err := c.ListCases(ctx, params)
	if err != nil {
		return nil, err
	}
	cases, err := rest.Collect(it)
	if err != nil {
		return nil, err
	}
	return &CasesByGroup{GroupID: groupID, Cases: cases}, nil
}

// IsGroupRegistered reports whether the group has any case
func (g *CasesByGroup) IsGroupRegistered() bool {
	return len(g.Cases) > 0
}

// LastVersion returns the greatest case by id and version, nil for unregistered groups
func (g *CasesByGroup) LastVersion() *CaseOverview {
	if !g.IsGroupRegistered() {
		return nil
	}
	sorted := make([]CaseOverview, len(g.Cases))
	copy(sorted, g.Cases)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return &sorted[len(sorted)-1]
}

// WalkCases lists the cases matching params, fetches each of them and hands it to fn.
// Problems confined to one case (not found, blocked, unparsable or not migratable) are
// logged and the case is skipped, whether they come from fetching the case or from fn.
// Any other error stops the walk and is returned.
func (c *Client) WalkCases(ctx context.Context, params url.Values, fn func(*Case) error) error {
	raws, err := c.ListCasesRaw(ctx, params)
	if err != nil {
		return err
	}
	for raws.Next() {
		overview, err := NewCaseOverview(raws.Item())
		if err != nil {
			c.logger.WithError(err).Warn("Skipping unparsable case overview")
			continue
		}
		fields := logrus.Fields{
			"case_id":      overview.CaseID(),
			"case_version": overview.Version,
		}

		kase, err := c.GetCaseFor(ctx, overview, nil)
		if err == nil {
			err = kase.EnsureNotBlocked()
		}
		if err == nil {
			err = fn(kase)
		}
		if err != nil {
			if IsSkippable(err) {
				c.logger.WithFields(fields).WithError(err).Warn("Skipping case")
				continue
			}
			return err
		}
	}
	return raws.Err()
}
