package cipapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCaseOverview(t *testing.T) {
	raw := json.RawMessage(`{
		"interpretation_request_id": "1234-2",
		"cip": "exomiser",
		"sample_type": "raredisease",
		"family_id": "F1001",
		"cancer_participant": null,
		"number_of_samples": "3",
		"last_status": "sent_to_gmcs",
		"sites": ["RGT"],
		"status": [{"status": "waiting_payload", "created_at": "2018-01-10T09:00:00Z", "user": "gel"}],
		"unknown_field": {"nested": true}
	}`)

	overview, err := NewCaseOverview(raw)
	require.NoError(t, err)

	assert.Equal(t, 1234, overview.InterpretationRequestID)
	assert.Equal(t, 2, overview.Version)
	assert.Equal(t, "1234", overview.CaseID())
	assert.Equal(t, "exomiser", overview.CIP)
	assert.Equal(t, 3, overview.NumberOfSamples)
	assert.Equal(t, []string{"RGT"}, overview.Sites)
	assert.Equal(t, "F1001", overview.GroupID())
	require.Len(t, overview.Status, 1)
	assert.Equal(t, "waiting_payload", overview.Status[0].Status)
	assert.JSONEq(t, string(raw), string(overview.Raw))
}

func TestNewCaseOverview_CancerGroup(t *testing.T) {
	overview, err := NewCaseOverview(json.RawMessage(`{
		"interpretation_request_id": "5678-1",
		"sample_type": "cancer",
		"family_id": "ignored",
		"cancer_participant": 220001
	}`))
	require.NoError(t, err)

	assert.Equal(t, "220001", overview.GroupID())
}

func TestNewCaseOverview_MalformedComposite(t *testing.T) {
	for _, composite := range []string{"", "1234", "abc-2", "1234-x"} {
		t.Run(composite, func(t *testing.T) {
			raw, _ := json.Marshal(map[string]string{"interpretation_request_id": composite})
			_, err := NewCaseOverview(raw)

			var pe *ParsingError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "interpretation_request_id", pe.Field)
			assert.True(t, IsSkippable(err))
		})
	}
}

func TestCaseOverview_Ordering(t *testing.T) {
	a := CaseOverview{InterpretationRequestID: 9, Version: 3}
	b := CaseOverview{InterpretationRequestID: 10, Version: 1}
	c := CaseOverview{InterpretationRequestID: 10, Version: 2}

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(b))
	assert.True(t, c.Equal(CaseOverview{InterpretationRequestID: 10, Version: 2, CIP: "other"}))
	assert.False(t, b.Equal(c))
}

func TestCasesByGroup_LastVersion(t *testing.T) {
	group := &CasesByGroup{GroupID: "F1001"}
	assert.False(t, group.IsGroupRegistered())
	assert.Nil(t, group.LastVersion())

	group.Cases = []CaseOverview{
		{InterpretationRequestID: 10, Version: 2},
		{InterpretationRequestID: 12, Version: 1},
		{InterpretationRequestID: 10, Version: 3},
	}
	assert.True(t, group.IsGroupRegistered())
	last := group.LastVersion()
	require.NotNil(t, last)
	assert.Equal(t, 12, last.InterpretationRequestID)
	assert.Equal(t, 10, group.Cases[0].InterpretationRequestID, "input order is kept")
}

func TestNewCaseHeader_StatusHelpers(t *testing.T) {
	header, err := NewCaseHeader(json.RawMessage(`{
		"interpretation_request_id": 29,
		"version": "2",
		"last_status": "blocked",
		"status": [
			{"status": "waiting_payload"},
			{"status": "dispatched"},
			{"status": "blocked"}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "29", header.InterpretationRequestID)
	assert.Equal(t, 2, header.Version)
	assert.True(t, header.IsBlocked())
	assert.True(t, header.HasBeenEverBlocked())
	assert.True(t, header.HasBeenDispatched())
	assert.False(t, header.HasBeenClosed())
	assert.False(t, header.IsClosed())
}

func TestNewCaseHeader_InvalidJSON(t *testing.T) {
	_, err := NewCaseHeader(json.RawMessage(`{"interpretation_request_id":`))

	var pe *ParsingError
	assert.ErrorAs(t, err, &pe)
}

func TestNewCaseHeader_NotAnObject(t *testing.T) {
	_, err := NewCaseHeader(json.RawMessage(`["1234-2"]`))

	var pe *ParsingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "case", pe.Field)
}

func TestNewCaseHeader_Workspaces(t *testing.T) {
	tests := []struct {
		name       string
		workspaces string
		expected   []WorkspacePermissions
	}{
		{
			name:       "short names",
			workspaces: `["RGT", "RYJ"]`,
			expected:   []WorkspacePermissions{{ShortName: "RGT"}, {ShortName: "RYJ"}},
		},
		{
			name:       "objects",
			workspaces: `[{"short_name": "RGT", "long_name": "Cambridge", "gmc_name": "East of England", "groups": ["gmc_rgt"]}]`,
			expected: []WorkspacePermissions{
				{ShortName: "RGT", LongName: "Cambridge", GMCName: "East of England", Groups: []string{"gmc_rgt"}},
			},
		},
		{
			name:       "mixed",
			workspaces: `["RGT", {"short_name": "RYJ"}]`,
			expected:   []WorkspacePermissions{{ShortName: "RGT"}, {ShortName: "RYJ"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, err := NewCaseHeader(json.RawMessage(`{"interpretation_request_id": "1234", "workspaces": ` + tt.workspaces + `}`))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, header.Workspaces)
		})
	}
}

func TestNewCaseHeader_ToleratesMistypedFields(t *testing.T) {
	header, err := NewCaseHeader(json.RawMessage(`{
		"interpretation_request_id": 1234,
		"version": "2",
		"case_priority": {"level": "high"},
		"tags": {"pilot": true},
		"paid": "unknown",
		"workspaces": "RGT",
		"status": "report_sent",
		"last_status": "report_sent",
		"not_in_the_model": [1, 2, 3]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "1234", header.InterpretationRequestID)
	assert.Equal(t, 2, header.Version)
	assert.Equal(t, "report_sent", header.LastStatus)
	assert.Zero(t, header.CasePriority)
	assert.Empty(t, header.Tags)
	assert.False(t, header.Paid)
	assert.Empty(t, header.Workspaces)
	assert.Empty(t, header.Status)
	assert.True(t, header.IsClosed())
}

func TestInterpretedGenomeRecord_StatusShapes(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected int
	}{
		{"empty list", `[]`, 0},
		{"history", `[{"status": "created", "user": "exomiser", "created_at": "2018-02-01T10:00:00Z"}, {"status": "sent"}]`, 2},
		{"plain string", `"created"`, 0},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := NewInterpretedGenomeRecord(json.RawMessage(`{"cip_version": 1, "status": ` + tt.status + `}`))
			require.NoError(t, err)
			assert.Equal(t, 1, record.CIPVersion)
			assert.Len(t, record.Status, tt.expected)
		})
	}
}

func TestInterpretedGenomeRecord_KeepsNestedDocument(t *testing.T) {
	record, err := NewInterpretedGenomeRecord(json.RawMessage(`{
		"cip_version": 3,
		"created_at": "2018-02-01T10:00:00Z",
		"interpreted_genome_data": {"interpretationService": "exomiser", "variants": [{"a": 1}]}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 3, record.CIPVersion)
	assert.Equal(t, "3", record.ServiceVersion())
	assert.JSONEq(t, `{"interpretationService": "exomiser", "variants": [{"a": 1}]}`, string(record.InterpretedGenomeData))

	record.InterpretationServiceVersion = "10.1.0"
	assert.Equal(t, "10.1.0", record.ServiceVersion())
}

func TestClinicalReportRecord_NullQuestionnaire(t *testing.T) {
	record, err := NewClinicalReportRecord(json.RawMessage(`{
		"clinical_report_version": "4",
		"exit_questionnaire": null,
		"clinical_report_data": {"user": "mdt@example.org"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 4, record.ClinicalReportVersion)
	assert.False(t, isPresent(record.ExitQuestionnaire))
	assert.True(t, isPresent(record.ClinicalReportData))
}

func TestVariantInterpretationLog_Entries(t *testing.T) {
	record, err := NewVariantInterpretationLog(json.RawMessage(`{
		"id": 7,
		"case_id": "1234-2",
		"log_entry": [{"variant": "16:2138250:C:T"}, {"variant": "1:100:A:G"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 7, record.ID)
	require.Len(t, record.LogEntry, 2)
	assert.JSONEq(t, `{"variant": "1:100:A:G"}`, string(record.LogEntry[1]))
}

func TestIsPresent(t *testing.T) {
	tests := map[string]bool{
		``:         false,
		`null`:     false,
		` {} `:     false,
		`[]`:       false,
		`{"a": 1}`: true,
		`[1]`:      true,
	}
	for raw, expected := range tests {
		assert.Equal(t, expected, isPresent(json.RawMessage(raw)), raw)
	}
}
