package cli

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeService struct {
	listQueries []string
	eqCalls     int
}

// newFakeService serves a rare disease case 1234-2, a cancer case 5678-1 with an exit
// questionnaire, and lists a third case that no longer exists
func newFakeService(t *testing.T) (*httptest.Server, *fakeService) {
	t.Helper()
	svc := &fakeService{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/2/interpretation-request", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "JWT cli-token", r.Header.Get("Authorization"))
		svc.listQueries = append(svc.listQueries, r.URL.RawQuery)
		writeJSON(w, map[string]interface{}{
			"next": nil,
			"results": []interface{}{
				map[string]interface{}{"interpretation_request_id": "1234-2", "sample_type": "raredisease", "family_id": "F1001"},
				map[string]interface{}{"interpretation_request_id": "404-1", "sample_type": "raredisease"},
				map[string]interface{}{"interpretation_request_id": "5678-1", "sample_type": "cancer", "cancer_participant": "220001"},
			},
		})
	})
	mux.HandleFunc("GET /api/2/interpretation-request/{id}/{version}/", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") + "-" + r.PathValue("version") {
		case "1234-2":
			w.Write(loadFixture(t, "case_rd.json"))
		case "5678-1":
			w.Write(loadFixture(t, "case_cancer.json"))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("GET /api/2/exit-questionnaire/5678/1/4/", func(w http.ResponseWriter, r *http.Request) {
		svc.eqCalls++
		w.Write(loadFixture(t, "exit_questionnaire_cancer.json"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	setupEnv(t, server.URL)
	return server, svc
}

func TestCasesList(t *testing.T) {
	_, svc := newFakeService(t)

	out, err := run(t, "cases", "list", "--group-id", "F1001", "--sample-type", "raredisease")
	require.NoError(t, err)

	var overviews []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &overviews))
	require.Len(t, overviews, 3)
	assert.EqualValues(t, 1234, overviews[0]["id"])
	assert.EqualValues(t, 2, overviews[0]["version"])
	assert.Equal(t, "F1001", overviews[0]["family_id"])

	require.Len(t, svc.listQueries, 1)
	assert.Contains(t, svc.listQueries[0], "group_id=F1001")
	assert.Contains(t, svc.listQueries[0], "sample_type=raredisease")
}

func TestCasesList_Limit(t *testing.T) {
	newFakeService(t)

	out, err := run(t, "cases", "list", "--limit", "1")
	require.NoError(t, err)

	var overviews []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &overviews))
	assert.Len(t, overviews, 1)
}

func TestCaseGet_Summary(t *testing.T) {
	newFakeService(t)

	out, err := run(t, "case", "get", "1234", "2")
	require.NoError(t, err)

	var summary CaseSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "1234", summary.ID)
	assert.Equal(t, 2, summary.Version)
	assert.Equal(t, "rare_disease", string(summary.Program))
	assert.Equal(t, "GRCh37", string(summary.Assembly))
	assert.Equal(t, "F1001", summary.GroupID)
	assert.Equal(t, "report_sent", summary.LastStatus)
	assert.Equal(t, 2, summary.InterpretedGenomeVersion)
	assert.Equal(t, 1, summary.ClinicalReportVersion)
	assert.True(t, summary.HasExitQuestionnaire)
	assert.False(t, summary.Blocked)
}

func TestCaseGet_YAML(t *testing.T) {
	newFakeService(t)

	out, err := run(t, "case", "get", "5678", "1", "-o", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "program: cancer\n")
	assert.NotContains(t, out, "{")

	var summary map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "5678", summary["id"])
	assert.Equal(t, "cancer", summary["program"])
	assert.Equal(t, "220001", summary["groupId"])
	assert.Equal(t, 4, summary["clinicalReportVersion"])
}

func TestCaseGet_Raw(t *testing.T) {
	newFakeService(t)

	out, err := run(t, "case", "get", "1234", "2", "--raw")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "SAP-1234-2", doc["case_id"])
	assert.Contains(t, doc, "interpretation_request_data")
}

func TestCaseGet_Errors(t *testing.T) {
	newFakeService(t)

	_, err := run(t, "case", "get", "1234", "two")
	assert.ErrorContains(t, err, "invalid case version")

	_, err = run(t, "case", "get", "404", "1")
	assert.Error(t, err)

	_, err = run(t, "case", "get", "1234")
	assert.Error(t, err)
}

func TestCaseInject_Candidate(t *testing.T) {
	newFakeService(t)

	out, err := run(t, "case", "inject", "1234", "2", "--kind", "candidate")
	require.NoError(t, err)

	var inject map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &inject))
	assert.Equal(t, "1234-2", inject["id"])
	assert.Equal(t, "1234", inject["parentId"])
	assert.Equal(t, "exomiser", inject["author"])
	assert.Equal(t, "10.1.0", inject["authorVersion"])
	assert.Contains(t, inject, "interpretedGenome")
}

func TestCaseInject_LoadsExitQuestionnaire(t *testing.T) {
	_, svc := newFakeService(t)

	out, err := run(t, "case", "inject", "5678", "1", "--kind", "exit-questionnaire")
	require.NoError(t, err)

	var inject map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &inject))
	assert.Equal(t, "5678-1", inject["id"])
	assert.EqualValues(t, 4, inject["version"])
	assert.Equal(t, 1, svc.eqCalls)
}

func TestCaseInject_RequiresKind(t *testing.T) {
	newFakeService(t)

	_, err := run(t, "case", "inject", "1234", "2")
	assert.Error(t, err)

	_, err = run(t, "case", "inject", "1234", "2", "--kind", "somatic")
	assert.ErrorContains(t, err, "unknown inject kind")
}

func TestExport_OneDocumentPerLine(t *testing.T) {
	newFakeService(t)

	out, err := run(t, "export", "--kind", "reported")
	require.NoError(t, err)

	var ids, authors []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var inject map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &inject))
		ids = append(ids, inject["id"].(string))
		authors = append(authors, inject["author"].(string))
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{"1234-2", "5678-1"}, ids)
	assert.Equal(t, []string{"clinician@example.org", "mdt@example.org"}, authors)
}

func TestExport_Limit(t *testing.T) {
	newFakeService(t)

	out, err := run(t, "export", "--kind", "tiered", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestExport_YAMLDocuments(t *testing.T) {
	newFakeService(t)

	out, err := run(t, "export", "--kind", "reported", "-o", "yaml")
	require.NoError(t, err)

	decoder := yaml.NewDecoder(strings.NewReader(out))
	var ids []string
	for {
		var inject map[string]interface{}
		if err := decoder.Decode(&inject); err != nil {
			break
		}
		ids = append(ids, inject["id"].(string))
	}
	assert.Equal(t, []string{"1234-2", "5678-1"}, ids)
}
