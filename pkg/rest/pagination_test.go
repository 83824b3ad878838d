package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID int `json:"id"`
}

func decodeRecord(raw json.RawMessage) (record, error) {
	var r record
	err := json.Unmarshal(raw, &r)
	return r, err
}

// newPagedServer serves pageCount pages of two records each, linked by "next"
func newPagedServer(t *testing.T, pageCount int, requestCount *atomic.Int32) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		pageNumber := 1
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &pageNumber)
		}
		next := "null"
		if pageNumber < pageCount {
			next = fmt.Sprintf(`"%s/api/2/interpretation-request?page=%d&page_size=2"`, server.URL, pageNumber+1)
		}
		first := (pageNumber-1)*2 + 1
		fmt.Fprintf(w, `{"count": %d, "next": %s, "results": [{"id": %d}, {"id": %d}]}`,
			pageCount*2, next, first, first+1)
	}))
	return server
}

func TestPager_FollowsCursor(t *testing.T) {
	var requestCount atomic.Int32
	var mu sync.Mutex
	var seenQueries []url.Values
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		mu.Lock()
		seenQueries = append(seenQueries, r.URL.Query())
		mu.Unlock()
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"results": [{"id": 3}], "next": null}`)
			return
		}
		fmt.Fprintf(w, `{"results": [{"id": 1}, {"id": 2}], "next": "%s/api/2/interpretation-request?page=2"}`, server.URL)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	it := NewIterator(client.Paginate(context.Background(), server.URL+"/api/2/interpretation-request",
		url.Values{"sample_type": {"cancer"}}), decodeRecord)

	records, err := Collect(it)
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: 1}, {ID: 2}, {ID: 3}}, records)
	assert.Equal(t, int32(2), requestCount.Load())

	require.Len(t, seenQueries, 2)
	assert.Equal(t, "cancer", seenQueries[0].Get("sample_type"))
	assert.Empty(t, seenQueries[0].Get("page"))
	assert.Equal(t, "cancer", seenQueries[1].Get("sample_type"))
	assert.Equal(t, "2", seenQueries[1].Get("page"))
}

func TestPager_OnePagePerNext(t *testing.T) {
	var requestCount atomic.Int32
	server := newPagedServer(t, 3, &requestCount)
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	pager := client.Paginate(context.Background(), server.URL+"/api/2/interpretation-request", nil)

	for i := 1; i <= 3; i++ {
		records, err := pager.Next()
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, int32(i), requestCount.Load())
	}

	_, err := pager.Next()
	assert.True(t, errors.Is(err, io.EOF))
	assert.Equal(t, int32(3), requestCount.Load())
}

func TestIterator_PartialConsumption(t *testing.T) {
	var requestCount atomic.Int32
	server := newPagedServer(t, 5, &requestCount)
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	it := NewIterator(client.Paginate(context.Background(), server.URL+"/api/2/interpretation-request", nil), decodeRecord)

	for item, err := range it.Seq() {
		require.NoError(t, err)
		if item.ID == 3 {
			break
		}
	}
	assert.Equal(t, int32(2), requestCount.Load())
}

func TestIterator_EmptyPagesAreSkipped(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"results": [], "next": "%s/list?page=2"}`, server.URL)
		default:
			fmt.Fprint(w, `{"results": [{"id": 7}], "next": null}`)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	records, err := Collect(NewIterator(client.Paginate(context.Background(), server.URL+"/list", nil), decodeRecord))
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: 7}}, records)
}

func TestIterator_StopsOnError(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "invalid page")
			return
		}
		fmt.Fprintf(w, `{"results": [{"id": 1}], "next": "%s/list?page=2"}`, server.URL)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	var items []record
	var lastErr error
	for item, err := range NewIterator(client.Paginate(context.Background(), server.URL+"/list", nil), decodeRecord).Seq() {
		if err != nil {
			lastErr = err
			continue
		}
		items = append(items, item)
	}
	assert.Equal(t, []record{{ID: 1}}, items)
	assert.Equal(t, http.StatusBadRequest, StatusCode(lastErr))
}

func TestPaginate_EmbeddedQueryOverridesParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("page_size"))
		assert.Equal(t, "rare", r.URL.Query().Get("program"))
		fmt.Fprint(w, `{"results": [], "next": null}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	pager := client.Paginate(context.Background(), server.URL+"/list?page_size=100",
		url.Values{"page_size": {"10"}, "program": {"rare"}})
	records, err := pager.Next()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMap_DecodesThroughBothSteps(t *testing.T) {
	var requestCount atomic.Int32
	server := newPagedServer(t, 2, &requestCount)
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	raws := NewIterator(client.Paginate(context.Background(), server.URL+"/api/2/interpretation-request", nil), Raw)
	ids, err := Collect(Map(raws, func(raw json.RawMessage) (int, error) {
		r, err := decodeRecord(raw)
		return r.ID * 10, err
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40}, ids)
	assert.Equal(t, int32(2), requestCount.Load())
}
