package desec

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestGetRRSet_ApexAndEscaping(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		subname string
		rrType  string
		rawPath string
	}{
		{"plain", "example.com", "www", "A", "/api/v1/domains/example.com/rrsets/www/A/"},
		{"apex", "example.com", "", "NS", "/api/v1/domains/example.com/rrsets/@/NS/"},
		{"nested", "example.com", "a.b", "TXT", "/api/v1/domains/example.com/rrsets/a.b/TXT/"},
		{"wildcard", "example.com", "*.dev", "CNAME", "/api/v1/domains/example.com/rrsets/%2A.dev/CNAME/"},
		{"slash", "example.com", "a/b", "A", "/api/v1/domains/example.com/rrsets/a%2Fb/A/"},
		{"question", "exa?mple.com", "www", "A", "/api/v1/domains/exa%3Fmple.com/rrsets/www/A/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, api := newFakeClient(t, http.StatusOK, `{"type":"A"}`)

			_, err := client.GetRRSet(context.Background(), tt.domain, tt.subname, tt.rrType)
			require.NoError(t, err)

			req := api.request()
			assert.Equal(t, tt.rawPath, req.RawPath)
			assert.Empty(t, req.RawQuery)
		})
	}
}

func TestGetRRSet_Decodes(t *testing.T) {
	body := `{
		"created": "2020-05-06T11:46:07.641885Z",
		"domain": "example.com",
		"subname": "",
		"name": "example.com.",
		"type": "NS",
		"records": ["ns1.desec.io.", "ns2.desec.org."],
		"ttl": 3600,
		"touched": "2020-05-06T11:46:07.641885Z"
	}`
	client, _ := newFakeClient(t, http.StatusOK, body)

	rrset, err := client.GetRRSet(context.Background(), "example.com", "", "NS")
	require.NoError(t, err)

	require.NotNil(t, rrset.Subname)
	assert.Equal(t, "", rrset.SubnameValue())
	assert.Equal(t, "example.com.", rrset.Name)
	assert.Equal(t, []string{"ns1.desec.io.", "ns2.desec.org."}, rrset.Records)
	assert.Equal(t, uint32(3600), rrset.TTL)
	require.NotNil(t, rrset.Created)
	assert.Equal(t, 2020, rrset.Created.Year())
}

func TestGetRRSetsFiltered_Query(t *testing.T) {
	tests := []struct {
		name   string
		filter RRSetFilter
		query  string
	}{
		{"none", RRSetFilter{}, ""},
		{"type", RRSetFilter{Type: "MX"}, "type=MX"},
		{"subname", RRSetFilter{Subname: ptr("www")}, "subname=www"},
		{"apex", RRSetFilter{Subname: ptr("")}, "subname="},
		{"both", RRSetFilter{Subname: ptr("_acme-challenge"), Type: "TXT"}, "subname=_acme-challenge&type=TXT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, api := newFakeClient(t, http.StatusOK, `[]`)

			rrsets, err := client.GetRRSetsFiltered(context.Background(), "example.com", tt.filter)
			require.NoError(t, err)
			assert.Empty(t, rrsets)
			assert.Equal(t, tt.query, api.request().RawQuery)
		})
	}
}

func TestGetRRSets_PreservesServerOrder(t *testing.T) {
	body := `[
		{"subname":"www","type":"A","records":["192.0.2.1"],"ttl":3600},
		{"subname":"","type":"NS","records":["ns1.desec.io."],"ttl":3600},
		{"subname":"mail","type":"MX","records":["10 mx.example.com."],"ttl":3600}
	]`
	client, _ := newFakeClient(t, http.StatusOK, body)

	rrsets, err := client.GetRRSets(context.Background(), "example.com")
	require.NoError(t, err)
	require.Len(t, rrsets, 3)
	assert.Equal(t, "A", rrsets[0].Type)
	assert.Equal(t, "NS", rrsets[1].Type)
	assert.Equal(t, "MX", rrsets[2].Type)
}

func TestCreateRRSet_Body(t *testing.T) {
	reply := `{"domain":"example.com","subname":"www","name":"www.example.com.","type":"A","records":["8.8.8.8"],"ttl":3600}`
	client, api := newFakeClient(t, http.StatusCreated, reply)

	created, err := client.CreateRRSet(context.Background(), "example.com", NewRRSet("www", "A", 3600, "8.8.8.8"))
	require.NoError(t, err)
	assert.Equal(t, "www.example.com.", created.Name)

	assert.JSONEq(t, `{"subname":"www","type":"A","records":["8.8.8.8"],"ttl":3600}`, api.request().Body)
}

func TestUpdateRRSet_SendsOnlyPatchedFields(t *testing.T) {
	tests := []struct {
		name  string
		patch RRSet
		want  string
	}{
		{"ttl only", RRSet{TTL: 3650}, `{"ttl":3650}`},
		{"records and ttl", RRSet{Records: []string{"192.0.2.7"}, TTL: 3650}, `{"records":["192.0.2.7"],"ttl":3650}`},
		{"clear records", RRSet{Records: []string{}}, `{"records":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, api := newFakeClient(t, http.StatusOK, `{"type":"A","ttl":3650}`)

			updated, err := client.UpdateRRSet(context.Background(), "example.com", "www", "A", tt.patch)
			require.NoError(t, err)
			assert.Equal(t, uint32(3650), updated.TTL)

			req := api.request()
			assert.Equal(t, http.MethodPatch, req.Method)
			assert.JSONEq(t, tt.want, req.Body)
		})
	}
}

func TestUpdateRRSet_NoContentIsUnexpected(t *testing.T) {
	client, _ := newFakeClient(t, http.StatusNoContent, ``)

	rrset, err := client.UpdateRRSet(context.Background(), "example.com", "www", "A", RRSet{Records: []string{}})
	assert.Nil(t, rrset)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestBulk_BodyIsArray(t *testing.T) {
	rrsets := []RRSet{
		NewRRSet("", "MX", 3600, "10 mx.example.com."),
		NewRRSet("www", "A", 3600, "192.0.2.1", "192.0.2.2"),
	}
	want := `[
		{"subname":"","type":"MX","records":["10 mx.example.com."],"ttl":3600},
		{"subname":"www","type":"A","records":["192.0.2.1","192.0.2.2"],"ttl":3600}
	]`

	t.Run("create", func(t *testing.T) {
		client, api := newFakeClient(t, http.StatusCreated, `[]`)
		require.NoError(t, client.CreateRRSetBulk(context.Background(), "example.com", rrsets))

		req := api.request()
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.JSONEq(t, want, req.Body)
	})

	t.Run("update", func(t *testing.T) {
		client, api := newFakeClient(t, http.StatusOK, `[]`)
		require.NoError(t, client.UpdateRRSetBulk(context.Background(), "example.com", rrsets))

		req := api.request()
		assert.Equal(t, http.MethodPatch, req.Method)
		assert.JSONEq(t, want, req.Body)
	})
}

func TestBulk_EmptyListEncodesAsArray(t *testing.T) {
	for _, rrsets := range [][]RRSet{nil, {}} {
		client, api := newFakeClient(t, http.StatusCreated, `[]`)
		require.NoError(t, client.CreateRRSetBulk(context.Background(), "example.com", rrsets))
		assert.Equal(t, "[]", api.request().Body)
	}
}

func TestUpdateRRSetBulk_AcceptsCreated(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated} {
		client, _ := newFakeClient(t, status, `[]`)
		assert.NoError(t, client.UpdateRRSetBulk(context.Background(), "example.com", []RRSet{NewRRSet("www", "A", 3600)}))
	}
}

func TestCreateRRSetBulk_RejectionDetails(t *testing.T) {
	body := `[{}, {"records": ["Enter a valid IPv4 address."]}, {}]`
	client, _ := newFakeClient(t, http.StatusBadRequest, body)

	err := client.CreateRRSetBulk(context.Background(), "example.com", []RRSet{
		NewRRSet("a", "A", 3600, "192.0.2.1"),
		NewRRSet("b", "A", 3600, "not-an-ip"),
		NewRRSet("c", "A", 3600, "192.0.2.3"),
	})
	require.ErrorIs(t, err, ErrBulkRejected)

	var bulkErr *BulkError
	require.ErrorAs(t, err, &bulkErr)
	assert.Len(t, bulkErr.Details, 3)

	failures := bulkErr.Failures()
	require.Len(t, failures, 1)
	var detail map[string][]string
	require.NoError(t, json.Unmarshal(failures[1], &detail))
	assert.Equal(t, []string{"Enter a valid IPv4 address."}, detail["records"])
}

func TestCreateRRSetBulk_RejectionObjectBody(t *testing.T) {
	body := `{"non_field_errors":["Another RRset with the same subdomain and type exists for this domain."]}`
	client, _ := newFakeClient(t, http.StatusBadRequest, body)

	err := client.CreateRRSetBulk(context.Background(), "example.com", []RRSet{
		NewRRSet("a", "A", 3600, "192.0.2.1"),
		NewRRSet("b", "A", 3600, "192.0.2.2"),
		NewRRSet("c", "A", 3600, "192.0.2.3"),
	})

	var bulkErr *BulkError
	require.ErrorAs(t, err, &bulkErr)
	assert.ErrorIs(t, err, ErrBulkRejected)
	assert.Nil(t, bulkErr.Details)
	assert.Empty(t, bulkErr.Failures())
	assert.JSONEq(t, body, string(bulkErr.Document))
}

func TestCreateRRSetBulk_RejectionArrayHasNoDocument(t *testing.T) {
	client, _ := newFakeClient(t, http.StatusBadRequest, `[{}, {"ttl":["too low"]}]`)

	err := client.CreateRRSetBulk(context.Background(), "example.com", []RRSet{
		NewRRSet("a", "A", 3600, "192.0.2.1"),
		NewRRSet("b", "A", 1, "192.0.2.2"),
	})

	var bulkErr *BulkError
	require.ErrorAs(t, err, &bulkErr)
	assert.Nil(t, bulkErr.Document)
	assert.Equal(t, []int{1}, slices.Sorted(maps.Keys(bulkErr.Failures())))
}

func TestCreateRRSetBulk_RejectionNotJSON(t *testing.T) {
	client, _ := newFakeClient(t, http.StatusBadRequest, `<html>bad gateway</html>`)

	err := client.CreateRRSetBulk(context.Background(), "example.com", []RRSet{NewRRSet("www", "A", 3600, "192.0.2.1")})
	require.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrBulkRejected)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, `<html>bad gateway</html>`, apiErr.Body)
}

func TestDeleteRRSet(t *testing.T) {
	client, api := newFakeClient(t, http.StatusNoContent, ``)
	require.NoError(t, client.DeleteRRSet(context.Background(), "example.com", "www", "A"))

	req := api.request()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Empty(t, req.Body)
	assert.Empty(t, req.Header.Get("Content-Type"))
}
