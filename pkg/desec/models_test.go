package desec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRSet_ZeroValueEncodesEmpty(t *testing.T) {
	data, err := json.Marshal(RRSet{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestRRSet_RecordsNilVersusEmpty(t *testing.T) {
	withNil, err := json.Marshal(RRSet{TTL: 3600})
	require.NoError(t, err)
	assert.NotContains(t, string(withNil), "records")

	withEmpty, err := json.Marshal(RRSet{Records: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[]}`, string(withEmpty))
}

func TestRRSet_ApexSubnameIsSent(t *testing.T) {
	data, err := json.Marshal(NewRRSet("", "NS", 3600, "ns1.desec.io."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"subname":"","type":"NS","records":["ns1.desec.io."],"ttl":3600}`, string(data))
}

func TestNewRRSet_NoRecords(t *testing.T) {
	rrset := NewRRSet("www", "A", 3600)
	assert.NotNil(t, rrset.Records)
	assert.Empty(t, rrset.Records)
	assert.Equal(t, "www", rrset.SubnameValue())
}

func TestRRSet_SubnameValue(t *testing.T) {
	assert.Equal(t, "", RRSet{}.SubnameValue())
	sub := "mail"
	assert.Equal(t, "mail", RRSet{Subname: &sub}.SubnameValue())
}

func TestModels_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		into any
	}{
		{
			name: "rrset",
			in:   `{"created":"2020-05-06T11:46:07.641885Z","domain":"example.com","subname":"www","name":"www.example.com.","type":"A","records":["192.0.2.1"],"ttl":3600,"touched":"2020-05-06T11:46:07.641885Z"}`,
			into: &RRSet{},
		},
		{
			name: "domain",
			in:   `{"name":"example.com","created":"2018-09-18T16:36:16.510368Z","minimum_ttl":3600,"keys":[{"dnskey":"257 3 13 abc","ds":["1 13 2 abc"],"flags":257,"keytype":"csk","managed":true}]}`,
			into: &Domain{},
		},
		{
			name: "account",
			in:   `{"created":"2019-10-16T18:09:17.715702Z","email":"user@example.com","id":"42","limit_domains":15,"outreach_preference":false}`,
			into: &AccountInformation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, json.Unmarshal([]byte(tt.in), tt.into))
			out, err := json.Marshal(tt.into)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(out))
			assert.NotContains(t, string(out), "null")
		})
	}
}

func TestDomain_OptionalFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(Domain{Name: "example.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"example.com"}`, string(data))
}
