package desec

import "time"

// AccountInformation is the account owning the API token.
type AccountInformation struct {
	Created            time.Time `json:"created"`
	Email              string    `json:"email"`
	ID                 string    `json:"id"`
	LimitDomains       uint64    `json:"limit_domains"`
	OutreachPreference bool      `json:"outreach_preference"`
}

// Domain is a zone hosted by deSEC. Only Name is set when creating one; the
// remaining fields are filled in by the server and omitted when absent.
type Domain struct {
	Name       string          `json:"name"`
	Created    *time.Time      `json:"created,omitempty"`
	Published  *time.Time      `json:"published,omitempty"`
	Touched    *time.Time      `json:"touched,omitempty"`
	MinimumTTL uint32          `json:"minimum_ttl,omitempty"`
	Zonefile   string          `json:"zonefile,omitempty"`
	Keys       []DNSSECKeyInfo `json:"keys,omitempty"`
}

// DNSSECKeyInfo is the public key material deSEC publishes for a domain.
type DNSSECKeyInfo struct {
	DNSKey  string   `json:"dnskey,omitempty"`
	DS      []string `json:"ds,omitempty"`
	Flags   uint16   `json:"flags,omitempty"`
	KeyType string   `json:"keytype,omitempty"`
	Managed *bool    `json:"managed,omitempty"`
}

// RRSet is a resource record set, identified by (Domain, Subname, Type).
//
// Zero values mean "absent" and are not serialized, which is what makes
// UpdateRRSet a partial update. Subname is a pointer because the empty
// subname is the zone apex. Records uses omitzero: a nil slice is omitted
// while an explicitly empty slice is sent, which the API treats as deletion
// in bulk updates.
type RRSet struct {
	Domain  string     `json:"domain,omitempty"`
	Subname *string    `json:"subname,omitempty"`
	Name    string     `json:"name,omitempty"`
	Type    string     `json:"type,omitempty"`
	Records []string   `json:"records,omitzero"`
	TTL     uint32     `json:"ttl,omitempty"`
	Created *time.Time `json:"created,omitempty"`
	Touched *time.Time `json:"touched,omitempty"`
}

// NewRRSet returns a write payload for the given identity and contents.
func NewRRSet(subname, rrType string, ttl uint32, records ...string) RRSet {
	if records == nil {
		records = []string{}
	}
	return RRSet{
		Subname: &subname,
		Type:    rrType,
		Records: records,
		TTL:     ttl,
	}
}

// SubnameValue returns the subname, or "" (the apex) when absent.
func (r RRSet) SubnameValue() string {
	if r.Subname == nil {
		return ""
	}
	return *r.Subname
}

// RRSetFilter narrows GetRRSetsFiltered. Empty fields do not filter.
type RRSetFilter struct {
	// Subname filters by subname; a pointer to "" selects the apex.
	Subname *string
	Type    string
}
