// Package zonefile parses the master-file text returned by the zonefile
// export endpoint into typed records.
package zonefile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miekg/dns"

	"github.com/haukened/desec-go/pkg/dnsname"
)

// Key identifies an RRset within a zone: owner name relative to the origin
// (empty at the apex) and record type.
type Key struct {
	Subname string
	Type    string
}

func (k Key) String() string {
	return dnsname.PathSubname(k.Subname) + "/" + k.Type
}

// Parse reads every resource record in text. Relative owner names are
// resolved against origin, which may be given with or without a trailing dot.
func Parse(origin, text string) ([]dns.RR, error) {
	zp := dns.NewZoneParser(strings.NewReader(text), dns.Fqdn(dnsname.Canonical(origin)), "")
	zp.SetIncludeAllowed(false)

	var rrs []dns.RR
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		rrs = append(rrs, rr)
	}
	if err := zp.Err(); err != nil {
		return nil, fmt.Errorf("parse zonefile for %s: %w", origin, err)
	}
	return rrs, nil
}

// Group collects records into RRsets keyed by subname and type, the way the
// API models them. Records outside origin are skipped.
func Group(origin string, rrs []dns.RR) map[Key][]dns.RR {
	zone := dnsname.Canonical(origin)
	out := make(map[Key][]dns.RR)
	for _, rr := range rrs {
		hdr := rr.Header()
		owner := dnsname.Canonical(hdr.Name)
		var subname string
		switch {
		case owner == zone:
			subname = ""
		case strings.HasSuffix(owner, "."+zone):
			subname = strings.TrimSuffix(owner, "."+zone)
		default:
			continue
		}
		key := Key{Subname: subname, Type: dns.TypeToString[hdr.Rrtype]}
		out[key] = append(out[key], rr)
	}
	return out
}

// Keys returns the keys of a grouping in a stable order.
func Keys(groups map[Key][]dns.RR) []Key {
	keys := make([]Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Subname != keys[j].Subname {
			return keys[i].Subname < keys[j].Subname
		}
		return keys[i].Type < keys[j].Type
	})
	return keys
}

// Records renders the data part of each record, which is the form the API
// uses in RRSet.Records.
func Records(rrs []dns.RR) []string {
	out := make([]string, 0, len(rrs))
	for _, rr := range rrs {
		full := rr.String()
		hdr := rr.Header().String()
		out = append(out, strings.TrimSpace(strings.TrimPrefix(full, hdr)))
	}
	return out
}
