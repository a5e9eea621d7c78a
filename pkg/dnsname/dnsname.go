// Package dnsname converts between the name forms users type and the forms
// the deSEC API expects: lowercase ASCII domains without a trailing dot, and
// subnames relative to a registrable domain.
package dnsname

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ApexMarker addresses the zone apex in RRset URLs.
const ApexMarker = "@"

// lookup is the IDNA lookup profile without STD3 rules, which would reject
// the underscore and wildcard labels common in RRset subnames.
var lookup = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
)

var (
	ErrEmptyName = errors.New("empty domain name")
	ErrNoDomain  = errors.New("name has no registrable domain")
)

// Canonical returns a DNS name in canonical form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot, the API rejects it.
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	// remove all trailing dots
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// ToASCII canonicalizes name and converts internationalized labels to their
// punycode form.
func ToASCII(name string) (string, error) {
	name = Canonical(name)
	if name == "" {
		return "", ErrEmptyName
	}
	ascii, err := lookup.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("invalid domain name %q: %w", name, err)
	}
	return ascii, nil
}

// Split separates a fully qualified name into the registrable domain (public
// suffix plus one label) and the subname in front of it. The apex yields an
// empty subname.
func Split(fqdn string) (domain, subname string, err error) {
	name, err := ToASCII(fqdn)
	if err != nil {
		return "", "", err
	}
	domain, err = publicsuffix.EffectiveTLDPlusOne(name)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q: %v", ErrNoDomain, name, err)
	}
	subname = strings.TrimSuffix(strings.TrimSuffix(name, domain), ".")
	return domain, subname, nil
}

// PathSubname renders a subname for an RRset URL, replacing the empty apex
// subname with ApexMarker.
func PathSubname(subname string) string {
	if subname == "" {
		return ApexMarker
	}
	return subname
}
