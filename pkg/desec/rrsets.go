package desec

import (
	"context"
	"net/http"
	"net/url"
)

func rrsetsPath(domain string) string {
	return domainPath(domain) + "rrsets/"
}

func rrsetPath(domain, subname, rrType string) string {
	return rrsetsPath(domain) + rrsetSegment(subname) + "/" + segment(rrType) + "/"
}

// CreateRRSet creates one RRset in domain. A 400 is ErrBadRequest.
func (c *Client) CreateRRSet(ctx context.Context, domain string, rrset RRSet) (*RRSet, error) {
	resp, err := c.do(ctx, request{
		op:      "CreateRRSet",
		method:  http.MethodPost,
		path:    rrsetsPath(domain),
		body:    rrset,
		domain:  domain,
		success: []int{http.StatusCreated},
		mapped: map[int]error{
			http.StatusBadRequest: ErrBadRequest,
			http.StatusNotFound:   ErrNotFound,
		},
	})
	if err != nil {
		return nil, err
	}
	created, err := decode[RRSet]("CreateRRSet", resp)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateRRSetBulk creates several RRsets in one request. On a 400 the
// returned *BulkError holds one detail entry per submitted item.
func (c *Client) CreateRRSetBulk(ctx context.Context, domain string, rrsets []RRSet) error {
	_, err := c.do(ctx, request{
		op:      "CreateRRSetBulk",
		method:  http.MethodPost,
		path:    rrsetsPath(domain),
		body:    nonNil(rrsets),
		domain:  domain,
		success: []int{http.StatusCreated},
		mapped: map[int]error{
			http.StatusBadRequest: ErrBulkRejected,
			http.StatusNotFound:   ErrNotFound,
		},
	})
	return err
}

// GetRRSets lists all RRsets of domain in server order.
func (c *Client) GetRRSets(ctx context.Context, domain string) ([]RRSet, error) {
	return c.GetRRSetsFiltered(ctx, domain, RRSetFilter{})
}

// GetRRSetsFiltered lists the RRsets of domain matching filter.
func (c *Client) GetRRSetsFiltered(ctx context.Context, domain string, filter RRSetFilter) ([]RRSet, error) {
	query := url.Values{}
	if filter.Subname != nil {
		query.Set("subname", *filter.Subname)
	}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}

	resp, err := c.do(ctx, request{
		op:      "GetRRSets",
		method:  http.MethodGet,
		path:    rrsetsPath(domain),
		query:   query,
		domain:  domain,
		success: []int{http.StatusOK},
		mapped:  map[int]error{http.StatusNotFound: ErrNotFound},
	})
	if err != nil {
		return nil, err
	}
	return decode[[]RRSet]("GetRRSets", resp)
}

// GetRRSet returns the RRset identified by (domain, subname, rrType).
// The empty subname addresses the zone apex.
func (c *Client) GetRRSet(ctx context.Context, domain, subname, rrType string) (*RRSet, error) {
	resp, err := c.do(ctx, request{
		op:      "GetRRSet",
		method:  http.MethodGet,
		path:    rrsetPath(domain, subname, rrType),
		domain:  domain,
		success: []int{http.StatusOK},
		mapped:  map[int]error{http.StatusNotFound: ErrNotFound},
	})
	if err != nil {
		return nil, err
	}
	rrset, err := decode[RRSet]("GetRRSet", resp)
	if err != nil {
		return nil, err
	}
	return &rrset, nil
}

// UpdateRRSet partially updates an RRset. Only the fields set in patch are
// sent, so an update carrying records and ttl leaves everything else as is.
// A 400 is returned as a *BulkError.
func (c *Client) UpdateRRSet(ctx context.Context, domain, subname, rrType string, patch RRSet) (*RRSet, error) {
	resp, err := c.do(ctx, request{
		op:      "UpdateRRSet",
		method:  http.MethodPatch,
		path:    rrsetPath(domain, subname, rrType),
		body:    patch,
		domain:  domain,
		success: []int{http.StatusOK},
		mapped: map[int]error{
			http.StatusBadRequest: ErrBulkRejected,
			http.StatusNotFound:   ErrNotFound,
		},
	})
	if err != nil {
		return nil, err
	}
	updated, err := decode[RRSet]("UpdateRRSet", resp)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateRRSetBulk partially updates several RRsets, each identified by its
// Subname and Type. Both 200 and 201 are accepted as success.
func (c *Client) UpdateRRSetBulk(ctx context.Context, domain string, rrsets []RRSet) error {
	_, err := c.do(ctx, request{
		op:      "UpdateRRSetBulk",
		method:  http.MethodPatch,
		path:    rrsetsPath(domain),
		body:    nonNil(rrsets),
		domain:  domain,
		success: []int{http.StatusOK, http.StatusCreated},
		mapped: map[int]error{
			http.StatusBadRequest: ErrBulkRejected,
			http.StatusNotFound:   ErrNotFound,
		},
	})
	return err
}

// DeleteRRSet deletes the RRset identified by (domain, subname, rrType).
func (c *Client) DeleteRRSet(ctx context.Context, domain, subname, rrType string) error {
	_, err := c.do(ctx, request{
		op:       "DeleteRRSet",
		method:   http.MethodDelete,
		path:     rrsetPath(domain, subname, rrType),
		domain:   domain,
		success:  []int{http.StatusNoContent},
		mapped:   map[int]error{http.StatusNotFound: ErrNotFound},
		fallback: ErrHTTP,
	})
	return err
}

// nonNil makes sure a bulk body is encoded as [] rather than null.
func nonNil(rrsets []RRSet) []RRSet {
	if rrsets == nil {
		return []RRSet{}
	}
	return rrsets
}
