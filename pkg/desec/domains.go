package desec

import (
	"context"
	"net/http"
)

func domainPath(name string) string {
	return "/domains/" + segment(name) + "/"
}

// CreateDomain registers a new domain. A 400 (e.g. the name is taken or
// invalid) is ErrBadRequest and a 403 is ErrDomainLimit.
func (c *Client) CreateDomain(ctx context.Context, name string) (*Domain, error) {
	resp, err := c.do(ctx, request{
		op:      "CreateDomain",
		method:  http.MethodPost,
		path:    "/domains/",
		body:    Domain{Name: name},
		domain:  name,
		success: []int{http.StatusCreated},
		mapped: map[int]error{
			http.StatusBadRequest: ErrBadRequest,
			http.StatusForbidden:  ErrDomainLimit,
		},
	})
	if err != nil {
		return nil, err
	}
	d, err := decode[Domain]("CreateDomain", resp)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDomains lists all domains of the account in server order.
func (c *Client) GetDomains(ctx context.Context) ([]Domain, error) {
	resp, err := c.do(ctx, request{
		op:      "GetDomains",
		method:  http.MethodGet,
		path:    "/domains/",
		success: []int{http.StatusOK},
	})
	if err != nil {
		return nil, err
	}
	return decode[[]Domain]("GetDomains", resp)
}

// GetDomain returns a single domain.
func (c *Client) GetDomain(ctx context.Context, name string) (*Domain, error) {
	resp, err := c.do(ctx, request{
		op:      "GetDomain",
		method:  http.MethodGet,
		path:    domainPath(name),
		domain:  name,
		success: []int{http.StatusOK},
		mapped:  map[int]error{http.StatusNotFound: ErrNotFound},
	})
	if err != nil {
		return nil, err
	}
	d, err := decode[Domain]("GetDomain", resp)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDomain deletes a domain and all of its RRsets.
func (c *Client) DeleteDomain(ctx context.Context, name string) error {
	_, err := c.do(ctx, request{
		op:      "DeleteDomain",
		method:  http.MethodDelete,
		path:    domainPath(name),
		domain:  name,
		success: []int{http.StatusNoContent},
		mapped:  map[int]error{http.StatusNotFound: ErrNotFound},
	})
	return err
}

// GetZonefile returns the domain's zone in master file format, verbatim.
func (c *Client) GetZonefile(ctx context.Context, name string) (string, error) {
	resp, err := c.do(ctx, request{
		op:      "GetZonefile",
		method:  http.MethodGet,
		path:    domainPath(name) + "zonefile/",
		accept:  "text/dns",
		domain:  name,
		success: []int{http.StatusOK},
		mapped:  map[int]error{http.StatusNotFound: ErrNotFound},
	})
	if err != nil {
		return "", err
	}
	return string(resp.body), nil
}
