package desec

import (
	"context"
	"net/http"
)

// GetAccountInfo returns the account the token belongs to.
func (c *Client) GetAccountInfo(ctx context.Context) (*AccountInformation, error) {
	resp, err := c.do(ctx, request{
		op:       "GetAccountInfo",
		method:   http.MethodGet,
		path:     "/auth/account/",
		success:  []int{http.StatusOK},
		fallback: ErrHTTP,
	})
	if err != nil {
		return nil, err
	}
	info, err := decode[AccountInformation]("GetAccountInfo", resp)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
