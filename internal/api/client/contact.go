package client

import (
	"context"

	domain "github.com/donaldgifford/storefront/pkg/types"
)

// SubmitContact posts a contact or quote request to the demandes endpoint.
func (c *Client) SubmitContact(
	ctx context.Context,
	path string,
	req *domain.ContactRequest,
) error {
	var resp struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := c.post(ctx, path, req, &resp); err != nil {
		return err
	}
	if resp.Success != nil && !*resp.Success {
		return backendFailure(resp.Message)
	}
	return nil
}
