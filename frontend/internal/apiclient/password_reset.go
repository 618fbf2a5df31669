package apiclient

import (
	"context"

	"github.com/tbs-portal/portal/shared/api"
)

const (
	EndpointInitiateReset = "password_reset_initiate"
	EndpointCompleteReset = "password_reset_complete"
)

// InitiateReset asks the backend to send a reset code to the account matching
// email and national ID.
func (c *APIClient) InitiateReset(ctx context.Context, req api.InitiateResetRequest) (api.ResetResponse, error) {
	return c.reset(ctx, EndpointInitiateReset, "/password-reset/initiate", req)
}

// CompleteReset submits the emailed code together with the new password.
func (c *APIClient) CompleteReset(ctx context.Context, req api.CompleteResetRequest) (api.ResetResponse, error) {
	return c.reset(ctx, EndpointCompleteReset, "/password-reset/complete", req)
}

func (c *APIClient) reset(ctx context.Context, endpoint, path string, body any) (api.ResetResponse, error) {
	resp, data, err := c.postJSON(ctx, endpoint, path, body)
	if err != nil {
		return api.ResetResponse{}, err
	}

	var out api.ResetResponse
	if err := decode(endpoint, resp.StatusCode, data, &out, false); err != nil {
		return api.ResetResponse{}, err
	}
	if !isSuccess(resp.StatusCode) {
		out.Success = false
	}
	return out, nil
}
