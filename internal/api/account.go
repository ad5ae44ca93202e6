package api

import (
	"context"
	"net/http"

	"roombook/internal/model"
)

// UpdateAccount changes the password of the signed in user and returns the
// refreshed user record.
func (c *Client) UpdateAccount(ctx context.Context, token string, change model.PasswordChange) (model.User, error) {
	var res struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPut, "/api/user/update-account-info", token, change, &res)
	return res.User, err
}
