package dashboard

import (
	"context"

	"roombook/internal/access"
	"roombook/internal/model"
	"roombook/internal/validate"
)

// ChangePassword validates the account form and updates the password.
func (d *Dashboard) ChangePassword(ctx context.Context, form validate.AccountForm) (model.User, error) {
	if err := d.authorize(access.ResourceAccount, access.ActionUpdate); err != nil {
		return model.User{}, err
	}
	change, err := form.Change()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	err = d.session.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		user, err = d.backend.UpdateAccount(ctx, token, change)
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	d.logger.Info("Password changed", "email", user.Email)
	return user, nil
}
