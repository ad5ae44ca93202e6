package api

import (
	"context"
	"net/http"
	"net/url"

	"roombook/internal/model"
)

// ListBookings returns every booking in the organisation. Admin only.
func (c *Client) ListBookings(ctx context.Context, token string) ([]model.Booking, error) {
	var list []model.Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings", token, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) MyBookings(ctx context.Context, token string) ([]model.Booking, error) {
	var list []model.Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings/my-bookings", token, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateBooking(ctx context.Context, token string, in model.NewBooking) (model.Booking, error) {
	var b model.Booking
	err := c.do(ctx, http.MethodPost, "/api/bookings", token, in, &b)
	return b, err
}

func (c *Client) CancelBooking(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPatch, "/api/bookings/"+url.PathEscape(id)+"/cancel", token, nil, nil)
}
