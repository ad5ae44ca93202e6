package dashboard

import (
	"context"
	"errors"
	"time"

	"roombook/internal/access"
	"roombook/internal/booking"
	"roombook/internal/model"
	"roombook/internal/validate"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotCancellable  = errors.New("only upcoming bookings can be cancelled")
)

// Entry is one listing row: the booking and its status at listing time.
type Entry struct {
	model.Booking `yaml:",inline"`
	Display       booking.Status `json:"display" yaml:"display"`
	CanCancel     bool           `json:"canCancel" yaml:"canCancel"`
}

// Listing is a filtered, ordered booking list with per-status counts of the
// unfiltered list.
type Listing struct {
	Entries []Entry              `json:"entries" yaml:"entries"`
	Counts  map[booking.Kind]int `json:"counts" yaml:"counts"`
}

func arrange(scheme booking.Scheme, list []model.Booking, f booking.Filter, now time.Time, cancellable bool) Listing {
	ordered := scheme.Arrange(list, f, now)
	entries := make([]Entry, len(ordered))
	for i, b := range ordered {
		entries[i] = Entry{
			Booking:   b,
			Display:   scheme.Derive(b, now),
			CanCancel: cancellable && booking.CanCancel(b, now),
		}
	}
	return Listing{Entries: entries, Counts: scheme.Tally(list, now)}
}

// MyBookings lists the signed in user's bookings, cancelled ones included.
func (d *Dashboard) MyBookings(ctx context.Context, f booking.Filter) (Listing, error) {
	if err := d.authorize(access.ResourceBookings, access.ActionListOwn); err != nil {
		return Listing{}, err
	}
	list, err := d.fetchMine(ctx)
	if err != nil {
		return Listing{}, err
	}
	return arrange(booking.Personal, list, f, d.now(), true), nil
}

// AllBookings lists every booking of the organisation. Administrators only.
// The listing classifies by time alone.
func (d *Dashboard) AllBookings(ctx context.Context, f booking.Filter) (Listing, error) {
	if err := d.authorize(access.ResourceBookings, access.ActionListAll); err != nil {
		return Listing{}, err
	}
	var list []model.Booking
	err := d.session.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		list, err = d.backend.ListBookings(ctx, token)
		return err
	})
	if err != nil {
		return Listing{}, err
	}
	return arrange(booking.Organization, list, f, d.now(), false), nil
}

func (d *Dashboard) fetchMine(ctx context.Context) ([]model.Booking, error) {
	var list []model.Booking
	err := d.session.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		list, err = d.backend.MyBookings(ctx, token)
		return err
	})
	return list, err
}

// CreateBooking validates the form locally and submits it. A form that
// fails validation never reaches the backend.
func (d *Dashboard) CreateBooking(ctx context.Context, form validate.BookingForm) (model.Booking, error) {
	if err := d.authorize(access.ResourceBookings, access.ActionCreate); err != nil {
		return model.Booking{}, err
	}
	in, err := form.Booking(d.loc)
	if err != nil {
		return model.Booking{}, err
	}

	var created model.Booking
	err = d.session.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		created, err = d.backend.CreateBooking(ctx, token, in)
		return err
	})
	if err != nil {
		return model.Booking{}, err
	}
	d.logger.Info("Booking created", "id", created.ID, "title", created.Title)
	return created, nil
}

// CancelBooking cancels one of the user's own bookings. Only upcoming
// bookings may be cancelled.
func (d *Dashboard) CancelBooking(ctx context.Context, id string) error {
	if err := d.authorize(access.ResourceBookings, access.ActionCancel); err != nil {
		return err
	}
	list, err := d.fetchMine(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrBookingNotFound
	}
	if !booking.CanCancel(list[idx], d.now()) {
		return ErrNotCancellable
	}

	err = d.session.Do(ctx, func(ctx context.Context, token string) error {
		return d.backend.CancelBooking(ctx, token, id)
	})
	if err != nil {
		return err
	}
	d.logger.Info("Booking cancelled", "id", id)
	return nil
}
