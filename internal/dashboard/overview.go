package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"roombook/internal/access"
	"roombook/internal/model"
)

// Overview is the landing screen summary.
type Overview struct {
	TotalRooms       int `json:"totalRooms" yaml:"totalRooms"`
	TotalBookings    int `json:"totalBookings" yaml:"totalBookings"` // administrators only, 0 otherwise
	MyBookings       int `json:"myBookings" yaml:"myBookings"`
	UpcomingBookings int `json:"upcomingBookings" yaml:"upcomingBookings"`
}

// Overview fetches the landing screen counters concurrently.
func (d *Dashboard) Overview(ctx context.Context) (Overview, error) {
	user := d.session.User()
	if user == nil {
		return Overview{}, access.ErrAnonymousUser
	}

	var (
		rooms []model.Room
		mine  []model.Booking
		all   []model.Booking
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = d.fetchRooms(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = d.fetchMine(ctx)
		return err
	})
	if user.IsAdmin() {
		g.Go(func() error {
			return d.session.Do(ctx, func(ctx context.Context, token string) error {
				var err error
				all, err = d.backend.ListBookings(ctx, token)
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	now := d.now()
	out := Overview{
		TotalRooms:    len(rooms),
		TotalBookings: len(all),
		MyBookings:    len(mine),
	}
	for _, b := range mine {
		if b.StartTime.After(now) {
			out.UpcomingBookings++
		}
	}
	return out, nil
}
