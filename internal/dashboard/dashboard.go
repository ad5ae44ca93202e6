// Package dashboard holds the screen logic of the booking client: what each
// screen fetches, how listings are filtered and ordered, and which role may
// open it. Every privileged call goes through the session manager's
// refresh-and-retry wrapper.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"roombook/internal/access"
	"roombook/internal/api"
	"roombook/internal/model"
	"roombook/internal/session"
)

// Backend is the part of the REST client the screens use.
type Backend interface {
	ListRooms(ctx context.Context, token string) ([]model.Room, error)
	CreateRoom(ctx context.Context, token string, in model.RoomInput) (model.Room, error)
	UpdateRoom(ctx context.Context, token, id string, in model.RoomInput) (model.Room, error)
	DeleteRoom(ctx context.Context, token, id string) error

	ListBookings(ctx context.Context, token string) ([]model.Booking, error)
	MyBookings(ctx context.Context, token string) ([]model.Booking, error)
	CreateBooking(ctx context.Context, token string, in model.NewBooking) (model.Booking, error)
	CancelBooking(ctx context.Context, token, id string) error

	UpdateAccount(ctx context.Context, token string, change model.PasswordChange) (model.User, error)
}

var _ Backend = (*api.Client)(nil)

type Options struct {
	// Location interprets wall clock times typed into booking forms.
	Location *time.Location
	// Now replaces the clock, for tests.
	Now    func() time.Time
	Logger *slog.Logger
}

type Dashboard struct {
	backend Backend
	session *session.Manager
	rbac    *access.RBAC
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
}

func New(backend Backend, sess *session.Manager, rbac *access.RBAC, opts Options) *Dashboard {
	d := &Dashboard{
		backend: backend,
		session: sess,
		rbac:    rbac,
		loc:     opts.Location,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	if d.loc == nil {
		d.loc = time.Local
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.logger = d.logger.With("component", "dashboard")
	return d
}

// authorize checks the signed in user's role before a screen is opened.
func (d *Dashboard) authorize(resource, action string) error {
	return d.rbac.Require(d.session.User(), resource, action)
}

// Can reports whether the signed in user may perform action on resource.
func (d *Dashboard) Can(resource, action string) bool {
	return d.authorize(resource, action) == nil
}
