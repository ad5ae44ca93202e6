// Package booking derives the display status of bookings and orders
// listings by urgency. Everything here is a pure function of the booking
// fields and an injected reference instant.
package booking

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"roombook/internal/model"
)

type Kind string

const (
	Ongoing   Kind = "ongoing"
	Upcoming  Kind = "upcoming"
	Completed Kind = "completed"
	Cancelled Kind = "cancelled"
)

// Rank orders kinds by urgency. Lower ranks sort first.
func (k Kind) Rank() int {
	switch k {
	case Ongoing:
		return 0
	case Upcoming:
		return 1
	case Completed:
		return 2
	default:
		return 3
	}
}

// Label is the human readable form of the kind, e.g. "Upcoming".
func (k Kind) Label() string {
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(string(k))
}

// Status is the derived, never persisted, display status of a booking.
type Status struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Label string `json:"label" yaml:"label"`
}

func newStatus(k Kind) Status {
	return Status{Kind: k, Label: k.Label()}
}

// Filter selects a subset of a listing by derived kind.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterUpcoming  Filter = "upcoming"
	FilterOngoing   Filter = "ongoing"
	FilterCompleted Filter = "completed"
)

var ErrUnknownFilter = errors.New("unknown status filter")

// ParseFilter accepts all, upcoming, ongoing and completed. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterUpcoming, FilterOngoing, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

// Scheme is one listing variant. Personal listings honour the cancelled flag
// and rank cancelled bookings last; the organisation-wide listing classifies
// by time alone and therefore only uses three ranks.
type Scheme struct {
	honorCancellation bool
}

var (
	Personal     = Scheme{honorCancellation: true}
	Organization = Scheme{honorCancellation: false}
)

// Derive classifies b relative to now. Both ends of [start, end] count as ongoing.
func (s Scheme) Derive(b model.Booking, now time.Time) Status {
	switch {
	case s.honorCancellation && b.Cancelled():
		return newStatus(Cancelled)
	case now.Before(b.StartTime):
		return newStatus(Upcoming)
	case !now.After(b.EndTime):
		return newStatus(Ongoing)
	default:
		return newStatus(Completed)
	}
}

// Order returns a new slice sorted by (rank, start time). Equal keys keep
// their input order.
func (s Scheme) Order(list []model.Booking, now time.Time) []model.Booking {
	type keyed struct {
		b    model.Booking
		rank int
	}
	items := make([]keyed, len(list))
	for i, b := range list {
		items[i] = keyed{b: b, rank: s.Derive(b, now).Kind.Rank()}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		return a.b.StartTime.Compare(b.b.StartTime)
	})

	out := make([]model.Booking, len(items))
	for i := range items {
		out[i] = items[i].b
	}
	return out
}

// FilterByStatus keeps the bookings whose derived kind equals f. FilterAll
// returns the input unchanged.
func (s Scheme) FilterByStatus(list []model.Booking, f Filter, now time.Time) []model.Booking {
	if f == FilterAll || f == "" {
		return list
	}
	out := make([]model.Booking, 0, len(list))
	for _, b := range list {
		if s.Derive(b, now).Kind == Kind(f) {
			out = append(out, b)
		}
	}
	return out
}

// Arrange filters then orders, the pipeline used by both listings.
func (s Scheme) Arrange(list []model.Booking, f Filter, now time.Time) []model.Booking {
	return s.Order(s.FilterByStatus(list, f, now), now)
}

// Tally counts bookings per derived kind.
func (s Scheme) Tally(list []model.Booking, now time.Time) map[Kind]int {
	counts := map[Kind]int{Ongoing: 0, Upcoming: 0, Completed: 0}
	if s.honorCancellation {
		counts[Cancelled] = 0
	}
	for _, b := range list {
		counts[s.Derive(b, now).Kind]++
	}
	return counts
}

func Derive(b model.Booking, now time.Time) Status {
	return Personal.Derive(b, now)
}

func Order(list []model.Booking, now time.Time) []model.Booking {
	return Personal.Order(list, now)
}

func FilterByStatus(list []model.Booking, f Filter, now time.Time) []model.Booking {
	return Personal.FilterByStatus(list, f, now)
}

// CanCancel reports whether the owner may still cancel b. Only bookings that
// have not started yet can be cancelled.
func CanCancel(b model.Booking, now time.Time) bool {
	return Personal.Derive(b, now).Kind == Upcoming
}
