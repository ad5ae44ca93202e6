package model

import (
	"strings"
	"time"
)

// Stored booking statuses. Anything other than cancelled is treated as active.
const (
	BookingActive    = "active"
	BookingCancelled = "cancelled"
)

// RoomRef is the room snapshot embedded in a booking listing.
type RoomRef struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// UserRef identifies the booking owner. Only present in admin listings.
type UserRef struct {
	Email string `json:"email"`
}

type Booking struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	StartTime   time.Time `json:"startTime" yaml:"startTime"`
	EndTime     time.Time `json:"endTime" yaml:"endTime"`
	Status      string    `json:"status,omitempty" yaml:"status,omitempty"`

	MeetingRoom *RoomRef `json:"meetingRoom,omitempty" yaml:"meetingRoom,omitempty"`
	User        *UserRef `json:"user,omitempty" yaml:"user,omitempty"`
}

// Cancelled reports whether the server flagged the booking as cancelled.
func (b Booking) Cancelled() bool {
	return strings.EqualFold(strings.TrimSpace(b.Status), BookingCancelled)
}

// RoomName returns the room snapshot name, or a placeholder when the room is unknown.
func (b Booking) RoomName() string {
	if b.MeetingRoom == nil || b.MeetingRoom.Name == "" {
		return "Unknown Room"
	}
	return b.MeetingRoom.Name
}

func (b Booking) OwnerEmail() string {
	if b.User == nil || b.User.Email == "" {
		return "Unknown User"
	}
	return b.User.Email
}

// NewBooking is the payload for POST /api/bookings.
type NewBooking struct {
	MeetingRoomID string    `json:"meetingRoomId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
}
