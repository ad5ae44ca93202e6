package fakeapi

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roombook/internal/access"
	"roombook/internal/model"
)

type bookingRequest struct {
	MeetingRoomID string    `json:"meetingRoomId" binding:"required"`
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
}

func (s *Server) bookingRoutes(r *gin.RouterGroup) {
	r.GET("", s.requirePermission(access.ResourceBookings, access.ActionListAll), s.listBookings)
	r.GET("/my-bookings", s.myBookings)
	r.POST("", s.createBooking)
	r.PATCH("/:id/cancel", s.cancelBooking)
}

// view renders b the way listings show it. withOwner adds the owner's email.
// Callers hold s.mu.
func (s *Server) view(b *booking, withOwner bool) model.Booking {
	out := model.Booking{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
	}
	if room, ok := s.rooms[b.RoomID]; ok {
		out.MeetingRoom = &model.RoomRef{Name: room.Name, Location: room.Location}
	}
	if withOwner {
		if u, ok := s.users[b.UserID]; ok {
			out.User = &model.UserRef{Email: u.Email}
		}
	}
	return out
}

func (s *Server) collect(match func(*booking) bool, withOwner bool) []model.Booking {
	s.mu.RLock()
	var matched []*booking
	for _, b := range s.bookings {
		if match(b) {
			matched = append(matched, b)
		}
	}
	// Newest first, as the backend lists them
	slices.SortFunc(matched, func(a, b *booking) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	out := make([]model.Booking, 0, len(matched))
	for _, b := range matched {
		out = append(out, s.view(b, withOwner))
	}
	s.mu.RUnlock()
	return out
}

func (s *Server) listBookings(c *gin.Context) {
	success(c, http.StatusOK, s.collect(func(*booking) bool { return true }, true))
}

func (s *Server) myBookings(c *gin.Context) {
	id := currentUser(c).ID
	success(c, http.StatusOK, s.collect(func(b *booking) bool { return b.UserID == id }, false))
}

func (s *Server) createBooking(c *gin.Context) {
	var req bookingRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		abortWithHTTPError(c, http.StatusBadRequest, ErrInvalidRequest, "Please provide all required fields")
		return
	}
	if !req.StartTime.Before(req.EndTime) {
		abortWithError(c, ErrInvalidTimeRange)
		return
	}

	u := currentUser(c)
	b := &booking{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		RoomID:      req.MeetingRoomID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Status:      model.BookingActive,
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	if _, ok := s.rooms[b.RoomID]; !ok {
		s.mu.Unlock()
		abortWithError(c, ErrRoomNotFound)
		return
	}
	for _, other := range s.bookings {
		if other.RoomID == b.RoomID && other.Status != model.BookingCancelled &&
			other.StartTime.Before(b.EndTime) && b.StartTime.Before(other.EndTime) {
			s.mu.Unlock()
			abortWithError(c, ErrRoomBooked)
			return
		}
	}
	s.bookings[b.ID] = b
	out := s.view(b, false)
	s.mu.Unlock()

	s.logger.Info("Booking created", "id", b.ID, "room", b.RoomID, "email", u.Email)
	success(c, http.StatusCreated, out)
}

// cancelBooking flags the booking as cancelled. Owners cancel their own
// bookings, administrators any booking.
func (s *Server) cancelBooking(c *gin.Context) {
	u := currentUser(c)

	s.mu.Lock()
	b, ok := s.bookings[c.Param("id")]
	var err error
	switch {
	case !ok:
		err = ErrBookingNotFound
	case b.UserID != u.ID && u.Role != model.RoleAdmin:
		err = ErrForbidden
	case b.Status == model.BookingCancelled:
		err = ErrAlreadyCancelled
	default:
		b.Status = model.BookingCancelled
	}
	var out model.Booking
	if err == nil {
		out = s.view(b, false)
	}
	s.mu.Unlock()

	if err != nil {
		abortWithError(c, err)
		return
	}
	s.logger.Info("Booking cancelled", "id", out.ID, "email", u.Email)
	success(c, http.StatusOK, out)
}
