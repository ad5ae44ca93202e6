package fakeapi

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roombook/internal/access"
	"roombook/internal/model"
)

type roomRequest struct {
	Name        string `json:"name" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (r roomRequest) apply(room *model.Room) {
	room.Name = strings.TrimSpace(r.Name)
	room.Capacity = r.Capacity
	room.Location = strings.TrimSpace(r.Location)
	room.Description = strings.TrimSpace(r.Description)
}

func (s *Server) roomRoutes(r *gin.RouterGroup) {
	manage := s.requirePermission(access.ResourceRooms, access.ActionManage)

	r.GET("", s.listRooms)
	r.GET("/:id", s.getRoom)
	r.POST("", manage, s.createRoom)
	r.PUT("/:id", manage, s.updateRoom)
	r.DELETE("/:id", manage, s.deleteRoom)
}

func (s *Server) listRooms(c *gin.Context) {
	s.mu.RLock()
	rooms := make([]model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, *room)
	}
	s.mu.RUnlock()

	slices.SortFunc(rooms, func(a, b model.Room) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	success(c, http.StatusOK, rooms)
}

func (s *Server) getRoom(c *gin.Context) {
	s.mu.RLock()
	room, ok := s.rooms[c.Param("id")]
	var out model.Room
	if ok {
		out = *room
	}
	s.mu.RUnlock()

	if !ok {
		abortWithError(c, ErrRoomNotFound)
		return
	}
	success(c, http.StatusOK, out)
}

func (s *Server) createRoom(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}
	room := &model.Room{ID: uuid.NewString()}
	req.apply(room)

	s.mu.Lock()
	s.rooms[room.ID] = room
	out := *room
	s.mu.Unlock()

	s.logger.Info("Meeting room created", "id", out.ID, "name", out.Name)
	success(c, http.StatusCreated, out)
}

func (s *Server) updateRoom(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}

	s.mu.Lock()
	room, ok := s.rooms[c.Param("id")]
	var out model.Room
	if ok {
		req.apply(room)
		out = *room
	}
	s.mu.Unlock()

	if !ok {
		abortWithError(c, ErrRoomNotFound)
		return
	}
	success(c, http.StatusOK, out)
}

// deleteRoom removes the room. Bookings keep pointing at it and list it as
// an unknown room.
func (s *Server) deleteRoom(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()

	if !ok {
		abortWithError(c, ErrRoomNotFound)
		return
	}
	s.logger.Info("Meeting room deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Meeting room deleted"})
}
