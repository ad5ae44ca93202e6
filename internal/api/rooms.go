package api

import (
	"context"
	"net/http"
	"net/url"

	"roombook/internal/model"
)

func (c *Client) ListRooms(ctx context.Context, token string) ([]model.Room, error) {
	var rooms []model.Room
	if err := c.do(ctx, http.MethodGet, "/api/meeting-rooms", token, nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) GetRoom(ctx context.Context, token, id string) (model.Room, error) {
	var room model.Room
	err := c.do(ctx, http.MethodGet, "/api/meeting-rooms/"+url.PathEscape(id), token, nil, &room)
	return room, err
}

func (c *Client) CreateRoom(ctx context.Context, token string, in model.RoomInput) (model.Room, error) {
	var room model.Room
	err := c.do(ctx, http.MethodPost, "/api/meeting-rooms", token, in, &room)
	return room, err
}

func (c *Client) UpdateRoom(ctx context.Context, token, id string, in model.RoomInput) (model.Room, error) {
	var room model.Room
	err := c.do(ctx, http.MethodPut, "/api/meeting-rooms/"+url.PathEscape(id), token, in, &room)
	return room, err
}

func (c *Client) DeleteRoom(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/meeting-rooms/"+url.PathEscape(id), token, nil, nil)
}
