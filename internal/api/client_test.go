package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"roombook/internal/cookies"
	"roombook/internal/fakeapi"
	"roombook/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSandbox(t *testing.T) (*fakeapi.Server, *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend, err := fakeapi.New(fakeapi.Options{
		Secret:     []byte("test-secret"),
		BcryptCost: bcrypt.MinCost,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("fakeapi.New: %v", err)
	}
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client, err := New(Options{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Jar:     cookies.NewJar(cookies.NewMemoryStore(), quietLogger()),
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return backend, client
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "://nope"} {
		if _, err := New(Options{BaseURL: raw}); err == nil {
			t.Errorf("New(%q) succeeded", raw)
		}
	}
}

func TestLoginRefreshAndMe(t *testing.T) {
	_, c := newSandbox(t)
	ctx := context.Background()
	creds := model.Credentials{Email: "ada@example.com", Password: "Secret#123"}

	if err := c.Register(ctx, creds); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := c.Register(ctx, creds)
	if !errors.Is(err, ErrConflict) || Message(err) != "User already exists" {
		t.Fatalf("duplicate Register = %v", err)
	}

	res, err := c.Login(ctx, creds)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" || res.User.Email != "ada@example.com" {
		t.Fatalf("login result = %+v", res)
	}

	// The session cookie in the jar is enough to mint a new token
	token, err := c.RefreshToken(ctx)
	if err != nil || token == "" {
		t.Fatalf("RefreshToken: %q %v", token, err)
	}
	me, err := c.Me(ctx, token)
	if err != nil || me.Email != "ada@example.com" {
		t.Fatalf("Me: %+v %v", me, err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := c.RefreshToken(ctx); !IsAuthError(err) {
		t.Fatalf("refresh after logout = %v, want auth error", err)
	}
}

func TestAuthErrorOnBadToken(t *testing.T) {
	_, c := newSandbox(t)
	_, err := c.Me(context.Background(), "not-a-token")
	if !IsAuthError(err) {
		t.Fatalf("err = %v, want auth error", err)
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %#v", err)
	}
}

func TestRoomsAndBookings(t *testing.T) {
	backend, c := newSandbox(t)
	ctx := context.Background()
	if _, err := backend.AddUser("root@example.com", "Secret#123", model.RoleAdmin); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	res, err := c.Login(ctx, model.Credentials{Email: "root@example.com", Password: "Secret#123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	token := res.AccessToken

	room, err := c.CreateRoom(ctx, token, model.RoomInput{Name: "Aurora", Capacity: 6, Location: "2F"})
	if err != nil || room.ID == "" {
		t.Fatalf("CreateRoom: %+v %v", room, err)
	}
	room, err = c.UpdateRoom(ctx, token, room.ID, model.RoomInput{Name: "Aurora", Capacity: 10})
	if err != nil || room.Capacity != 10 {
		t.Fatalf("UpdateRoom: %+v %v", room, err)
	}
	got, err := c.GetRoom(ctx, token, room.ID)
	if err != nil || got.Capacity != 10 {
		t.Fatalf("GetRoom: %+v %v", got, err)
	}

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute).UTC()
	b, err := c.CreateBooking(ctx, token, model.NewBooking{
		MeetingRoomID: room.ID, Title: "Planning", StartTime: start, EndTime: start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if !b.StartTime.Equal(start) || b.RoomName() != "Aurora" {
		t.Fatalf("booking = %+v", b)
	}

	mine, err := c.MyBookings(ctx, token)
	if err != nil || len(mine) != 1 {
		t.Fatalf("MyBookings: %+v %v", mine, err)
	}
	all, err := c.ListBookings(ctx, token)
	if err != nil || len(all) != 1 || all[0].OwnerEmail() != "root@example.com" {
		t.Fatalf("ListBookings: %+v %v", all, err)
	}

	if err := c.CancelBooking(ctx, token, b.ID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if err := c.DeleteRoom(ctx, token, room.ID); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	_, err = c.GetRoom(ctx, token, room.ID)
	if !errors.Is(err, ErrNotFound) || Message(err) != "Meeting room not found" {
		t.Fatalf("GetRoom after delete = %v", err)
	}

	rooms, err := c.ListRooms(ctx, token)
	if err != nil || len(rooms) != 0 {
		t.Fatalf("ListRooms: %+v %v", rooms, err)
	}
}

func TestUpdateAccountAndReset(t *testing.T) {
	backend, c := newSandbox(t)
	ctx := context.Background()
	backend.AddUser("ada@example.com", "Secret#123", "")

	if err := c.ForgotPassword(ctx, "ada@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	resetToken, _ := backend.ResetToken("ada@example.com")
	if err := c.ResetPassword(ctx, resetToken, "Other#1234"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	res, err := c.Login(ctx, model.Credentials{Email: "ada@example.com", Password: "Other#1234"})
	if err != nil {
		t.Fatalf("Login with new password: %v", err)
	}

	u, err := c.UpdateAccount(ctx, res.AccessToken, model.PasswordChange{
		CurrentPassword: "Other#1234", NewPassword: "Third#1234", ConfirmPassword: "Third#1234",
	})
	if err != nil || u.Email != "ada@example.com" {
		t.Fatalf("UpdateAccount: %+v %v", u, err)
	}
}

func TestGoogleLogin(t *testing.T) {
	_, c := newSandbox(t)
	res, err := c.LoginWithGoogle(context.Background(), "Ada", "ada@example.com")
	if err != nil || res.User.DisplayName != "Ada" {
		t.Fatalf("LoginWithGoogle: %+v %v", res, err)
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.ListRooms(context.Background(), "token")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
	if Message(err) != DefaultMessage {
		t.Fatalf("Message = %q", Message(err))
	}
	if IsAuthError(err) {
		t.Fatalf("transport failure classified as auth error")
	}
}

func TestMalformedAndMessageless(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/meeting-rooms":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, "<html>")
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c, _ := New(Options{BaseURL: srv.URL})
	if _, err := c.ListRooms(context.Background(), ""); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
	_, err := c.MyBookings(context.Background(), "")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %#v", err)
	}
	if got := Message(err, "Failed to fetch bookings"); got != "Failed to fetch bookings" {
		t.Fatalf("Message = %q", got)
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"success","data":[]}`)
	}))
	defer srv.Close()

	c, _ := New(Options{BaseURL: srv.URL, RateLimit: 0.001, RateBurst: 1})
	if _, err := c.ListRooms(context.Background(), ""); err != nil {
		t.Fatalf("first call: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.ListRooms(ctx, ""); err == nil {
		t.Fatalf("second call should wait on the limiter and fail")
	}
}
