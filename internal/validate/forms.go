package validate

import (
	"strconv"
	"strings"
	"time"

	"roombook/internal/model"
)

const (
	MsgRequiredFields   = "Please fill in all required fields"
	MsgEndBeforeStart   = "End time must be after start time"
	MsgCapacityPositive = "Capacity must be a positive number"
)

type LoginForm struct {
	Email    string `form:"email" validate:"required,simple_email"`
	Password string `form:"password" validate:"required,min=8,max=20,strong_password"`
}

func (f LoginForm) Credentials() (model.Credentials, error) {
	f.Email = strings.TrimSpace(f.Email)
	if err := Struct(f); err != nil {
		return model.Credentials{}, err
	}
	return model.Credentials{Email: f.Email, Password: f.Password}, nil
}

type SignUpForm struct {
	Email           string `form:"email" validate:"required,simple_email"`
	Password        string `form:"password" validate:"required,min=8,max=20,strong_password"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f SignUpForm) Credentials() (model.Credentials, error) {
	f.Email = strings.TrimSpace(f.Email)
	if err := Struct(f); err != nil {
		return model.Credentials{}, err
	}
	return model.Credentials{Email: f.Email, Password: f.Password}, nil
}

type ForgotPasswordForm struct {
	Email string `form:"email" validate:"required,simple_email"`
}

func (f ForgotPasswordForm) Check() error {
	return Struct(f)
}

type ResetPasswordForm struct {
	Token           string `form:"token" validate:"required"`
	Password        string `form:"password" validate:"required,min=8,max=20,strong_password"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f ResetPasswordForm) Check() error {
	return Struct(f)
}

type GoogleForm struct {
	DisplayName string `form:"displayName"`
	Email       string `form:"email" validate:"required,simple_email"`
}

func (f GoogleForm) Check() error {
	return Struct(f)
}

type AccountForm struct {
	CurrentPassword string `form:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword" validate:"required,min=8,max=20,strong_password"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (f AccountForm) Change() (model.PasswordChange, error) {
	if err := Struct(f); err != nil {
		return model.PasswordChange{}, err
	}
	return model.PasswordChange{
		CurrentPassword: f.CurrentPassword,
		NewPassword:     f.NewPassword,
		ConfirmPassword: f.ConfirmPassword,
	}, nil
}

// BookingForm is the booking dialog: one calendar date plus start and end
// wall clock times, interpreted in the caller's location.
type BookingForm struct {
	RoomID      string `form:"roomId"`
	Title       string `form:"title"`
	Description string `form:"description"`
	Date        string `form:"date"`
	StartTime   string `form:"startTime"`
	EndTime     string `form:"endTime"`
}

// Booking validates the form and builds the creation payload.
func (f BookingForm) Booking(loc *time.Location) (model.NewBooking, error) {
	if loc == nil {
		loc = time.Local
	}
	title := strings.TrimSpace(f.Title)
	if f.RoomID == "" || title == "" || f.Date == "" || f.StartTime == "" || f.EndTime == "" {
		return model.NewBooking{}, Single("form", MsgRequiredFields)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", f.Date+" "+f.StartTime, loc)
	if err != nil {
		return model.NewBooking{}, Single("startTime", "Start time must be a valid date and time (YYYY-MM-DD HH:MM)")
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", f.Date+" "+f.EndTime, loc)
	if err != nil {
		return model.NewBooking{}, Single("endTime", "End time must be a valid date and time (YYYY-MM-DD HH:MM)")
	}
	if !start.Before(end) {
		return model.NewBooking{}, Single("endTime", MsgEndBeforeStart)
	}

	return model.NewBooking{
		MeetingRoomID: f.RoomID,
		Title:         title,
		Description:   strings.TrimSpace(f.Description),
		StartTime:     start.UTC(),
		EndTime:       end.UTC(),
	}, nil
}

// RoomForm is the add/edit room dialog. Capacity is kept as typed text.
type RoomForm struct {
	Name        string `form:"name"`
	Capacity    string `form:"capacity"`
	Location    string `form:"location"`
	Description string `form:"description"`
}

func (f RoomForm) Room() (model.RoomInput, error) {
	name := strings.TrimSpace(f.Name)
	capText := strings.TrimSpace(f.Capacity)
	if name == "" || capText == "" {
		return model.RoomInput{}, Single("form", MsgRequiredFields)
	}
	capacity, err := strconv.Atoi(capText)
	if err != nil || capacity <= 0 {
		return model.RoomInput{}, Single("capacity", MsgCapacityPositive)
	}
	return model.RoomInput{
		Name:        name,
		Capacity:    capacity,
		Location:    strings.TrimSpace(f.Location),
		Description: strings.TrimSpace(f.Description),
	}, nil
}
