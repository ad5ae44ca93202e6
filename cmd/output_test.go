package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"roombook/internal/api"
	"roombook/internal/config"
	"roombook/internal/model"
	"roombook/internal/session"
	"roombook/internal/validate"
)

func renderWith(t *testing.T, format string, v any) string {
	t.Helper()
	cfg = &config.Config{Output: format}
	t.Cleanup(func() { cfg = nil })

	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	err := render(c, v, func(w io.Writer) {
		fmt.Fprintln(w, "NAME\tCAPACITY")
		fmt.Fprintln(w, "Aurora\t8")
	})
	if err != nil {
		t.Fatalf("render %s: %v", format, err)
	}
	return buf.String()
}

func TestRenderFormats(t *testing.T) {
	room := model.Room{ID: "r1", Name: "Aurora", Capacity: 8}

	if out := renderWith(t, "json", room); !strings.Contains(out, `"name": "Aurora"`) {
		t.Fatalf("json output: %s", out)
	}
	if out := renderWith(t, "yaml", room); !strings.Contains(out, "name: Aurora") {
		t.Fatalf("yaml output: %s", out)
	}
	if out := renderWith(t, "table", room); !strings.Contains(out, "Aurora   8") {
		t.Fatalf("table output: %q", out)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	cfg = &config.Config{Output: "xml"}
	defer func() { cfg = nil }()

	if err := render(&cobra.Command{}, nil, func(io.Writer) {}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestReadSecretPromptsOncePerLine(t *testing.T) {
	stdin = nil
	defer func() { stdin = nil }()

	c := &cobra.Command{}
	c.SetIn(strings.NewReader("first\nsecond\n"))
	c.SetErr(io.Discard)

	a, err := readSecret(c, "", "Password")
	if err != nil {
		t.Fatalf("readSecret: %v", err)
	}
	b, err := readSecret(c, "", "Confirm")
	if err != nil {
		t.Fatalf("readSecret: %v", err)
	}
	if a != "first" || b != "second" {
		t.Fatalf("read %q and %q", a, b)
	}
	if got, _ := readSecret(c, "given", "Password"); got != "given" {
		t.Fatalf("flag value ignored: %q", got)
	}
}

func TestErrorText(t *testing.T) {
	serverErr := &api.RequestError{StatusCode: http.StatusConflict, Message: "Meeting room is already booked for this time", Err: api.ErrConflict}
	expired := fmt.Errorf("%w: %w", session.ErrSessionExpired, &api.RequestError{StatusCode: http.StatusUnauthorized, Message: "Session expired, please log in again"})

	tests := []struct {
		err  error
		want string
	}{
		{serverErr, "Meeting room is already booked for this time"},
		{&api.RequestError{StatusCode: http.StatusBadGateway}, api.DefaultMessage},
		{expired, session.ErrSessionExpired.Error()},
		{validate.Single("endTime", validate.MsgEndBeforeStart), validate.MsgEndBeforeStart},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := errorText(tt.err); got != tt.want {
			t.Errorf("errorText(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
