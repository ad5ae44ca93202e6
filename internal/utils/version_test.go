package utils

import (
	"strings"
	"testing"
)

func TestBuildVersionWins(t *testing.T) {
	prev := BuildVersion
	BuildVersion = "1.2.3"
	t.Cleanup(func() { BuildVersion = prev })

	if got := GetVersion(); got != "1.2.3" {
		t.Fatalf("GetVersion() = %q", got)
	}
	if got := UserAgent(); got != "roombook/1.2.3" {
		t.Fatalf("UserAgent() = %q", got)
	}
}

func TestVersionNeverEmpty(t *testing.T) {
	if got := GetVersion(); strings.TrimSpace(got) == "" {
		t.Fatalf("GetVersion() is empty")
	}
}
