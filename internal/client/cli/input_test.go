package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGetSimpleText_TrimsNewline(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("ana@x.com\n"))
	var out bytes.Buffer

	got, err := GetSimpleText(reader, "Enter email", &out)
	if err != nil {
		t.Fatalf("GetSimpleText error: %v", err)
	}
	if got != "ana@x.com" {
		t.Fatalf("unexpected input: %q", got)
	}
	if !strings.Contains(out.String(), "Enter email") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}

func TestGetSimpleText_PartialLineOnEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("no-newline"))
	var out bytes.Buffer

	got, err := GetSimpleText(reader, "Prompt", &out)
	if err != nil {
		t.Fatalf("GetSimpleText error: %v", err)
	}
	if got != "no-newline" {
		t.Fatalf("unexpected input: %q", got)
	}
}

func TestGetSimpleText_EOFWithoutInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))
	var out bytes.Buffer

	if _, err := GetSimpleText(reader, "Prompt", &out); err == nil {
		t.Fatalf("expected error on immediate EOF")
	}
}

func TestGetPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()

	readPassword = func() ([]byte, error) { return []byte("hunter2!X"), nil }

	var out bytes.Buffer
	got, err := GetPassword(&out)
	if err != nil {
		t.Fatalf("GetPassword error: %v", err)
	}
	if got != "hunter2!X" {
		t.Fatalf("unexpected password: %q", got)
	}
	if !strings.Contains(out.String(), "Enter password:") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}

func TestGetPassword_PropagatesError(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()

	boom := errors.New("no tty")
	readPassword = func() ([]byte, error) { return nil, boom }

	var out bytes.Buffer
	if _, err := GetPassword(&out); !errors.Is(err, boom) {
		t.Fatalf("expected seam error, got %v", err)
	}
}
