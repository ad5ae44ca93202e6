package importer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"unicode/utf16"
)

func utf16LE(s string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFE})
	for _, u := range utf16.Encode([]rune(s)) {
		binary.Write(&buf, binary.LittleEndian, u)
	}
	return buf.Bytes()
}

func TestParseCommaSeparated(t *testing.T) {
	input := "Name,Capacity,Location,Description\nAurora,8,2F,\"Screen, whiteboard\"\n\nBorealis,4,,\n"
	rows, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Form.Name != "Aurora" || rows[0].Form.Capacity != "8" || rows[0].Form.Description != "Screen, whiteboard" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].Line != 2 || rows[1].Line != 4 {
		t.Errorf("lines = %d, %d", rows[0].Line, rows[1].Line)
	}
}

func TestParseUTF16TabSeparatedFinnish(t *testing.T) {
	input := utf16LE("NIMI\tKAPASITEETTI\tSIJAINTI\r\nNeuvotteluhuone Äijä\t12\tKerros 3\r\n")
	rows, err := Parse(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	got := rows[0].Form
	if got.Name != "Neuvotteluhuone Äijä" || got.Capacity != "12" || got.Location != "Kerros 3" {
		t.Fatalf("row = %+v", got)
	}
}

func TestParseUTF8BOMSemicolon(t *testing.T) {
	input := "\xEF\xBB\xBFname;capacity\nAurora;6\n"
	rows, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Form.Name != "Aurora" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestParseMissingColumns(t *testing.T) {
	_, err := Parse(strings.NewReader("title,seats\nAurora,6\n"))
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("err = %v, want ErrMissingColumns", err)
	}
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatalf("empty input accepted")
	}
}
