// Package importer reads room lists exported from spreadsheets. Files may be
// UTF-8 or UTF-16 with a byte order mark, separated by tabs, commas or
// semicolons.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"roombook/internal/validate"
)

var ErrMissingColumns = errors.New("room list is missing required columns")

// ListDefinition names the columns of a room list in one language.
type ListDefinition struct {
	NameField        string
	CapacityField    string
	LocationField    string
	DescriptionField string

	Language string // Language code, e.g. "en", "fi"
}

// Known column names. Name and capacity are required, the rest optional.
var ListDefinitions = []ListDefinition{
	{
		NameField:        "NAME",
		CapacityField:    "CAPACITY",
		LocationField:    "LOCATION",
		DescriptionField: "DESCRIPTION",
		Language:         "en",
	},
	{
		NameField:        "NIMI",
		CapacityField:    "KAPASITEETTI",
		LocationField:    "SIJAINTI",
		DescriptionField: "KUVAUS",
		Language:         "fi",
	},
}

// Row is one data line of the list, still unvalidated.
type Row struct {
	Line int
	Form validate.RoomForm
}

type columns struct {
	name, capacity, location, description int
}

// Parse decodes a room list. Blank lines are skipped.
func Parse(r io.Reader) ([]Row, error) {
	// BOMOverride switches to UTF-16 when a BOM says so and strips a UTF-8 BOM.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	buffered := bufio.NewReader(decoded)

	headerLine, err := buffered.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if strings.TrimSpace(headerLine) == "" {
		return nil, fmt.Errorf("failed to read header: empty file")
	}

	reader := csv.NewReader(io.MultiReader(strings.NewReader(headerLine), buffered))
	reader.Comma = detectComma(headerLine)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := findColumns(headers)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading room list: %w", err)
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, Row{
			Line: line,
			Form: validate.RoomForm{
				Name:        field(record, cols.name),
				Capacity:    field(record, cols.capacity),
				Location:    field(record, cols.location),
				Description: field(record, cols.description),
			},
		})
	}
	return rows, nil
}

// detectComma picks the separator occurring most often in the header line.
func detectComma(header string) rune {
	best, count := '\t', strings.Count(header, "\t")
	for _, sep := range []rune{',', ';'} {
		if n := strings.Count(header, string(sep)); n > count {
			best, count = sep, n
		}
	}
	return best
}

func findColumns(headers []string) (columns, error) {
	for _, def := range ListDefinitions {
		cols := columns{-1, -1, -1, -1}
		for i, h := range headers {
			switch strings.ToUpper(strings.TrimSpace(h)) {
			case def.NameField:
				cols.name = i
			case def.CapacityField:
				cols.capacity = i
			case def.LocationField:
				cols.location = i
			case def.DescriptionField:
				cols.description = i
			}
		}
		if cols.name != -1 && cols.capacity != -1 {
			return cols, nil
		}
	}
	return columns{}, ErrMissingColumns
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
