package referee

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pfrederiksen/dfbnet-assist/internal/fsx"
)

var (
	// ErrCSVNotFound means the CSV source file does not exist.
	ErrCSVNotFound = errors.New("referee CSV not found")
	// ErrJSONExists means the JSON target exists and overwriting was not requested.
	ErrJSONExists = errors.New("referee JSON already exists")
	// ErrEmptyHeader means the CSV header row names no columns.
	ErrEmptyHeader = errors.New("referee CSV header row is empty")
)

// ParseLine splits one CSV line into fields.
//
// Quoted fields may contain commas. Inside quotes, a doubled quote ("") or a
// backslash-escaped quote (\") yields a literal quote. Malformed quoting never
// fails: an unterminated quote simply runs to the end of the line.
func ParseLine(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			current.WriteByte('"')
			i++
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(fields, current.String())
}

// ParseRecords turns CSV text into records keyed by the header row.
//
// Blank lines are dropped and every line is trimmed. Data rows are matched to
// headers by position; missing trailing fields become "" and extra fields are
// ignored. Text without any non-blank line yields no records and no error.
func ParseRecords(text string) ([]Record, error) {
	lines := nonBlankLines(strings.TrimPrefix(text, "\ufeff"))
	if len(lines) == 0 {
		return []Record{}, nil
	}

	headers := ParseLine(lines[0])
	named := 0
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
		if headers[i] != "" {
			named++
		}
	}
	if named == 0 {
		return nil, ErrEmptyHeader
	}

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := ParseLine(line)
		r := make(Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(values) {
				r[h] = values[i]
			} else {
				r[h] = ""
			}
		}
		records = append(records, r)
	}
	return records, nil
}

func nonBlankLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ConvertCSV reads referee rows from csvPath, groups them by context and writes the
// groups to jsonPath. An existing jsonPath is only replaced when overwrite is true.
func ConvertCSV(csvPath, jsonPath string, overwrite bool) ([]Group, error) {
	data, err := os.ReadFile(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCSVNotFound, csvPath)
		}
		return nil, fmt.Errorf("reading referee CSV: %w", err)
	}
	if !overwrite && fsx.Exists(jsonPath) {
		return nil, fmt.Errorf("%w: %s (use overwrite to replace it)", ErrJSONExists, jsonPath)
	}

	records, err := ParseRecords(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, csvPath)
	}

	groups := GroupRecords(records)
	if err := fsx.WriteJSON(jsonPath, groups); err != nil {
		return nil, fmt.Errorf("writing referee JSON: %w", err)
	}
	return groups, nil
}
