package utils

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ContactImportRow is one parsed row of a contact CSV upload
type ContactImportRow struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// CSVAnalysis describes the detected shape of an uploaded CSV
type CSVAnalysis struct {
	Delimiter           rune    `json:"delimiter"` // ',' or ';'
	HasHeader           bool    `json:"has_header"`
	Columns             int     `json:"columns"`
	DelimiterConfidence float64 `json:"delimiter_confidence"` // 0.0 to 1.0
}

// AnalyzeCSV inspects the first lines of a CSV to detect delimiter and header
func AnalyzeCSV(reader io.Reader) (*CSVAnalysis, error) {
	scanner := bufio.NewScanner(reader)
	var lines []string
	maxLines := 10

	for i := 0; i < maxLines && scanner.Scan(); i++ {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	delimiter, confidence := detectDelimiter(lines)

	return &CSVAnalysis{
		Delimiter:           delimiter,
		HasHeader:           hasHeader(lines, delimiter),
		Columns:             len(strings.Split(lines[0], string(delimiter))),
		DelimiterConfidence: confidence,
	}, nil
}

func detectDelimiter(lines []string) (rune, float64) {
	if len(lines) == 0 {
		return ',', 0.0
	}

	delimiters := []rune{',', ';'}
	scores := make(map[rune]float64)
	for _, delimiter := range delimiters {
		scores[delimiter] = delimiterConsistency(lines, delimiter)
	}

	bestDelimiter := ','
	bestScore := scores[',']
	if scores[';'] > bestScore {
		bestDelimiter = ';'
		bestScore = scores[';']
	}
	return bestDelimiter, bestScore
}

func delimiterConsistency(lines []string, delimiter rune) float64 {
	if len(lines) < 2 {
		return 0.0
	}

	delimiterStr := string(delimiter)
	firstLineColumns := len(strings.Split(lines[0], delimiterStr))
	if firstLineColumns < 2 {
		return 0.0
	}

	consistentLines := 0
	for _, line := range lines {
		columns := len(strings.Split(line, delimiterStr))
		// Tolerate one column of variation for empty trailing fields
		if columns >= firstLineColumns-1 && columns <= firstLineColumns+1 {
			consistentLines++
		}
	}

	consistency := float64(consistentLines) / float64(len(lines))

	columnBonus := float64(firstLineColumns) * 0.1
	if columnBonus > 0.3 {
		columnBonus = 0.3
	}
	return consistency + columnBonus
}

var contactHeaderWords = []string{"name", "email", "phone", "mobile", "notes", "contact"}

func hasHeader(lines []string, delimiter rune) bool {
	if len(lines) < 2 {
		return false
	}

	firstLine := strings.Split(lines[0], string(delimiter))
	headerCount := 0
	for _, field := range firstLine {
		field = strings.ToLower(strings.TrimSpace(field))
		field = strings.Trim(field, `"'`)
		for _, word := range contactHeaderWords {
			if strings.Contains(field, word) {
				headerCount++
				break
			}
		}
	}
	return float64(headerCount)/float64(len(firstLine)) > 0.3
}

// headerIndex maps known header names to their column position
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, field := range header {
		field = strings.ToLower(strings.TrimSpace(field))
		field = strings.Trim(field, `"'`)
		switch field {
		case "name", "full name", "contact":
			index["name"] = i
		case "email", "e-mail", "email address":
			index["email"] = i
		case "phone", "mobile", "phone number":
			index["phone"] = i
		case "notes", "note", "comments":
			index["notes"] = i
		}
	}
	return index
}

// ParseContactCSV parses a contact upload with delimiter autodetection.
// Without a header row, columns are taken positionally as name, email,
// phone, notes. Rows missing a name or any reachable channel are skipped.
func ParseContactCSV(content []byte) ([]ContactImportRow, *CSVAnalysis, error) {
	analysis, err := AnalyzeCSV(strings.NewReader(string(content)))
	if err != nil {
		return nil, nil, err
	}

	csvReader := csv.NewReader(strings.NewReader(string(content)))
	csvReader.Comma = analysis.Delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, analysis, nil
	}

	index := map[string]int{"name": 0, "email": 1, "phone": 2, "notes": 3}
	start := 0
	if analysis.HasHeader {
		index = headerIndex(records[0])
		start = 1
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []ContactImportRow
	for _, record := range records[start:] {
		row := ContactImportRow{
			Name:  field(record, "name"),
			Email: field(record, "email"),
			Phone: field(record, "phone"),
			Notes: field(record, "notes"),
		}
		if row.Name == "" || (row.Email == "" && row.Phone == "") {
			continue
		}
		rows = append(rows, row)
	}
	return rows, analysis, nil
}
