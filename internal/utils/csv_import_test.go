package utils

import (
	"strings"
	"testing"
)

func TestAnalyzeCSVDetectsDelimiter(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantDelimiter rune
		wantHeader    bool
	}{
		{
			name:          "comma with header",
			content:       "name,email,phone\nDana,dana@example.test,+15550100\n",
			wantDelimiter: ',',
			wantHeader:    true,
		},
		{
			name:          "semicolon with header",
			content:       "name;email;phone\nDana;dana@example.test;+15550100\n",
			wantDelimiter: ';',
			wantHeader:    true,
		},
		{
			name:          "comma without header",
			content:       "Dana,dana@example.test,+15550100\nLee,lee@example.test,+15550101\n",
			wantDelimiter: ',',
			wantHeader:    false,
		},
	}

	for _, test := range tests {
		analysis, err := AnalyzeCSV(strings.NewReader(test.content))
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if analysis.Delimiter != test.wantDelimiter {
			t.Errorf("%s: delimiter = %q, want %q", test.name, analysis.Delimiter, test.wantDelimiter)
		}
		if analysis.HasHeader != test.wantHeader {
			t.Errorf("%s: has_header = %v, want %v", test.name, analysis.HasHeader, test.wantHeader)
		}
	}
}

func TestAnalyzeCSVEmptyFile(t *testing.T) {
	if _, err := AnalyzeCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestParseContactCSVWithHeader(t *testing.T) {
	content := "email,name,notes,phone\n" +
		"dana@example.test,Dana Reyes,Regular,+15550100\n" +
		"lee@example.test,Lee Park,,\n"

	rows, analysis, err := ParseContactCSV([]byte(content))
	if err != nil {
		t.Fatal(err)
	}
	if !analysis.HasHeader {
		t.Error("header not detected")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Columns are resolved by header name, not position
	if rows[0].Name != "Dana Reyes" || rows[0].Email != "dana@example.test" || rows[0].Phone != "+15550100" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[0].Notes != "Regular" {
		t.Errorf("notes = %q", rows[0].Notes)
	}
	if rows[1].Name != "Lee Park" {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
}

func TestParseContactCSVSkipsUnreachableRows(t *testing.T) {
	content := "name,email,phone\n" +
		"Dana Reyes,dana@example.test,\n" +
		"No Channels,,\n" +
		",orphan@example.test,\n"

	rows, _, err := ParseContactCSV([]byte(content))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 importable row, got %d", len(rows))
	}
	if rows[0].Name != "Dana Reyes" {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestParseContactCSVPositionalWithoutHeader(t *testing.T) {
	content := "Dana Reyes,dana@example.test,+15550100,VIP\n" +
		"Lee Park,lee@example.test,,\n"

	rows, analysis, err := ParseContactCSV([]byte(content))
	if err != nil {
		t.Fatal(err)
	}
	if analysis.HasHeader {
		t.Error("data row misdetected as header")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Notes != "VIP" {
		t.Errorf("positional notes = %q, want VIP", rows[0].Notes)
	}
}
