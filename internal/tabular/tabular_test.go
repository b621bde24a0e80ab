package tabular

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	dump := "Date\tValue\t[01-0101]\n11-Dec-2015\t100\t100\n12-Dec-2015\t\t50\n"
	rows, err := Parse(dump)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0].Get("date"); got != "11-Dec-2015" {
		t.Fatalf("date = %q", got)
	}
	if got := rows[0].Get("Date"); got != "11-Dec-2015" {
		t.Fatalf("headers should match case-insensitively, got %q", got)
	}
	if got := rows[1].Get("value"); got != "" {
		t.Fatalf("blank cell = %q, want empty", got)
	}
	if got := rows[0].Get("[01-0101]"); got != "100" {
		t.Fatalf("posting cell = %q", got)
	}
	want := []string{"date", "value", "[01-0101]"}
	for i, header := range rows[0].Headers {
		if header != want[i] {
			t.Fatalf("Headers[%d] = %q, want %q", i, header, want[i])
		}
	}
}

func TestParseEmptyDump(t *testing.T) {
	var parseErr *ParseError
	_, err := Parse("")
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseHeaderOnly(t *testing.T) {
	var parseErr *ParseError
	_, err := Parse("Date\tValue\n")
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseRaggedRow(t *testing.T) {
	dump := "Date\tValue\n11-Dec-2015\t100\n12-Dec-2015\n"
	var parseErr *ParseError
	_, err := Parse(dump)
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Row != 2 {
		t.Fatalf("ParseError.Row = %d, want 2", parseErr.Row)
	}
}

func TestParseUnknownHeader(t *testing.T) {
	rows, err := Parse("Date\n11-Dec-2015\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := rows[0].Get("missing"); got != "" {
		t.Fatalf("unknown header = %q, want empty", got)
	}
}
