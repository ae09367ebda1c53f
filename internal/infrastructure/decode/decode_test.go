package decode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDecodeSemicolonCSV(t *testing.T) {
	body := strings.NewReader("Datum;Temperatur Reaktor 1;Temperatur Reaktor 2\n01/03/2024;612,5;640\n01/03/2024;615;638\n")

	rows, err := New().Decode("ilmtal_export.csv", body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["Datum"] != "01/03/2024" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	if rows[0]["Temperatur Reaktor 1"] != "612,5" {
		t.Fatalf("row 0 = %v", rows[0])
	}
}

func TestDecodeCommaCSV(t *testing.T) {
	body := strings.NewReader("date,reactor 1 temp\n2024-03-01,612.5\n")

	rows, err := New().Decode("schwand.csv", body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0]["reactor 1 temp"] != "612.5" {
		t.Fatalf("row 0 = %v", rows[0])
	}
}

func TestDecodeSkipsEmptyRecordsAndShortRows(t *testing.T) {
	body := strings.NewReader("Datum;Temperatur\n;\n01/03/2024;650\n01/03/2024\n")

	rows, err := New().Decode("export.txt", body)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// short record: missing trailing columns read as empty
	if rows[1]["Temperatur"] != "" {
		t.Fatalf("row 1 = %v", rows[1])
	}
}

func TestDecodeRejectsUnsupportedExtension(t *testing.T) {
	if _, err := New().Decode("export.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestDecodeXLSX(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	for i, record := range [][]any{
		{"Datum", "Temperatur Reaktor 1"},
		{"01/03/2024", 612.5},
		{"02/03/2024", 640},
	} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := workbook.SetSheetRow(sheet, cell, &record); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, err := New().Decode("ilmtal_export.xlsx", &buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["Datum"] != "01/03/2024" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	if rows[0]["Temperatur Reaktor 1"] != "612.5" {
		t.Fatalf("row 0 = %v", rows[0])
	}
}
