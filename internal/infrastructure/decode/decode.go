// Package decode turns raw upload bodies into string-keyed row maps. It only
// deals with container formats; header semantics belong to the normalizer.
package decode

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

type Decoder struct{}

func New() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Decode(filename string, body io.Reader) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return decodeXLSX(body)
	case ".csv", ".txt", "":
		return decodeCSV(body)
	default:
		return nil, fmt.Errorf("unsupported upload format %q", filepath.Ext(filename))
	}
}

func rowsFromRecords(records [][]string) []map[string]string {
	if len(records) == 0 {
		return nil
	}
	headers := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if emptyRecord(record) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row[header] = value
		}
		rows = append(rows, row)
	}
	return rows
}

func emptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
