package decode

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// decodeCSV reads a delimiter-sniffed CSV. German plant controllers export
// semicolon-separated files, hand-edited spreadsheets arrive comma-separated;
// the header line decides.
func decodeCSV(body io.Reader) ([]map[string]string, error) {
	buffered := bufio.NewReader(body)
	headerLine, err := buffered.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek csv header: %w", err)
	}
	if i := bytes.IndexByte(headerLine, '\n'); i >= 0 {
		headerLine = headerLine[:i]
	}

	reader := csv.NewReader(buffered)
	reader.Comma = sniffDelimiter(string(headerLine))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv records: %w", err)
	}
	return rowsFromRecords(records), nil
}

func sniffDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}
