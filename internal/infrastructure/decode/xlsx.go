package decode

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX reads the first sheet of a workbook, first row as headers.
func decodeXLSX(body io.Reader) ([]map[string]string, error) {
	workbook, err := excelize.OpenReader(body)
	if err != nil {
		return nil, fmt.Errorf("open xlsx workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx workbook has no sheets")
	}

	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rowsFromRecords(records), nil
}
