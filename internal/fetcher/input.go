package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

// ParseCSV reads business rows from a CSV upload. The file must carry
// a header naming a business-name column and a location column; rows
// with an empty business name are skipped.
func ParseCSV(r io.Reader) ([]model.BusinessQuery, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read CSV")
	}
	if len(records) == 0 {
		return nil, eris.New("fetcher: input file is empty")
	}

	return rowsToQueries(records[0], records[1:])
}

// ParseXLSX reads business rows from the first sheet of an XLSX upload.
func ParseXLSX(data []byte) ([]model.BusinessQuery, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open XLSX")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("fetcher: XLSX file has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("fetcher: input file is empty")
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		rows = append(rows, cells)
	}

	return rowsToQueries(rows[0], rows[1:])
}

// nameColumns and locationColumns are the accepted header spellings
// after normalization.
var (
	nameColumns     = map[string]bool{"business_name": true, "name": true, "business": true}
	locationColumns = map[string]bool{"location": true, "city": true, "address": true}
)

func rowsToQueries(header []string, rows [][]string) ([]model.BusinessQuery, error) {
	nameIdx, locIdx := -1, -1
	for i, col := range header {
		switch norm := normalizeHeader(col); {
		case nameColumns[norm] && nameIdx < 0:
			nameIdx = i
		case locationColumns[norm] && locIdx < 0:
			locIdx = i
		}
	}
	if nameIdx < 0 || locIdx < 0 {
		return nil, eris.Errorf("fetcher: file must contain columns business_name and location, found: %s", strings.Join(header, ", "))
	}

	queries := make([]model.BusinessQuery, 0, len(rows))
	for _, row := range rows {
		q := model.BusinessQuery{
			Name:     cellAt(row, nameIdx),
			Location: cellAt(row, locIdx),
		}
		if q.Name == "" {
			continue
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// normalizeHeader folds "Business Name" and "business_name" to the
// same key.
func normalizeHeader(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(col, " ", "_")
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
