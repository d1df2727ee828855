package fetcher

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
)

// resultHeader is the fixed column order of the results export.
var resultHeader = []string{"Business Name", "Location", "Facebook URL", "Type", "Confidence", "Notes"}

// WriteResultsCSV writes match results in the export format, one row
// per input business in original order.
func WriteResultsCSV(w io.Writer, results []model.MatchResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(resultHeader); err != nil {
		return eris.Wrap(err, "fetcher: write CSV header")
	}
	for _, r := range results {
		row := []string{
			r.BusinessName,
			r.Location,
			r.FacebookURL,
			string(r.Type),
			fmt.Sprintf("%.2f", r.Confidence),
			r.Notes,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "fetcher: write CSV row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "fetcher: flush CSV")
}
