// Package export writes research results to spreadsheet and JSON files.
package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/cardintel-cli/internal/model"
)

var xlsxHeaders = []string{
	"Card", "Player", "PSA Grade", "Listings Found", "Average Price",
	"Median Price", "Price Range", "Recommended Listing", "Market Confidence",
}

// WriteResultsXLSX writes research results to an xlsx workbook at path.
func WriteResultsXLSX(results []model.ResearchResult, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Pricing")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeaders {
		header.AddCell().Value = h
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().Value = r.CardName
		row.AddCell().Value = r.Player
		row.AddCell().Value = r.Grade
		row.AddCell().SetInt(r.TotalListings)
		if r.Error != "" {
			row.AddCell().Value = r.Error
			continue
		}
		row.AddCell().Value = fmt.Sprintf("$%.2f", r.AverageSoldPrice)
		row.AddCell().Value = fmt.Sprintf("$%.2f", r.MedianSoldPrice)
		row.AddCell().Value = fmt.Sprintf("$%.2f - $%.2f", r.MinSoldPrice, r.MaxSoldPrice)
		row.AddCell().Value = fmt.Sprintf("$%.2f", r.RecommendedListing)
		row.AddCell().Value = string(r.Confidence)
	}

	return eris.Wrapf(file.Save(path), "export: save %s", path)
}
