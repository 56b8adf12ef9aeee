// Package export serializes the filtered table projection for download. The
// column order and header labels are fixed; consumers parse the CSV back with
// standard tooling, so values are written in full precision.
package export

import (
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leap-analytics/gymscope/internal/model"
)

// Row is the fixed export projection of a block group record. The csv tags
// are the exact download header labels.
type Row struct {
	CensusBlock      string  `csv:"Census Block"`
	Opportunity      string  `csv:"Opportunity"`
	Population       int     `csv:"Population"`
	GymsHalfMile     int     `csv:"Gyms (0.5mi)"`
	GymsOneMile      int     `csv:"Gyms (1mi)"`
	DistanceMiles    float64 `csv:"Distance (mi)"`
	Accessibility    string  `csv:"Accessibility"`
	MedianIncome     float64 `csv:"Med Income"`
	OpportunityScore float64 `csv:"Opportunity Score"`
}

// headers mirrors the Row csv tags, in column order, for the XLSX sheet.
var headers = []string{
	"Census Block", "Opportunity", "Population",
	"Gyms (0.5mi)", "Gyms (1mi)", "Distance (mi)",
	"Accessibility", "Med Income", "Opportunity Score",
}

// Rows projects block group records onto the export columns, preserving
// input order.
func Rows(records []model.BlockGroup) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			CensusBlock:      r.CensusBlockGroup,
			Opportunity:      r.OpportunityTier,
			Population:       r.TotalPopulation,
			GymsHalfMile:     r.GymsWithinHalfMile,
			GymsOneMile:      r.GymsWithin1Mile,
			DistanceMiles:    r.DistanceToNearestGymMiles,
			Accessibility:    r.AccessibilityRating,
			MedianIncome:     r.MedianHouseholdIncome,
			OpportunityScore: r.OpportunityScore,
		}
	}
	return rows
}

// CSV returns the export as CSV bytes with a header row.
func CSV(records []model.BlockGroup) ([]byte, error) {
	data, err := csvutil.Marshal(Rows(records))
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal csv")
	}
	return data, nil
}

// ParseCSV reads CSV bytes produced by CSV back into rows.
func ParseCSV(data []byte) ([]Row, error) {
	var rows []Row
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "export: unmarshal csv")
	}
	return rows, nil
}

// XLSX writes the export as a single-sheet workbook.
func XLSX(w io.Writer, records []model.BlockGroup) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Opportunities")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range headers {
		header.AddCell().Value = h
	}

	for _, r := range Rows(records) {
		row := sheet.AddRow()
		row.AddCell().Value = r.CensusBlock
		row.AddCell().Value = r.Opportunity
		row.AddCell().SetInt(r.Population)
		row.AddCell().SetInt(r.GymsHalfMile)
		row.AddCell().SetInt(r.GymsOneMile)
		row.AddCell().SetFloat(r.DistanceMiles)
		row.AddCell().Value = r.Accessibility
		row.AddCell().SetFloat(r.MedianIncome)
		row.AddCell().SetFloat(r.OpportunityScore)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
