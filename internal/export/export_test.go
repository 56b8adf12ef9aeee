package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/leap-analytics/gymscope/internal/model"
)

func sample() []model.BlockGroup {
	return []model.BlockGroup{
		{
			CensusBlockGroup:          "060750101001",
			OpportunityTier:           "High",
			TotalPopulation:           1523,
			GymsWithinHalfMile:        0,
			GymsWithin1Mile:           2,
			DistanceToNearestGymMiles: 0.83,
			AccessibilityRating:       "Poor",
			MedianHouseholdIncome:     104500,
			OpportunityScore:          91.25,
		},
		{
			CensusBlockGroup:          "060750102002",
			OpportunityTier:           "Low",
			TotalPopulation:           640,
			GymsWithinHalfMile:        4,
			GymsWithin1Mile:           9,
			DistanceToNearestGymMiles: 0.12,
			AccessibilityRating:       "Excellent",
			MedianHouseholdIncome:     78000,
			OpportunityScore:          22.5,
		},
	}
}

func TestCSV_HeaderOrder(t *testing.T) {
	data, err := CSV(sample())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		`Census Block,Opportunity,Population,Gyms (0.5mi),Gyms (1mi),Distance (mi),Accessibility,Med Income,Opportunity Score`,
		strings.TrimRight(lines[0], "\r"))
}

func TestCSV_RoundTrip(t *testing.T) {
	records := sample()

	data, err := CSV(records)
	require.NoError(t, err)

	parsed, err := ParseCSV(data)
	require.NoError(t, err)
	assert.Equal(t, Rows(records), parsed)
}

func TestCSV_EmptyStillHasHeader(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Census Block")
}

func TestRows_PreservesOrder(t *testing.T) {
	rows := Rows(sample())
	require.Len(t, rows, 2)
	assert.Equal(t, "060750101001", rows[0].CensusBlock)
	assert.Equal(t, "060750102002", rows[1].CensusBlock)
	assert.Equal(t, 0.83, rows[0].DistanceMiles)
	assert.Equal(t, 91.25, rows[0].OpportunityScore)
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, sample()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Opportunities", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Census Block", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "Opportunity Score", sheet.Rows[0].Cells[8].Value)
	assert.Equal(t, "060750101001", sheet.Rows[1].Cells[0].Value)

	pop, err := sheet.Rows[1].Cells[2].Int()
	require.NoError(t, err)
	assert.Equal(t, 1523, pop)

	score, err := sheet.Rows[2].Cells[8].Float()
	require.NoError(t, err)
	assert.InDelta(t, 22.5, score, 1e-9)
}
