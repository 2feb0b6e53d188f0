package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord(region string, d time.Time) DailyRecord {
	return DailyRecord{Date: d, Region: region, Infected: 1, Population: 1, Mobility: NeutralMobility}
}

func TestValidateRecords_Clean(t *testing.T) {
	records := []DailyRecord{
		validRecord(testCalifornia, day(2020, time.March, 5)),
		validRecord(testCalifornia, day(2020, time.March, 5)), // duplicates tolerated
		validRecord(testCalifornia, day(2020, time.March, 6)),
		validRecord(testTexas, day(2020, time.March, 1)),
	}
	assert.Empty(t, ValidateRecords(records, DefaultOptions()))
}

func TestValidateRecords_Violations(t *testing.T) {
	bad := validRecord("US", day(2019, time.December, 31))
	bad.Infected = -1
	bad.Population = 0
	bad.Mobility = 0.5

	records := []DailyRecord{
		validRecord(testTexas, day(2020, time.March, 5)),
		bad,
		validRecord(" Ohio", day(2020, time.March, 5)),
	}

	violations := ValidateRecords(records, DefaultOptions())

	reasons := make([]string, 0, len(violations))
	for _, v := range violations {
		reasons = append(reasons, v.Reason)
	}
	require.Len(t, violations, 7)
	assert.Contains(t, reasons, `aggregate region "US"`)
	assert.Contains(t, reasons, "date outside 2020-03-01..2021-12-31")
	assert.Contains(t, reasons, "negative infected -1")
	assert.Contains(t, reasons, "non-positive population 0")
	assert.Contains(t, reasons, "mobility 0.5, want 1")
	assert.Contains(t, reasons, "out of order after US 2019-12-31")
	assert.Contains(t, reasons, `region " Ohio" is blank or untrimmed`)
	assert.Equal(t, 1, violations[0].Index)
	assert.Contains(t, violations[0].String(), "row 1 (US 2019-12-31)")
}
