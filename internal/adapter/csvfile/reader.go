package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/covid-regional-etl/internal/domain"
)

// ReadRecords parses an output file back into records. The header must
// match Header exactly.
func ReadRecords(path string) ([]domain.DailyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses CSV produced by Encode.
func Decode(in io.Reader) ([]domain.DailyRecord, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("unexpected header %v, want %v", header, Header)
	}

	var records []domain.DailyRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		r, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, r)
	}
}

func decodeRow(row []string) (domain.DailyRecord, error) {
	date, ok := domain.ParseDate(row[0])
	if !ok {
		return domain.DailyRecord{}, fmt.Errorf("bad date %q", row[0])
	}
	nums := make([]float64, 4)
	for i := range nums {
		v, err := strconv.ParseFloat(row[i+2], 64)
		if err != nil {
			return domain.DailyRecord{}, fmt.Errorf("bad %s %q", Header[i+2], row[i+2])
		}
		nums[i] = v
	}
	return domain.DailyRecord{
		Date:       date,
		Region:     row[1],
		Infected:   nums[0],
		Recovered:  nums[1],
		Population: nums[2],
		Mobility:   nums[3],
	}, nil
}
