package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Field names a logical column of the internal schema.
type Field string

const (
	FieldDate       Field = "date"
	FieldRegion     Field = "region"
	FieldConfirmed  Field = "confirmed"
	FieldDeaths     Field = "deaths"
	FieldRecovered  Field = "recovered"
	FieldActive     Field = "active"
	FieldPopulation Field = "population"
)

// ErrMissingColumn is matched by every *MissingColumnError.
var ErrMissingColumn = errors.New("required column not found")

// FieldAliases is the precedence-ordered list of source column names
// accepted for one logical field.
type FieldAliases struct {
	Field      Field
	Candidates []string
	Required   bool
}

// DefaultAliases returns the alias lists covering the known provider vintages.
func DefaultAliases() []FieldAliases {
	return []FieldAliases{
		{Field: FieldDate, Candidates: []string{"date", "Date"}, Required: true},
		{Field: FieldRegion, Candidates: []string{"administrative_area_level_2", "state", "Province_State", "province_state", "region"}, Required: true},
		{Field: FieldConfirmed, Candidates: []string{"confirmed", "Confirmed", "cases", "total_cases"}, Required: true},
		{Field: FieldDeaths, Candidates: []string{"deaths", "Deaths", "total_deaths"}},
		{Field: FieldRecovered, Candidates: []string{"recovered", "Recovered", "total_recovered"}},
		{Field: FieldActive, Candidates: []string{"active", "Active", "active_cases"}},
		{Field: FieldPopulation, Candidates: []string{"population", "Population", "pop"}},
	}
}

// MissingColumnError reports a required field that none of its aliases matched.
type MissingColumnError struct {
	Field      Field
	Candidates []string
	Available  []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("no %s column: tried [%s], available [%s]",
		e.Field, strings.Join(e.Candidates, ", "), strings.Join(e.Available, ", "))
}

// Is makes errors.Is(err, ErrMissingColumn) true.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// ColumnMapping maps logical fields to the source columns resolved for them.
// Unresolved optional fields are absent.
type ColumnMapping map[Field]string

// Has reports whether the field was resolved.
func (m ColumnMapping) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// ResolveColumn returns the first candidate present in columns.
func ResolveColumn(columns, candidates []string) (string, bool) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := present[c]; ok {
			return c, true
		}
	}
	return "", false
}

// ResolveColumns resolves every field in aliases against columns. The first
// unresolvable required field aborts with a *MissingColumnError.
func ResolveColumns(columns []string, aliases []FieldAliases) (ColumnMapping, error) {
	mapping := make(ColumnMapping, len(aliases))
	for _, a := range aliases {
		col, ok := ResolveColumn(columns, a.Candidates)
		if ok {
			mapping[a.Field] = col
			continue
		}
		if a.Required {
			return nil, &MissingColumnError{
				Field:      a.Field,
				Candidates: append([]string(nil), a.Candidates...),
				Available:  append([]string(nil), columns...),
			}
		}
	}
	return mapping, nil
}
