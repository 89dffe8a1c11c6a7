package sqlexec

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Column types reported by Stats.
const (
	TypeNumeric = "numeric"
	TypeDate    = "date"
	TypeString  = "string"
)

const topValues = 5

var hundred = decimal.NewFromInt(100)

// ValueCount is one entry of a column's value distribution.
type ValueCount struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ColumnStats profiles one result column.
type ColumnStats struct {
	Column         string       `json:"column"`
	Type           string       `json:"type"`
	NullCount      int          `json:"null_count"`
	NullPercentage float64      `json:"null_percentage"`
	UniqueCount    int          `json:"unique_count"`
	TopValues      []ValueCount `json:"top_values"`
	Min            *string      `json:"min"`
	Max            *string      `json:"max"`
	Mean           *float64     `json:"mean"`
}

// Stats profiles every column of a result: inferred type, nulls, distinct
// values, the five most frequent values and, for numeric columns, min, max
// and mean. Arithmetic is exact decimal; percentages are rounded to 0.1.
func Stats(columns []string, rows [][]any) []ColumnStats {
	if len(rows) == 0 {
		return []ColumnStats{}
	}
	total := len(rows)
	out := make([]ColumnStats, 0, len(columns))

	for ci, name := range columns {
		st := ColumnStats{Column: name, TopValues: []ValueCount{}}

		var values []any
		for _, row := range rows {
			if ci >= len(row) || row[ci] == nil {
				st.NullCount++
				continue
			}
			values = append(values, row[ci])
		}
		st.NullPercentage = percent(st.NullCount, total)
		st.Type = inferType(values)

		counts, order := countValues(values)
		st.UniqueCount = len(order)
		sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
		for _, v := range order {
			if len(st.TopValues) == topValues {
				break
			}
			st.TopValues = append(st.TopValues, ValueCount{Value: v, Count: counts[v], Percentage: percent(counts[v], total)})
		}

		if st.Type == TypeNumeric {
			numericSummary(&st, values)
		}
		out = append(out, st)
	}
	return out
}

func inferType(values []any) string {
	if len(values) == 0 {
		return TypeString
	}
	numeric, dates := true, true
	for _, v := range values {
		if _, ok := toDecimal(v); !ok {
			numeric = false
		}
		if _, ok := v.(time.Time); !ok {
			dates = false
		}
	}
	switch {
	case numeric:
		return TypeNumeric
	case dates:
		return TypeDate
	default:
		return TypeString
	}
}

// countValues counts values by display form, keeping first-seen order.
func countValues(values []any) (map[string]int, []string) {
	counts := map[string]int{}
	var order []string
	for _, v := range values {
		key := display(v)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	return counts, order
}

func display(v any) string {
	if d, ok := toDecimal(v); ok {
		return d.String()
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func numericSummary(st *ColumnStats, values []any) {
	var sum, lo, hi decimal.Decimal
	for i, v := range values {
		d, _ := toDecimal(v)
		sum = sum.Add(d)
		if i == 0 || d.LessThan(lo) {
			lo = d
		}
		if i == 0 || d.GreaterThan(hi) {
			hi = d
		}
	}
	minS, maxS := lo.String(), hi.String()
	mean := sum.Div(decimal.NewFromInt(int64(len(values)))).InexactFloat64()
	st.Min, st.Max, st.Mean = &minS, &maxS, &mean
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(n)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(1).InexactFloat64()
}
