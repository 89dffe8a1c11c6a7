package sqlexec

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"ville", "montant", "date_commande"}
	rows := [][]any{
		{"Paris", int64(10), day},
		{"Lyon", 12.5, day},
		{"Paris", nil, day.AddDate(0, 0, 1)},
		{nil, int32(3), nil},
	}

	stats := Stats(cols, rows)
	require.Len(t, stats, 3)

	ville := stats[0]
	assert.Equal(t, TypeString, ville.Type)
	assert.Equal(t, 1, ville.NullCount)
	assert.Equal(t, 25.0, ville.NullPercentage)
	assert.Equal(t, 2, ville.UniqueCount)
	assert.Equal(t, ValueCount{Value: "Paris", Count: 2, Percentage: 50}, ville.TopValues[0])
	assert.Nil(t, ville.Mean)

	montant := stats[1]
	assert.Equal(t, TypeNumeric, montant.Type)
	require.NotNil(t, montant.Min)
	assert.Equal(t, "3", *montant.Min)
	assert.Equal(t, "12.5", *montant.Max)
	assert.InDelta(t, 8.5, *montant.Mean, 1e-9)

	date := stats[2]
	assert.Equal(t, TypeDate, date.Type)
	assert.Equal(t, 2, date.UniqueCount)
}

func TestStats_TopValuesCappedAndRounded(t *testing.T) {
	var rows [][]any
	for _, v := range []string{"a", "a", "b", "c", "d", "e", "f"} {
		rows = append(rows, []any{v})
	}

	st := Stats([]string{"c"}, rows)[0]
	assert.Len(t, st.TopValues, 5)
	assert.Equal(t, "a", st.TopValues[0].Value)
	assert.Equal(t, 28.6, st.TopValues[0].Percentage)
	assert.Equal(t, 14.3, st.TopValues[1].Percentage)
	assert.Equal(t, 6, st.UniqueCount)
}

func TestStats_Empty(t *testing.T) {
	assert.Empty(t, Stats([]string{"a"}, nil))
}

func TestNormalize(t *testing.T) {
	id := [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	assert.Equal(t, "12345678-9abc-def0-0102-030405060708", Normalize(id))
	assert.Equal(t, "12345678-9abc-def0-0102-030405060708", Normalize(id[:]))
	assert.Equal(t, `\x0102`, Normalize([]byte{1, 2}))

	num := pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}
	got, ok := Normalize(num).(decimal.Decimal)
	require.True(t, ok)
	assert.Equal(t, "123.45", got.String())
	assert.Nil(t, Normalize(pgtype.Numeric{}))

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, ts, Normalize(ts))
}
