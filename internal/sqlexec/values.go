package sqlexec

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Normalize converts driver values into JSON and display friendly ones:
// UUIDs become their canonical string and NUMERIC becomes decimal.Decimal.
// Timestamps stay time.Time so Stats can still recognize date columns.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.UUID:
		if !x.Valid {
			return nil
		}
		return uuid.UUID(x.Bytes).String()
	case pgtype.Numeric:
		d, ok := numericToDecimal(x)
		if !ok {
			return nil
		}
		return d
	case []byte:
		if len(x) == 16 {
			return uuid.UUID(x).String()
		}
		return fmt.Sprintf("\\x%x", x)
	default:
		return v
	}
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, bool) {
	if !n.Valid || n.NaN || n.Int == nil || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), true
}

// toDecimal reports whether v is numeric and returns its exact value.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case pgtype.Numeric:
		return numericToDecimal(x)
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint8:
		return decimal.NewFromInt(int64(x)), true
	case uint16:
		return decimal.NewFromInt(int64(x)), true
	case uint32:
		return decimal.NewFromInt(int64(x)), true
	case float32:
		return toDecimal(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(x), true
	default:
		return decimal.Decimal{}, false
	}
}
