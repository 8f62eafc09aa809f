package leave

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DAYS - Balance quantity
// =============================================================================

// Days is a quantity of leave days. Backed by decimal.Decimal so ledger
// arithmetic stays exact; every lifecycle operation deals in whole days.
type Days struct {
	Value decimal.Decimal
}

func DaysOf(n int) Days {
	return Days{Value: decimal.NewFromInt(int64(n))}
}

// ParseDays parses a stored day quantity (e.g. from the database).
func ParseDays(s string) (Days, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Days{}, err
	}
	return Days{Value: v}, nil
}

func (d Days) Add(o Days) Days           { return Days{Value: d.Value.Add(o.Value)} }
func (d Days) Sub(o Days) Days           { return Days{Value: d.Value.Sub(o.Value)} }
func (d Days) GreaterThan(o Days) bool   { return d.Value.GreaterThan(o.Value) }
func (d Days) LessThan(o Days) bool      { return d.Value.LessThan(o.Value) }
func (d Days) Equal(o Days) bool         { return d.Value.Equal(o.Value) }
func (d Days) IsNegative() bool          { return d.Value.IsNegative() }
func (d Days) IsZero() bool              { return d.Value.IsZero() }
func (d Days) Int() int                  { return int(d.Value.IntPart()) }
func (d Days) String() string            { return d.Value.String() }
