package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// PercentChangeKind tags how a category's percent change was derived.
type PercentChangeKind string

const (
	// PercentFinite is an ordinary relative change, including 0 when both totals are 0.
	PercentFinite PercentChangeKind = "finite"
	// PercentNewCategory means the category is absent (zero) in the first statement
	// and present in the second. The numeric value is +Inf.
	PercentNewCategory PercentChangeKind = "new"
	// PercentDiscontinued means the category dropped to zero. The value is exactly -100.
	PercentDiscontinued PercentChangeKind = "discontinued"
)

var hundred = decimal.NewFromInt(100)

// PercentChange is the relative change of a category total between two statements.
type PercentChange struct {
	Kind  PercentChangeKind
	Value decimal.Decimal
}

// NewPercentChange applies the edge-case policy for a pair of category totals:
// total1 > 0 and total2 == 0 is discontinued (-100), total1 == 0 and total2 > 0
// is a new category, both zero is 0, otherwise difference/total1*100 rounded to
// cents.
func NewPercentChange(total1, total2, difference decimal.Decimal) PercentChange {
	switch {
	case total1.IsPositive() && total2.IsZero():
		return PercentChange{Kind: PercentDiscontinued, Value: hundred.Neg()}
	case total1.IsPositive():
		return PercentChange{Kind: PercentFinite, Value: Round2(difference.Div(total1).Mul(hundred))}
	case total2.IsPositive():
		return PercentChange{Kind: PercentNewCategory}
	default:
		return PercentChange{Kind: PercentFinite, Value: decimal.Zero}
	}
}

// FinitePercent builds a finite PercentChange.
func FinitePercent(v decimal.Decimal) PercentChange {
	return PercentChange{Kind: PercentFinite, Value: v}
}

// IsFinite reports whether the change has a numeric value. Discontinued
// categories are finite (-100).
func (p PercentChange) IsFinite() bool {
	return p.Kind != PercentNewCategory
}

// Float64 returns the numeric value, +Inf for a new category.
func (p PercentChange) Float64() float64 {
	if p.Kind == PercentNewCategory {
		return math.Inf(1)
	}
	f, _ := p.Value.Float64()
	return f
}

// String renders "12.5%", "-100%" or "new".
func (p PercentChange) String() string {
	if p.Kind == PercentNewCategory {
		return "new"
	}
	return p.Value.String() + "%"
}

type percentChangeJSON struct {
	Kind  PercentChangeKind `json:"kind"`
	Value *decimal.Decimal  `json:"value,omitempty"`
}

// MarshalJSON encodes {"kind":"finite","value":"12.5"}; new categories omit value.
func (p PercentChange) MarshalJSON() ([]byte, error) {
	kind := p.Kind
	if kind == "" {
		kind = PercentFinite
	}
	out := percentChangeJSON{Kind: kind}
	if kind != PercentNewCategory {
		v := p.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the tagged object form. A discontinued change is always
// -100 whatever value it carries.
func (p *PercentChange) UnmarshalJSON(data []byte) error {
	var in percentChangeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("percent change: %w", err)
	}
	switch in.Kind {
	case PercentFinite:
		p.Kind = in.Kind
		p.Value = decimal.Zero
		if in.Value != nil {
			p.Value = *in.Value
		}
	case PercentDiscontinued:
		p.Kind = in.Kind
		p.Value = hundred.Neg()
	case PercentNewCategory:
		p.Kind = in.Kind
		p.Value = decimal.Zero
	default:
		return fmt.Errorf("percent change: unknown kind %q", in.Kind)
	}
	return nil
}
