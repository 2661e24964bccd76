package usecase

import (
	"math"
	"math/big"
	"strconv"

	"github.com/nutricalc/backend/internal/domain"
)

// LabelPresenter turns nutrient lists into the fixed Nutrition Facts layout
type LabelPresenter struct {
	schema []CanonicalField
}

// NewLabelPresenter creates a presenter over the standard label schema
func NewLabelPresenter() *LabelPresenter {
	return &LabelPresenter{schema: LabelSchema}
}

// Render builds the label for a lookup result
func (p *LabelPresenter) Render(result *domain.NutritionResult) *domain.LabelView {
	if result == nil {
		return p.renderNutrients("Serving size", nil, nil)
	}
	return p.renderNutrients(result.ServingDescription(), result.Nutrients(), result.NotFound())
}

// RenderNutrients builds label rows straight from a nutrient list
func (p *LabelPresenter) RenderNutrients(nutrients []domain.Nutrient) []domain.LabelRow {
	return p.renderNutrients("", nutrients, nil).Rows
}

func (p *LabelPresenter) renderNutrients(serving string, nutrients []domain.Nutrient, notFound []string) *domain.LabelView {
	view := &domain.LabelView{
		ServingInfo: serving,
		Rows:        make([]domain.LabelRow, 0, len(p.schema)),
	}
	if len(notFound) > 0 {
		view.NotFound = append([]string(nil), notFound...)
	}

	for _, field := range p.schema {
		row := domain.LabelRow{
			Key:    field.Key,
			Label:  field.Label,
			Unit:   field.Unit,
			Indent: field.Indent,
		}

		n, ok := FindField(nutrients, field)
		amount := "0"
		if ok {
			amount = toFixed(n.Amount, field.Decimals)
			row.Present = true
			row.Unit = n.Unit
			row.Amount, _ = strconv.ParseFloat(amount, 64)
		}
		// unmatched rows read as a plain zero, e.g. "0mg"
		row.Display = amount + row.Unit
		if field.Key == FieldCalories {
			// calories print as a bare number
			row.Display = amount
			view.Calories = int(row.Amount)
		}

		if field.DailyValue > 0 {
			var amount float64
			if ok {
				amount = n.Amount
			}
			dv := DailyValuePercent(amount, field.DailyValue)
			row.DailyValue = &dv
		}

		view.Rows = append(view.Rows, row)
	}

	return view
}

// DailyValuePercent returns round(amount / reference * 100). Values above 100 are kept.
func DailyValuePercent(amount, reference float64) int {
	if reference <= 0 {
		return 0
	}
	return int(math.Round(amount / reference * 100))
}

// toFixed formats v with the given number of decimals. The stored binary value
// is what gets rounded, so 1.45 (really 1.4499...) prints as "1.4"; only an
// exact half rounds away from zero.
func toFixed(v float64, decimals int) string {
	if isExactHalf(v, decimals) {
		v = math.Nextafter(v, math.Copysign(math.Inf(1), v))
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// isExactHalf reports whether v*10^decimals lies exactly halfway between two integers
func isExactHalf(v float64, decimals int) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	x := new(big.Float).SetPrec(256).SetFloat64(v)
	x.Mul(x, new(big.Float).SetPrec(256).SetFloat64(math.Pow10(decimals)))
	whole, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(x, new(big.Float).SetPrec(256).SetInt(whole))
	return frac.Abs(frac).Cmp(big.NewFloat(0.5)) == 0
}
