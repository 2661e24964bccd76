package usecase

import (
	"strings"

	"github.com/nutricalc/backend/internal/domain"
)

// Canonical label keys
const (
	FieldCalories     = "calories"
	FieldTotalFat     = "total_fat"
	FieldSaturatedFat = "saturated_fat"
	FieldTransFat     = "trans_fat"
	FieldCholesterol  = "cholesterol"
	FieldSodium       = "sodium"
	FieldCarbohydrate = "total_carbohydrate"
	FieldDietaryFiber = "dietary_fiber"
	FieldSugars       = "sugars"
	FieldProtein      = "protein"
	FieldVitaminD     = "vitamin_d"
	FieldCalcium      = "calcium"
	FieldIron         = "iron"
	FieldPotassium    = "potassium"
)

// CanonicalField is one row of the fixed label schema
type CanonicalField struct {
	Key        string
	Label      string
	Candidates []string // substrings tried in order; first hit wins
	Unit       string   // unit shown when nothing matched
	Decimals   int
	Indent     int
	DailyValue float64 // reference intake; 0 means no %DV
}

// LabelSchema lists the label rows in display order
var LabelSchema = []CanonicalField{
	{Key: FieldCalories, Label: "Calories", Candidates: []string{"energy", "calories"}, Unit: "", Decimals: 0},
	{Key: FieldTotalFat, Label: "Total Fat", Candidates: []string{"total fat"}, Unit: "g", Decimals: 1, DailyValue: 78},
	{Key: FieldSaturatedFat, Label: "Saturated Fat", Candidates: []string{"saturated fat"}, Unit: "g", Decimals: 1, Indent: 1, DailyValue: 20},
	{Key: FieldTransFat, Label: "Trans Fat", Candidates: []string{"trans fat"}, Unit: "g", Decimals: 1, Indent: 1},
	{Key: FieldCholesterol, Label: "Cholesterol", Candidates: []string{"cholesterol"}, Unit: "mg", Decimals: 0, DailyValue: 300},
	{Key: FieldSodium, Label: "Sodium", Candidates: []string{"sodium"}, Unit: "mg", Decimals: 0, DailyValue: 2300},
	{Key: FieldCarbohydrate, Label: "Total Carbohydrate", Candidates: []string{"total carbohydrate", "carbohydrate"}, Unit: "g", Decimals: 1, DailyValue: 275},
	{Key: FieldDietaryFiber, Label: "Dietary Fiber", Candidates: []string{"dietary fiber"}, Unit: "g", Decimals: 1, Indent: 1, DailyValue: 28},
	{Key: FieldSugars, Label: "Total Sugars", Candidates: []string{"sugars"}, Unit: "g", Decimals: 1, Indent: 1},
	{Key: FieldProtein, Label: "Protein", Candidates: []string{"protein"}, Unit: "g", Decimals: 1, DailyValue: 50},
	{Key: FieldVitaminD, Label: "Vitamin D", Candidates: []string{"vitamin d"}, Unit: "mcg", Decimals: 1, DailyValue: 20},
	{Key: FieldCalcium, Label: "Calcium", Candidates: []string{"calcium"}, Unit: "mg", Decimals: 0, DailyValue: 1300},
	{Key: FieldIron, Label: "Iron", Candidates: []string{"iron"}, Unit: "mg", Decimals: 1, DailyValue: 18},
	{Key: FieldPotassium, Label: "Potassium", Candidates: []string{"potassium"}, Unit: "mg", Decimals: 0, DailyValue: 4700},
}

// Find returns the first nutrient whose name contains label, ignoring case.
// When several names contain the label the earliest one in the list wins.
func Find(nutrients []domain.Nutrient, label string) (domain.Nutrient, bool) {
	needle := strings.ToLower(label)
	for _, n := range nutrients {
		if strings.Contains(strings.ToLower(n.Name), needle) {
			return n, true
		}
	}
	return domain.Nutrient{}, false
}

// FindField tries each candidate of the field in order
func FindField(nutrients []domain.Nutrient, field CanonicalField) (domain.Nutrient, bool) {
	for _, candidate := range field.Candidates {
		if n, ok := Find(nutrients, candidate); ok {
			return n, true
		}
	}
	return domain.Nutrient{}, false
}

// MatchLabel resolves every label field. Unmatched fields are absent from the map.
func MatchLabel(nutrients []domain.Nutrient) map[string]domain.Nutrient {
	matched := make(map[string]domain.Nutrient, len(LabelSchema))
	for _, field := range LabelSchema {
		if n, ok := FindField(nutrients, field); ok {
			matched[field.Key] = n
		}
	}
	return matched
}
