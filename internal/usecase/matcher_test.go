package usecase

import (
	"testing"

	"github.com/nutricalc/backend/internal/domain"
)

func TestFind(t *testing.T) {
	nutrients := []domain.Nutrient{
		{Name: "Energy", Amount: 143, Unit: "kcal"},
		{Name: "Total Fat", Amount: 9.5, Unit: "g"},
		{Name: "Fatty acids, total saturated fat", Amount: 3.1, Unit: "g"},
		{Name: "Saturated Fat", Amount: 3.0, Unit: "g"},
		{Name: "PROTEIN", Amount: 12.6, Unit: "g"},
	}

	tests := []struct {
		name     string
		label    string
		wantName string
		wantOK   bool
	}{
		{name: "exact name", label: "energy", wantName: "Energy", wantOK: true},
		{name: "case-insensitive", label: "Protein", wantName: "PROTEIN", wantOK: true},
		{name: "substring match", label: "total fat", wantName: "Total Fat", wantOK: true},
		{name: "first match wins on ambiguity", label: "saturated fat", wantName: "Fatty acids, total saturated fat", wantOK: true},
		{name: "absent", label: "sodium", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Find(nutrients, tt.label)
			if ok != tt.wantOK {
				t.Fatalf("Find() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Name != tt.wantName {
				t.Errorf("Find() name = %q, want %q", got.Name, tt.wantName)
			}
		})
	}

	t.Run("empty list", func(t *testing.T) {
		if _, ok := Find(nil, "energy"); ok {
			t.Error("Find(nil) should not match")
		}
	})
}

func TestFindField_FallbackChains(t *testing.T) {
	t.Run("calories falls back from energy", func(t *testing.T) {
		nutrients := []domain.Nutrient{{Name: "Calories", Amount: 52, Unit: "kcal"}}
		got, ok := FindField(nutrients, fieldByKey(t, FieldCalories))
		if !ok || got.Amount != 52 {
			t.Errorf("FindField() = %+v, %v; want Calories 52", got, ok)
		}
	})

	t.Run("energy preferred over calories", func(t *testing.T) {
		nutrients := []domain.Nutrient{
			{Name: "Calories from fat", Amount: 20, Unit: "kcal"},
			{Name: "Energy", Amount: 150, Unit: "kcal"},
		}
		got, _ := FindField(nutrients, fieldByKey(t, FieldCalories))
		if got.Name != "Energy" {
			t.Errorf("FindField() = %q, want Energy", got.Name)
		}
	})

	t.Run("carbohydrate fallback", func(t *testing.T) {
		nutrients := []domain.Nutrient{{Name: "CARBOHYDRATES", Amount: 66.3, Unit: "g"}}
		got, ok := FindField(nutrients, fieldByKey(t, FieldCarbohydrate))
		if !ok || got.Amount != 66.3 {
			t.Errorf("FindField() = %+v, %v; want CARBOHYDRATES 66.3", got, ok)
		}
	})

	t.Run("total fat has no fallback", func(t *testing.T) {
		nutrients := []domain.Nutrient{{Name: "Total lipid (fat)", Amount: 6.9, Unit: "g"}}
		if _, ok := FindField(nutrients, fieldByKey(t, FieldTotalFat)); ok {
			t.Error("total fat should only match names containing \"total fat\"")
		}
	})
}

func TestMatchLabel(t *testing.T) {
	nutrients := []domain.Nutrient{
		{Name: "Energy", Amount: 389, Unit: "kcal"},
		{Name: "Protein", Amount: 16.9, Unit: "g"},
		{Name: "Iron, Fe", Amount: 4.7, Unit: "mg"},
	}

	matched := MatchLabel(nutrients)

	if len(matched) != 3 {
		t.Fatalf("len(MatchLabel()) = %d, want 3", len(matched))
	}
	if matched[FieldIron].Amount != 4.7 {
		t.Errorf("iron = %v, want 4.7", matched[FieldIron].Amount)
	}
	if _, ok := matched[FieldSodium]; ok {
		t.Error("sodium should be absent")
	}
}

func TestLabelSchemaOrder(t *testing.T) {
	want := []string{
		FieldCalories, FieldTotalFat, FieldSaturatedFat, FieldTransFat, FieldCholesterol,
		FieldSodium, FieldCarbohydrate, FieldDietaryFiber, FieldSugars, FieldProtein,
		FieldVitaminD, FieldCalcium, FieldIron, FieldPotassium,
	}
	if len(LabelSchema) != len(want) {
		t.Fatalf("len(LabelSchema) = %d, want %d", len(LabelSchema), len(want))
	}
	for i, key := range want {
		if LabelSchema[i].Key != key {
			t.Errorf("LabelSchema[%d] = %s, want %s", i, LabelSchema[i].Key, key)
		}
	}
}

func fieldByKey(t *testing.T, key string) CanonicalField {
	t.Helper()
	for _, f := range LabelSchema {
		if f.Key == key {
			return f
		}
	}
	t.Fatalf("no field %q", key)
	return CanonicalField{}
}
