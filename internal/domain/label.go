package domain

// LabelRow is one line of the Nutrition Facts label
type LabelRow struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Amount     float64 `json:"amount"`  // rounded to the row's precision
	Unit       string  `json:"unit"`
	Display    string  `json:"display"` // e.g. "1.5g", "0mg"
	Indent     int     `json:"indent"`  // 1 for fat and carbohydrate breakdowns
	Present    bool    `json:"present"` // false when no source nutrient matched
	DailyValue *int    `json:"dailyValue,omitempty"`
}

// LabelView is the rendered Nutrition Facts label
type LabelView struct {
	ServingInfo string     `json:"servingInfo"`
	Calories    int        `json:"calories"`
	Rows        []LabelRow `json:"rows"`
	NotFound    []string   `json:"notFound,omitempty"`
}

// Row returns the row with the given key
func (v *LabelView) Row(key string) (LabelRow, bool) {
	for _, row := range v.Rows {
		if row.Key == key {
			return row, true
		}
	}
	return LabelRow{}, false
}

// Visible reports whether a renderer should print the row.
// Breakdown rows are only shown when the source data had them.
func (r LabelRow) Visible() bool {
	return r.Indent == 0 || r.Present
}
