package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nutricalc/backend/internal/domain"
)

const labelWidth = 40

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(b))
	return nil
}

// writeLabel prints a plain-text Nutrition Facts label
func writeLabel(w io.Writer, label *domain.LabelView) {
	thick := strings.Repeat("=", labelWidth)
	thin := strings.Repeat("-", labelWidth)

	fmt.Fprintln(w, "Nutrition Facts")
	if label.ServingInfo != "" {
		fmt.Fprintln(w, label.ServingInfo)
	}
	fmt.Fprintln(w, thick)
	fmt.Fprintf(w, "%-*s%*d\n", labelWidth-10, "Calories", 10, label.Calories)
	fmt.Fprintln(w, thin)
	fmt.Fprintf(w, "%*s\n", labelWidth, "% Daily Value*")

	for _, row := range label.Rows {
		if row.Key == "calories" || !row.Visible() {
			continue
		}
		left := strings.Repeat("  ", row.Indent) + row.Label + " " + row.Display
		right := ""
		if row.DailyValue != nil {
			right = fmt.Sprintf("%d%%", *row.DailyValue)
		}
		fmt.Fprintf(w, "%-*s%*s\n", labelWidth-6, left, 6, right)
	}

	fmt.Fprintln(w, thin)
	fmt.Fprintln(w, "* Percent Daily Values are based on a 2,000 calorie diet.")
	if len(label.NotFound) > 0 {
		fmt.Fprintf(w, "\nNot found: %s\n", strings.Join(label.NotFound, ", "))
	}
}

func writeSuggestions(w io.Writer, results []domain.FoodSuggestion) {
	for _, s := range results {
		if s.Group != "" {
			fmt.Fprintf(w, "%s  (%s)\n", s.Name, s.Group)
			continue
		}
		fmt.Fprintln(w, s.Name)
	}
}
