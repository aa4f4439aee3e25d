package parser

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Calories (kcal) ":   "Calories (kcal)",
		"Calories\t (kcal)":    "Calories (kcal)",
		"\ufeffFoodName":       "FoodName",
		"Sodium\n(mg)":         "Sodium (mg)",
		"":                     "",
	}
	for in, want := range cases {
		if got := NormalizeColumnName(in); got != want {
			t.Fatalf("NormalizeColumnName(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestParseNumber_SanitizesNaNAndInf(t *testing.T) {
	t.Parallel()

	absent := []any{
		nil,
		"",
		"   ",
		"NaN",
		"nan",
		"Inf",
		"-Inf",
		"+Infinity",
		"#DIV/0!",
		"abc",
		math.NaN(),
		math.Inf(1),
		math.Inf(-1),
		json.Number("oops"),
		true,
	}
	for _, v := range absent {
		if got := ParseNumber(v); got.Valid {
			t.Fatalf("ParseNumber(%#v) should be absent, got %v", v, got.Float64)
		}
	}
}

func TestParseNumber_Finite(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want float64
	}{
		{"70", 70},
		{" 0.5 ", 0.5},
		{"1,200", 1200},
		{"0", 0},
		{float64(2.25), 2.25},
		{int(3), 3},
		{int64(4), 4},
		{json.Number("5.5"), 5.5},
	}
	for _, c := range cases {
		got := ParseNumber(c.in)
		if !got.Valid {
			t.Fatalf("ParseNumber(%#v) should be valid", c.in)
		}
		if got.Float64 != c.want {
			t.Fatalf("ParseNumber(%#v)=%v, want %v", c.in, got.Float64, c.want)
		}
	}
}

func TestCellText(t *testing.T) {
	t.Parallel()

	if got := CellText("  1 large egg "); got != "1 large egg" {
		t.Fatalf("CellText string=%q", got)
	}
	if got := CellText(float64(100)); got != "100" {
		t.Fatalf("CellText float=%q", got)
	}
	if got := CellText(math.NaN()); got != "" {
		t.Fatalf("CellText NaN=%q", got)
	}
	if got := CellText(nil); got != "" {
		t.Fatalf("CellText nil=%q", got)
	}
}
