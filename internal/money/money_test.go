package money_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/taxright/taxright/internal/money"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestToDecimal(t *testing.T) {
	def := dec("0.00")

	tests := []struct {
		name  string
		value any
		want  decimal.Decimal
	}{
		{name: "Float", value: 45.5, want: dec("45.5")},
		{name: "Int", value: 12, want: dec("12")},
		{name: "PlainString", value: "1234.56", want: dec("1234.56")},
		{name: "DollarSign", value: "$45.00", want: dec("45.00")},
		{name: "ThousandsSeparator", value: "1,234.56", want: dec("1234.56")},
		{name: "SymbolAndCommas", value: "$1,234,567.89", want: dec("1234567.89")},
		{name: "EuroSign", value: "€99.95", want: dec("99.95")},
		{name: "WhitespacePadded", value: "  8.25 ", want: dec("8.25")},
		{name: "JSONNumber", value: json.Number("0.0825"), want: dec("0.0825")},
		{name: "Nil", value: nil, want: def},
		{name: "EmptyString", value: "", want: def},
		{name: "Garbage", value: "N/A", want: def},
		{name: "SymbolOnly", value: "$", want: def},
		{name: "Bool", value: true, want: def},
		{name: "Slice", value: []any{1, 2}, want: def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := money.ToDecimal(tt.value, def)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestToDecimal_CustomDefault(t *testing.T) {
	def := dec("1.00")
	assert.True(t, def.Equal(money.ToDecimal("not a number", def)))
}

func TestClampRate(t *testing.T) {
	tests := []struct {
		name        string
		rate        decimal.Decimal
		want        decimal.Decimal
		wantClamped bool
	}{
		{name: "InRange", rate: dec("0.0825"), want: dec("0.0825"), wantClamped: false},
		{name: "Zero", rate: dec("0"), want: dec("0"), wantClamped: false},
		{name: "One", rate: dec("1"), want: dec("1"), wantClamped: false},
		{name: "Negative", rate: dec("-0.05"), want: dec("0"), wantClamped: true},
		{name: "AboveOne", rate: dec("8.25"), want: dec("1"), wantClamped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := money.ClampRate(tt.rate)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, tt.wantClamped, clamped)
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "8.2500%", money.FormatPercent(dec("0.0825")))
	assert.Equal(t, "0.0000%", money.FormatPercent(dec("0")))
	assert.Equal(t, "6.7500%", money.FormatPercent(dec("0.0675")))
}
