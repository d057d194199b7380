package georadius

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw    interface{}
		expect float64
	}{
		{nil, 0},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"1234.5", 1234.5},
		{"  42", 42},
		{"12abc", 12},
		{"-3.5e2", -350},
		{"1e", 1},
		{".5", 0.5},
		{"1.234,56", 1.234},
		{"Infinity", 0},
		{"1e400", 0},
		{12.5, 12.5},
		{7, 7},
		{int64(9), 9},
		{float32(1.5), 1.5},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{true, 0},
		{map[string]interface{}{}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expect, ParseValue(tt.raw), "raw %#v", tt.raw)
	}
}

func TestDeriveBreakdownFromOriginAttributes(t *testing.T) {
	attrs := map[string]interface{}{
		"valor_pd_num_origem":   "1234.5",
		"valor_pmsb_num_origem": 100.0,
		"PLHIS_origem":          "",
		"educagame_origem":      "n/a",
		"valor_pd_num_destino":  999.0,
	}
	breakdown := DeriveBreakdown(KindHub, attrs, nil)
	require.Len(t, breakdown, len(Products))
	assert.Equal(t, 1234.5, breakdown[VALOR_PD])
	assert.Equal(t, 100.0, breakdown[VALOR_PMBSB])
	assert.Equal(t, 0.0, breakdown[VALOR_PLHIS])
	assert.Equal(t, 0.0, breakdown[VALOR_EDUCAGAME])
	assert.Equal(t, 0.0, breakdown[VALOR_DESERT])
}

func TestDeriveBreakdownFromDestinationAttributes(t *testing.T) {
	attrs := map[string]interface{}{
		"valor_pd_num_origem":      "1234.5",
		"valor_pd_num_destino":     "10",
		"VALOR_DESERT_NUM_destino": 3.25,
	}
	breakdown := DeriveBreakdown(KindPeriphery, attrs, nil)
	assert.Equal(t, 10.0, breakdown[VALOR_PD])
	assert.Equal(t, 3.25, breakdown[VALOR_DESERT])
}

func TestDeriveBreakdownPrecomputedWins(t *testing.T) {
	precomputed := map[ProductKey]float64{VALOR_PD: 5, "CUSTOM": 1}
	attrs := map[string]interface{}{"valor_pd_num_origem": "1234.5"}
	breakdown := DeriveBreakdown(KindHub, attrs, precomputed)
	assert.Equal(t, precomputed, breakdown)

	// Result is a copy
	breakdown[VALOR_PD] = 100
	assert.Equal(t, 5.0, precomputed[VALOR_PD])
}

func TestDeriveBreakdownIdempotent(t *testing.T) {
	attrs := map[string]interface{}{
		"valor_pd_num_origem":  "1234.5",
		"valor_ctm_num_origem": 77.0,
		"PVA_origem":           "12,5",
	}
	first := DeriveBreakdown(KindHub, attrs, nil)
	second := DeriveBreakdown(KindHub, attrs, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, "1234.5", attrs["valor_pd_num_origem"])
}

func TestProductSourceField(t *testing.T) {
	for _, product := range Products {
		assert.NotEqual(t, product.Origin, product.Destination, product.Key)
		assert.Equal(t, product.Origin, product.Field(KindHub))
		assert.Equal(t, product.Destination, product.Field(KindPeriphery))
	}
	assert.Len(t, Products, 11)
}
