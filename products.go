package georadius

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ProductKey identifies sellable offering of the catalog
type ProductKey string

const (
	VALOR_PD            = ProductKey("VALOR_PD")
	VALOR_PMBSB         = ProductKey("VALOR_PMBSB")
	VALOR_CTM           = ProductKey("VALOR_CTM")
	VALOR_DEC_AMBIENTAL = ProductKey("VALOR_DEC_AMBIENTAL")
	VALOR_PLHIS         = ProductKey("VALOR_PLHIS")
	VALOR_START         = ProductKey("VALOR_START")
	VALOR_LIVRO         = ProductKey("VALOR_LIVRO")
	VALOR_PVA           = ProductKey("VALOR_PVA")
	VALOR_EDUCAGAME     = ProductKey("VALOR_EDUCAGAME")
	VALOR_REURB         = ProductKey("VALOR_REURB")
	VALOR_DESERT        = ProductKey("VALOR_DESERT")
)

const (
	// Attribute holding total value of hub
	fieldTotalOrigin = "valor_total_origem"
	// Attribute holding total value of periphery
	fieldTotalDestination = "valor_total_destino"
)

// ProductSource binds product key to raw attribute names on both sides of hub/periphery relation
type ProductSource struct {
	Key         ProductKey
	Origin      string
	Destination string
}

// Field returns attribute name to read for given feature kind
func (ps ProductSource) Field(kind FeatureKind) string {
	if kind == KindPeriphery {
		return ps.Destination
	}
	return ps.Origin
}

// Products is the catalog. Order is stable and used for exports
var Products = []ProductSource{
	{Key: VALOR_PD, Origin: "valor_pd_num_origem", Destination: "valor_pd_num_destino"},
	{Key: VALOR_PMBSB, Origin: "valor_pmsb_num_origem", Destination: "valor_pmsb_num_destino"},
	{Key: VALOR_CTM, Origin: "valor_ctm_num_origem", Destination: "valor_ctm_num_destino"},
	{Key: VALOR_DEC_AMBIENTAL, Origin: "VALOR_DEC_AMBIENTAL_NUM_origem", Destination: "VALOR_DEC_AMBIENTAL_NUM_destino"},
	{Key: VALOR_PLHIS, Origin: "PLHIS_origem", Destination: "PLHIS_destino"},
	{Key: VALOR_START, Origin: "valor_start_iniciais_finais_origem", Destination: "valor_start_iniciais_finais_destino"},
	{Key: VALOR_LIVRO, Origin: "LIVRO_FUND_1_2_origem", Destination: "LIVRO_FUND_1_2_destino"},
	{Key: VALOR_PVA, Origin: "PVA_origem", Destination: "PVA_destino"},
	{Key: VALOR_EDUCAGAME, Origin: "educagame_origem", Destination: "educagame_destino"},
	{Key: VALOR_REURB, Origin: "valor_reurb_origem", Destination: "valor_reurb_destino"},
	{Key: VALOR_DESERT, Origin: "VALOR_DESERT_NUM_origem", Destination: "VALOR_DESERT_NUM_destino"},
}

// DeriveBreakdown returns per-product values of feature.
// Pre-computed map wins verbatim (copied), otherwise every catalog product is read from raw attributes
func DeriveBreakdown(kind FeatureKind, attrs map[string]interface{}, precomputed map[ProductKey]float64) map[ProductKey]float64 {
	if precomputed != nil {
		out := make(map[ProductKey]float64, len(precomputed))
		for k, v := range precomputed {
			out[k] = v
		}
		return out
	}
	out := make(map[ProductKey]float64, len(Products))
	for _, product := range Products {
		out[product.Key] = ParseValue(attrs[product.Field(kind)])
	}
	return out
}

// totalField returns attribute name of total value for given feature kind
func totalField(kind FeatureKind) string {
	if kind == KindPeriphery {
		return fieldTotalDestination
	}
	return fieldTotalOrigin
}

// ParseValue converts raw attribute to number. Missing, empty, non-numeric and non-finite values are 0.
// Strings are parsed like JS parseFloat: leading whitespace skipped, longest numeric prefix taken
func ParseValue(raw interface{}) float64 {
	var v float64
	switch val := raw.(type) {
	case float64:
		v = val
	case float32:
		v = float64(val)
	case int:
		v = float64(val)
	case int64:
		v = float64(val)
	case int32:
		v = float64(val)
	case uint:
		v = float64(val)
	case uint64:
		v = float64(val)
	case uint32:
		v = float64(val)
	case string:
		v = parseFloatPrefix(val)
	default:
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseFloatPrefix parses longest prefix of s which is decimal number: [+-]digits[.digits][e[+-]digits]
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			end = j
		}
	}
	// Only range errors are possible here, ParseFloat returns ±Inf for them
	v, _ := strconv.ParseFloat(s[:end], 64)
	return v
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
