package engine

import (
	"math"
	"strconv"
	"strings"
)

const (
	// RoundingPlaces は浮動小数点ノイズを除去する小数桁数
	RoundingPlaces = 12
	// DisplayWidth は固定小数表示の最大文字数（整数部は切り詰めない）
	DisplayWidth = 12

	expUpper = 1e15
	expLower = 1e-6
	// exponentDigits は指数表記の仮数部の小数桁数
	exponentDigits = 10
)

// 非有限値の表示グリフ
const (
	GlyphInf    = "∞"
	GlyphNegInf = "-∞"
	GlyphNaN    = "NaN"
)

// RoundResult は結果を小数12桁に丸めて2進浮動小数点のノイズを除く
func RoundResult(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= expUpper {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', RoundingPlaces, 64), 64)
	if err != nil {
		return v
	}
	if r == 0 {
		// -0 を 0 に正規化
		return 0
	}
	return r
}

// FormatNumber は数値をバッファ・表示用テキストに変換する
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return GlyphNaN
	case math.IsInf(v, 1):
		return GlyphInf
	case math.IsInf(v, -1):
		return GlyphNegInf
	}

	v = RoundResult(v)
	if v == 0 {
		return "0"
	}

	abs := math.Abs(v)
	if abs >= expUpper || abs < expLower {
		return formatExponent(v)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if len(s) <= DisplayWidth || !strings.Contains(s, ".") {
		return s
	}

	intLen := strings.Index(s, ".")
	decimals := DisplayWidth - intLen - 1
	if decimals < 0 {
		decimals = 0
	}
	fitted := trimFraction(strconv.FormatFloat(v, 'f', decimals, 64))
	// 桁の切り詰めで 1e15 に繰り上がった場合は指数表記にする
	if f, err := strconv.ParseFloat(fitted, 64); err == nil && math.Abs(f) >= expUpper {
		return formatExponent(f)
	}
	return fitted
}

// formatExponent は "1.5e+20" や "1e-7" の形式で出力する
func formatExponent(v float64) string {
	s := strconv.FormatFloat(v, 'e', exponentDigits, 64)
	mantissa, exponent, found := strings.Cut(s, "e")
	if !found {
		return s
	}
	mantissa = trimFraction(mantissa)

	sign := exponent[:1]
	digits := strings.TrimLeft(exponent[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// trimFraction は小数点以下の末尾のゼロと余分な小数点を取り除く
func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ParseNumber はバッファのテキストを数値に変換する
// 解析できないバッファは0として扱い、ok=false を返す
func ParseNumber(s string) (value float64, ok bool) {
	switch s {
	case GlyphInf:
		return math.Inf(1), true
	case GlyphNegInf:
		return math.Inf(-1), true
	case GlyphNaN:
		return math.NaN(), true
	case "", "-":
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// 桁あふれは ±Inf のまま有効な値として扱う
		if numErr, isNum := err.(*strconv.NumError); isNum && numErr.Err == strconv.ErrRange {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// parseBuffer は ParseError を0に畳み込んだ ParseNumber
func parseBuffer(s string) float64 {
	v, _ := ParseNumber(s)
	return v
}

// isPlainEntry はバッファが数字・符号・小数点だけで構成されているかを返す
func isPlainEntry(s string) bool {
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return true
}
