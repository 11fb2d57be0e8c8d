package utils

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads numeric strings as they appear in survey attributes:
// "1,25,000", "₹ 4500.50", "12.5 TCM". Anything unparseable is 0.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "RS.")
	for _, unit := range []string{"TCM", "SQ.M.", "HA", "%"} {
		s = strings.TrimSuffix(s, unit)
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// FormatAmount renders rupees with Indian digit grouping, e.g. ₹ 12,34,567.50.
func FormatAmount(v float64) string {
	return "₹ " + GroupIndian(v, 2)
}

func FormatArea(v float64) string {
	return GroupIndian(v, 2) + " sq.m."
}

// FormatVolume renders thousand cubic metres.
func FormatVolume(v float64) string {
	return GroupIndian(v, 2) + " TCM"
}

func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func FormatInteger(v float64) string {
	return GroupIndian(math.Round(v), 0)
}

// GroupIndian formats v with decimals places, grouping the integer part as
// lakhs and crores: the last three digits, then pairs.
func GroupIndian(v float64, decimals int) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	if len(intPart) > 3 {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var b strings.Builder
		for i, r := range head {
			if i > 0 && (len(head)-i)%2 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(r)
		}
		intPart = b.String() + "," + tail
	}

	if v < 0 && strings.Trim(intPart+frac, "0.,") != "" {
		return "-" + intPart + frac
	}
	return intPart + frac
}
