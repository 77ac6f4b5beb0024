package services

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// amountRegexp matches one number. Spaces only join complete thousands
	// groups, so "2 45,00" is two numbers and "1 234,50" is one.
	amountRegexp = regexp.MustCompile(`\d{1,3}(?:[., \x{00A0}\x{202F}]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d+)*`)

	currencySymbols = []struct {
		marker string
		code   string
	}{
		{"€", "EUR"}, {"£", "GBP"}, {"us$", "USD"}, {"$", "USD"},
	}
	currencyCodeRegexp = regexp.MustCompile(`(?i)\b(eur|gbp|chf|usd)\b`)

	// currencyMarkerRegexp finds symbols and ISO codes, including codes glued
	// to digits ("45EUR").
	currencyMarkerRegexp = regexp.MustCompile(`(?i)us\$|€|£|\$|(?:^|[^a-z])(eur|gbp|chf|usd)(?:[^a-z]|$)`)
)

// DetectCurrency returns the ISO code of the currency named in text, or "".
func DetectCurrency(text string) string {
	lower := strings.ToLower(text)
	for _, m := range currencySymbols {
		if strings.Contains(lower, m.marker) {
			return m.code
		}
	}
	if m := currencyCodeRegexp.FindStringSubmatch(text); len(m) == 2 {
		return strings.ToUpper(m[1])
	}
	return ""
}

type currencyMarker struct {
	start, end int
	code       string
}

func currencyMarkers(text string) []currencyMarker {
	var out []currencyMarker
	for _, m := range currencyMarkerRegexp.FindAllStringSubmatchIndex(text, -1) {
		if m[2] >= 0 {
			out = append(out, currencyMarker{m[2], m[3], strings.ToUpper(text[m[2]:m[3]])})
			continue
		}
		var code string
		switch strings.ToLower(text[m[0]:m[1]]) {
		case "€":
			code = "EUR"
		case "£":
			code = "GBP"
		default:
			code = "USD"
		}
		out = append(out, currencyMarker{m[0], m[1], code})
	}
	return out
}

// ParsePrice returns the amount written next to a currency symbol or code
// together with that currency. Day counts and other figures in the same
// text are ignored. Without an adjacent marker the text parses only when it
// holds exactly one number, with the currency detected anywhere in it.
func ParsePrice(text string) (float64, string, bool) {
	amounts := amountRegexp.FindAllStringIndex(text, -1)
	if len(amounts) == 0 {
		return 0, "", false
	}
	markers := currencyMarkers(text)
	for _, a := range amounts {
		for _, m := range markers {
			var gap string
			switch {
			case m.start >= a[1]:
				gap = text[a[1]:m.start]
			case m.end <= a[0]:
				gap = text[m.end:a[0]]
			default:
				continue
			}
			if strings.TrimSpace(strings.NewReplacer("\u00a0", "", "\u202f", "").Replace(gap)) != "" {
				continue
			}
			if v, ok := parseNumber(text[a[0]:a[1]]); ok {
				return v, m.code, true
			}
		}
	}
	if len(amounts) != 1 {
		return 0, "", false
	}
	v, ok := parseNumber(text[amounts[0][0]:amounts[0][1]])
	return v, DetectCurrency(text), ok
}

// ParseAmount is ParsePrice without the currency.
//
// Separator rules: when both '.' and ',' occur the last one is the decimal
// mark ("1.010,29" is European); a single separator followed by exactly
// three digits groups thousands, otherwise it marks decimals.
func ParseAmount(text string) (float64, bool) {
	v, _, ok := ParsePrice(text)
	return v, ok
}

func parseNumber(match string) (float64, bool) {
	num := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, match)

	lastDot := strings.LastIndex(num, ".")
	lastComma := strings.LastIndex(num, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			num = strings.ReplaceAll(num, ".", "")
			num = strings.Replace(num, ",", ".", 1)
		} else {
			num = strings.ReplaceAll(num, ",", "")
		}
	case lastComma >= 0:
		num = normalizeSingleSeparator(num, ",")
	case lastDot >= 0:
		num = normalizeSingleSeparator(num, ".")
	}

	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

func normalizeSingleSeparator(num, sep string) string {
	if strings.Count(num, sep) > 1 {
		return strings.ReplaceAll(num, sep, "")
	}
	idx := strings.Index(num, sep)
	if len(num)-idx-1 == 3 {
		return strings.Replace(num, sep, "", 1)
	}
	return strings.Replace(num, sep, ".", 1)
}

// FormatPrice renders a price the way persistence stores it.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
