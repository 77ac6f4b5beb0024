package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// similarRegexp matches the marketplace's "or similar" disclaimer in the
	// supported languages; everything from it onwards is dropped.
	similarRegexp = regexp.MustCompile(`(?i)\s*[-–,]?\s*\b(?:or|ou|o|oder|of)\s+(?:similar|similaire|similare|simile|ähnlich|aehnlich|vergelijkbaar|semelhante|equivalente)\b.*$`)
	// parenRegexp drops parenthesised remarks such as "(5 lugares)".
	parenRegexp = regexp.MustCompile(`\([^)]*\)`)
	// transmissionWordRegexp folds transmission spellings onto "auto".
	transmissionWordRegexp = regexp.MustCompile(`\b(?:automatic|automatico|automatica|automatique|automatik|automatisch|aut)\b`)

	sizeTierWords = map[string]bool{
		"pequeno": true, "pequena": true, "medio": true, "media": true,
		"grande": true, "small": true, "medium": true, "large": true,
		"compacto": true, "economico": true, "economy": true, "familiar": true,
		"petite": true, "moyenne": true, "klein": true, "mittel": true, "gross": true,
	}
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents strips combining marks: "Citroën" becomes "Citroen".
func foldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

// collapseSpace trims s and collapses internal whitespace runs.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripSimilar removes the "or similar" disclaimer and anything after it,
// then any category pipe suffix.
func stripSimilar(s string) string {
	s = similarRegexp.ReplaceAllString(s, "")
	if i := strings.Index(s, "|"); i >= 0 {
		s = s[:i]
	}
	return s
}

// CleanDisplayName turns a raw listing title into the display name kept on
// the record: disclaimer, category pipes, parenthesised remarks and
// trailing size-tier words go; modifiers such as "Auto" or "SW" stay.
func CleanDisplayName(raw string) string {
	s := collapseSpace(raw)
	s = stripSimilar(s)
	s = parenRegexp.ReplaceAllString(s, " ")
	fields := strings.Fields(s)
	for len(fields) > 1 {
		last := strings.ToLower(foldAccents(strings.Trim(fields[len(fields)-1], ",.-–")))
		if !sizeTierWords[last] {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.Trim(strings.Join(fields, " "), " ,-–")
}

// normalizeText lowercases, folds accents and reduces punctuation to
// spaces. Used for brand detection and as the base of name normalization.
func normalizeText(s string) string {
	s = strings.ToLower(foldAccents(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '+':
			return r
		default:
			return ' '
		}
	}, s)
	return collapseSpace(s)
}

// NormalizeName is the classifier's lookup form of a vehicle name.
func NormalizeName(raw string) string {
	s := stripSimilar(collapseSpace(raw))
	s = parenRegexp.ReplaceAllString(s, " ")
	s = normalizeText(s)
	s = transmissionWordRegexp.ReplaceAllString(s, "auto")
	return collapseSpace(s)
}
