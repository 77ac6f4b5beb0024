package services

import (
	"regexp"
	"strings"
)

// brandTokens are manufacturer names (normalized) recognised in listing text.
var brandTokens = []string{
	"abarth", "alfa romeo", "audi", "bmw", "byd", "citroen", "cupra", "dacia",
	"ds", "fiat", "ford", "honda", "hyundai", "jaguar", "jeep", "kia", "lancia",
	"land rover", "lexus", "lynk", "mazda", "mercedes", "mg", "mini",
	"mitsubishi", "nissan", "opel", "peugeot", "polestar", "porsche",
	"renault", "seat", "skoda", "smart", "ssangyong", "subaru", "suzuki",
	"tesla", "toyota", "vauxhall", "volkswagen", "volvo", "vw",
}

// premiumBrands feed the size heuristics when no table key matched.
var premiumBrands = []string{
	"audi", "bmw", "jaguar", "land rover", "lexus", "mercedes", "polestar",
	"porsche", "tesla", "volvo",
}

// ContainsBrand reports whether text mentions a recognised manufacturer.
func ContainsBrand(text string) bool {
	return firstToken(normalizeText(text), brandTokens) != ""
}

// firstToken returns the first candidate present in n as a whole-token run.
func firstToken(n string, candidates []string) string {
	padded := " " + n + " "
	for _, c := range candidates {
		if strings.Contains(padded, " "+c+" ") {
			return c
		}
	}
	return ""
}

// Supplier codes as they appear in logo paths and data attributes.
var supplierNames = map[string]string{
	"ALM": "Alamo",
	"AUP": "Auto Prudente",
	"AVS": "Avis",
	"BGT": "Budget",
	"CEN": "Centauro",
	"DRV": "Drivalia",
	"ENT": "Enterprise",
	"EUR": "Europcar",
	"FIR": "Firefly",
	"GOL": "Goldcar",
	"GUE": "Guerin",
	"HER": "Hertz",
	"ILV": "Ilha Verde",
	"KED": "Keddy by Europcar",
	"NAT": "National",
	"NOV": "Nova Rent",
	"OKR": "OK Mobility",
	"RCV": "Rent Car Vilamoura",
	"RNT": "Rentacar",
	"SIX": "Sixt",
	"SUR": "Surprice",
	"THR": "Thrifty",
	"YES": "Yes Rent a Car",
}

var (
	supplierPathPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)/prv/([a-z0-9]{2,4})\.(?:png|gif|jpe?g|svg|webp)`),
		regexp.MustCompile(`(?i)/suppliers?/([a-z0-9]{2,4})\.(?:png|gif|jpe?g|svg|webp)`),
		regexp.MustCompile(`(?i)logo[_-]([a-z0-9]{2,4})\.(?:png|gif|jpe?g|svg|webp)`),
	}
	supplierCodeRe = regexp.MustCompile(`^[A-Z0-9]{2,4}$`)
)

// SupplierName resolves a supplier code to its full name.
func SupplierName(code string) (string, bool) {
	name, ok := supplierNames[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// supplierCodeFromPath extracts a supplier code from an image path.
func supplierCodeFromPath(path string) string {
	for _, re := range supplierPathPatterns {
		if m := re.FindStringSubmatch(path); len(m) == 2 {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// supplierFromLabel resolves an alt/title text that is either a bare code
// or a supplier's full name.
func supplierFromLabel(label string) (code, name string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", ""
	}
	if supplierCodeRe.MatchString(label) {
		if n, ok := supplierNames[label]; ok {
			return label, n
		}
		return label, ""
	}
	lower := strings.ToLower(label)
	for c, n := range supplierNames {
		if !strings.Contains(lower, strings.ToLower(n)) {
			continue
		}
		// "Keddy by Europcar" also contains "Europcar"; keep the longer name.
		if len(n) > len(name) || (len(n) == len(name) && c < code) {
			code, name = c, n
		}
	}
	return code, name
}
