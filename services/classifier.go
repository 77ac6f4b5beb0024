package services

import (
	"regexp"
	"strings"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"carhire-scraper/models"
)

// MatchSource records which cascade step produced a classification.
type MatchSource string

const (
	SourceExact     MatchSource = "exact"
	SourceAlias     MatchSource = "alias"
	SourceSubstring MatchSource = "substring"
	SourceHeuristic MatchSource = "heuristic"
	SourceNone      MatchSource = "none"
)

const classifierMemoSize = 4096

var categoryGroups = map[string]models.GroupCode{
	CategoryMini:             models.GroupB1,
	CategoryMiniAuto:         models.GroupB2,
	CategoryEconomy:          models.GroupE1,
	CategoryEconomyAuto:      models.GroupE2,
	CategoryCompact:          models.GroupF,
	CategoryCompactAuto:      models.GroupF,
	CategorySUV:              models.GroupJ1,
	CategorySUVAuto:          models.GroupJ2,
	CategoryStationWagon:     models.GroupL1,
	CategoryStationWagonAuto: models.GroupL2,
	CategorySevenSeater:      models.GroupM1,
	CategorySevenSeaterAuto:  models.GroupM2,
	CategoryNineSeater:       models.GroupN,
	CategoryPremium:          models.GroupG,
	CategoryLuxury:           models.GroupG,
	CategoryConvertible:      models.GroupD,
	CategoryUnknown:          models.GroupUnclassified,
}

// autoCounterparts maps a manual family to its automatic variant. Families
// missing here keep their category when the vehicle is automatic.
var autoCounterparts = map[string]string{
	CategoryMini:         CategoryMiniAuto,
	CategoryEconomy:      CategoryEconomyAuto,
	CategoryCompact:      CategoryCompactAuto,
	CategorySUV:          CategorySUVAuto,
	CategoryStationWagon: CategoryStationWagonAuto,
	CategorySevenSeater:  CategorySevenSeaterAuto,
}

// nameAliases are applied to normalized names, token-aligned, when the
// exact lookup misses.
var nameAliases = []struct{ from, to string }{
	{"mercedes benz", "mercedes"},
	{"mb", "mercedes"},
	{"merc", "mercedes"},
	{"vw", "volkswagen"},
	{"alfa", "alfa romeo"},
	{"ds automobiles", "ds"},
	{"citroen ds", "ds"},
	{"station wagon", "sw"},
	{"sports tourer", "sw"},
	{"sport tourer", "sw"},
	{"sportstourer", "sw"},
	{"sportswagon", "sw"},
	{"sportwagon", "sw"},
	{"estate", "sw"},
	{"break", "sw"},
	{"touring", "sw"},
	{"tourer", "sw"},
	{"variant", "sw"},
	{"kombi", "sw"},
	{"combi", "sw"},
	{"cabriolet", "cabrio"},
}

var (
	convertibleWords = []string{
		"cabrio", "cabriolet", "convertible", "descapotavel", "descapotable",
		"decapotable", "roadster", "spider", "spyder",
	}
	wagonWords = []string{
		"sw", "estate", "wagon", "break", "touring", "tourer", "variant",
		"kombi", "combi", "avant", "sportwagon", "sportswagon",
	}
	suvWords       = []string{"suv", "4x4", "crossover", "awd", "4wd", "cross", "aircross"}
	nineSeatWords  = []string{"minibus", "van", "9 lugares", "9 plazas"}
	sevenSeatWords = []string{"monovolume", "mpv", "7 lugares", "7 plazas"}
	economyWords   = []string{"pequeno", "pequena", "small", "economy", "economico", "klein", "petite"}
	compactWords   = []string{"medio", "media", "medium", "compact", "compacto", "mittel", "moyenne"}
	largeWords     = []string{"grande", "large", "gross", "familiar"}

	seatsRegexp = regexp.MustCompile(`\b([79])\s*(?:lugares|seats?|seater|plazas|places|sitze|posti|zitplaatsen|pax)\b`)
)

// Classification is the full result of one classification, including the
// cascade step that decided it.
type Classification struct {
	Normalized   string
	Category     string
	Group        models.GroupCode
	Source       MatchSource
	Key          string
	Automatic    bool
	TableVersion string
}

// Classifier maps vehicle names to category labels and group codes. Results
// are memoized; the mapping itself is pure.
type Classifier struct {
	table *VehicleTable
	memo  *expirable.LRU[string, Classification]
}

// NewClassifier creates a classifier over table, or over the bundled table
// when table is nil.
func NewClassifier(table *VehicleTable) *Classifier {
	if table == nil {
		table = DefaultVehicleTable()
	}
	return &Classifier{
		table: table,
		memo:  expirable.NewLRU[string, Classification](classifierMemoSize, nil, 0),
	}
}

// Table returns the table the classifier reads from.
func (c *Classifier) Table() *VehicleTable {
	return c.table
}

// Classify returns the category label and group code for a vehicle name
// and an optional transmission label.
func (c *Classifier) Classify(name, transmission string) (string, models.GroupCode) {
	r := c.Explain(name, transmission)
	return r.Category, r.Group
}

// Explain is Classify with the matching details.
func (c *Classifier) Explain(name, transmission string) Classification {
	memoKey := name + "\x00" + transmission
	if r, ok := c.memo.Get(memoKey); ok {
		return r
	}
	r := c.classify(name, transmission)
	c.memo.Add(memoKey, r)
	return r
}

func (c *Classifier) classify(name, transmission string) Classification {
	n := NormalizeName(name)
	r := Classification{
		Normalized:   n,
		Category:     CategoryUnknown,
		Group:        models.GroupUnclassified,
		Source:       SourceNone,
		TableVersion: c.table.Version,
	}
	if n == "" {
		return r
	}

	category, key, source := c.lookup(n)
	if source == SourceNone {
		category = heuristicCategory(n, normalizeText(name))
		if category != CategoryUnknown {
			source = SourceHeuristic
		}
	}

	automatic := strings.EqualFold(transmission, models.TransmissionAutomatic) ||
		containsTokens(n, "auto") ||
		strings.HasSuffix(category, " Auto")
	if automatic {
		if counterpart, ok := autoCounterparts[category]; ok {
			category = counterpart
		}
	}

	group := categoryGroups[category]
	if hasConvertibleWord(n) {
		group = models.GroupD
	}

	r.Category = category
	r.Group = group
	r.Source = source
	r.Key = key
	r.Automatic = automatic
	return r
}

func (c *Classifier) lookup(n string) (category, key string, source MatchSource) {
	if cat, ok := c.table.Lookup(n); ok {
		return cat, n, SourceExact
	}
	variants := aliasVariants(n)
	for _, v := range variants {
		if cat, ok := c.table.Lookup(v); ok {
			return cat, v, SourceAlias
		}
	}
	if e, ok := c.table.LongestContained(append([]string{n}, variants...)...); ok {
		return e.Category, e.Key, SourceSubstring
	}
	return CategoryUnknown, "", SourceNone
}

// aliasVariants returns each single alias substitution followed by all of
// them applied together, without duplicates.
func aliasVariants(n string) []string {
	var out []string
	seen := map[string]bool{n: true}
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	cumulative := n
	for _, a := range nameAliases {
		if v, ok := replaceTokens(n, a.from, a.to); ok {
			add(v)
		}
		if v, ok := replaceTokens(cumulative, a.from, a.to); ok {
			cumulative = v
		}
	}
	add(cumulative)
	return out
}

func replaceTokens(n, from, to string) (string, bool) {
	padded := " " + n + " "
	if !strings.Contains(padded, " "+from+" ") {
		return n, false
	}
	// "alfa" must not expand inside "alfa romeo".
	if strings.Contains(to, from) && strings.Contains(padded, " "+to+" ") {
		return n, false
	}
	return collapseSpace(strings.ReplaceAll(padded, " "+from+" ", " "+to+" ")), true
}

func hasConvertibleWord(n string) bool {
	return firstToken(n, convertibleWords) != ""
}

// heuristicCategory guesses a family for names the table does not know.
// raw is the normalized full title, size-tier words and remarks included.
func heuristicCategory(n, raw string) string {
	seats := ""
	if m := seatsRegexp.FindStringSubmatch(raw); len(m) == 2 {
		seats = m[1]
	}
	switch {
	case hasConvertibleWord(n):
		return CategoryConvertible
	case seats == "9" || firstToken(raw, nineSeatWords) != "":
		return CategoryNineSeater
	case seats == "7" || firstToken(raw, sevenSeatWords) != "":
		return CategorySevenSeater
	case firstToken(n, wagonWords) != "":
		return CategoryStationWagon
	case firstToken(n, suvWords) != "":
		return CategorySUV
	case firstToken(n, premiumBrands) != "":
		return CategoryPremium
	case firstToken(raw, economyWords) != "":
		return CategoryEconomy
	case firstToken(raw, compactWords) != "":
		return CategoryCompact
	case firstToken(raw, largeWords) != "":
		return CategoryStationWagon
	}
	return CategoryUnknown
}
