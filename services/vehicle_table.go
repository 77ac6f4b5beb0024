package services

import "fmt"

// Category labels carried on classified listings.
const (
	CategoryMini             = "Mini"
	CategoryMiniAuto         = "Mini Auto"
	CategoryEconomy          = "Economy"
	CategoryEconomyAuto      = "Economy Auto"
	CategoryCompact          = "Compact"
	CategoryCompactAuto      = "Compact Auto"
	CategorySUV              = "SUV"
	CategorySUVAuto          = "SUV Auto"
	CategoryStationWagon     = "Station Wagon"
	CategoryStationWagonAuto = "Station Wagon Auto"
	CategorySevenSeater      = "7 Seater"
	CategorySevenSeaterAuto  = "7 Seater Auto"
	CategoryNineSeater       = "9 Seater"
	CategoryPremium          = "Premium"
	CategoryLuxury           = "Luxury"
	CategoryConvertible      = "Convertible"
	CategoryUnknown          = "Unknown"
)

// DefaultTableVersion identifies the bundled vehicle table. Bump it whenever
// entries are appended.
const DefaultTableVersion = "2026.10.1"

// VehicleEntry maps a vehicle name to its category label.
type VehicleEntry struct {
	Key      string
	Category string
}

// VehicleTable is an ordered, append-only name table. Keys are stored in
// normalized form; order is the tie-break for substring matches.
type VehicleTable struct {
	Version string
	entries []VehicleEntry
	index   map[string]string
}

// NewVehicleTable normalizes and indexes entries. Duplicate keys after
// normalization and unknown category labels are rejected.
func NewVehicleTable(version string, entries []VehicleEntry) (*VehicleTable, error) {
	t := &VehicleTable{
		Version: version,
		entries: make([]VehicleEntry, 0, len(entries)),
		index:   make(map[string]string, len(entries)),
	}
	for i, e := range entries {
		key := NormalizeName(e.Key)
		if key == "" {
			return nil, fmt.Errorf("vehicle table %s: entry %d has an empty key", version, i)
		}
		if _, ok := categoryGroups[e.Category]; !ok {
			return nil, fmt.Errorf("vehicle table %s: entry %q has unknown category %q", version, e.Key, e.Category)
		}
		if prev, dup := t.index[key]; dup {
			return nil, fmt.Errorf("vehicle table %s: duplicate key %q (%s, %s)", version, key, prev, e.Category)
		}
		t.index[key] = e.Category
		t.entries = append(t.entries, VehicleEntry{Key: key, Category: e.Category})
	}
	return t, nil
}

// MustVehicleTable is NewVehicleTable for tables known at compile time.
func MustVehicleTable(version string, entries []VehicleEntry) *VehicleTable {
	t, err := NewVehicleTable(version, entries)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultVehicleTable returns the bundled table.
func DefaultVehicleTable() *VehicleTable {
	return MustVehicleTable(DefaultTableVersion, defaultVehicleEntries)
}

// Len returns the number of entries.
func (t *VehicleTable) Len() int {
	return len(t.entries)
}

// Lookup returns the category for an exact normalized key.
func (t *VehicleTable) Lookup(key string) (string, bool) {
	c, ok := t.index[key]
	return c, ok
}

// LongestContained returns the longest key found as a whole-token run in
// any of the candidate names. Among keys of equal length the first in
// table order wins.
func (t *VehicleTable) LongestContained(candidates ...string) (VehicleEntry, bool) {
	var best VehicleEntry
	found := false
	for _, e := range t.entries {
		if found && len(e.Key) <= len(best.Key) {
			continue
		}
		for _, c := range candidates {
			if containsTokens(c, e.Key) {
				best, found = e, true
				break
			}
		}
	}
	return best, found
}

func containsTokens(s, run string) bool {
	return firstToken(s, []string{run}) != ""
}

var defaultVehicleEntries = []VehicleEntry{
	// Mini
	{"fiat 500", CategoryMini}, {"fiat 500 auto", CategoryMiniAuto},
	{"fiat panda", CategoryMini}, {"fiat panda auto", CategoryMiniAuto},
	{"toyota aygo", CategoryMini}, {"toyota aygo auto", CategoryMiniAuto},
	{"toyota aygo x", CategoryMini}, {"toyota aygo x auto", CategoryMiniAuto},
	{"kia picanto", CategoryMini}, {"kia picanto auto", CategoryMiniAuto},
	{"hyundai i10", CategoryMini}, {"hyundai i10 auto", CategoryMiniAuto},
	{"peugeot 108", CategoryMini}, {"peugeot 108 auto", CategoryMiniAuto},
	{"citroen c1", CategoryMini}, {"citroen c1 auto", CategoryMiniAuto},
	{"renault twingo", CategoryMini}, {"renault twingo auto", CategoryMiniAuto},
	{"volkswagen up", CategoryMini}, {"volkswagen up auto", CategoryMiniAuto},
	{"skoda citigo", CategoryMini}, {"seat mii", CategoryMini},
	{"opel karl", CategoryMini}, {"opel adam", CategoryMini},
	{"suzuki celerio", CategoryMini}, {"suzuki ignis", CategoryMini},
	{"suzuki ignis auto", CategoryMiniAuto},
	{"mitsubishi space star", CategoryMini}, {"mitsubishi space star auto", CategoryMiniAuto},
	{"smart fortwo", CategoryMiniAuto}, {"smart forfour", CategoryMiniAuto},
	{"dacia spring", CategoryMiniAuto},

	// Economy
	{"renault clio", CategoryEconomy}, {"renault clio auto", CategoryEconomyAuto},
	{"peugeot 208", CategoryEconomy}, {"peugeot 208 auto", CategoryEconomyAuto},
	{"peugeot e 208", CategoryEconomyAuto},
	{"opel corsa", CategoryEconomy}, {"opel corsa auto", CategoryEconomyAuto},
	{"volkswagen polo", CategoryEconomy}, {"volkswagen polo auto", CategoryEconomyAuto},
	{"seat ibiza", CategoryEconomy}, {"seat ibiza auto", CategoryEconomyAuto},
	{"ford fiesta", CategoryEconomy}, {"ford fiesta auto", CategoryEconomyAuto},
	{"toyota yaris", CategoryEconomy}, {"toyota yaris auto", CategoryEconomyAuto},
	{"hyundai i20", CategoryEconomy}, {"hyundai i20 auto", CategoryEconomyAuto},
	{"kia rio", CategoryEconomy}, {"kia rio auto", CategoryEconomyAuto},
	{"citroen c3", CategoryEconomy}, {"citroen c3 auto", CategoryEconomyAuto},
	{"skoda fabia", CategoryEconomy}, {"skoda fabia auto", CategoryEconomyAuto},
	{"dacia sandero", CategoryEconomy}, {"dacia sandero stepway", CategoryEconomy},
	{"dacia logan", CategoryEconomy},
	{"nissan micra", CategoryEconomy}, {"nissan micra auto", CategoryEconomyAuto},
	{"mazda 2", CategoryEconomy}, {"mazda 2 auto", CategoryEconomyAuto},
	{"honda jazz", CategoryEconomyAuto},
	{"fiat punto", CategoryEconomy}, {"lancia ypsilon", CategoryEconomy},
	{"suzuki swift", CategoryEconomy}, {"suzuki swift auto", CategoryEconomyAuto},
	{"mg 3", CategoryEconomy}, {"mg 3 auto", CategoryEconomyAuto},
	{"renault zoe", CategoryEconomyAuto},
	{"opel corsa e", CategoryEconomyAuto},

	// Compact
	{"volkswagen golf", CategoryCompact}, {"volkswagen golf auto", CategoryCompactAuto},
	{"volkswagen id3", CategoryCompactAuto},
	{"ford focus", CategoryCompact}, {"ford focus auto", CategoryCompactAuto},
	{"renault megane", CategoryCompact}, {"renault megane auto", CategoryCompactAuto},
	{"renault megane e tech", CategoryCompactAuto},
	{"peugeot 308", CategoryCompact}, {"peugeot 308 auto", CategoryCompactAuto},
	{"opel astra", CategoryCompact}, {"opel astra auto", CategoryCompactAuto},
	{"seat leon", CategoryCompact}, {"seat leon auto", CategoryCompactAuto},
	{"toyota corolla", CategoryCompact}, {"toyota corolla auto", CategoryCompactAuto},
	{"hyundai i30", CategoryCompact}, {"hyundai i30 auto", CategoryCompactAuto},
	{"kia ceed", CategoryCompact}, {"kia ceed auto", CategoryCompactAuto},
	{"skoda scala", CategoryCompact}, {"skoda rapid", CategoryCompact},
	{"skoda octavia", CategoryCompact}, {"skoda octavia auto", CategoryCompactAuto},
	{"citroen c4", CategoryCompact}, {"citroen c4 auto", CategoryCompactAuto},
	{"fiat tipo", CategoryCompact}, {"fiat tipo auto", CategoryCompactAuto},
	{"mazda 3", CategoryCompact}, {"honda civic", CategoryCompact},
	{"cupra born", CategoryCompactAuto}, {"cupra leon", CategoryCompact},
	{"nissan leaf", CategoryCompactAuto}, {"mg 4", CategoryCompactAuto},
	{"byd dolphin", CategoryCompactAuto}, {"hyundai ioniq", CategoryCompactAuto},
	{"toyota prius", CategoryCompactAuto},

	// SUV
	{"peugeot 2008", CategorySUV}, {"peugeot 2008 auto", CategorySUVAuto},
	{"peugeot 3008", CategorySUV}, {"peugeot 3008 auto", CategorySUVAuto},
	{"renault captur", CategorySUV}, {"renault captur auto", CategorySUVAuto},
	{"renault arkana", CategorySUVAuto}, {"renault austral", CategorySUVAuto},
	{"nissan juke", CategorySUV}, {"nissan juke auto", CategorySUVAuto},
	{"nissan qashqai", CategorySUV}, {"nissan qashqai auto", CategorySUVAuto},
	{"nissan x trail", CategorySUVAuto},
	{"seat arona", CategorySUV}, {"seat arona auto", CategorySUVAuto},
	{"seat ateca", CategorySUV}, {"seat ateca auto", CategorySUVAuto},
	{"volkswagen t roc", CategorySUV}, {"volkswagen t roc auto", CategorySUVAuto},
	{"volkswagen t cross", CategorySUV}, {"volkswagen t cross auto", CategorySUVAuto},
	{"volkswagen taigo", CategorySUV},
	{"volkswagen tiguan", CategorySUV}, {"volkswagen tiguan auto", CategorySUVAuto},
	{"volkswagen id4", CategorySUVAuto},
	{"hyundai kona", CategorySUV}, {"hyundai kona auto", CategorySUVAuto},
	{"hyundai tucson", CategorySUV}, {"hyundai tucson auto", CategorySUVAuto},
	{"hyundai bayon", CategorySUV}, {"hyundai ioniq 5", CategorySUVAuto},
	{"kia stonic", CategorySUV}, {"kia stonic auto", CategorySUVAuto},
	{"kia sportage", CategorySUV}, {"kia sportage auto", CategorySUVAuto},
	{"kia niro", CategorySUVAuto}, {"kia xceed", CategorySUV},
	{"toyota c hr", CategorySUV}, {"toyota c hr auto", CategorySUVAuto},
	{"toyota rav4", CategorySUVAuto},
	{"toyota yaris cross", CategorySUV}, {"toyota yaris cross auto", CategorySUVAuto},
	{"dacia duster", CategorySUV}, {"dacia duster 4x4", CategorySUV},
	{"ford puma", CategorySUV}, {"ford puma auto", CategorySUVAuto},
	{"ford kuga", CategorySUV}, {"ford kuga auto", CategorySUVAuto},
	{"ford ecosport", CategorySUV},
	{"opel crossland", CategorySUV}, {"opel crossland auto", CategorySUVAuto},
	{"opel mokka", CategorySUV}, {"opel mokka auto", CategorySUVAuto},
	{"opel grandland", CategorySUV}, {"opel grandland auto", CategorySUVAuto},
	{"citroen c3 aircross", CategorySUV}, {"citroen c5 aircross", CategorySUVAuto},
	{"citroen c4 cactus", CategorySUV},
	{"jeep renegade", CategorySUV}, {"jeep renegade auto", CategorySUVAuto},
	{"jeep compass", CategorySUVAuto}, {"jeep avenger", CategorySUV},
	{"fiat 500x", CategorySUV}, {"fiat 500x auto", CategorySUVAuto},
	{"skoda kamiq", CategorySUV}, {"skoda karoq", CategorySUV},
	{"mazda cx 3", CategorySUV}, {"mazda cx 30", CategorySUV},
	{"mazda cx 5", CategorySUVAuto},
	{"suzuki vitara", CategorySUV}, {"suzuki vitara auto", CategorySUVAuto},
	{"suzuki s cross", CategorySUV}, {"mitsubishi asx", CategorySUV},
	{"mitsubishi outlander", CategorySUVAuto},
	{"mg zs", CategorySUV}, {"mg zs auto", CategorySUVAuto}, {"mg hs", CategorySUVAuto},
	{"cupra formentor", CategorySUVAuto}, {"byd atto 3", CategorySUVAuto},

	// Station wagon
	{"renault clio sw", CategoryStationWagon},
	{"peugeot 308 sw", CategoryStationWagon}, {"peugeot 308 sw auto", CategoryStationWagonAuto},
	{"peugeot 508 sw", CategoryStationWagonAuto},
	{"volkswagen golf sw", CategoryStationWagon}, {"volkswagen golf sw auto", CategoryStationWagonAuto},
	{"volkswagen passat sw", CategoryStationWagon}, {"volkswagen passat sw auto", CategoryStationWagonAuto},
	{"skoda octavia sw", CategoryStationWagon}, {"skoda octavia sw auto", CategoryStationWagonAuto},
	{"skoda fabia sw", CategoryStationWagon},
	{"seat leon sw", CategoryStationWagon}, {"seat leon sw auto", CategoryStationWagonAuto},
	{"opel astra sw", CategoryStationWagon}, {"opel astra sw auto", CategoryStationWagonAuto},
	{"ford focus sw", CategoryStationWagon}, {"ford focus sw auto", CategoryStationWagonAuto},
	{"renault megane sw", CategoryStationWagon}, {"renault megane sw auto", CategoryStationWagonAuto},
	{"toyota corolla sw", CategoryStationWagon},
	{"kia ceed sw", CategoryStationWagon}, {"kia ceed sw auto", CategoryStationWagonAuto},
	{"hyundai i30 sw", CategoryStationWagon},
	{"fiat tipo sw", CategoryStationWagon}, {"fiat tipo sw auto", CategoryStationWagonAuto},
	{"dacia logan mcv", CategoryStationWagon},

	// Seven seats
	{"peugeot 5008", CategorySevenSeater}, {"peugeot 5008 auto", CategorySevenSeaterAuto},
	{"peugeot rifter", CategorySevenSeater},
	{"citroen grand c4 spacetourer", CategorySevenSeater},
	{"citroen grand c4 spacetourer auto", CategorySevenSeaterAuto},
	{"citroen grand c4 picasso", CategorySevenSeater},
	{"citroen berlingo", CategorySevenSeater},
	{"renault grand scenic", CategorySevenSeater}, {"renault grand scenic auto", CategorySevenSeaterAuto},
	{"dacia jogger", CategorySevenSeater}, {"dacia lodgy", CategorySevenSeater},
	{"volkswagen touran", CategorySevenSeater}, {"volkswagen touran auto", CategorySevenSeaterAuto},
	{"volkswagen sharan", CategorySevenSeater}, {"volkswagen sharan auto", CategorySevenSeaterAuto},
	{"skoda kodiaq", CategorySevenSeater}, {"skoda kodiaq auto", CategorySevenSeaterAuto},
	{"seat alhambra", CategorySevenSeater}, {"seat alhambra auto", CategorySevenSeaterAuto},
	{"seat tarraco", CategorySevenSeaterAuto},
	{"ford galaxy", CategorySevenSeaterAuto},
	{"ford s max", CategorySevenSeater}, {"ford s max auto", CategorySevenSeaterAuto},
	{"opel zafira", CategorySevenSeater}, {"opel zafira auto", CategorySevenSeaterAuto},
	{"kia sorento", CategorySevenSeaterAuto}, {"hyundai santa fe", CategorySevenSeaterAuto},

	// Nine seats
	{"ford transit", CategoryNineSeater}, {"ford transit custom", CategoryNineSeater},
	{"ford tourneo custom", CategoryNineSeater},
	{"mercedes vito", CategoryNineSeater}, {"mercedes v class", CategoryNineSeater},
	{"volkswagen transporter", CategoryNineSeater}, {"volkswagen caravelle", CategoryNineSeater},
	{"volkswagen multivan", CategoryNineSeater},
	{"renault trafic", CategoryNineSeater}, {"opel vivaro", CategoryNineSeater},
	{"peugeot traveller", CategoryNineSeater}, {"peugeot expert", CategoryNineSeater},
	{"citroen jumpy", CategoryNineSeater}, {"citroen spacetourer", CategoryNineSeater},
	{"fiat talento", CategoryNineSeater},
	{"toyota proace", CategoryNineSeater}, {"toyota proace verso", CategoryNineSeater},
	{"nissan primastar", CategoryNineSeater},
	{"hyundai h1", CategoryNineSeater}, {"hyundai staria", CategoryNineSeater},

	// Premium
	{"audi a1", CategoryPremium}, {"audi a3", CategoryPremium}, {"audi a4", CategoryPremium},
	{"audi a4 avant", CategoryPremium}, {"audi a5", CategoryPremium},
	{"audi a6", CategoryPremium}, {"audi q2", CategoryPremium}, {"audi q3", CategoryPremium},
	{"audi q5", CategoryPremium},
	{"bmw 1 series", CategoryPremium}, {"bmw 116", CategoryPremium}, {"bmw 118", CategoryPremium},
	{"bmw 2 series", CategoryPremium}, {"bmw 3 series", CategoryPremium},
	{"bmw 318", CategoryPremium}, {"bmw 320", CategoryPremium},
	{"bmw x1", CategoryPremium}, {"bmw x2", CategoryPremium}, {"bmw x3", CategoryPremium},
	{"bmw i3", CategoryPremium},
	{"mercedes a class", CategoryPremium}, {"mercedes classe a", CategoryPremium},
	{"mercedes a180", CategoryPremium}, {"mercedes b class", CategoryPremium},
	{"mercedes c class", CategoryPremium}, {"mercedes classe c", CategoryPremium},
	{"mercedes cla", CategoryPremium}, {"mercedes gla", CategoryPremium},
	{"mercedes glb", CategoryPremium}, {"mercedes glc", CategoryPremium},
	{"volvo xc40", CategoryPremium}, {"volvo xc60", CategoryPremium},
	{"volvo v60", CategoryPremium}, {"volvo s60", CategoryPremium},
	{"lexus ux", CategoryPremium}, {"lexus nx", CategoryPremium},
	{"tesla model 3", CategoryPremium}, {"tesla model y", CategoryPremium},
	{"polestar 2", CategoryPremium},
	{"ds 3", CategoryPremium}, {"ds 4", CategoryPremium}, {"ds 7", CategoryPremium},
	{"alfa romeo giulietta", CategoryPremium}, {"alfa romeo tonale", CategoryPremium},
	{"alfa romeo giulia", CategoryPremium}, {"alfa romeo stelvio", CategoryPremium},
	{"jaguar xe", CategoryPremium},
	{"mini cooper", CategoryPremium}, {"mini one", CategoryPremium},
	{"mini countryman", CategoryPremium}, {"abarth 595", CategoryPremium},

	// Luxury
	{"bmw 5 series", CategoryLuxury}, {"bmw 520", CategoryLuxury}, {"bmw x5", CategoryLuxury},
	{"bmw i4", CategoryLuxury},
	{"mercedes e class", CategoryLuxury}, {"mercedes classe e", CategoryLuxury},
	{"mercedes gle", CategoryLuxury}, {"mercedes s class", CategoryLuxury},
	{"audi a8", CategoryLuxury}, {"audi q7", CategoryLuxury}, {"audi q8", CategoryLuxury},
	{"porsche macan", CategoryLuxury}, {"porsche cayenne", CategoryLuxury},
	{"porsche 911", CategoryLuxury},
	{"land rover range rover", CategoryLuxury}, {"land rover range rover evoque", CategoryLuxury},
	{"land rover range rover sport", CategoryLuxury}, {"land rover defender", CategoryLuxury},
	{"land rover discovery", CategoryLuxury},
	{"volvo xc90", CategoryLuxury},
	{"tesla model s", CategoryLuxury}, {"tesla model x", CategoryLuxury},
	{"jaguar f pace", CategoryLuxury},
	{"mini cooper cabrio", CategoryLuxury},

	// Convertible
	{"fiat 500c", CategoryConvertible}, {"fiat 500 cabrio", CategoryConvertible},
	{"abarth 595c", CategoryConvertible},
	{"mazda mx 5", CategoryConvertible},
	{"volkswagen t roc cabrio", CategoryConvertible},
	{"audi a3 cabrio", CategoryConvertible}, {"audi a5 cabrio", CategoryConvertible},
	{"bmw 2 series cabrio", CategoryConvertible}, {"bmw 4 series cabrio", CategoryConvertible},
	{"mercedes c class cabrio", CategoryConvertible}, {"mercedes e class cabrio", CategoryConvertible},
	{"mercedes slc", CategoryConvertible},
	{"mini cooper convertible", CategoryConvertible},
	{"peugeot 308 cc", CategoryConvertible}, {"renault megane cc", CategoryConvertible},
}
