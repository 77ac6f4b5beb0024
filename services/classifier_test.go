package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"carhire-scraper/models"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name         string
		transmission string
		wantCategory string
		wantGroup    models.GroupCode
	}{
		{"Toyota Aygo", "", CategoryMini, models.GroupB1},
		{"Toyota Aygo Auto", models.TransmissionAutomatic, CategoryMiniAuto, models.GroupB2},
		{"Renault Clio ou similar | Pequeno", "", CategoryEconomy, models.GroupE1},
		{"Renault Clio", models.TransmissionAutomatic, CategoryEconomyAuto, models.GroupE2},
		{"VW Polo ou similar", "", CategoryEconomy, models.GroupE1},
		{"Mercedes-Benz Classe A", "", CategoryPremium, models.GroupG},
		{"Volkswagen Golf Automatic", "", CategoryCompactAuto, models.GroupF},
		{"Peugeot 308 SW", "", CategoryStationWagon, models.GroupL1},
		{"Opel Astra Sports Tourer", "", CategoryStationWagon, models.GroupL1},
		{"Toyota Corolla SW Auto ou similar", "", CategoryStationWagonAuto, models.GroupL2},
		{"Dacia Jogger", "", CategorySevenSeater, models.GroupM1},
		{"Ford Transit Custom", "", CategoryNineSeater, models.GroupN},
		{"BMW X1", models.TransmissionAutomatic, CategoryPremium, models.GroupG},
		{"Nissan Qashqai 1.3 DIG-T", "", CategorySUV, models.GroupJ1},
		{"Mini Cooper Cabrio", "", CategoryLuxury, models.GroupD},
		{"Fiat 500C", "", CategoryConvertible, models.GroupD},
		{"Zonda Roadster", "", CategoryConvertible, models.GroupD},
		{"Foo Bar (7 lugares)", models.TransmissionAutomatic, CategorySevenSeaterAuto, models.GroupM2},
		{"Something else entirely", "", CategoryUnknown, models.GroupUnclassified},
		{"", "", CategoryUnknown, models.GroupUnclassified},
	}

	for _, tt := range tests {
		category, group := c.Classify(tt.name, tt.transmission)
		if category != tt.wantCategory || group != tt.wantGroup {
			t.Errorf("Classify(%q, %q) = (%q, %s); want (%q, %s)",
				tt.name, tt.transmission, category, group, tt.wantCategory, tt.wantGroup)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	names := []string{"Toyota Aygo", "Kia Ceed SW Auto", "Mercedes Vito", "Citroën C3 Aircross", "Unknown Car"}
	first := NewClassifier(nil)
	second := NewClassifier(nil)

	for _, name := range names {
		wantCategory, wantGroup := first.Classify(name, "")
		for i := 0; i < 3; i++ {
			category, group := first.Classify(name, "")
			require.Equal(t, wantCategory, category)
			require.Equal(t, wantGroup, group)
		}
		category, group := second.Classify(name, "")
		require.Equal(t, wantCategory, category, name)
		require.Equal(t, wantGroup, group, name)
	}
}

func TestClassify_ConvertibleAlwaysWins(t *testing.T) {
	c := NewClassifier(nil)
	names := []string{
		"Mini Cooper Cabrio",
		"BMW 4 Series Cabrio",
		"Audi A3 Cabriolet",
		"Mazda MX-5 Roadster",
		"Fiat 500 Cabrio Auto",
		"Mercedes C Class Cabrio Automatic",
	}
	for _, name := range names {
		_, group := c.Classify(name, models.TransmissionAutomatic)
		require.Equal(t, models.GroupD, group, name)
	}
}

func TestClassify_AutoSuffixIsIndependent(t *testing.T) {
	c := NewClassifier(nil)
	_, manual := c.Classify("Toyota Aygo", "")
	_, automatic := c.Classify("Toyota Aygo Auto", models.TransmissionAutomatic)
	require.NotEqual(t, manual, automatic)
}

func TestExplain_LongestKeyWins(t *testing.T) {
	table, err := NewVehicleTable("test", []VehicleEntry{
		{"toyota corolla", CategoryCompact},
		{"toyota corolla sw", CategoryStationWagon},
	})
	require.NoError(t, err)

	r := NewClassifier(table).Explain("Toyota Corolla SW Auto ou similar", "")
	require.Equal(t, SourceSubstring, r.Source)
	require.Equal(t, "toyota corolla sw", r.Key)
	require.Equal(t, CategoryStationWagonAuto, r.Category)
	require.Equal(t, models.GroupL2, r.Group)
	require.True(t, r.Automatic)
	require.Equal(t, "test", r.TableVersion)
}

func TestExplain_EqualLengthKeysFollowTableOrder(t *testing.T) {
	entries := []VehicleEntry{{"ford ka", CategoryMini}, {"ka plus", CategoryEconomy}}
	table, err := NewVehicleTable("a", entries)
	require.NoError(t, err)
	require.Equal(t, "ford ka", NewClassifier(table).Explain("Ford Ka Plus", "").Key)

	table, err = NewVehicleTable("b", []VehicleEntry{entries[1], entries[0]})
	require.NoError(t, err)
	require.Equal(t, "ka plus", NewClassifier(table).Explain("Ford Ka Plus", "").Key)
}

func TestExplain_Sources(t *testing.T) {
	c := NewClassifier(nil)
	require.Equal(t, SourceExact, c.Explain("Renault Clio", "").Source)
	require.Equal(t, SourceAlias, c.Explain("VW Golf", "").Source)
	require.Equal(t, SourceSubstring, c.Explain("Renault Clio 1.0 TCe Evolution", "").Source)
	require.Equal(t, SourceHeuristic, c.Explain("Lada Niva 4x4", "").Source)
	require.Equal(t, SourceNone, c.Explain("Lada Niva", "").Source)
}

func TestNewVehicleTable_RejectsDuplicates(t *testing.T) {
	_, err := NewVehicleTable("dup", []VehicleEntry{
		{"VW Polo", CategoryEconomy},
		{"vw  polo", CategoryCompact},
	})
	require.Error(t, err)

	_, err = NewVehicleTable("bad", []VehicleEntry{{"vw polo", "Hatchback"}})
	require.Error(t, err)
}

func TestDefaultVehicleTable(t *testing.T) {
	table := DefaultVehicleTable()
	require.Greater(t, table.Len(), 200)
	require.Equal(t, DefaultTableVersion, table.Version)

	category, ok := table.Lookup("toyota corolla sw")
	require.True(t, ok)
	require.Equal(t, CategoryStationWagon, category)
	_, ok = table.Lookup("toyota corolla sw auto")
	require.False(t, ok)
}
