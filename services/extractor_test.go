package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"carhire-scraper/models"
	"carhire-scraper/utils"
)

const resultsPage = `<html><body>
<section class="newcarlist">
  <article data-prv="AUP">
    <img class="car-img" src="/cdn/img/cars/renault-clio.jpg" alt="Renault Clio">
    <h2>Renault Clio ou similar | Pequeno</h2>
    <ul><li>5 lugares</li><li>Ar condicionado</li></ul>
    <span class="price pr-day">15,00 €/dia</span>
    <span class="price total">45,00 €</span>
  </article>
  <article>
    <h2>Peugeot 208 ou similar</h2>
    <span class="price">consultar</span>
  </article>
</section>
</body></html>`

func newTestExtractor() *Extractor {
	return NewExtractor(utils.NewDiscardLogger(), 5, 15000, "EUR")
}

func TestExtract_EndToEnd(t *testing.T) {
	listings := newTestExtractor().Extract(resultsPage)
	require.Len(t, listings, 1)

	l := listings[0]
	require.Equal(t, "Renault Clio", l.Name)
	require.Equal(t, "AUP", l.SupplierCode)
	require.Equal(t, "Auto Prudente", l.SupplierName)
	require.Equal(t, 45.00, l.Price)
	require.Equal(t, "45,00 €", l.PriceText)
	require.Equal(t, "EUR", l.Currency)
	require.Equal(t, "/cdn/img/cars/renault-clio.jpg", l.PhotoURL)
	require.Empty(t, l.Transmission)
	require.Equal(t, 0, l.Position)

	category, group := NewClassifier(nil).Classify(l.Name, l.Transmission)
	require.Equal(t, CategoryEconomy, category)
	require.Equal(t, models.GroupE1, group)
}

func TestExtract_TotalBeatsPerDayAndStruck(t *testing.T) {
	page := `<article class="car">
	  <h3>Toyota Yaris</h3>
	  <div class="prices">
	    <del>1.250,00 €</del>
	    <span class="day">68,18 €</span>
	    <span class="old-price">1.100,00 €</span>
	    <span data-price-type="total">1.010,29 €</span>
	  </div>
	</article>`

	listings := newTestExtractor().Extract(page)
	require.Len(t, listings, 1)
	require.Equal(t, 1010.29, listings[0].Price)
}

func TestExtract_PlainPriceWhenNoTotal(t *testing.T) {
	page := `<li class="car-item">
	  <p>Fiat 500 ou similar</p>
	  <s>80,00 €</s>
	  <b>62,40 €</b>
	</li>`

	listings := newTestExtractor().Extract(page)
	require.Len(t, listings, 1)
	require.Equal(t, "Fiat 500", listings[0].Name)
	require.Equal(t, 62.40, listings[0].Price)
}

func TestExtract_DropsImplausiblePrice(t *testing.T) {
	page := `<article class="car"><h2>Kia Picanto</h2><span class="total">2,00 €</span></article>
	<article class="car"><h2>Kia Rio</h2><span class="total">99.999,00 €</span></article>`

	require.Empty(t, newTestExtractor().Extract(page))
}

func TestExtract_PhotoAltRefinesName(t *testing.T) {
	page := `<article class="car">
	  <img src="/img/prv/gol.png" alt="Goldcar" class="logo">
	  <img data-src="/fleet/aygo-x.jpg" alt="Toyota Aygo X Auto ou similar">
	  <h2>Toyota Aygo</h2>
	  <i class="ico-auto"></i>
	  <span class="total">120,00 €</span>
	</article>`

	listings := newTestExtractor().ExtractWithBase(page, "https://www.example.com/pt/search.asp?s=1")
	require.Len(t, listings, 1)

	l := listings[0]
	require.Equal(t, "Toyota Aygo X Auto", l.Name)
	require.Equal(t, "GOL", l.SupplierCode)
	require.Equal(t, "Goldcar", l.SupplierName)
	require.Equal(t, "https://www.example.com/fleet/aygo-x.jpg", l.PhotoURL)
	require.Equal(t, models.TransmissionAutomatic, l.Transmission)
}

func TestExtract_TextualTransmission(t *testing.T) {
	page := `<div class="car-result">
	  <h4>Opel Corsa</h4><span>Manual</span><span class="total">40 EUR</span>
	</div>`

	listings := newTestExtractor().Extract(page)
	require.Len(t, listings, 1)
	require.Equal(t, models.TransmissionManual, listings[0].Transmission)
	require.Equal(t, "EUR", listings[0].Currency)
}

func TestExtract_SupplierFromLogoAlt(t *testing.T) {
	page := `<article class="car">
	  <img class="supplier-logo" src="/static/l/7731.png" alt="Keddy by Europcar">
	  <h2>Seat Ibiza</h2>
	  <span class="total">55,00 €</span>
	</article>`

	listings := newTestExtractor().Extract(page)
	require.Len(t, listings, 1)
	require.Equal(t, "KED", listings[0].SupplierCode)
	require.Equal(t, "Keddy by Europcar", listings[0].SupplierName)
}

func TestExtract_PreservesDocumentOrder(t *testing.T) {
	page := `<article class="car"><h2>Fiat Panda</h2><span class="total">30,00 €</span></article>
	<article class="car"><h2>Broken block</h2></article>
	<article class="car"><h2>Renault Clio</h2><span class="total">35,00 €</span></article>`

	listings := newTestExtractor().Extract(page)
	require.Len(t, listings, 2)
	require.Equal(t, "Fiat Panda", listings[0].Name)
	require.Equal(t, "Renault Clio", listings[1].Name)
	require.Less(t, listings[0].Position, listings[1].Position)
}

func TestExtract_NoStructure(t *testing.T) {
	require.Empty(t, newTestExtractor().Extract(""))
	require.Empty(t, newTestExtractor().Extract("<html><body><p>A carregar...</p></body></html>"))
}

func TestExtract_PriceSpans(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  float64
	}{
		{
			name:  "day count inside the total",
			block: `<span class="total">Total 7 dias: 315,00 €</span>`,
			want:  315,
		},
		{
			name:  "quantity before the amount",
			block: `<span class="total">x2 19,90 €</span>`,
			want:  19.90,
		},
		{
			name:  "deductible inside the total",
			block: `<span class="total">315,00 € (franquia 1.200 €)</span>`,
			want:  315,
		},
		{
			name:  "deductible beside the total",
			block: `<small>Franquia 1.200 €</small><span class="total">315,00 €</span>`,
			want:  315,
		},
		{
			name:  "class containing tag",
			block: `<span class="price-tag">45,00 €</span>`,
			want:  45,
		},
		{
			name:  "german per-day class",
			block: `<span class="preis pro-tag">15,00 €</span><span class="preis">45,00 €</span>`,
			want:  45,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<article class="car"><h3>Renault Clio</h3>` + tt.block + `</article>`
			listings := newTestExtractor().Extract(page)
			require.Len(t, listings, 1)
			require.Equal(t, tt.want, listings[0].Price)
			require.Equal(t, "EUR", listings[0].Currency)
		})
	}
}

func TestExtract_SkipsSizeCaptionAsName(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "caption before heading",
			page: `<article class="car"><span class="cat-title">Mini</span><h3>Fiat Panda ou similar</h3><span class="total">30,00 €</span></article>`,
			want: "Fiat Panda",
		},
		{
			name: "caption before text name",
			page: `<li class="car-item"><p>Mini</p><p>Fiat Panda ou similar</p><b>30,00 €</b></li>`,
			want: "Fiat Panda",
		},
		{
			name: "mini brand with model",
			page: `<article class="car"><h3>Mini Cooper</h3><span class="total">80,00 €</span></article>`,
			want: "Mini Cooper",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listings := newTestExtractor().Extract(tt.page)
			require.Len(t, listings, 1)
			require.Equal(t, tt.want, listings[0].Name)
		})
	}
}
