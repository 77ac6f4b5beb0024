package carjet

import (
	"fmt"

	"carhire-scraper/models"
)

// suggestionStrategy is one way of picking an autocomplete item. pick
// reports whether an item was selected.
type suggestionStrategy struct {
	name string
	pick func(p page, req models.AcquisitionRequest) (bool, error)
}

// suggestionStrategies are tried in order until one selects an item.
var suggestionStrategies = []suggestionStrategy{
	{name: "exact-text", pick: pickExactText},
	{name: "first-visible-query", pick: pickFirstVisibleQuery},
	{name: "first-visible-dom", pick: pickFirstVisibleDOM},
}

func pickExactText(p page, req models.AcquisitionRequest) (bool, error) {
	wanted := []string{req.SiteName()}
	if req.Location != req.SiteName() {
		wanted = append(wanted, req.Location)
	}
	var ok bool
	err := p.Eval(call(exactSuggestionJS, suggestionSelectors, wanted), &ok)
	return ok, err
}

func pickFirstVisibleQuery(p page, _ models.AcquisitionRequest) (bool, error) {
	var ok bool
	err := p.Eval(call(firstVisibleQueryJS, suggestionSelectors), &ok)
	return ok, err
}

func pickFirstVisibleDOM(p page, _ models.AcquisitionRequest) (bool, error) {
	var ok bool
	err := p.Eval(call(firstVisibleDomJS), &ok)
	return ok, err
}

// selectSuggestion runs the strategies in order and returns the name of the
// one that worked. All of them failing is fatal for the session.
func (b *BrowserStrategy) selectSuggestion(p page, req models.AcquisitionRequest) (string, error) {
	var lastErr error
	for _, st := range suggestionStrategies {
		ok, err := st.pick(p, req)
		if err != nil {
			b.logger.Warn("[carjet] Suggestion strategy %s errored: %v", st.name, err)
			lastErr = err
			continue
		}
		if ok {
			return st.name, nil
		}
		b.logger.Debug("[carjet] Suggestion strategy %s found nothing", st.name)
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w for %q: %v", models.ErrLocationUnresolved, req.Location, lastErr)
	}
	return "", fmt.Errorf("%w for %q", models.ErrLocationUnresolved, req.Location)
}
