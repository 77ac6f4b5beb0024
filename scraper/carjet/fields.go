package carjet

import (
	"fmt"
	"math"
	"strings"
	"time"

	"carhire-scraper/models"
)

// FieldNames are the search form's input names. The browser strategy
// addresses them by id or name; the direct strategy posts them.
type FieldNames struct {
	Location    string
	PickupDate  string
	DropoffDate string
	PickupTime  string
	DropoffTime string
	Language    string
	Currency    string
}

// DefaultFieldNames matches the marketplace's booking form.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		Location:    "pickup",
		PickupDate:  "fechaRecogida",
		DropoffDate: "fechaEntrega",
		PickupTime:  "fechaRecogidaSelHour",
		DropoffTime: "fechaEntregaSelHour",
		Language:    "idioma",
		Currency:    "moneda",
	}
}

// selectors returns the CSS selectors that may address a named field.
func (f FieldNames) selectors(name string) []string {
	return []string{"#" + name, fmt.Sprintf(`[name="%s"]`, name)}
}

const (
	dateLayout = "02/01/2006"
	firstSlot  = 8 * 60
	lastSlot   = 21*60 + 30
)

// snapSlot shifts t by offset and snaps it to the form's half-hour time
// slots between 08:00 and 21:30.
func snapSlot(t time.Time, offset time.Duration) string {
	mins := t.Hour()*60 + t.Minute() + int(offset/time.Minute)
	mins = int(math.Round(float64(mins)/30)) * 30
	if mins < firstSlot {
		mins = firstSlot
	}
	if mins > lastSlot {
		mins = lastSlot
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// formValues are the values both strategies put into the form.
type formValues struct {
	site        string
	pickupDate  string
	dropoffDate string
	pickupTime  string
	dropoffTime string
	language    string
	currency    string
}

func valuesFor(req models.AcquisitionRequest, profile models.IdentityProfile) formValues {
	return formValues{
		site:        req.SiteName(),
		pickupDate:  req.Pickup.Format(dateLayout),
		dropoffDate: req.Dropoff.Format(dateLayout),
		pickupTime:  snapSlot(req.Pickup, profile.TimeOffset),
		dropoffTime: snapSlot(req.Dropoff, profile.TimeOffset),
		language:    strings.ToUpper(req.Language),
		currency:    strings.ToUpper(req.Currency),
	}
}
