// Package airline maps ICAO airline designators to the short names shown on
// the ticker.
package airline

import "strings"

// Private is the display name used when a callsign does not belong to a
// known carrier (general aviation, military, unknown operators).
const Private = "PRIVATE"

// directory maps the 3-letter ICAO airline designator to a display name.
// It is never mutated after package initialization.
var directory = map[string]string{
	"AAL": "American",
	"DAL": "Delta",
	"UAL": "United",
	"SWA": "Southwest",
	"FFT": "Frontier",
	"NKS": "Spirit",
	"JBU": "JetBlue",
	"ASA": "Alaska",
	"SKW": "SkyWest",
	"FDX": "FedEx",
	"UPS": "UPS",
	"KAL": "Korean Air",
	"BAW": "British",
	"ACA": "Air Canada",
	"AFR": "Air France",
	"DLH": "Lufthansa",
	"ANA": "All Nippon",
	"JAL": "Japan Air",
	"QFA": "Qantas",
	"UAE": "Emirates",
	"THY": "Turkish",
	"EVA": "EVA Air",
	"CSC": "China South",
	"CCA": "Air China",
	"GIA": "Garuda",
}

// Lookup returns the display name for a 3-letter designator.
func Lookup(designator string) (string, bool) {
	name, ok := directory[designator]
	return name, ok
}

// Prefix extracts the airline designator candidate from a raw callsign:
// the first three characters after trimming and upper-casing.
func Prefix(callsign string) string {
	cs := strings.ToUpper(strings.TrimSpace(callsign))
	if r := []rune(cs); len(r) > 3 {
		return string(r[:3])
	}
	return cs
}

// Name resolves a raw callsign (e.g. "DAL1234 ") to a display name,
// falling back to Private.
func Name(callsign string) string {
	if name, ok := Lookup(Prefix(callsign)); ok {
		return name
	}
	return Private
}
