// Package timezone derives an IANA timezone from a phone number's country
// calling code. It is a coarse lookup: large countries get their most
// populous zone, and anything unknown falls back to UTC.
package timezone

import (
	"strings"
	"time"
)

// Longest-prefix table of country calling codes. Keys are 1-3 digits.
var prefixZones = map[string]string{
	"1":   "America/New_York",
	"7":   "Europe/Moscow",
	"20":  "Africa/Cairo",
	"27":  "Africa/Johannesburg",
	"31":  "Europe/Amsterdam",
	"33":  "Europe/Paris",
	"34":  "Europe/Madrid",
	"36":  "Europe/Budapest",
	"39":  "Europe/Rome",
	"41":  "Europe/Zurich",
	"43":  "Europe/Vienna",
	"44":  "Europe/London",
	"45":  "Europe/Copenhagen",
	"46":  "Europe/Stockholm",
	"47":  "Europe/Oslo",
	"48":  "Europe/Warsaw",
	"49":  "Europe/Berlin",
	"51":  "America/Lima",
	"52":  "America/Mexico_City",
	"54":  "America/Argentina/Buenos_Aires",
	"55":  "America/Sao_Paulo",
	"56":  "America/Santiago",
	"57":  "America/Bogota",
	"61":  "Australia/Sydney",
	"62":  "Asia/Jakarta",
	"63":  "Asia/Manila",
	"64":  "Pacific/Auckland",
	"65":  "Asia/Singapore",
	"66":  "Asia/Bangkok",
	"81":  "Asia/Tokyo",
	"82":  "Asia/Seoul",
	"84":  "Asia/Ho_Chi_Minh",
	"86":  "Asia/Shanghai",
	"90":  "Europe/Istanbul",
	"91":  "Asia/Kolkata",
	"92":  "Asia/Karachi",
	"94":  "Asia/Colombo",
	"234": "Africa/Lagos",
	"254": "Africa/Nairobi",
	"351": "Europe/Lisbon",
	"353": "Europe/Dublin",
	"358": "Europe/Helsinki",
	"380": "Europe/Kyiv",
	"971": "Asia/Dubai",
	"972": "Asia/Jerusalem",
}

// PrefixResolver resolves timezones from the static calling-code table
type PrefixResolver struct{}

// NewPrefixResolver creates a resolver
func NewPrefixResolver() *PrefixResolver {
	return &PrefixResolver{}
}

// Resolve returns the IANA zone for a phone number, or "UTC" when the
// country code is unknown or maps to an unloadable zone.
func (r *PrefixResolver) Resolve(phone string) string {
	digits := strings.TrimPrefix(strings.TrimSpace(phone), "+")

	for length := 3; length >= 1; length-- {
		if len(digits) < length {
			continue
		}
		zone, ok := prefixZones[digits[:length]]
		if !ok {
			continue
		}
		if _, err := time.LoadLocation(zone); err != nil {
			return "UTC"
		}
		return zone
	}
	return "UTC"
}
