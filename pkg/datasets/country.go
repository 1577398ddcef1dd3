package datasets

import (
	"strings"

	"github.com/biter777/countries"
)

// CountryKey canonicalises a country name for joins between tables.
// Names the countries database recognises collapse to their ISO alpha-3
// code so "United States" and "United States of America" meet; anything
// else (regions, historical names) joins on its trimmed, case-folded
// spelling.
func CountryKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if cc := countries.ByName(name); cc != countries.Unknown {
		if a3 := cc.Alpha3(); a3 != "" {
			return a3
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
