package geotable

import (
	"strings"

	"github.com/pariz/gountries"
)

var countryCodeQuery = gountries.New()

// NormalizeAlpha2Code returns a normalized 2-letter ISO3166 code.
// Normalized code is uppercased with some additional mapping. Range
// databases often use ZZ or - as 'unknown' country, this function returns
// "" for them. Some databases still map Serbia to YU or use UK instead of
// GB.
func NormalizeAlpha2Code(alpha2 string) string {
	alpha2 = strings.ToUpper(strings.TrimSpace(alpha2))

	if len(alpha2) != 2 {
		return ""
	}

	switch alpha2 {
	case "ZZ", "AP", "EU", "--":
		return ""
	case "YU":
		return "CS"
	case "FX":
		return "FR"
	case "UK":
		return "GB"
	default:
		return alpha2
	}
}

// LookupCountry returns details on the country with a given 2-letter code.
// Second value is false if the code is unknown.
func LookupCountry(alpha2 string) (QueryCountry, bool) {
	code := NormalizeAlpha2Code(alpha2)
	if code == "" {
		return QueryCountry{}, false
	}

	country, err := countryCodeQuery.FindCountryByAlpha(code)
	if err != nil {
		return QueryCountry{}, false
	}

	return QueryCountry{
		Alpha2Code:   country.Alpha2,
		Alpha3Code:   country.Alpha3,
		CommonName:   country.Name.Common,
		OfficialName: country.Name.Official,
	}, true
}
